// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	AppEnv   string
	LogLevel string

	HTTPListenAddr string
	PublicBaseURL  string
	PublicBasePath string

	MetricsNamespace string

	DatabaseURL    string
	DatabaseSchema string
	SQLitePath     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool

	BackendBaseURL     string
	BackendAPIKey      string
	BackendTimeout     time.Duration
	BackendSnapshotTTL time.Duration

	WebhookUsernameMD5 string
	WebhookPasswordMD5 string

	ElevenAPIKey       string
	ElevenMalayVoice   string
	GoogleTTSAPIKey    string
	GoogleEnglishVoice string
	GoogleChineseVoice string
	WhisperAPIKey      string
	SpeechTimeout      time.Duration

	WhatsAppEnabled   bool
	WhatsAppStorePath string
	WhatsAppLogLevel  string
}

// Load reads configuration from environment variables, applying
// defaults suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8080"),
		PublicBaseURL:  strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")),
		PublicBasePath: normalizeBasePath(os.Getenv("PUBLIC_BASE_PATH")),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "grablet"),

		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DatabaseSchema: getEnv("DATABASE_SCHEMA", "public"),
		SQLitePath:     getEnv("SQLITE_PATH", "grablet.db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		RedisTLS:      getBool("REDIS_TLS", false),

		BackendBaseURL:     strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")),
		BackendAPIKey:      os.Getenv("BACKEND_API_KEY"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 15*time.Second),
		BackendSnapshotTTL: getDuration("BACKEND_SNAPSHOT_TTL", 2*time.Minute),

		WebhookUsernameMD5: strings.ToLower(strings.TrimSpace(os.Getenv("WEBHOOK_USERNAME_MD5"))),
		WebhookPasswordMD5: strings.ToLower(strings.TrimSpace(os.Getenv("WEBHOOK_PASSWORD_MD5"))),

		ElevenAPIKey:       os.Getenv("ELEVENLABS_API_KEY"),
		ElevenMalayVoice:   os.Getenv("ELEVENLABS_MALAY_VOICE"),
		GoogleTTSAPIKey:    os.Getenv("GOOGLE_TTS_API_KEY"),
		GoogleEnglishVoice: os.Getenv("GOOGLE_TTS_ENGLISH_VOICE"),
		GoogleChineseVoice: os.Getenv("GOOGLE_TTS_CHINESE_VOICE"),
		WhisperAPIKey:      os.Getenv("WHISPER_API_KEY"),
		SpeechTimeout:      getDuration("SPEECH_TIMEOUT", 20*time.Second),

		WhatsAppEnabled:   getBool("WHATSAPP_ENABLED", false),
		WhatsAppStorePath: getEnv("WHATSAPP_STORE_PATH", "wa-store.db"),
		WhatsAppLogLevel:  getEnv("WHATSAPP_LOG_LEVEL", "INFO"),
	}

	if cfg.BackendBaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	return cfg, nil
}

// UsePostgres reports whether a Postgres DSN is configured. Without
// one the service falls back to the embedded SQLite store.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func normalizeBasePath(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
