// Package speech maps reply languages to synthesis voices and drives
// the two text-to-speech providers plus the speech-to-text endpoint.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grablet/internal/metrics"
	"grablet/internal/router"
)

// Provider identifiers reported back to callers and metrics.
const (
	ProviderEleven  = "elevenlabs"
	ProviderWavenet = "google"
)

// ErrSynthesisUnavailable indicates both providers failed for one request.
var ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")

// Voice pairs a provider with one of its voice identifiers.
type Voice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voice_id"`
}

// Config holds provider credentials and voice assignments.
type Config struct {
	ElevenBaseURL    string
	ElevenAPIKey     string
	ElevenMalayVoice string

	GoogleBaseURL      string
	GoogleAPIKey       string
	GoogleEnglishVoice string
	GoogleChineseVoice string

	WhisperBaseURL string
	WhisperAPIKey  string

	Timeout time.Duration
}

type synthesizer interface {
	name() string
	defaultVoice() string
	synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Service selects voices per language and synthesizes with fallback.
type Service struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	eleven  synthesizer
	wavenet synthesizer
	stt     *whisperClient
	voices  map[router.Language]Voice
}

// New builds the speech service with HTTP-backed providers.
func New(cfg Config, logger *slog.Logger, metricRegistry *metrics.Metrics) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	eleven := newElevenClient(cfg.ElevenBaseURL, cfg.ElevenAPIKey, cfg.ElevenMalayVoice, timeout)
	wavenet := newWavenetClient(cfg.GoogleBaseURL, cfg.GoogleAPIKey, cfg.GoogleEnglishVoice, timeout)

	chineseVoice := cfg.GoogleChineseVoice
	if chineseVoice == "" {
		chineseVoice = "cmn-CN-Wavenet-A"
	}

	return &Service{
		logger:  logger.With("component", "speech"),
		metrics: metricRegistry,
		eleven:  eleven,
		wavenet: wavenet,
		stt:     newWhisperClient(cfg.WhisperBaseURL, cfg.WhisperAPIKey, timeout),
		voices: map[router.Language]Voice{
			router.LangMalay:   {Provider: ProviderEleven, VoiceID: eleven.defaultVoice()},
			router.LangChinese: {Provider: ProviderWavenet, VoiceID: chineseVoice},
			router.LangEnglish: {Provider: ProviderWavenet, VoiceID: wavenet.defaultVoice()},
		},
	}
}

// SelectVoice maps a language tag to its synthesis voice. Unknown tags
// get the English default.
func (s *Service) SelectVoice(lang router.Language) Voice {
	if voice, ok := s.voices[lang]; ok {
		return voice
	}
	return s.voices[router.LangEnglish]
}

// Synthesize renders text to audio with the voice assigned to the
// language. If the primary provider fails, the other provider's default
// voice is tried once; a second failure surfaces as
// ErrSynthesisUnavailable. Returns the audio and the provider that
// produced it.
func (s *Service) Synthesize(ctx context.Context, text string, lang router.Language) ([]byte, string, error) {
	voice := s.SelectVoice(lang)
	primary := s.providerByName(voice.Provider)

	audio, err := s.callProvider(ctx, primary, text, voice.VoiceID)
	if err == nil {
		return audio, primary.name(), nil
	}
	s.logger.Warn("primary speech provider failed, falling back",
		"provider", primary.name(), "language", lang, "error", err)
	if s.metrics != nil {
		s.metrics.Errors.WithLabelValues("speech_primary").Inc()
	}

	fallback := s.otherProvider(primary)
	audio, fbErr := s.callProvider(ctx, fallback, text, fallback.defaultVoice())
	if fbErr == nil {
		return audio, fallback.name(), nil
	}
	if s.metrics != nil {
		s.metrics.Errors.WithLabelValues("speech_fallback").Inc()
	}
	return nil, "", fmt.Errorf("%w: primary %s: %v, fallback %s: %v",
		ErrSynthesisUnavailable, primary.name(), err, fallback.name(), fbErr)
}

// Transcribe converts recorded audio into text.
func (s *Service) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	start := time.Now()
	text, err := s.stt.transcribe(ctx, audio, mimeType)
	s.observe("whisper", start, err)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return text, nil
}

func (s *Service) callProvider(ctx context.Context, p synthesizer, text, voiceID string) ([]byte, error) {
	start := time.Now()
	audio, err := p.synthesize(ctx, text, voiceID)
	s.observe(p.name(), start, err)
	return audio, err
}

func (s *Service) observe(provider string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.SpeechRequests.WithLabelValues(provider, status).Inc()
	s.metrics.SpeechLatency.WithLabelValues(provider, status).Observe(time.Since(start).Seconds())
}

func (s *Service) providerByName(name string) synthesizer {
	if name == ProviderEleven {
		return s.eleven
	}
	return s.wavenet
}

func (s *Service) otherProvider(p synthesizer) synthesizer {
	if p.name() == ProviderEleven {
		return s.wavenet
	}
	return s.eleven
}
