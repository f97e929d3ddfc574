package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grablet/internal/router"
)

func newTestService(t *testing.T, elevenURL, googleURL string) *Service {
	t.Helper()
	return New(Config{
		ElevenBaseURL:    elevenURL,
		ElevenAPIKey:     "eleven-key",
		ElevenMalayVoice: "malay-voice",
		GoogleBaseURL:    googleURL,
		GoogleAPIKey:     "google-key",
	}, slog.New(slog.DiscardHandler), nil)
}

func TestSelectVoice(t *testing.T) {
	svc := newTestService(t, "http://eleven.invalid", "http://google.invalid")

	cases := []struct {
		lang     router.Language
		provider string
		voiceID  string
	}{
		{router.LangMalay, ProviderEleven, "malay-voice"},
		{router.LangChinese, ProviderWavenet, "cmn-CN-Wavenet-A"},
		{router.LangEnglish, ProviderWavenet, wavenetDefaultVoiceID},
		{router.Language("klingon"), ProviderWavenet, wavenetDefaultVoiceID},
	}
	for _, tc := range cases {
		voice := svc.SelectVoice(tc.lang)
		assert.Equal(t, tc.provider, voice.Provider, "language %s", tc.lang)
		assert.Equal(t, tc.voiceID, voice.VoiceID, "language %s", tc.lang)
	}
}

func TestSynthesizeMalayUsesEleven(t *testing.T) {
	eleven := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/malay-voice", r.URL.Path)
		assert.Equal(t, "eleven-key", r.Header.Get("xi-api-key"))

		var req elevenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Jualan hari ini RM1,250", req.Text)
		assert.Equal(t, elevenModelID, req.ModelID)

		w.Write([]byte("mp3-bytes"))
	}))
	defer eleven.Close()

	svc := newTestService(t, eleven.URL, "http://google.invalid")
	audio, provider, err := svc.Synthesize(context.Background(), "Jualan hari ini RM1,250", router.LangMalay)
	require.NoError(t, err)
	assert.Equal(t, ProviderEleven, provider)
	assert.Equal(t, []byte("mp3-bytes"), audio)
}

func TestSynthesizeEnglishUsesWavenet(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		assert.Equal(t, "google-key", r.URL.Query().Get("key"))

		var req wavenetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, wavenetDefaultVoiceID, req.Voice.Name)
		assert.Equal(t, "en-US", req.Voice.LanguageCode)

		json.NewEncoder(w).Encode(wavenetResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("wav-bytes")),
		})
	}))
	defer google.Close()

	svc := newTestService(t, "http://eleven.invalid", google.URL)
	audio, provider, err := svc.Synthesize(context.Background(), "Sales are up 12% this week", router.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, ProviderWavenet, provider)
	assert.Equal(t, []byte("wav-bytes"), audio)
}

func TestSynthesizeFallsBackOnce(t *testing.T) {
	eleven := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice quota exceeded", http.StatusTooManyRequests)
	}))
	defer eleven.Close()

	var googleCalls int
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		googleCalls++
		json.NewEncoder(w).Encode(wavenetResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("fallback-audio")),
		})
	}))
	defer google.Close()

	svc := newTestService(t, eleven.URL, google.URL)
	audio, provider, err := svc.Synthesize(context.Background(), "Jualan minggu ini", router.LangMalay)
	require.NoError(t, err)
	assert.Equal(t, ProviderWavenet, provider)
	assert.Equal(t, []byte("fallback-audio"), audio)
	assert.Equal(t, 1, googleCalls)
}

func TestSynthesizeBothProvidersDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer down.Close()

	svc := newTestService(t, down.URL, down.URL)
	_, _, err := svc.Synthesize(context.Background(), "hello", router.LangEnglish)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSynthesisUnavailable))
}

func TestLanguageCodeFromVoice(t *testing.T) {
	assert.Equal(t, "cmn-CN", languageCodeFromVoice("cmn-CN-Wavenet-A"))
	assert.Equal(t, "en-US", languageCodeFromVoice("en-US-Wavenet-F"))
	assert.Equal(t, "en-US", languageCodeFromVoice("broken"))
}

func TestTranscribe(t *testing.T) {
	stt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer stt-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, whisperModel, r.FormValue("model"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "audio.ogg", header.Filename)

		json.NewEncoder(w).Encode(whisperResponse{Text: "show me my sales"})
	}))
	defer stt.Close()

	svc := New(Config{
		WhisperBaseURL: stt.URL,
		WhisperAPIKey:  "stt-key",
	}, slog.New(slog.DiscardHandler), nil)

	text, err := svc.Transcribe(context.Background(), []byte("opus-bytes"), "audio/ogg")
	require.NoError(t, err)
	assert.Equal(t, "show me my sales", text)
}
