package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	elevenDefaultBaseURL = "https://api.elevenlabs.io"
	elevenDefaultVoiceID = "pNInz6obpgDQGcFmaJgB"
	elevenModelID        = "eleven_multilingual_v2"
)

type elevenClient struct {
	baseURL string
	apiKey  string
	voiceID string
	http    *http.Client
}

func newElevenClient(baseURL, apiKey, voiceID string, timeout time.Duration) *elevenClient {
	if baseURL == "" {
		baseURL = elevenDefaultBaseURL
	}
	if voiceID == "" {
		voiceID = elevenDefaultVoiceID
	}
	return &elevenClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		voiceID: voiceID,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *elevenClient) name() string         { return ProviderEleven }
func (c *elevenClient) defaultVoice() string { return c.voiceID }

type elevenRequest struct {
	Text          string              `json:"text"`
	ModelID       string              `json:"model_id"`
	VoiceSettings elevenVoiceSettings `json:"voice_settings"`
}

type elevenVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (c *elevenClient) synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = c.voiceID
	}
	body, err := json.Marshal(elevenRequest{
		Text:    text,
		ModelID: elevenModelID,
		VoiceSettings: elevenVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("eleven marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("eleven request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eleven do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("eleven status %d: %s", resp.StatusCode, snippet)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("eleven read body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("eleven returned empty audio")
	}
	return audio, nil
}
