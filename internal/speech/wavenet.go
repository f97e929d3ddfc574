package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	wavenetDefaultBaseURL = "https://texttospeech.googleapis.com"
	wavenetDefaultVoiceID = "en-US-Wavenet-F"
)

type wavenetClient struct {
	baseURL string
	apiKey  string
	voiceID string
	http    *http.Client
}

func newWavenetClient(baseURL, apiKey, voiceID string, timeout time.Duration) *wavenetClient {
	if baseURL == "" {
		baseURL = wavenetDefaultBaseURL
	}
	if voiceID == "" {
		voiceID = wavenetDefaultVoiceID
	}
	return &wavenetClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		voiceID: voiceID,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *wavenetClient) name() string         { return ProviderWavenet }
func (c *wavenetClient) defaultVoice() string { return c.voiceID }

type wavenetRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type wavenetResponse struct {
	AudioContent string `json:"audioContent"`
}

func (c *wavenetClient) synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = c.voiceID
	}
	var payload wavenetRequest
	payload.Input.Text = text
	payload.Voice.LanguageCode = languageCodeFromVoice(voiceID)
	payload.Voice.Name = voiceID
	payload.AudioConfig.AudioEncoding = "MP3"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wavenet marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text:synthesize?key=%s", c.baseURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("wavenet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wavenet do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("wavenet status %d: %s", resp.StatusCode, snippet)
	}

	var decoded wavenetResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("wavenet decode: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("wavenet audio decode: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("wavenet returned empty audio")
	}
	return audio, nil
}

// languageCodeFromVoice derives the BCP-47 code from a Wavenet voice
// name like "cmn-CN-Wavenet-A".
func languageCodeFromVoice(voiceID string) string {
	parts := strings.SplitN(voiceID, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}
