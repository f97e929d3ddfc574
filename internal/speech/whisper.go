package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	whisperDefaultBaseURL = "https://api.openai.com"
	whisperModel          = "whisper-1"
)

type whisperClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newWhisperClient(baseURL, apiKey string, timeout time.Duration) *whisperClient {
	if baseURL == "" {
		baseURL = whisperDefaultBaseURL
	}
	return &whisperClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type whisperResponse struct {
	Text string `json:"text"`
}

func (c *whisperClient) transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("model", whisperModel); err != nil {
		return "", fmt.Errorf("whisper form: %w", err)
	}
	part, err := writer.CreateFormFile("file", fileNameForMime(mimeType))
	if err != nil {
		return "", fmt.Errorf("whisper form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("whisper write audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("whisper close form: %w", err)
	}

	endpoint := c.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("whisper request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("whisper status %d: %s", resp.StatusCode, snippet)
	}

	var decoded whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("whisper decode: %w", err)
	}
	return decoded.Text, nil
}

func fileNameForMime(mimeType string) string {
	switch mimeType {
	case "audio/ogg", "audio/ogg; codecs=opus":
		return "audio.ogg"
	case "audio/wav", "audio/x-wav":
		return "audio.wav"
	case "audio/mp4", "audio/m4a":
		return "audio.m4a"
	default:
		return "audio.mp3"
	}
}
