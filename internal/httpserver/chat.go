package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"grablet/internal/router"
)

// maxVoiceUploadBytes caps voice note uploads at 16 MiB.
const maxVoiceUploadBytes = 16 << 20

type chatRequest struct {
	MerchantID string `json:"merchant_id"`
	Text       string `json:"text"`
}

type actionRequest struct {
	MerchantID string `json:"merchant_id"`
	Action     string `json:"action"`
	Language   string `json:"language"`
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Engine == nil {
		http.Error(w, "chat engine unavailable", http.StatusServiceUnavailable)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.MerchantID == "" {
		http.Error(w, "merchant_id is required", http.StatusBadRequest)
		return
	}

	turn, err := s.deps.Engine.HandleUtterance(r.Context(), req.MerchantID, "http", req.Text)
	if err != nil {
		s.logger.Error("chat turn failed", "merchant_id", req.MerchantID, "error", err)
		http.Error(w, "failed to handle message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleChatAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Engine == nil {
		http.Error(w, "chat engine unavailable", http.StatusServiceUnavailable)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.MerchantID == "" || req.Action == "" {
		http.Error(w, "merchant_id and action are required", http.StatusBadRequest)
		return
	}

	lang := router.Language(strings.ToLower(req.Language))
	turn, err := s.deps.Engine.HandleAction(r.Context(), req.MerchantID, "http", req.Action, lang)
	if err != nil {
		s.logger.Error("chat action failed", "merchant_id", req.MerchantID, "action", req.Action, "error", err)
		http.Error(w, "failed to handle action", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleChatVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Engine == nil || s.deps.Speech == nil {
		http.Error(w, "voice chat unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxVoiceUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	merchantID := r.FormValue("merchant_id")
	if merchantID == "" {
		http.Error(w, "merchant_id is required", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxVoiceUploadBytes))
	if err != nil {
		http.Error(w, "failed to read audio", http.StatusBadRequest)
		return
	}

	transcript, err := s.deps.Speech.Transcribe(r.Context(), audio, header.Header.Get("Content-Type"))
	if err != nil {
		s.logger.Error("transcription failed", "merchant_id", merchantID, "error", err)
		http.Error(w, "failed to transcribe audio", http.StatusBadGateway)
		return
	}

	turn, err := s.deps.Engine.HandleUtterance(r.Context(), merchantID, "voice", transcript)
	if err != nil {
		s.logger.Error("voice chat turn failed", "merchant_id", merchantID, "error", err)
		http.Error(w, "failed to handle message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transcript": transcript,
		"turn":       turn,
	})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Engine == nil {
		http.Error(w, "chat engine unavailable", http.StatusServiceUnavailable)
		return
	}

	merchantID := r.URL.Query().Get("merchant_id")
	if merchantID == "" {
		http.Error(w, "merchant_id is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.deps.Engine.History(r.Context(), merchantID, limit)
	if err != nil {
		s.logger.Error("history lookup failed", "merchant_id", merchantID, "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": records})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Speech == nil {
		http.Error(w, "speech service unavailable", http.StatusServiceUnavailable)
		return
	}

	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	lang := router.Language(strings.ToLower(req.Language))
	audio, provider, err := s.deps.Speech.Synthesize(r.Context(), req.Text, lang)
	if err != nil {
		s.logger.Error("synthesis failed", "language", lang, "error", err)
		http.Error(w, "failed to synthesize speech", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("X-Speech-Provider", provider)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
