package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cinematicvideographers/nora/internal/advisor"
	"github.com/cinematicvideographers/nora/internal/logging"
)

type chatAPIRequest struct {
	Message string `json:"message"`
}

type chatAPIResponse struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var apiReq chatAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_json")
		return
	}

	message := strings.TrimSpace(apiReq.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message")
		return
	}

	reply, err := s.advisor.Chat(r.Context(), message)
	if err != nil {
		if errors.Is(err, advisor.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "chat_unavailable")
			return
		}
		logging.Sugar.Errorw("chat completion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chat_failed")
		return
	}

	writeJSON(w, http.StatusOK, chatAPIResponse{OK: true, Reply: reply})
}
