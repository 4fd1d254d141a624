// Package server exposes the ops HTTP surface: a health endpoint and a
// JSON command endpoint for local testing without a chat transport.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/health"
	"github.com/slh-community/slh-bot/internal/middleware"
)

// CommandRequest is the JSON body accepted by POST /v1/command.
type CommandRequest struct {
	ChatID    int64  `json:"chat_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Text      string `json:"text"`
}

// CommandResponse carries the reply text a chat transport would send.
type CommandResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler builds the ops mux wrapped with request logging.
func NewHandler(router *command.Router, checker *health.Checker, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", checker.Handler())
	mux.Handle("POST /v1/command", commandHandler(router))

	return middleware.HTTPLogging(log)(mux)
}

func commandHandler(router *command.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		if req.ChatID == 0 || req.Text == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "chat_id and text are required"})
			return
		}

		identity := domain.Identity{
			ChatID:    req.ChatID,
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		}

		reply, err := router.Route(r.Context(), identity, req.Text)
		if err != nil && reply == "" {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "command failed"})
			return
		}

		writeJSON(w, http.StatusOK, CommandResponse{Reply: reply})
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
