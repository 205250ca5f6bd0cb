package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"kakeibo/internal/line"
)

// maxWebhookBody caps the request body read for webhook deliveries.
const maxWebhookBody = 1 << 20 // 1 MiB

// handleWebhook receives LINE webhook deliveries. The platform retries unless
// it gets a 200, so event handling errors are logged and swallowed.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// GET is used for health checks and webhook URL verification.
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed reading webhook body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	signature := r.Header.Get("X-Line-Signature")
	if !line.ValidateSignature(s.channelSecret, body, signature) {
		slog.WarnContext(r.Context(), "Invalid webhook signature")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
		return
	}

	webhook, err := line.ParseWebhookBody(body)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed parsing webhook body", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := s.handler.HandleEvents(r.Context(), webhook.Events); err != nil {
		slog.ErrorContext(r.Context(), "Event handling error", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}
