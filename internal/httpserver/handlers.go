package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hellausefulsoftware/codescribe/internal/logging"
	"github.com/hellausefulsoftware/codescribe/internal/webhook"
)

const maxBodyBytes = 1 << 20

type handler struct {
	intake Intake
	tasks  TaskCounter
	now    func() time.Time
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"in_flight": h.tasks.InFlight(),
	})
}

func (h *handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var ev webhook.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	res, err := h.intake.Handle(ev)
	if err != nil {
		if errors.Is(err, webhook.ErrMalformedEvent) {
			logging.Warn("Dropping malformed webhook", "error", err)
		} else {
			logging.Error("Webhook intake failed", "error", err)
		}
	}

	switch res.Outcome {
	case webhook.Handshake:
		writeJSON(w, http.StatusOK, map[string]string{"challenge": res.Challenge})
	case webhook.Accepted:
		writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored", "reason": res.Reason})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
