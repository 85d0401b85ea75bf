package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ayo6706/mass-payout/internal/session"
)

// HealthHandler exposes Kubernetes-style liveness and readiness endpoints.
type HealthHandler struct {
	sessions session.Store
}

func NewHealthHandler(sessions session.Store) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// Live always reports OK – if the process is up, it's live.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready checks the session store. PayPal itself is not probed.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if h.sessions != nil {
		if err := h.sessions.Ping(ctx); err != nil {
			RespondError(w, r, http.StatusServiceUnavailable, "health/session-store-unavailable", "session store unavailable")
			return
		}
	}

	RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
