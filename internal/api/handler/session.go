package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayo6706/mass-payout/internal/api/middleware"
	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/session"
	"go.uber.org/zap"
)

// SessionHandler manages the credential pair cached for the caller's session.
type SessionHandler struct {
	sessions        session.Store
	defaultEmail    string
	defaultCurrency string
	logger          *zap.Logger
}

func NewSessionHandler(sessions session.Store, defaultEmail, defaultCurrency string, logger *zap.Logger) *SessionHandler {
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &SessionHandler{
		sessions:        sessions,
		defaultEmail:    defaultEmail,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// SessionResponse is what a payout form needs to render.
type SessionResponse struct {
	HasSessionCredentials bool   `json:"has_session_credentials"`
	DefaultEmail          string `json:"default_email"`
	DefaultCurrency       string `json:"default_currency"`
	DefaultSubject        string `json:"default_subject"`
	DefaultMessage        string `json:"default_message"`
}

// CredentialsRequest is the body of PUT /v1/session/credentials.
type CredentialsRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Get handles GET /v1/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, ok, err := h.sessions.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("read session failed", zap.Error(err))
		RespondError(w, r, http.StatusServiceUnavailable, "session/unavailable", "session store unavailable")
		return
	}
	RespondJSON(w, http.StatusOK, SessionResponse{
		HasSessionCredentials: ok,
		DefaultEmail:          h.defaultEmail,
		DefaultCurrency:       h.defaultCurrency,
		DefaultSubject:        domain.DefaultEmailSubject,
		DefaultMessage:        domain.DefaultEmailMessage,
	})
}

// PutCredentials handles PUT /v1/session/credentials.
func (h *SessionHandler) PutCredentials(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	creds := domain.Credentials{
		ClientID:     strings.TrimSpace(req.ClientID),
		ClientSecret: strings.TrimSpace(req.ClientSecret),
	}
	if !creds.Complete() {
		RespondError(w, r, http.StatusBadRequest, "request/validation-failed", "client_id and client_secret are both required")
		return
	}

	if err := h.sessions.Put(r.Context(), middleware.SessionIDFromContext(r.Context()), creds); err != nil {
		h.logger.Error("store session credentials failed", zap.Error(err))
		RespondError(w, r, http.StatusServiceUnavailable, "session/unavailable", "session store unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCredentials handles DELETE /v1/session/credentials.
func (h *SessionHandler) DeleteCredentials(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		h.logger.Error("delete session credentials failed", zap.Error(err))
		RespondError(w, r, http.StatusServiceUnavailable, "session/unavailable", "session store unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
