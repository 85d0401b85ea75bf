package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayo6706/mass-payout/internal/api/problem"
	"github.com/ayo6706/mass-payout/internal/domain"
	"go.uber.org/zap"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// respondServiceError maps a payout service error onto a problem response.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if errors.Is(err, domain.ErrMissingCredentials) {
		RespondError(w, r, http.StatusBadRequest, "session/missing-credentials",
			"Provide PayPal Client ID/Secret in the form or set environment variables.")
		return
	}

	kind, ok := domain.KindOf(err)
	if !ok {
		logger.Error("unexpected payout error", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "unexpected server error")
		return
	}

	switch kind {
	case domain.KindValidation:
		var validationErr *domain.ValidationError
		field := ""
		if errors.As(err, &validationErr) {
			field = validationErr.Field
		}
		problem.WriteDetails(w, r, problem.Details{
			Type:   problem.Type("request/validation-failed"),
			Status: http.StatusBadRequest,
			Detail: err.Error(),
			Field:  field,
		})
	case domain.KindAuth:
		RespondError(w, r, http.StatusBadGateway, "provider/auth-failed", err.Error())
	case domain.KindPayout:
		RespondError(w, r, http.StatusBadGateway, "provider/payout-failed", err.Error())
	case domain.KindStatus:
		status := http.StatusBadGateway
		if domain.RemoteStatus(err) == http.StatusNotFound {
			status = http.StatusNotFound
		}
		RespondError(w, r, status, "provider/status-failed", err.Error())
	}
}
