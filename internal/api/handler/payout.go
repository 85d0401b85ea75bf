package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ayo6706/mass-payout/internal/api/middleware"
	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/gateway"
	"github.com/ayo6706/mass-payout/internal/service"
	"github.com/ayo6706/mass-payout/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxPayoutBodyBytes = 1 << 20

// PayoutHandler handles HTTP requests for payouts.
type PayoutHandler struct {
	payoutSvc *service.PayoutService
	sessions  session.Store
	fallback  domain.Credentials
	logger    *zap.Logger
}

// NewPayoutHandler creates a new PayoutHandler. fallback is used when the
// caller's session holds no credentials.
func NewPayoutHandler(payoutSvc *service.PayoutService, sessions session.Store, fallback domain.Credentials, logger *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		payoutSvc: payoutSvc,
		sessions:  sessions,
		fallback:  fallback,
		logger:    logger,
	}
}

// CreatePayoutRequest is the body of POST /v1/payouts, as JSON or as a form.
type CreatePayoutRequest struct {
	Email        string     `json:"email"`
	Amounts      AmountList `json:"amounts"`
	Currency     string     `json:"currency"`
	Subject      string     `json:"subject"`
	Message      string     `json:"message"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	Sync         bool       `json:"sync"`
}

// AmountList accepts the raw amounts text or a JSON array of strings and numbers.
type AmountList string

func (a *AmountList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		tokens := make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				tokens = append(tokens, s)
				continue
			}
			tokens = append(tokens, string(bytes.TrimSpace(item)))
		}
		*a = AmountList(strings.Join(tokens, ","))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("amounts must be a string or an array: %w", err)
	}
	*a = AmountList(s)
	return nil
}

// CreatePayoutResponse is returned once the provider accepted the batch.
type CreatePayoutResponse struct {
	BatchID       *string          `json:"batch_id"`
	Status        string           `json:"status,omitempty"`
	SenderBatchID string           `json:"sender_batch_id"`
	ItemCount     int              `json:"item_count"`
	Total         string           `json:"total"`
	Currency      string           `json:"currency"`
	Message       string           `json:"message,omitempty"`
	Warning       string           `json:"warning,omitempty"`
	Result        gateway.Document `json:"result,omitempty"`
}

// CreatePayout handles POST /v1/payouts
// It submits one batch to PayPal and returns 202 Accepted (201 Created in sync mode).
func (h *PayoutHandler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreatePayout(w, r)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	sessionID := middleware.SessionIDFromContext(r.Context())
	formCreds := domain.Credentials{
		ClientID:     strings.TrimSpace(req.ClientID),
		ClientSecret: strings.TrimSpace(req.ClientSecret),
	}
	if formCreds.Complete() {
		if err := h.sessions.Put(r.Context(), sessionID, formCreds); err != nil {
			h.logger.Warn("cache session credentials failed", zap.Error(err))
		}
	}

	creds := domain.CredentialContext{Session: formCreds, Fallback: h.fallback}
	if !formCreds.Complete() {
		cached, ok, err := h.sessions.Get(r.Context(), sessionID)
		if err != nil {
			h.logger.Warn("read session credentials failed", zap.Error(err))
		} else if ok {
			creds.Session = cached
		}
	}

	result, err := h.payoutSvc.SubmitPayout(r.Context(), service.SubmitPayoutRequest{
		Credentials: creds,
		Input: service.PayoutInput{
			Email:    req.Email,
			Amounts:  string(req.Amounts),
			Currency: req.Currency,
			Subject:  req.Subject,
			Message:  req.Message,
		},
		Sync:      req.Sync,
		RequestID: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		Actor:     sessionID,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	resp := CreatePayoutResponse{
		Status:        result.BatchStatus,
		SenderBatchID: result.SenderBatchID,
		ItemCount:     result.ItemCount,
		Total:         result.Total,
		Currency:      result.Currency,
	}
	if result.Degraded() {
		resp.Warning = "Payout created but no batch id returned"
		resp.Result = result.Result
		RespondJSON(w, http.StatusAccepted, resp)
		return
	}

	resp.BatchID = &result.BatchID
	resp.Message = "Payout submitted. Batch ID: " + result.BatchID
	w.Header().Set("Location", "/v1/payouts/"+url.PathEscape(result.BatchID))
	status := http.StatusAccepted
	if req.Sync {
		status = http.StatusCreated
	}
	RespondJSON(w, status, resp)
}

// GetPayout handles GET /v1/payouts/{batch_id} and relays PayPal's status document.
func (h *PayoutHandler) GetPayout(w http.ResponseWriter, r *http.Request) {
	batchID := strings.TrimSpace(chi.URLParam(r, "batch_id"))
	if batchID == "" {
		RespondError(w, r, http.StatusBadRequest, "request/validation-failed", "batch id is required")
		return
	}

	creds := domain.CredentialContext{Fallback: h.fallback}
	cached, ok, err := h.sessions.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("read session credentials failed", zap.Error(err))
	} else if ok {
		creds.Session = cached
	}

	doc, err := h.payoutSvc.GetPayoutStatus(r.Context(), creds, batchID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	RespondJSON(w, http.StatusOK, doc)
}

func decodeCreatePayout(w http.ResponseWriter, r *http.Request) (CreatePayoutRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayoutBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxPayoutBodyBytes); err != nil {
				return CreatePayoutRequest{}, err
			}
		} else if err := r.ParseForm(); err != nil {
			return CreatePayoutRequest{}, err
		}
		req := CreatePayoutRequest{
			Email:        r.PostFormValue("email"),
			Amounts:      AmountList(r.PostFormValue("amounts")),
			Currency:     r.PostFormValue("currency"),
			Subject:      r.PostFormValue("subject"),
			Message:      r.PostFormValue("message"),
			ClientID:     r.PostFormValue("client_id"),
			ClientSecret: r.PostFormValue("client_secret"),
		}
		if raw := strings.TrimSpace(r.PostFormValue("sync")); raw != "" {
			sync, err := strconv.ParseBool(raw)
			if err != nil {
				return CreatePayoutRequest{}, errors.New("sync must be a boolean")
			}
			req.Sync = sync
		}
		return req, nil
	default:
		var req CreatePayoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return CreatePayoutRequest{}, err
		}
		return req, nil
	}
}
