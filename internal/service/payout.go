package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/gateway"
	"github.com/ayo6706/mass-payout/internal/observability"
	"go.uber.org/zap"
)

// PayoutService composes the request builder and the provider client. Each call
// authenticates with a fresh token and makes its remote calls sequentially.
type PayoutService struct {
	gateway         gateway.Gateway
	logger          *zap.Logger
	audit           *AuditService
	defaultEmail    string
	defaultCurrency string
}

func NewPayoutService(gw gateway.Gateway, logger *zap.Logger) *PayoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayoutService{
		gateway: gw,
		logger:  logger,
		audit:   NewAuditService(logger),
	}
}

// WithDefaultEmail sets the receiver used when a request leaves the email blank.
func (s *PayoutService) WithDefaultEmail(email string) *PayoutService {
	s.defaultEmail = strings.TrimSpace(email)
	return s
}

// WithDefaultCurrency sets the currency used when a request leaves it blank.
func (s *PayoutService) WithDefaultCurrency(currency string) *PayoutService {
	s.defaultCurrency = strings.ToUpper(strings.TrimSpace(currency))
	return s
}

// DefaultEmail returns the configured fallback receiver.
func (s *PayoutService) DefaultEmail() string {
	return s.defaultEmail
}

// SubmitPayoutRequest holds everything needed to create one payout batch.
type SubmitPayoutRequest struct {
	Credentials domain.CredentialContext
	Input       PayoutInput
	// Sync waits for the provider to finish instead of queueing the batch.
	Sync bool
	// RequestID is forwarded as PayPal-Request-Id; generated when empty.
	RequestID string
	// Actor identifies the caller in the audit trail.
	Actor string
}

// SubmitPayoutResult is the outcome of a submission. BatchID is empty when the
// provider accepted the batch without returning a recognizable id; Result then
// carries the raw response for display.
type SubmitPayoutResult struct {
	BatchID       string           `json:"batch_id,omitempty"`
	BatchStatus   string           `json:"batch_status,omitempty"`
	SenderBatchID string           `json:"sender_batch_id"`
	ItemCount     int              `json:"item_count"`
	Total         string           `json:"total"`
	Currency      string           `json:"currency"`
	Result        gateway.Document `json:"result,omitempty"`
}

// Degraded reports whether the batch id could not be recovered.
func (r *SubmitPayoutResult) Degraded() bool {
	return r.BatchID == ""
}

// SubmitPayout validates input, resolves credentials, builds the batch and submits it.
// Validation failures return before any remote call.
func (s *PayoutService) SubmitPayout(ctx context.Context, req SubmitPayoutRequest) (*SubmitPayoutResult, error) {
	creds, err := req.Credentials.Resolve()
	if err != nil {
		observability.IncrementValidationFailure("credentials")
		return nil, err
	}

	raw := req.Input
	if strings.TrimSpace(raw.Currency) == "" {
		raw.Currency = s.defaultCurrency
	}
	input := raw.Normalize()
	if input.Email == "" {
		input.Email = s.defaultEmail
	}
	if err := input.Validate(); err != nil {
		s.countValidation(err)
		return nil, err
	}
	amounts, err := ParseAmounts(input.Amounts)
	if err != nil {
		s.countValidation(err)
		return nil, err
	}

	batch := BuildPayoutBatch(input.Email, amounts, input.Currency, input.Subject, input.Message)
	log := s.logger.With(
		zap.String("sender_batch_id", batch.Header.SenderBatchID),
		zap.Int("items", len(batch.Items)),
		zap.String("currency", input.Currency),
	)

	token, err := s.gateway.Authenticate(ctx, creds)
	if err != nil {
		log.Warn("payout authentication failed", zap.Error(err))
		return nil, err
	}

	doc, err := s.gateway.SubmitPayout(ctx, token, batch, gateway.SubmitOptions{
		Sync:      req.Sync,
		RequestID: req.RequestID,
	})
	if err != nil {
		log.Warn("payout submission failed", zap.Error(err))
		return nil, err
	}
	observability.AddPayoutItems(input.Currency, len(batch.Items))

	result := &SubmitPayoutResult{
		BatchStatus:   gateway.BatchStatus(doc),
		SenderBatchID: batch.Header.SenderBatchID,
		ItemCount:     len(batch.Items),
		Total:         domain.Sum(amounts).StringFixed(2),
		Currency:      input.Currency,
	}
	if id, ok := gateway.ExtractBatchID(doc); ok {
		result.BatchID = id
	} else {
		result.Result = doc
		observability.IncrementDegradedPayout()
		log.Warn("payout created but no batch id returned")
	}

	s.audit.Write("payout_submitted", "payout_batch", batch.Header.SenderBatchID, req.Actor,
		zap.String("payout_batch_id", result.BatchID),
		zap.String("total", result.Total),
		zap.String("currency", result.Currency),
		zap.Bool("sync", req.Sync),
	)
	return result, nil
}

// GetPayoutStatus fetches the provider's status document for batchID unchanged.
func (s *PayoutService) GetPayoutStatus(ctx context.Context, creds domain.CredentialContext, batchID string) (gateway.Document, error) {
	resolved, err := creds.Resolve()
	if err != nil {
		return nil, err
	}
	if batchID == "" {
		return nil, domain.NewValidationError("batch_id", "batch id is required")
	}

	token, err := s.gateway.Authenticate(ctx, resolved)
	if err != nil {
		s.logger.Warn("status authentication failed", zap.String("payout_batch_id", batchID), zap.Error(err))
		return nil, err
	}
	doc, err := s.gateway.GetStatus(ctx, token, batchID)
	if err != nil {
		s.logger.Warn("payout status fetch failed", zap.String("payout_batch_id", batchID), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func (s *PayoutService) countValidation(err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		observability.IncrementValidationFailure(validationErr.Field)
	}
}
