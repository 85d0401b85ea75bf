package gateway

import (
	"context"
	"strings"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/google/uuid"
)

// RequestIDHeader is the per-call idempotency header understood by PayPal.
const RequestIDHeader = "PayPal-Request-Id"

// Gateway represents the external payout provider.
type Gateway interface {
	// Authenticate exchanges a client id / secret pair for a bearer token.
	Authenticate(ctx context.Context, creds domain.Credentials) (string, error)

	// SubmitPayout creates a payout batch and returns the provider's raw response.
	SubmitPayout(ctx context.Context, token string, batch domain.PayoutBatch, opts SubmitOptions) (Document, error)

	// GetStatus fetches the current state of a batch by its provider id.
	GetStatus(ctx context.Context, token, batchID string) (Document, error)
}

// SubmitOptions tunes a single SubmitPayout call. The zero value asks for
// asynchronous processing with a freshly generated request id.
type SubmitOptions struct {
	// Sync blocks until the provider finishes processing (sync_mode=true)
	// instead of sending Prefer: respond-async.
	Sync bool
	// RequestID overrides the generated PayPal-Request-Id.
	RequestID string
}

// NewRequestID returns a fresh value for the PayPal-Request-Id header.
func NewRequestID() string {
	return "req-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
