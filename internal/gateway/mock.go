package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/google/uuid"
)

// MockGateway simulates the PayPal payouts API in memory. It backs
// PAYPAL_ENVIRONMENT=mock and the HTTP tests.
type MockGateway struct {
	// FailureRate is the probability (0.0 to 1.0) that a submission fails with HTTP 503.
	FailureRate float64
	// Latency is slept (or cut short by ctx) before every submission.
	Latency time.Duration
	// OmitBatchID makes submissions come back without a batch header or links.
	OmitBatchID bool
	// TokenTTL is how long an issued token is accepted.
	TokenTTL time.Duration

	mu       sync.Mutex
	now      func() time.Time
	tokens   map[string]time.Time
	batches  map[string]mockBatch
	requests map[string]string
}

type mockBatch struct {
	batch  domain.PayoutBatch
	status string
	sync   bool
}

const (
	defaultMockTokenTTL = 15 * time.Minute
	maxMockTokens       = 1024
)

// NewMockGateway creates a MockGateway that never fails and answers immediately.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		TokenTTL: defaultMockTokenTTL,
		now:      time.Now,
		tokens:   make(map[string]time.Time),
		batches:  make(map[string]mockBatch),
		requests: make(map[string]string),
	}
}

// Authenticate issues a token for any complete credential pair. Expired tokens are
// dropped here, and at most maxMockTokens stay live.
func (g *MockGateway) Authenticate(ctx context.Context, creds domain.Credentials) (string, error) {
	if !creds.Complete() {
		return "", domain.NewAuthError(401, `{"error":"invalid_client","error_description":"Client Authentication failed"}`, nil)
	}
	token := "MOCK-" + strings.ReplaceAll(uuid.NewString(), "-", "")

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneTokens()
	ttl := g.TokenTTL
	if ttl <= 0 {
		ttl = defaultMockTokenTTL
	}
	g.tokens[token] = g.now().Add(ttl)
	return token, nil
}

// Tokens reports how many issued tokens are still held.
func (g *MockGateway) Tokens() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tokens)
}

// pruneTokens drops expired tokens and, when still full, the one closest to expiry.
// Callers hold g.mu.
func (g *MockGateway) pruneTokens() {
	now := g.now()
	for token, expiresAt := range g.tokens {
		if !now.Before(expiresAt) {
			delete(g.tokens, token)
		}
	}
	for len(g.tokens) >= maxMockTokens {
		var oldest string
		var oldestAt time.Time
		for token, expiresAt := range g.tokens {
			if oldest == "" || expiresAt.Before(oldestAt) {
				oldest, oldestAt = token, expiresAt
			}
		}
		delete(g.tokens, oldest)
	}
}

// validToken reports whether token was issued and has not expired. Callers hold g.mu.
func (g *MockGateway) validToken(token string) bool {
	expiresAt, ok := g.tokens[token]
	if !ok {
		return false
	}
	if !g.now().Before(expiresAt) {
		delete(g.tokens, token)
		return false
	}
	return true
}

// SubmitPayout stores the batch and answers with a create-payout document.
// Replaying a request id returns the batch created by the first call.
func (g *MockGateway) SubmitPayout(ctx context.Context, token string, batch domain.PayoutBatch, opts SubmitOptions) (Document, error) {
	if len(batch.Items) == 0 {
		return nil, domain.NewValidationError("items", "payout batch must contain at least one item")
	}
	if err := g.sleep(ctx); err != nil {
		return nil, domain.NewPayoutError(0, "", fmt.Errorf("gateway call canceled: %w", err))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.validToken(token) {
		return nil, domain.NewPayoutError(401, `{"name":"AUTHENTICATION_FAILURE"}`, nil)
	}
	if g.FailureRate > 0 && rand.Float64() < g.FailureRate {
		return nil, domain.NewPayoutError(503, `{"name":"SERVICE_UNAVAILABLE"}`, nil)
	}
	requestID := opts.RequestID
	if requestID == "" {
		requestID = NewRequestID()
	}
	if id, ok := g.requests[requestID]; ok {
		return g.createdDocument(id, g.batches[id]), nil
	}
	for _, existing := range g.batches {
		if existing.batch.Header.SenderBatchID == batch.Header.SenderBatchID {
			return nil, domain.NewPayoutError(400, `{"name":"USER_BUSINESS_ERROR","message":"Batch with given sender_batch_id already exists"}`, nil)
		}
	}

	id := mockBatchID()
	status := domain.BatchStatusPending
	if opts.Sync {
		status = domain.BatchStatusSuccess
	}
	entry := mockBatch{batch: batch, status: status, sync: opts.Sync}
	g.batches[id] = entry
	g.requests[requestID] = id
	return g.createdDocument(id, entry), nil
}

// GetStatus returns the stored batch with per-item states.
func (g *MockGateway) GetStatus(ctx context.Context, token, batchID string) (Document, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, domain.NewValidationError("batch_id", "batch id is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.validToken(token) {
		return nil, domain.NewStatusError(401, `{"name":"AUTHENTICATION_FAILURE"}`, nil)
	}
	entry, ok := g.batches[batchID]
	if !ok {
		return nil, domain.NewStatusError(404, `{"name":"INVALID_RESOURCE_ID","message":"Requested resource ID was not found."}`, nil)
	}

	items := make([]map[string]any, 0, len(entry.batch.Items))
	itemStatus := domain.ItemStatusUnclaimed
	if entry.status == domain.BatchStatusSuccess {
		itemStatus = domain.ItemStatusSuccess
	}
	for i, item := range entry.batch.Items {
		items = append(items, map[string]any{
			"payout_item_id":     fmt.Sprintf("%s-%03d", batchID, i+1),
			"payout_batch_id":    batchID,
			"transaction_status": itemStatus,
			"payout_item":        item,
		})
	}

	return toDocument(map[string]any{
		"batch_header": map[string]any{
			"payout_batch_id":     batchID,
			"batch_status":        entry.status,
			"sender_batch_header": entry.batch.Header,
			"amount": map[string]any{
				"value":    domain.Sum(entry.batch.Amounts()).StringFixed(2),
				"currency": entry.batch.Currency(),
			},
		},
		"items": items,
	}), nil
}

// Batches reports how many batches were accepted.
func (g *MockGateway) Batches() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.batches)
}

func (g *MockGateway) createdDocument(id string, entry mockBatch) Document {
	if g.OmitBatchID {
		return Document{"note": "accepted"}
	}
	return toDocument(map[string]any{
		"batch_header": map[string]any{
			"payout_batch_id":     id,
			"batch_status":        entry.status,
			"sender_batch_header": entry.batch.Header,
		},
		"links": []map[string]any{{
			"href":   "https://api-m.sandbox.paypal.com" + payoutsPath + "/" + id,
			"rel":    "self",
			"method": "GET",
		}},
	})
}

func (g *MockGateway) sleep(ctx context.Context) error {
	if g.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(g.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// toDocument round-trips through JSON so mock answers have the same shape as decoded ones.
func toDocument(v any) Document {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	doc, err := DecodeDocument(b)
	if err != nil {
		panic(err)
	}
	return doc
}

const mockIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func mockBatchID() string {
	raw := uuid.New()
	var b strings.Builder
	b.WriteString("MOCK")
	for _, c := range raw[:9] {
		b.WriteByte(mockIDAlphabet[int(c)%len(mockIDAlphabet)])
	}
	return b.String()
}
