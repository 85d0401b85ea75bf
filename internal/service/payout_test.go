package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const statusDocument = `{"batch_header":{"payout_batch_id":"BATCH-1","batch_status":"PROCESSING"},"items":[{"payout_item_id":"I1","transaction_status":"UNCLAIMED"},{"payout_item_id":"I2","transaction_status":"PENDING"}]}`

var validCreds = domain.CredentialContext{
	Fallback: domain.Credentials{ClientID: "client-id", ClientSecret: "client-secret"},
}

// fakePayPal serves the three endpoints the client uses and records what it saw.
type fakePayPal struct {
	mu          sync.Mutex
	tokenCalls  int
	submitted   []domain.PayoutBatch
	statusPaths []string
	createBody  string
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":32400}`))
	})
	mux.HandleFunc("/v1/payments/payouts", func(w http.ResponseWriter, r *http.Request) {
		var batch domain.PayoutBatch
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		f.mu.Lock()
		f.submitted = append(f.submitted, batch)
		body := f.createBody
		f.mu.Unlock()
		if body == "" {
			body = `{"batch_header":{"payout_batch_id":"BATCH-1","batch_status":"PENDING"}}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/v1/payments/payouts/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.statusPaths = append(f.statusPaths, r.URL.Path)
		f.mu.Unlock()
		if !strings.HasSuffix(r.URL.Path, "/BATCH-1") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"name":"INVALID_RESOURCE_ID"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(statusDocument))
	})
	return mux
}

func newTestService(t *testing.T, fake *fakePayPal) *PayoutService {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewPayoutService(gateway.NewPayPalClient(srv.URL), zap.NewNop())
}

func TestSubmitPayout_EndToEnd(t *testing.T) {
	fake := &fakePayPal{}
	svc := newTestService(t, fake)
	ctx := context.Background()

	result, err := svc.SubmitPayout(ctx, SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Email: "a@b.com", Amounts: "5.00,10.00"},
	})
	require.NoError(t, err)
	assert.Equal(t, "BATCH-1", result.BatchID)
	assert.False(t, result.Degraded())
	assert.Equal(t, 2, result.ItemCount)
	assert.Equal(t, "15.00", result.Total)
	assert.Equal(t, "USD", result.Currency)

	require.Len(t, fake.submitted, 1)
	batch := fake.submitted[0]
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "5.00", batch.Items[0].Amount.Value.String())
	assert.Equal(t, "10.00", batch.Items[1].Amount.Value.String())
	assert.Equal(t, "USD", batch.Items[0].Amount.Currency)
	assert.Equal(t, "web-001", batch.Items[0].SenderItemID)
	assert.Equal(t, "web-002", batch.Items[1].SenderItemID)
	assert.Equal(t, result.SenderBatchID, batch.Header.SenderBatchID)

	status, err := svc.GetPayoutStatus(ctx, validCreds, result.BatchID)
	require.NoError(t, err)
	got, err := json.Marshal(status)
	require.NoError(t, err)
	assert.JSONEq(t, statusDocument, string(got))

	assert.Equal(t, 2, fake.tokenCalls, "a fresh token per submission and per status check")
	assert.Equal(t, []string{"/v1/payments/payouts/BATCH-1"}, fake.statusPaths)
}

func TestSubmitPayout_DegradedWithoutBatchID(t *testing.T) {
	fake := &fakePayPal{createBody: `{"links":[{"href":"https://api-m.paypal.com/v1/other"}]}`}
	svc := newTestService(t, fake)

	result, err := svc.SubmitPayout(context.Background(), SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Email: "a@b.com", Amounts: "1"},
	})
	require.NoError(t, err)
	assert.True(t, result.Degraded())
	assert.Contains(t, result.Result, "links")
}

func TestSubmitPayout_UsesLinksFallback(t *testing.T) {
	fake := &fakePayPal{createBody: `{"links":[{"href":"https://api-m.paypal.com/v1/payments/payouts/LINKED"}]}`}
	svc := newTestService(t, fake)

	result, err := svc.SubmitPayout(context.Background(), SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Email: "a@b.com", Amounts: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "LINKED", result.BatchID)
	assert.Nil(t, result.Result)
}

func TestSubmitPayout_DefaultEmail(t *testing.T) {
	fake := &fakePayPal{}
	svc := newTestService(t, fake).WithDefaultEmail("ops@example.com")

	_, err := svc.SubmitPayout(context.Background(), SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Amounts: "3"},
	})
	require.NoError(t, err)
	require.Len(t, fake.submitted, 1)
	assert.Equal(t, "ops@example.com", fake.submitted[0].Items[0].Receiver)
}

func TestSubmitPayout_ValidationBeforeRemoteCalls(t *testing.T) {
	cases := []struct {
		name  string
		creds domain.CredentialContext
		input PayoutInput
		field string
	}{
		{"no credentials", domain.CredentialContext{}, PayoutInput{Email: "a@b.com", Amounts: "1"}, "credentials"},
		{"no email", validCreds, PayoutInput{Amounts: "1"}, "email"},
		{"bad amount", validCreds, PayoutInput{Email: "a@b.com", Amounts: "abc"}, "amounts"},
		{"no amounts", validCreds, PayoutInput{Email: "a@b.com", Amounts: "  "}, "amounts"},
		{"bad currency", validCreds, PayoutInput{Email: "a@b.com", Amounts: "1", Currency: "dollars"}, "currency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &countingGateway{}
			svc := NewPayoutService(gw, zap.NewNop())

			_, err := svc.SubmitPayout(context.Background(), SubmitPayoutRequest{Credentials: tc.creds, Input: tc.input})
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
			assert.Zero(t, gw.calls)
		})
	}
}

func TestSubmitPayout_PropagatesProviderErrors(t *testing.T) {
	gw := &countingGateway{authErr: domain.NewAuthError(401, "denied", nil)}
	svc := NewPayoutService(gw, zap.NewNop())

	_, err := svc.SubmitPayout(context.Background(), SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Email: "a@b.com", Amounts: "1"},
	})
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindAuth, kind)
	assert.Equal(t, 1, gw.calls)

	gw = &countingGateway{submitErr: domain.NewPayoutError(500, "boom", nil)}
	svc = NewPayoutService(gw, zap.NewNop())
	_, err = svc.SubmitPayout(context.Background(), SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Email: "a@b.com", Amounts: "1"},
		Sync:        true,
		RequestID:   "req-fixed",
	})
	kind, _ = domain.KindOf(err)
	assert.Equal(t, domain.KindPayout, kind)
	assert.Equal(t, gateway.SubmitOptions{Sync: true, RequestID: "req-fixed"}, gw.lastOpts)
}

func TestGetPayoutStatus_Errors(t *testing.T) {
	fake := &fakePayPal{}
	svc := newTestService(t, fake)

	_, err := svc.GetPayoutStatus(context.Background(), domain.CredentialContext{}, "BATCH-1")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)

	_, err = svc.GetPayoutStatus(context.Background(), validCreds, "")
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.GetPayoutStatus(context.Background(), validCreds, "UNKNOWN")
	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

type countingGateway struct {
	calls     int
	authErr   error
	submitErr error
	lastOpts  gateway.SubmitOptions
}

func (g *countingGateway) Authenticate(ctx context.Context, creds domain.Credentials) (string, error) {
	g.calls++
	if g.authErr != nil {
		return "", g.authErr
	}
	return "tok", nil
}

func (g *countingGateway) SubmitPayout(ctx context.Context, token string, batch domain.PayoutBatch, opts gateway.SubmitOptions) (gateway.Document, error) {
	g.calls++
	g.lastOpts = opts
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	return gateway.Document{"batch_header": map[string]any{"payout_batch_id": "X"}}, nil
}

func (g *countingGateway) GetStatus(ctx context.Context, token, batchID string) (gateway.Document, error) {
	g.calls++
	return gateway.Document{}, nil
}

func TestSubmitPayout_DefaultCurrency(t *testing.T) {
	fake := &fakePayPal{}
	svc := newTestService(t, fake).WithDefaultCurrency("eur")

	result, err := svc.SubmitPayout(context.Background(), SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Email: "a@b.com", Amounts: "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, "EUR", fake.submitted[0].Items[0].Amount.Currency)

	result, err = svc.SubmitPayout(context.Background(), SubmitPayoutRequest{
		Credentials: validCreds,
		Input:       PayoutInput{Email: "a@b.com", Amounts: "3", Currency: "gbp"},
	})
	require.NoError(t, err)
	assert.Equal(t, "GBP", result.Currency)
}
