package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway_SubmitAndStatus(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway()

	token, err := gw.Authenticate(ctx, testCreds)
	require.NoError(t, err)

	doc, err := gw.SubmitPayout(ctx, token, testBatch(), SubmitOptions{})
	require.NoError(t, err)
	id, ok := ExtractBatchID(doc)
	require.True(t, ok)
	assert.Equal(t, domain.BatchStatusPending, BatchStatus(doc))

	status, err := gw.GetStatus(ctx, token, id)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusPending, BatchStatus(status))
	items, ok := status["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestMockGateway_ReplaysRequestID(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway()
	token, err := gw.Authenticate(ctx, testCreds)
	require.NoError(t, err)

	first, err := gw.SubmitPayout(ctx, token, testBatch(), SubmitOptions{RequestID: "same"})
	require.NoError(t, err)
	second, err := gw.SubmitPayout(ctx, token, testBatch(), SubmitOptions{RequestID: "same"})
	require.NoError(t, err)

	firstID, _ := ExtractBatchID(first)
	secondID, _ := ExtractBatchID(second)
	assert.Equal(t, firstID, secondID)
	assert.Equal(t, 1, gw.Batches())

	_, err = gw.SubmitPayout(ctx, token, testBatch(), SubmitOptions{})
	var payoutErr *domain.PayoutError
	require.ErrorAs(t, err, &payoutErr, "duplicate sender_batch_id must be rejected")
	assert.Equal(t, 400, payoutErr.StatusCode)
}

func TestMockGateway_Errors(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway()

	_, err := gw.Authenticate(ctx, domain.Credentials{})
	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 401, authErr.StatusCode)

	_, err = gw.SubmitPayout(ctx, "unknown", testBatch(), SubmitOptions{})
	var payoutErr *domain.PayoutError
	require.ErrorAs(t, err, &payoutErr)

	token, err := gw.Authenticate(ctx, testCreds)
	require.NoError(t, err)
	_, err = gw.GetStatus(ctx, token, "NOPE")
	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.StatusCode)
}

func TestMockGateway_LatencyHonorsContext(t *testing.T) {
	gw := NewMockGateway()
	gw.Latency = time.Minute
	token, err := gw.Authenticate(context.Background(), testCreds)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = gw.SubmitPayout(ctx, token, testBatch(), SubmitOptions{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockGateway_OmitBatchID(t *testing.T) {
	gw := NewMockGateway()
	gw.OmitBatchID = true
	token, err := gw.Authenticate(context.Background(), testCreds)
	require.NoError(t, err)

	doc, err := gw.SubmitPayout(context.Background(), token, testBatch(), SubmitOptions{})
	require.NoError(t, err)
	_, ok := ExtractBatchID(doc)
	assert.False(t, ok)
}

func TestMockGateway_TokensExpireAndStayBounded(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway()
	now := time.Now()
	gw.now = func() time.Time { return now }
	gw.TokenTTL = time.Minute

	token, err := gw.Authenticate(ctx, testCreds)
	require.NoError(t, err)
	_, err = gw.SubmitPayout(ctx, token, testBatch(), SubmitOptions{})
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = gw.GetStatus(ctx, token, "ANY")
	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 401, statusErr.StatusCode)
	assert.Zero(t, gw.Tokens())

	for i := 0; i < maxMockTokens+50; i++ {
		_, err := gw.Authenticate(ctx, testCreds)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, gw.Tokens(), maxMockTokens)

	now = now.Add(2 * time.Minute)
	_, err = gw.Authenticate(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.Tokens())
}
