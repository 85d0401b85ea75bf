package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ayo6706/mass-payout/internal/config"
	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/gateway"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		PayPalClientID:     "env-id",
		PayPalClientSecret: "env-secret",
		DefaultCurrency:    "USD",
	}
}

func TestRun_SubmitsAndPrintsStatus(t *testing.T) {
	gw := gateway.NewMockGateway()
	var out bytes.Buffer

	err := run(context.Background(), testConfig(), gw, zap.NewNop(),
		[]string{"--email", "a@b.com", "--amounts", "44.99,38.99", "--request-id", "req-cli-1"}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, `"item_count": 2`)
	assert.Contains(t, text, `"total": "83.98"`)
	assert.Contains(t, text, "Status for batch MOCK")
	assert.Contains(t, text, `"batch_status": "PENDING"`)
	assert.Equal(t, 1, gw.Batches())
}

func TestRun_SyncMode(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testConfig(), gateway.NewMockGateway(), zap.NewNop(),
		[]string{"--email", "a@b.com", "--amounts", "1", "--sync"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"batch_status": "SUCCESS"`)
}

func TestRun_Degraded(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.OmitBatchID = true
	var out bytes.Buffer

	err := run(context.Background(), testConfig(), gw, zap.NewNop(),
		[]string{"--email", "a@b.com", "--amounts", "1"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "no batch id returned")
	assert.NotContains(t, out.String(), "Status for batch")
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	gw := gateway.NewMockGateway()

	err := run(context.Background(), testConfig(), gw, zap.NewNop(), []string{"--email", "a@b.com", "--amounts", "x"}, &out)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "amounts", validationErr.Field)

	err = run(context.Background(), &config.Config{}, gw, zap.NewNop(), []string{"--email", "a@b.com", "--amounts", "1"}, &out)
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)

	err = run(context.Background(), testConfig(), gw, zap.NewNop(), []string{"--bogus"}, &out)
	assert.Error(t, err)

	out.Reset()
	err = run(context.Background(), testConfig(), gw, zap.NewNop(), []string{"--help"}, &out)
	assert.ErrorIs(t, err, pflag.ErrHelp)
	assert.True(t, strings.Contains(out.String(), "--amounts"))
	assert.Zero(t, gw.Batches())
}

func TestRun_FlagCredentialsOverrideConfig(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &config.Config{}, gateway.NewMockGateway(), zap.NewNop(),
		[]string{"--email", "a@b.com", "--amounts", "1", "--client-id", "id", "--client-secret", "secret"}, &out)
	assert.NoError(t, err)
}
