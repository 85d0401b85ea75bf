package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/observability"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	LiveBaseURL    = "https://api-m.paypal.com"
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"

	// DefaultTimeout bounds every remote call; net/http has no limit of its own.
	DefaultTimeout = 30 * time.Second

	tokenPath   = "/v1/oauth2/token"
	payoutsPath = "/v1/payments/payouts"

	maxResponseBytes = 4 << 20
)

// PayPalClient talks to the PayPal REST payouts API. Every method is a single
// one-shot HTTP call: no retries, no token reuse.
type PayPalClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPayPalClient creates a client rooted at baseURL (LiveBaseURL, SandboxBaseURL or a test server).
func NewPayPalClient(baseURL string) *PayPalClient {
	return &PayPalClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
}

// WithTimeout sets the per-call timeout.
func (c *PayPalClient) WithTimeout(timeout time.Duration) *PayPalClient {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *PayPalClient) WithHTTPClient(client *http.Client) *PayPalClient {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// WithLogger sets the logger used for per-call diagnostics.
func (c *PayPalClient) WithLogger(logger *zap.Logger) *PayPalClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *PayPalClient) BaseURL() string {
	return c.baseURL
}

// Authenticate fetches a new access token with the client_credentials grant.
func (c *PayPalClient) Authenticate(ctx context.Context, creds domain.Credentials) (string, error) {
	if !creds.Complete() {
		return "", domain.NewAuthError(0, "", errors.New("client id and secret are required"))
	}

	conf := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenHTTPClient(creds))

	start := time.Now()
	tok, err := conf.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			status := retrieveErr.Response.StatusCode
			c.observe("authenticate", httpOutcome(status), start)
			c.logger.Warn("paypal token request rejected", zap.Int("status", status))
			return "", domain.NewAuthError(status, string(retrieveErr.Body), err)
		}
		c.observe("authenticate", "transport_error", start)
		c.logger.Warn("paypal token request failed", zap.Error(err))
		return "", domain.NewAuthError(0, "", err)
	}
	if tok.AccessToken == "" {
		c.observe("authenticate", "missing_token", start)
		return "", domain.NewAuthError(0, "", errors.New("no access_token in PayPal OAuth response"))
	}

	c.observe("authenticate", "ok", start)
	return tok.AccessToken, nil
}

// SubmitPayout posts batch to the payouts endpoint.
func (c *PayPalClient) SubmitPayout(ctx context.Context, token string, batch domain.PayoutBatch, opts SubmitOptions) (Document, error) {
	if len(batch.Items) == 0 {
		return nil, domain.NewValidationError("items", "payout batch must contain at least one item")
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, domain.NewPayoutError(0, "", fmt.Errorf("encode payout batch: %w", err))
	}

	endpoint := c.baseURL + payoutsPath
	if opts.Sync {
		endpoint += "?sync_mode=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewPayoutError(0, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if !opts.Sync {
		req.Header.Set("Prefer", "respond-async")
	}
	requestID := opts.RequestID
	if requestID == "" {
		requestID = NewRequestID()
	}
	req.Header.Set(RequestIDHeader, requestID)

	status, respBody, err := c.do(req, "submit_payout")
	if err != nil {
		return nil, domain.NewPayoutError(0, "", err)
	}
	if !isSuccess(status) {
		return nil, domain.NewPayoutError(status, string(respBody), nil)
	}
	if !opts.Sync && status != http.StatusAccepted {
		c.logger.Info("paypal accepted async payout with unexpected status", zap.Int("status", status))
	}

	doc, err := DecodeDocument(respBody)
	if err != nil {
		return nil, domain.NewPayoutError(status, string(respBody), err)
	}
	c.logger.Info("paypal payout submitted",
		zap.String("sender_batch_id", batch.Header.SenderBatchID),
		zap.String("request_id", requestID),
		zap.Int("items", len(batch.Items)),
		zap.Int("status", status),
	)
	return doc, nil
}

// GetStatus fetches a payout batch by its provider id.
func (c *PayPalClient) GetStatus(ctx context.Context, token, batchID string) (Document, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, domain.NewValidationError("batch_id", "batch id is required")
	}

	endpoint := c.baseURL + payoutsPath + "/" + url.PathEscape(batchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewStatusError(0, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	status, respBody, err := c.do(req, "get_status")
	if err != nil {
		return nil, domain.NewStatusError(0, "", err)
	}
	if !isSuccess(status) {
		return nil, domain.NewStatusError(status, string(respBody), nil)
	}

	doc, err := DecodeDocument(respBody)
	if err != nil {
		return nil, domain.NewStatusError(status, string(respBody), err)
	}
	return doc, nil
}

func (c *PayPalClient) do(req *http.Request, operation string) (int, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, "transport_error", start)
		c.logger.Warn("paypal request failed", zap.String("operation", operation), zap.Error(err))
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(operation, "transport_error", start)
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	c.observe(operation, httpOutcome(resp.StatusCode), start)
	c.logger.Debug("paypal request completed",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func (c *PayPalClient) observe(operation, outcome string, start time.Time) {
	observability.ObserveProviderCall(operation, outcome, time.Since(start))
}

// tokenHTTPClient shares the configured transport and timeout but asks for JSON,
// which the oauth2 package does not do on its own. It also sends the raw id and
// secret as Basic auth: oauth2 form-escapes both first, which PayPal does not expect.
func (c *PayPalClient) tokenHTTPClient(creds domain.Credentials) *http.Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &headerTransport{
			base: base,
			header: http.Header{
				"Accept":          {"application/json"},
				"Accept-Language": {"en_US"},
			},
			creds: creds,
		},
	}
}

type headerTransport struct {
	base   http.RoundTripper
	header http.Header
	creds  domain.Credentials
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.header {
		clone.Header[k] = v
	}
	if t.creds.Complete() {
		clone.SetBasicAuth(t.creds.ClientID, t.creds.ClientSecret)
	}
	return t.base.RoundTrip(clone)
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

func httpOutcome(status int) string {
	if isSuccess(status) {
		return "ok"
	}
	return "http_" + strconv.Itoa(status)
}
