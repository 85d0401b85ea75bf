package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/gateway"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvironmentLive    = "live"
	EnvironmentSandbox = "sandbox"
	EnvironmentMock    = "mock"

	minSessionSecretLen = 32
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort           string
	PayPalClientID     string
	PayPalClientSecret string
	PayPalEnvironment  string
	PayPalBaseURL      string
	DefaultPayoutEmail string
	DefaultCurrency    string
	ProviderTimeout    time.Duration
	SessionSecret      string
	SessionTTL         time.Duration
	RedisURL           string
	LogLevel           string
}

// Load reads environment variables using viper and returns a typed config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "PAYOUT_PORT")
	bindEnv(v, "paypal_client_id", "PAYPAL_CLIENT_ID", "PAYOUT_PAYPAL_CLIENT_ID")
	bindEnv(v, "paypal_client_secret", "PAYPAL_CLIENT_SECRET", "PAYOUT_PAYPAL_CLIENT_SECRET")
	bindEnv(v, "paypal_environment", "PAYPAL_ENVIRONMENT", "PAYOUT_PAYPAL_ENVIRONMENT")
	bindEnv(v, "paypal_base_url", "PAYPAL_BASE_URL", "PAYOUT_PAYPAL_BASE_URL")
	bindEnv(v, "default_payout_email", "DEFAULT_PAYOUT_EMAIL", "PAYOUT_DEFAULT_EMAIL")
	bindEnv(v, "default_currency", "DEFAULT_CURRENCY", "PAYOUT_DEFAULT_CURRENCY")
	bindEnv(v, "provider_timeout", "PROVIDER_TIMEOUT", "PAYOUT_PROVIDER_TIMEOUT")
	bindEnv(v, "session_secret", "SESSION_SECRET", "PAYOUT_SESSION_SECRET")
	bindEnv(v, "session_ttl", "SESSION_TTL", "PAYOUT_SESSION_TTL")
	bindEnv(v, "redis_url", "REDIS_URL", "PAYOUT_REDIS_URL")
	bindEnv(v, "log_level", "LOG_LEVEL", "PAYOUT_LOG_LEVEL")

	v.SetDefault("port", "8080")
	v.SetDefault("paypal_environment", EnvironmentLive)
	v.SetDefault("default_currency", domain.DefaultCurrency)
	v.SetDefault("provider_timeout", "30s")
	v.SetDefault("session_ttl", "12h")
	v.SetDefault("log_level", "info")

	timeout, err := time.ParseDuration(v.GetString("provider_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	sessionTTL, err := time.ParseDuration(v.GetString("session_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	cfg := &Config{
		HTTPPort:           v.GetString("port"),
		PayPalClientID:     strings.TrimSpace(v.GetString("paypal_client_id")),
		PayPalClientSecret: strings.TrimSpace(v.GetString("paypal_client_secret")),
		PayPalEnvironment:  strings.ToLower(strings.TrimSpace(v.GetString("paypal_environment"))),
		PayPalBaseURL:      strings.TrimRight(strings.TrimSpace(v.GetString("paypal_base_url")), "/"),
		DefaultPayoutEmail: strings.TrimSpace(v.GetString("default_payout_email")),
		DefaultCurrency:    strings.ToUpper(strings.TrimSpace(v.GetString("default_currency"))),
		ProviderTimeout:    timeout,
		SessionSecret:      v.GetString("session_secret"),
		SessionTTL:         sessionTTL,
		RedisURL:           strings.TrimSpace(v.GetString("redis_url")),
		LogLevel:           v.GetString("log_level"),
	}

	switch cfg.PayPalEnvironment {
	case EnvironmentLive, EnvironmentSandbox, EnvironmentMock:
	default:
		return nil, fmt.Errorf("PAYPAL_ENVIRONMENT must be one of live, sandbox, mock; got %q", cfg.PayPalEnvironment)
	}
	if cfg.PayPalBaseURL == "" {
		cfg.PayPalBaseURL = baseURLFor(cfg.PayPalEnvironment)
	}
	if len(cfg.DefaultCurrency) != 3 {
		return nil, fmt.Errorf("DEFAULT_CURRENCY must be a three-letter code")
	}

	if strings.TrimSpace(cfg.SessionSecret) == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
	} else if len(cfg.SessionSecret) < minSessionSecretLen {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen)
	}

	return cfg, nil
}

// Credentials returns the process-level PayPal credentials used when a caller's
// session has none.
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{ClientID: c.PayPalClientID, ClientSecret: c.PayPalClientSecret}
}

// UseMockGateway reports whether payouts stay in process.
func (c *Config) UseMockGateway() bool {
	return c.PayPalEnvironment == EnvironmentMock
}

func baseURLFor(environment string) string {
	if environment == EnvironmentSandbox {
		return gateway.SandboxBaseURL
	}
	return gateway.LiveBaseURL
}

func randomSecret() (string, error) {
	buf := make([]byte, minSessionSecretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
