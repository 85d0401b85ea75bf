package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ayo6706/mass-payout/internal/api"
	"github.com/ayo6706/mass-payout/internal/config"
	"github.com/ayo6706/mass-payout/internal/gateway"
	"github.com/ayo6706/mass-payout/internal/observability"
	"github.com/ayo6706/mass-payout/internal/service"
	"github.com/ayo6706/mass-payout/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run bootstraps the HTTP server, blocking until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()

	sessions, closeSessions, err := newSessionStore(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer closeSessions()

	gw := NewGateway(cfg, logger)
	payoutSvc := service.NewPayoutService(gw, logger).
		WithDefaultEmail(cfg.DefaultPayoutEmail).
		WithDefaultCurrency(cfg.DefaultCurrency)
	logger.Info("payout gateway ready",
		zap.String("environment", cfg.PayPalEnvironment),
		zap.String("base_url", cfg.PayPalBaseURL),
		zap.Bool("fallback_credentials", cfg.Credentials().Complete()),
	)

	router := api.NewRouter(logger, sessions, session.NewManager(cfg.SessionSecret, cfg.SessionTTL), payoutSvc, api.Options{
		FallbackCredentials: cfg.Credentials(),
		DefaultEmail:        cfg.DefaultPayoutEmail,
		DefaultCurrency:     cfg.DefaultCurrency,
	})

	// A submission makes two sequential provider calls, a status check two more.
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3*cfg.ProviderTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

// NewGateway picks the in-memory mock or the PayPal REST client from cfg.
func NewGateway(cfg *config.Config, logger *zap.Logger) gateway.Gateway {
	if cfg.UseMockGateway() {
		return gateway.NewMockGateway()
	}
	return gateway.NewPayPalClient(cfg.PayPalBaseURL).
		WithTimeout(cfg.ProviderTimeout).
		WithLogger(logger.Named("paypal"))
}

// NewLogger builds a production zap logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newSessionStore(cfg *config.Config) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}
	client, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
