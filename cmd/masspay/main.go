// Command masspay submits one payout batch from the command line and prints
// PayPal's answer followed by the batch status.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayo6706/mass-payout/internal/app"
	"github.com/ayo6706/mass-payout/internal/config"
	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/ayo6706/mass-payout/internal/gateway"
	"github.com/ayo6706/mass-payout/internal/service"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "masspay: load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "masspay: init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(ctx, cfg, app.NewGateway(cfg, logger), logger, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "masspay: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, gw gateway.Gateway, logger *zap.Logger, args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("masspay", pflag.ContinueOnError)
	flags.SetOutput(stdout)
	email := flags.String("email", cfg.DefaultPayoutEmail, "receiver email")
	amounts := flags.String("amounts", "", "comma or newline separated amounts, e.g. 44.99,38.99")
	currency := flags.String("currency", cfg.DefaultCurrency, "ISO currency code")
	subject := flags.String("subject", domain.DefaultEmailSubject, "notification email subject")
	message := flags.String("message", domain.DefaultEmailMessage, "notification email body")
	clientID := flags.String("client-id", "", "PayPal client id (defaults to PAYPAL_CLIENT_ID)")
	clientSecret := flags.String("client-secret", "", "PayPal client secret (defaults to PAYPAL_CLIENT_SECRET)")
	sync := flags.Bool("sync", false, "wait for PayPal to process the batch")
	requestID := flags.String("request-id", "", "PayPal-Request-Id to send; generated when empty")
	if err := flags.Parse(args); err != nil {
		return err
	}

	svc := service.NewPayoutService(gw, logger).WithDefaultCurrency(cfg.DefaultCurrency)
	creds := domain.CredentialContext{
		Session:  domain.Credentials{ClientID: *clientID, ClientSecret: *clientSecret},
		Fallback: cfg.Credentials(),
	}

	result, err := svc.SubmitPayout(ctx, service.SubmitPayoutRequest{
		Credentials: creds,
		Input: service.PayoutInput{
			Email:    *email,
			Amounts:  *amounts,
			Currency: *currency,
			Subject:  *subject,
			Message:  *message,
		},
		Sync:      *sync,
		RequestID: *requestID,
		Actor:     "cli",
	})
	if err != nil {
		return err
	}
	if err := printJSON(stdout, result); err != nil {
		return err
	}
	if result.Degraded() {
		fmt.Fprintln(stdout, "Payout created but no batch id returned")
		return nil
	}

	status, err := svc.GetPayoutStatus(ctx, creds, result.BatchID)
	if err != nil {
		return fmt.Errorf("payout %s submitted but status check failed: %w", result.BatchID, err)
	}
	fmt.Fprintf(stdout, "\nStatus for batch %s:\n", result.BatchID)
	return printJSON(stdout, status)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
