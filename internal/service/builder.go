package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/google/uuid"
)

// PayoutInput is what an operator types into the payout form.
type PayoutInput struct {
	Email    string `json:"email"`
	Amounts  string `json:"amounts"`
	Currency string `json:"currency"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// Normalize trims every field, upper-cases the currency and fills defaults.
func (in PayoutInput) Normalize() PayoutInput {
	out := PayoutInput{
		Email:    strings.TrimSpace(in.Email),
		Amounts:  strings.TrimSpace(in.Amounts),
		Currency: strings.ToUpper(strings.TrimSpace(in.Currency)),
		Subject:  strings.TrimSpace(in.Subject),
		Message:  strings.TrimSpace(in.Message),
	}
	if out.Currency == "" {
		out.Currency = domain.DefaultCurrency
	}
	if out.Subject == "" {
		out.Subject = domain.DefaultEmailSubject
	}
	if out.Message == "" {
		out.Message = domain.DefaultEmailMessage
	}
	return out
}

// Validate checks the fields the provider would otherwise reject. Call it on a
// normalized input.
func (in PayoutInput) Validate() error {
	if in.Email == "" {
		return domain.NewValidationError("email", "recipient email is required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return domain.NewValidationError("email", fmt.Sprintf("invalid recipient email: %s", in.Email))
	}
	if !isCurrencyCode(in.Currency) {
		return domain.NewValidationError("currency", fmt.Sprintf("currency must be a 3-letter code: %s", in.Currency))
	}
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ParseAmounts splits raw on commas and line breaks, drops blanks and normalizes
// every remaining token to two decimals. Input order is kept.
func ParseAmounts(raw string) ([]domain.Amount, error) {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	amounts := make([]domain.Amount, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		amount, err := domain.ParseAmount(token)
		if err != nil {
			return nil, domain.NewValidationError("amounts", fmt.Sprintf("invalid amount: %s", clip(token)))
		}
		amounts = append(amounts, amount)
	}
	if len(amounts) == 0 {
		return nil, domain.NewValidationError("amounts", "at least one amount is required")
	}
	return amounts, nil
}

// clip shortens a token echoed back in an error message.
func clip(token string) string {
	const limit = 32
	if len(token) <= limit {
		return token
	}
	return token[:limit] + "..."
}

// BuildPayoutBatch assembles one batch paying every amount to email. It performs
// no validation and no I/O apart from drawing a fresh sender_batch_id.
func BuildPayoutBatch(email string, amounts []domain.Amount, currency, subject, message string) domain.PayoutBatch {
	items := make([]domain.PayoutItem, 0, len(amounts))
	for i, amount := range amounts {
		items = append(items, domain.PayoutItem{
			Amount:          domain.ItemAmount{Value: amount, Currency: currency},
			SenderItemID:    SenderItemID(i + 1),
			RecipientWallet: domain.RecipientWalletPayPal,
			Receiver:        email,
			Purpose:         domain.PurposeGoods,
		})
	}

	return domain.PayoutBatch{
		Header: domain.SenderBatchHeader{
			SenderBatchID: NewSenderBatchID(),
			RecipientType: domain.RecipientTypeEmail,
			EmailSubject:  subject,
			EmailMessage:  message,
		},
		Items: items,
	}
}

// SenderItemID formats the 1-based position of an item, e.g. "web-007".
func SenderItemID(position int) string {
	return fmt.Sprintf("%s%03d", domain.SenderItemIDPrefix, position)
}

// NewSenderBatchID returns "SB-" followed by the 32 hex digits of a random UUID.
func NewSenderBatchID() string {
	return domain.SenderBatchIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
