package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a strictly positive monetary value with exactly two fractional digits.
// The zero value is not a valid amount; build one with ParseAmount or NewAmount.
type Amount struct {
	value decimal.Decimal
}

const (
	// MaxAmountIntegerDigits bounds amounts below 10^12. PayPal's own per-item
	// ceiling is far lower; this only keeps rounding cheap and the payload small.
	MaxAmountIntegerDigits = 12
	maxAmountTokenLen      = 64
)

// NewAmount rounds d to cents, half to even, and rejects anything that is not
// positive afterwards or has more than MaxAmountIntegerDigits integer digits.
func NewAmount(d decimal.Decimal) (Amount, error) {
	// Integer digits of d; computed before Round so huge exponents are never expanded.
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	if d.Sign() > 0 && magnitude > MaxAmountIntegerDigits {
		return Amount{}, fmt.Errorf("amount too large: %s", d.String())
	}
	if d.Sign() <= 0 || magnitude < -2 {
		return Amount{}, fmt.Errorf("amount must be positive: %s", d.String())
	}
	rounded := d.RoundBank(2)
	if !rounded.IsPositive() {
		return Amount{}, fmt.Errorf("amount must be positive: %s", d.String())
	}
	return Amount{value: rounded}, nil
}

// ParseAmount parses a user supplied token such as "20.5" or "10".
func ParseAmount(token string) (Amount, error) {
	token = strings.TrimSpace(token)
	if len(token) > maxAmountTokenLen {
		return Amount{}, fmt.Errorf("amount too long: %d characters", len(token))
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return Amount{}, fmt.Errorf("not a number: %q", token)
	}
	return NewAmount(d)
}

// MustAmount is ParseAmount for constants and tests.
func MustAmount(token string) Amount {
	a, err := ParseAmount(token)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// IsZero reports whether a was never initialized.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// String returns the canonical two-decimal representation, e.g. "44.99".
func (a Amount) String() string {
	return a.value.StringFixed(2)
}

// MarshalText encodes the amount as its canonical string so it lands in JSON as "44.99".
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText applies the same validation as ParseAmount.
func (a *Amount) UnmarshalText(b []byte) error {
	parsed, err := ParseAmount(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Sum adds amounts together, used for batch totals in logs and CLI output.
func Sum(amounts []Amount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.value)
	}
	return total
}
