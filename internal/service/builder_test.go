package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amountStrings(amounts []domain.Amount) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		out[i] = a.String()
	}
	return out
}

func TestParseAmounts_MixedDelimiters(t *testing.T) {
	amounts, err := ParseAmounts("10,20.5\n0.99")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.00", "20.50", "0.99"}, amountStrings(amounts))
}

func TestParseAmounts_SkipsBlankTokens(t *testing.T) {
	amounts, err := ParseAmounts(" 5 ,,\r\n\n 7.1 ,\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"5.00", "7.10"}, amountStrings(amounts))
}

func TestParseAmounts_RequiresAtLeastOne(t *testing.T) {
	for _, raw := range []string{"", "   ", ",\n,", "\r\n"} {
		_, err := ParseAmounts(raw)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr, "%q", raw)
		assert.Equal(t, "amounts", validationErr.Field)
		assert.Contains(t, validationErr.Message, "at least one amount")
	}
}

func TestParseAmounts_RejectsInvalidTokens(t *testing.T) {
	for _, raw := range []string{"-5", "abc", "0", "10,abc", "1\n-0.5", "1e1000", "5,1e20000000", "1e-20000000"} {
		_, err := ParseAmounts(raw)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr, "%q", raw)
		assert.Contains(t, validationErr.Message, "invalid amount")
	}
}

func TestParseAmounts_ClipsLongTokensInMessage(t *testing.T) {
	token := "9" + strings.Repeat("0", 200)
	_, err := ParseAmounts(token)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Less(t, len(validationErr.Message), 64)
}

func TestBuildPayoutBatch_ItemsAndHeader(t *testing.T) {
	amounts, err := ParseAmounts("44.99\n38.99")
	require.NoError(t, err)

	batch := BuildPayoutBatch("a@b.com", amounts, "EUR", "subject", "message")

	assert.True(t, strings.HasPrefix(batch.Header.SenderBatchID, domain.SenderBatchIDPrefix))
	assert.Len(t, batch.Header.SenderBatchID, len(domain.SenderBatchIDPrefix)+32)
	assert.Equal(t, domain.RecipientTypeEmail, batch.Header.RecipientType)
	assert.Equal(t, "subject", batch.Header.EmailSubject)
	assert.Equal(t, "message", batch.Header.EmailMessage)

	require.Len(t, batch.Items, 2)
	for i, item := range batch.Items {
		assert.Equal(t, amounts[i], item.Amount.Value)
		assert.Equal(t, "EUR", item.Amount.Currency)
		assert.Equal(t, "a@b.com", item.Receiver)
		assert.Equal(t, domain.RecipientWalletPayPal, item.RecipientWallet)
		assert.Equal(t, domain.PurposeGoods, item.Purpose)
	}
}

func TestBuildPayoutBatch_SequentialItemIDs(t *testing.T) {
	for _, n := range []int{1, 9, 10, 120} {
		amounts := make([]domain.Amount, n)
		for i := range amounts {
			amounts[i] = domain.MustAmount("1")
		}

		batch := BuildPayoutBatch("a@b.com", amounts, "USD", "s", "m")
		require.Len(t, batch.Items, n)
		for i, item := range batch.Items {
			assert.Equal(t, fmt.Sprintf("web-%03d", i+1), item.SenderItemID)
			if i > 0 {
				assert.Greater(t, item.SenderItemID, batch.Items[i-1].SenderItemID)
			}
		}
	}
}

func TestBuildPayoutBatch_UniqueSenderBatchID(t *testing.T) {
	amounts, err := ParseAmounts("5.00,10.00")
	require.NoError(t, err)

	first := BuildPayoutBatch("a@b.com", amounts, "USD", "s", "m")
	second := BuildPayoutBatch("a@b.com", amounts, "USD", "s", "m")

	assert.NotEqual(t, first.Header.SenderBatchID, second.Header.SenderBatchID)
	assert.Equal(t, first.Items, second.Items)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewSenderBatchID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestPayoutInput_NormalizeAndValidate(t *testing.T) {
	in := PayoutInput{Email: " a@b.com ", Amounts: "1", Currency: " eur "}.Normalize()
	assert.Equal(t, "a@b.com", in.Email)
	assert.Equal(t, "EUR", in.Currency)
	assert.Equal(t, domain.DefaultEmailSubject, in.Subject)
	assert.Equal(t, domain.DefaultEmailMessage, in.Message)
	require.NoError(t, in.Validate())

	assert.Equal(t, domain.DefaultCurrency, PayoutInput{}.Normalize().Currency)

	cases := []struct {
		field string
		input PayoutInput
	}{
		{"email", PayoutInput{Email: "", Currency: "USD"}},
		{"email", PayoutInput{Email: "not-an-email", Currency: "USD"}},
		{"email", PayoutInput{Email: "Bob <bob@example.com>", Currency: "USD"}},
		{"currency", PayoutInput{Email: "a@b.com", Currency: "US"}},
		{"currency", PayoutInput{Email: "a@b.com", Currency: "U5D"}},
	}
	for _, tc := range cases {
		err := tc.input.Validate()
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr, "%+v", tc.input)
		assert.Equal(t, tc.field, validationErr.Field)
	}
}
