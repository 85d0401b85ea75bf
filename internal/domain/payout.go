package domain

// ItemAmount is the provider's money object: a canonical decimal string and an ISO 4217 code.
type ItemAmount struct {
	Value    Amount `json:"value"`
	Currency string `json:"currency"`
}

// PayoutItem is one line of a payout batch.
type PayoutItem struct {
	Amount          ItemAmount `json:"amount"`
	SenderItemID    string     `json:"sender_item_id"`
	RecipientWallet string     `json:"recipient_wallet"`
	Receiver        string     `json:"receiver"`
	Purpose         string     `json:"purpose"`
}

// SenderBatchHeader identifies the batch on our side. SenderBatchID doubles as the
// provider's business-level idempotency key.
type SenderBatchHeader struct {
	SenderBatchID string `json:"sender_batch_id"`
	RecipientType string `json:"recipient_type"`
	EmailSubject  string `json:"email_subject"`
	EmailMessage  string `json:"email_message"`
}

// PayoutBatch is the request document for the payouts endpoint.
type PayoutBatch struct {
	Header SenderBatchHeader `json:"sender_batch_header"`
	Items  []PayoutItem      `json:"items"`
}

// Currency returns the currency of the first item, or "" for an empty batch.
func (b PayoutBatch) Currency() string {
	if len(b.Items) == 0 {
		return ""
	}
	return b.Items[0].Amount.Currency
}

// Amounts returns the item amounts in order.
func (b PayoutBatch) Amounts() []Amount {
	out := make([]Amount, 0, len(b.Items))
	for _, item := range b.Items {
		out = append(out, item.Amount.Value)
	}
	return out
}
