package domain

// Fixed values of every payout batch sent to the provider.
const (
	RecipientTypeEmail    = "EMAIL"
	RecipientWalletPayPal = "PAYPAL"
	PurposeGoods          = "GOODS"

	SenderBatchIDPrefix = "SB-"
	SenderItemIDPrefix  = "web-"

	DefaultCurrency     = "USD"
	DefaultEmailSubject = "You have money!"
	DefaultEmailMessage = "You received a payment. Thanks for using our service!"
)

// Batch statuses reported by the provider
const (
	BatchStatusPending    = "PENDING"
	BatchStatusProcessing = "PROCESSING"
	BatchStatusSuccess    = "SUCCESS"
	BatchStatusDenied     = "DENIED"
	BatchStatusCanceled   = "CANCELED"

	ItemStatusUnclaimed = "UNCLAIMED"
	ItemStatusSuccess   = "SUCCESS"
)
