package domain

// PaymentEventKind is the closed set of processor notification kinds the
// reconciler acts on. Anything the processor sends outside this set maps
// to PaymentEventUnknown and is acknowledged without effect.
type PaymentEventKind string

const (
	PaymentEventSucceeded PaymentEventKind = "payment_succeeded"
	PaymentEventFailed    PaymentEventKind = "payment_failed"
	PaymentEventRefunded  PaymentEventKind = "charge_refunded"
	PaymentEventUnknown   PaymentEventKind = "unknown"
)

// PaymentEvent is an authenticated, parsed processor notification.
type PaymentEvent struct {
	// ID is the processor's delivery id, used for duplicate-delivery
	// detection. May be empty for providers that do not send one.
	ID string

	Kind PaymentEventKind

	// ProviderType is the raw event type string as the processor named
	// it, kept for logging on the unknown arm.
	ProviderType string

	// OrderID is the correlation id extracted from the event metadata,
	// empty when the processor sent none.
	OrderID string

	// PaymentRef is the processor's payment reference, persisted onto
	// the order as its payment token on confirmation.
	PaymentRef string

	// FailureReason carries the processor's explanation for a
	// payment_failed event.
	FailureReason string
}

// PaymentIntent is the result of initiating a payment with the
// processor. ClientSecret is handed to the storefront client to
// complete the payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}
