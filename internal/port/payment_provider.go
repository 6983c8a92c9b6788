package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

var (
	// ErrInvalidSignature means the webhook payload failed signature
	// verification and must be rejected without touching any order.
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrMalformedPayload means an authenticated payload could not be parsed.
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// ProviderError carries the processor's own error payload back to the caller.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider error (%s): %s", e.Code, e.Message)
}

type CreateIntentRequest struct {
	AmountMinor int64
	Currency    string
	OrderID     string
	Shipping    domain.ShippingDetails
}

type PaymentProvider interface {
	// CreateIntent requests a payment intent for the amount, attaching
	// the order id as correlation metadata. Exactly one outbound call
	// per invocation, no retry.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*domain.PaymentIntent, error)

	// VerifyWebhook authenticates a raw notification against its
	// signature and translates it into a domain event. Returns
	// ErrInvalidSignature or ErrMalformedPayload on rejection.
	VerifyWebhook(payload []byte, signature string) (*domain.PaymentEvent, error)
}
