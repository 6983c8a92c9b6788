package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
	"github.com/ljourdain/atelier-shop/internal/port"
)

// metadataOrderIDKey is where the order's correlation id travels in
// processor metadata, on the intent and back on its notifications.
const metadataOrderIDKey = "order_id"

// StripeAdapter talks to Stripe with an injected credential; no
// package-global key is ever set.
type StripeAdapter struct {
	api           *client.API
	webhookSecret string
}

func NewStripeAdapter(apiKey, webhookSecret string) *StripeAdapter {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeAdapter{api: api, webhookSecret: webhookSecret}
}

func (a *StripeAdapter) CreateIntent(ctx context.Context, req port.CreateIntentRequest) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderIDKey, req.OrderID)
	params.Shipping = &stripe.ShippingDetailsParams{
		Name:  stripe.String(req.Shipping.Name),
		Phone: stripe.String(req.Shipping.Phone),
		Address: &stripe.AddressParams{
			Line1:      stripe.String(req.Shipping.AddressLine1),
			Line2:      stripe.String(req.Shipping.AddressLine2),
			City:       stripe.String(req.Shipping.City),
			PostalCode: stripe.String(req.Shipping.PostalCode),
			Country:    stripe.String(req.Shipping.Country),
		},
	}

	intent, err := a.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &port.ProviderError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
		}
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	return &domain.PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// VerifyWebhook authenticates the payload and translates the Stripe
// event into the domain tagged union. Signature failures and parse
// failures map to the two distinct boundary errors so the handler can
// reject both without leaking detail.
func (a *StripeAdapter) VerifyWebhook(payload []byte, signature string) (*domain.PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, a.webhookSecret)
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", port.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedPayload, err)
	}

	return translateEvent(event)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

func translateEvent(event stripe.Event) (*domain.PaymentEvent, error) {
	out := &domain.PaymentEvent{
		ID:           event.ID,
		ProviderType: event.Type,
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: %v", port.ErrMalformedPayload, err)
		}
		out.Kind = domain.PaymentEventSucceeded
		out.OrderID = intent.Metadata[metadataOrderIDKey]
		out.PaymentRef = intent.ID

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: %v", port.ErrMalformedPayload, err)
		}
		out.Kind = domain.PaymentEventFailed
		out.OrderID = intent.Metadata[metadataOrderIDKey]
		out.PaymentRef = intent.ID
		if intent.LastPaymentError != nil {
			out.FailureReason = intent.LastPaymentError.Msg
		}

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("%w: %v", port.ErrMalformedPayload, err)
		}
		out.Kind = domain.PaymentEventRefunded
		out.OrderID = charge.Metadata[metadataOrderIDKey]
		if charge.PaymentIntent != nil {
			out.PaymentRef = charge.PaymentIntent.ID
		}

	default:
		// Forward compatibility: authentic but unhandled event types
		// are surfaced as unknown and acknowledged upstream.
		out.Kind = domain.PaymentEventUnknown
	}

	return out, nil
}
