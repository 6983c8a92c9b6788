package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
	"github.com/ljourdain/atelier-shop/internal/logging"
	"github.com/ljourdain/atelier-shop/internal/port"
)

// NotificationOutcome describes what the reconciler did with an
// authenticated notification. Every outcome acknowledges receipt;
// rejection happens only before dispatch, on signature or parse failure.
type NotificationOutcome string

const (
	OutcomeApplied         NotificationOutcome = "applied"
	OutcomeAlreadyApplied  NotificationOutcome = "already_applied"
	OutcomeDuplicate       NotificationOutcome = "duplicate_delivery"
	OutcomeOrderNotFound   NotificationOutcome = "order_not_found"
	OutcomeNotApplicable   NotificationOutcome = "not_applicable"
	OutcomeFailureReported NotificationOutcome = "failure_reported"
	OutcomeIgnored         NotificationOutcome = "ignored"
	OutcomeError           NotificationOutcome = "error"
)

type NotificationResult struct {
	Kind         domain.PaymentEventKind
	ProviderType string
	OrderID      string
	Outcome      NotificationOutcome
}

// PaymentService is the payment intent initiator and the webhook
// reconciler. The processor credential lives inside the injected
// provider; nothing here is process-global.
type PaymentService struct {
	orders    port.OrderRepository
	pricing   *PricingCalculator
	provider  port.PaymentProvider
	cache     port.CacheRepository
	publisher port.EventPublisher
	currency  string
}

// NewPaymentService builds a PaymentService. cache and publisher may be
// nil: without a cache every delivery re-enters dispatch (the guarded
// transition still keeps it correct), and without a publisher no
// lifecycle events are emitted.
func NewPaymentService(
	orders port.OrderRepository,
	pricing *PricingCalculator,
	provider port.PaymentProvider,
	cache port.CacheRepository,
	publisher port.EventPublisher,
	currency string,
) *PaymentService {
	return &PaymentService{
		orders:    orders,
		pricing:   pricing,
		provider:  provider,
		cache:     cache,
		publisher: publisher,
		currency:  currency,
	}
}

// InitiatePayment persists shipping details onto the order, computes
// the live total and requests a payment intent for it. The order status
// does not change; confirmation arrives later, synchronously or via
// webhook. Shipping details are deliberately not rolled back when the
// provider call fails: the webhook that eventually reconciles this
// order must be able to trust they are populated.
func (s *PaymentService) InitiatePayment(ctx context.Context, orderID uuid.UUID, userID int64, shipping domain.ShippingDetails) (string, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("order lookup: %w", err)
	}
	if order == nil || order.UserID != userID {
		return "", ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return "", ErrInvalidOrderState
	}

	if err := s.orders.SetShippingDetails(ctx, order.ID, shipping); err != nil {
		return "", fmt.Errorf("persist shipping details: %w", err)
	}

	total, err := s.pricing.OrderTotal(ctx, order)
	if err != nil {
		return "", err
	}

	intent, err := s.provider.CreateIntent(ctx, port.CreateIntentRequest{
		AmountMinor: MinorUnits(total),
		Currency:    s.currency,
		OrderID:     order.ID.String(),
		Shipping:    shipping,
	})
	if err != nil {
		return "", fmt.Errorf("create payment intent for order %s: %w", order.ID, err)
	}

	return intent.ClientSecret, nil
}

// HandleNotification is the webhook entry point. Signature and parse
// failures reject the request; every authenticated event is
// acknowledged, including ones naming unknown orders or kinds, so the
// processor never treats the endpoint as down and spirals into
// redelivery.
func (s *PaymentService) HandleNotification(ctx context.Context, payload []byte, signature string) (*NotificationResult, error) {
	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, err
	}

	result := &NotificationResult{
		Kind:         event.Kind,
		ProviderType: event.ProviderType,
		OrderID:      event.OrderID,
	}

	if event.ID != "" && s.cache != nil {
		fresh, err := s.cache.MarkEventProcessed(ctx, event.ID)
		if err != nil {
			// A cache outage must not take the webhook down; the
			// guarded transition below stays idempotent without it.
			logging.Log(logging.Fields{
				Component: "reconciler",
				EventID:   event.ID,
				Outcome:   "dedup_unavailable",
				Error:     err.Error(),
			})
		} else if !fresh {
			result.Outcome = OutcomeDuplicate
			return result, nil
		}
	}

	switch event.Kind {
	case domain.PaymentEventSucceeded:
		result.Outcome = s.applySucceeded(ctx, event)
	case domain.PaymentEventFailed:
		// Failure is surfaced, never persisted as a transition.
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			OrderID:   event.OrderID,
			Kind:      string(event.Kind),
			Outcome:   string(OutcomeFailureReported),
			Message:   event.FailureReason,
		})
		result.Outcome = OutcomeFailureReported
	case domain.PaymentEventRefunded:
		result.Outcome = s.applyRefund(ctx, event)
	default:
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			Kind:      event.ProviderType,
			Outcome:   string(OutcomeIgnored),
		})
		result.Outcome = OutcomeIgnored
	}

	return result, nil
}

func (s *PaymentService) applySucceeded(ctx context.Context, event *domain.PaymentEvent) NotificationOutcome {
	orderID, outcome := s.lookupOrder(ctx, event)
	if outcome != "" {
		return outcome
	}

	applied, err := s.orders.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusConfirmed, event.PaymentRef)
	if err != nil {
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			OrderID:   event.OrderID,
			Kind:      string(event.Kind),
			Outcome:   "transition_error",
			Error:     err.Error(),
		})
		return OutcomeError
	}
	if !applied {
		// Redelivery or a won race with the synchronous confirm path.
		return OutcomeAlreadyApplied
	}

	s.publish(ctx, event, domain.EventOrderConfirmed)
	return OutcomeApplied
}

func (s *PaymentService) applyRefund(ctx context.Context, event *domain.PaymentEvent) NotificationOutcome {
	orderID, outcome := s.lookupOrder(ctx, event)
	if outcome != "" {
		return outcome
	}

	applied, err := s.orders.UpdateOrderStatus(ctx, orderID, domain.OrderStatusConfirmed, domain.OrderStatusCancelled, "")
	if err != nil {
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			OrderID:   event.OrderID,
			Kind:      string(event.Kind),
			Outcome:   "transition_error",
			Error:     err.Error(),
		})
		return OutcomeError
	}
	if !applied {
		return OutcomeNotApplicable
	}

	s.publish(ctx, event, domain.EventOrderCancelled)
	return OutcomeApplied
}

// lookupOrder resolves the correlation id to an existing order. A miss
// is logged and acknowledged, never escalated, per the redelivery-storm
// contract.
func (s *PaymentService) lookupOrder(ctx context.Context, event *domain.PaymentEvent) (uuid.UUID, NotificationOutcome) {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			OrderID:   event.OrderID,
			Kind:      string(event.Kind),
			Outcome:   string(OutcomeOrderNotFound),
			Message:   "correlation id is not a valid order id",
		})
		return uuid.Nil, OutcomeOrderNotFound
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			OrderID:   event.OrderID,
			Kind:      string(event.Kind),
			Outcome:   string(OutcomeError),
			Error:     err.Error(),
		})
		return uuid.Nil, OutcomeError
	}
	if order == nil {
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			OrderID:   event.OrderID,
			Kind:      string(event.Kind),
			Outcome:   string(OutcomeOrderNotFound),
		})
		return uuid.Nil, OutcomeOrderNotFound
	}

	return orderID, ""
}

func (s *PaymentService) publish(ctx context.Context, event *domain.PaymentEvent, eventType string) {
	if s.publisher == nil {
		return
	}
	out := domain.OrderEvent{
		EventID:   uuid.New().String(),
		OrderID:   event.OrderID,
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
		Payload:   map[string]any{"source": "webhook", "provider_event_id": event.ID},
	}
	if err := s.publisher.PublishOrderEvent(ctx, out); err != nil {
		logging.Log(logging.Fields{
			Component: "reconciler",
			EventID:   event.ID,
			OrderID:   event.OrderID,
			Outcome:   "publish_failed",
			Message:   eventType,
			Error:     err.Error(),
		})
	}
}
