package port

import (
	"context"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

type EventPublisher interface {
	// PublishOrderEvent emits an order lifecycle event. Best effort:
	// callers log failures and never fail the triggering request on them.
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}
