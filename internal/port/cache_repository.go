package port

import "context"

type CacheRepository interface {
	// MarkEventProcessed records a processor delivery id, returns false
	// if the id was already recorded (duplicate delivery)
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
}
