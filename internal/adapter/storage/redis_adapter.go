package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	processedEventKeyPrefix = "payment_event:"
	processedEventTTL       = 24 * time.Hour
)

// RedisAdapter records processor delivery ids so a redelivered webhook
// can be acknowledged without re-entering dispatch. The TTL outlives
// any realistic redelivery window; the guarded status transition keeps
// the system correct even when an entry has expired.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, processedEventKeyPrefix+eventID, 1, processedEventTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
