package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-market-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const pendingKeyPrefix = "pending-notifications:"

// Redis stores each recipient's pending batch as a JSON-encoded list under a
// single key with a server-side TTL. All API instances and the sweep worker
// share the same view.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})}
}

func (r *Redis) Get(ctx context.Context, recipientID string) ([]domain.PendingNotification, error) {
	raw, err := r.client.Get(ctx, pendingKeyPrefix+recipientID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get pending: %w", err)
	}
	var list []domain.PendingNotification
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode pending batch: %w", err)
	}
	return list, nil
}

func (r *Redis) Put(ctx context.Context, recipientID string, list []domain.PendingNotification, ttl time.Duration) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode pending batch: %w", err)
	}
	if err := r.client.Set(ctx, pendingKeyPrefix+recipientID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set pending: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, recipientID string) error {
	if err := r.client.Del(ctx, pendingKeyPrefix+recipientID).Err(); err != nil {
		return fmt.Errorf("redis del pending: %w", err)
	}
	return nil
}
