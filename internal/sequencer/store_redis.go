package sequencer

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultCounterKey = "recibo:receipt_counter"

// RedisCounterStore keeps the counter in a single Redis key. INCR is atomic
// in Redis, which gives Next its linearizability.
type RedisCounterStore struct {
	client *redis.Client
	key    string
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client, key: defaultCounterKey}
}

func (s *RedisCounterStore) Current(ctx context.Context) (int64, error) {
	value, err := s.client.Get(ctx, s.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read receipt counter: %w", err)
	}
	return value, nil
}

func (s *RedisCounterStore) Next(ctx context.Context) (int64, error) {
	value, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment receipt counter: %w", err)
	}
	return value, nil
}

var _ CounterStore = (*RedisCounterStore)(nil)
