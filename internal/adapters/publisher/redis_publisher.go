// Package publisher fans tick batches out to external listeners.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ht-planning-service/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// RedisPublisher implements ports.BatchPublisher over Redis Pub/Sub.
// Each run publishes to "<prefix>:<run id>".
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPublisher(url, prefix string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: parse url: %w", err)
	}
	return NewRedisPublisherFromClient(redis.NewClient(opt), prefix), nil
}

func NewRedisPublisherFromClient(rdb *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "ht:batches"
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

// Channel returns the Pub/Sub channel of a run.
func (p *RedisPublisher) Channel(runID string) string { return p.prefix + ":" + runID }

func (p *RedisPublisher) Publish(ctx context.Context, runID string, batch domain.Batch) error {
	if p == nil || p.rdb == nil {
		return errors.New("redis publisher: client is nil")
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("redis publisher: encode tick %d: %w", batch.Tick, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.Channel(runID), data).Err(); err != nil {
		return fmt.Errorf("redis publisher: publish tick %d: %w", batch.Tick, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
