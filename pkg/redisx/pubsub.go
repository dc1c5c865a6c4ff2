package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PubSubClient is a thin wrapper over redis Pub/Sub used as a completion
// signal bus between the worker and the API server.
type PubSubClient struct {
	rdb *redis.Client
}

// NewPubSubClient connects and pings the redis server.
func NewPubSubClient(addr, password string, db int) (*PubSubClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &PubSubClient{rdb: rdb}, nil
}

// Subscribe waits for one message on channel, up to timeout. Used by the
// ops enqueue endpoint to wait for a reconciliation result.
func (c *PubSubClient) Subscribe(ctx context.Context, channel string, timeout time.Duration) (string, error) {
	sub := c.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case msg := <-sub.Channel():
		return msg.Payload, nil
	case <-timeoutCtx.Done():
		return "", timeoutCtx.Err()
	}
}

// Publish sends a message to channel.
func (c *PubSubClient) Publish(ctx context.Context, channel string, message string) error {
	return c.rdb.Publish(ctx, channel, message).Err()
}

// Close releases the underlying connection.
func (c *PubSubClient) Close() error {
	return c.rdb.Close()
}
