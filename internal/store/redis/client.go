package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client shared by the idempotency backend and the
// account event publisher.
type Client struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Client{client: client}, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(client *redis.Client) *Client {
	return &Client{client: client}
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.Client.Ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis.Client.Close: %w", err)
	}
	return nil
}
