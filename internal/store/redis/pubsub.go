package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gosuda/adminpanel/internal/domain"
)

func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := c.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Client.Publish: %w", err)
	}
	return nil
}

// PublishAccountEvent announces a lifecycle change on the account's channel.
func (c *Client) PublishAccountEvent(ctx context.Context, ev domain.AccountEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.Client.PublishAccountEvent: marshal: %w", err)
	}
	return c.Publish(ctx, AccountChannel(ev.UID), payload)
}

// AccountChannel returns the Redis channel name for an account's lifecycle
// events.
func AccountChannel(uid string) string {
	return "account:" + uid
}
