package redis

import (
	"context"
	"fmt"

	"github.com/gosuda/adminpanel/internal/domain"
)

// IdempotencyKey returns the Redis key holding an idempotency record.
func IdempotencyKey(id string) string {
	return "idem:" + id
}

// IdempotencyRepo stores idempotency records with SETNX and no expiry.
type IdempotencyRepo struct {
	c *Client
}

func NewIdempotencyRepo(c *Client) *IdempotencyRepo {
	return &IdempotencyRepo{c: c}
}

func (r *IdempotencyRepo) Create(ctx context.Context, rec *domain.IdempotencyRecord) error {
	ok, err := r.c.client.SetNX(ctx, IdempotencyKey(rec.ID), rec.CreatedAt.UnixMilli(), 0).Result()
	if err != nil {
		return fmt.Errorf("redis.IdempotencyRepo.Create: %w", err)
	}
	if !ok {
		return fmt.Errorf("redis.IdempotencyRepo.Create: %w", domain.ErrDuplicateKey)
	}
	return nil
}
