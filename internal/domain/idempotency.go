package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateKey is returned by IdempotencyRepository.Create when a record
// with the same ID already exists. Other storage failures are never reported
// with this error.
var ErrDuplicateKey = errors.New("domain: idempotency key exists")

// IdempotencyRecord marks a destructive request as executed. Records are
// never updated, read back or expired.
type IdempotencyRecord struct {
	ID        string // namespace + ":" + caller key
	Namespace string
	CreatedAt time.Time
}

// IdempotencyRepository must implement Create as a single atomic
// create-if-absent operation.
type IdempotencyRepository interface {
	Create(ctx context.Context, rec *IdempotencyRecord) error
}
