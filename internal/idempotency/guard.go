// Package idempotency prevents a destructive admin request from executing
// twice when the caller retries with the same key.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/observability/metrics"
)

// Guard claims caller-supplied keys. Records are written once and never read
// back, updated or expired by this package.
type Guard struct {
	repo domain.IdempotencyRepository
	now  func() time.Time
}

func NewGuard(repo domain.IdempotencyRepository) *Guard {
	return &Guard{repo: repo, now: time.Now}
}

// RecordID joins namespace and key into the stored record identifier.
func RecordID(namespace, key string) string {
	return namespace + ":" + key
}

// EnsureOnce claims key within namespace. An empty key is a no-op: idempotency
// is opt-in per caller. A key that was already claimed yields
// domain.ErrConflict and the caller must not perform the mutation.
func (g *Guard) EnsureOnce(ctx context.Context, namespace, key string) error {
	if key == "" {
		return nil
	}

	rec := &domain.IdempotencyRecord{
		ID:        RecordID(namespace, key),
		Namespace: namespace,
		CreatedAt: g.now().UTC(),
	}

	err := g.repo.Create(ctx, rec)
	if errors.Is(err, domain.ErrDuplicateKey) {
		metrics.ObserveIdempotencyReplay(namespace)
		return fmt.Errorf("idempotency.EnsureOnce: %w: idempotency key already used", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("idempotency.EnsureOnce: %w", err)
	}

	return nil
}

// Namespaces for the guarded admin operations.
func SuspendNamespace(uid string) string   { return "user.suspend:" + uid }
func UnsuspendNamespace(uid string) string { return "user.unsuspend:" + uid }
func BlockNamespace(uid string) string     { return "user.block:" + uid }
func DeleteNamespace(uid string) string    { return "user.delete:" + uid }
