package idempotency_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/idempotency"
)

// memRepo is an in-memory create-if-absent store guarded by a mutex, standing
// in for the unique constraint / SETNX of the real backends.
type memRepo struct {
	mu      sync.Mutex
	records map[string]*domain.IdempotencyRecord
	err     error
	calls   int
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]*domain.IdempotencyRecord)}
}

func (m *memRepo) Create(_ context.Context, rec *domain.IdempotencyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.records[rec.ID]; ok {
		return domain.ErrDuplicateKey
	}
	m.records[rec.ID] = rec
	return nil
}

func TestEnsureOnce_EmptyKeyIsNoOp(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	g := idempotency.NewGuard(repo)

	require.NoError(t, g.EnsureOnce(context.Background(), "user.delete:u1", ""))
	require.NoError(t, g.EnsureOnce(context.Background(), "user.delete:u1", ""))
	assert.Equal(t, 0, repo.calls, "store must not be touched without a key")
}

func TestEnsureOnce_FirstUseSucceeds(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	g := idempotency.NewGuard(repo)

	require.NoError(t, g.EnsureOnce(context.Background(), "user.suspend:u1", "k1"))

	rec, ok := repo.records["user.suspend:u1:k1"]
	require.True(t, ok)
	assert.Equal(t, "user.suspend:u1", rec.Namespace)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestEnsureOnce_ReuseConflicts(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	g := idempotency.NewGuard(repo)
	ctx := context.Background()

	require.NoError(t, g.EnsureOnce(ctx, "user.suspend:u1", "k1"))

	err := g.EnsureOnce(ctx, "user.suspend:u1", "k1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "idempotency key already used")
}

func TestEnsureOnce_KeysAreNamespaced(t *testing.T) {
	t.Parallel()

	g := idempotency.NewGuard(newMemRepo())
	ctx := context.Background()

	require.NoError(t, g.EnsureOnce(ctx, idempotency.SuspendNamespace("u1"), "k1"))
	require.NoError(t, g.EnsureOnce(ctx, idempotency.UnsuspendNamespace("u1"), "k1"))
	require.NoError(t, g.EnsureOnce(ctx, idempotency.SuspendNamespace("u2"), "k1"))
}

func TestEnsureOnce_StoreErrorIsNotConflict(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	repo.err = errors.New("pg: connection refused")
	g := idempotency.NewGuard(repo)

	err := g.EnsureOnce(context.Background(), "user.delete:u1", "k1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestEnsureOnce_ConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	g := idempotency.NewGuard(newMemRepo())

	const workers = 16
	var (
		wg        sync.WaitGroup
		executed  atomic.Int32
		conflicts atomic.Int32
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := g.EnsureOnce(context.Background(), "user.delete:u1", "same-key")
			switch {
			case err == nil:
				executed.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, executed.Load())
	assert.EqualValues(t, workers-1, conflicts.Load())
}

func TestNamespaces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user.suspend:u1", idempotency.SuspendNamespace("u1"))
	assert.Equal(t, "user.unsuspend:u1", idempotency.UnsuspendNamespace("u1"))
	assert.Equal(t, "user.block:u1", idempotency.BlockNamespace("u1"))
	assert.Equal(t, "user.delete:u1", idempotency.DeleteNamespace("u1"))
	assert.Equal(t, "user.delete:u1:abc", idempotency.RecordID("user.delete:u1", "abc"))
}
