package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/adminpanel/internal/audit"
	"github.com/gosuda/adminpanel/internal/domain"
)

type mockAuditRepo struct {
	recorded  []*domain.AuditEntry
	recordErr error
	listFunc  func(ctx context.Context, targetUID string, limit int) ([]*domain.AuditEntry, error)
}

func (m *mockAuditRepo) Record(_ context.Context, entry *domain.AuditEntry) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, entry)
	return nil
}

func (m *mockAuditRepo) ListByTarget(ctx context.Context, targetUID string, limit int) ([]*domain.AuditEntry, error) {
	return m.listFunc(ctx, targetUID, limit)
}

func TestRecord(t *testing.T) {
	t.Parallel()

	repo := &mockAuditRepo{}
	rec := audit.NewRecorder(repo)
	actor := &domain.Actor{UID: "admin-1", Email: "root@example.com"}

	rec.Record(context.Background(), actor, "u1", domain.ActionSuspend, map[string]any{"reason": "spam"})

	require.Len(t, repo.recorded, 1)
	e := repo.recorded[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "admin-1", e.ActorUID)
	assert.Equal(t, "root@example.com", e.ActorEmail)
	assert.Equal(t, "u1", e.TargetUID)
	assert.Equal(t, "suspend", e.Action)
	assert.Equal(t, "spam", e.Payload["reason"])
	assert.False(t, e.CreatedAt.IsZero())
}

func TestRecord_NilPayloadBecomesEmpty(t *testing.T) {
	t.Parallel()

	repo := &mockAuditRepo{}
	audit.NewRecorder(repo).Record(context.Background(), &domain.Actor{UID: "a"}, "u1", domain.ActionUnsuspend, nil)

	require.Len(t, repo.recorded, 1)
	assert.NotNil(t, repo.recorded[0].Payload)
	assert.Empty(t, repo.recorded[0].Payload)
}

func TestRecord_FailureIsSwallowed(t *testing.T) {
	t.Parallel()

	repo := &mockAuditRepo{recordErr: errors.New("pg: disk full")}

	assert.NotPanics(t, func() {
		audit.NewRecorder(repo).Record(context.Background(), &domain.Actor{UID: "a"}, "u1", domain.ActionDelete, nil)
	})
	assert.Empty(t, repo.recorded)
}

func TestList(t *testing.T) {
	t.Parallel()

	want := []*domain.AuditEntry{{TargetUID: "u1", Action: "block"}}
	repo := &mockAuditRepo{
		listFunc: func(_ context.Context, targetUID string, limit int) ([]*domain.AuditEntry, error) {
			assert.Equal(t, "u1", targetUID)
			assert.Equal(t, 20, limit)
			return want, nil
		},
	}

	got, err := audit.NewRecorder(repo).List(context.Background(), "u1", 20)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	repo.listFunc = func(context.Context, string, int) ([]*domain.AuditEntry, error) {
		return nil, errors.New("boom")
	}
	_, err = audit.NewRecorder(repo).List(context.Background(), "u1", 20)
	require.Error(t, err)
}
