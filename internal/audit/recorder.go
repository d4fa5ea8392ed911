package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/observability/metrics"
)

// Recorder appends one audit entry per privileged mutation.
//
// Recording is best-effort: a failed write is logged and the admin operation
// that triggered it still reports its own outcome.
type Recorder struct {
	repo domain.AuditRepository
	now  func() time.Time
}

func NewRecorder(repo domain.AuditRepository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, actor *domain.Actor, targetUID, action string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		TargetUID: targetUID,
		Action:    action,
		Payload:   payload,
		CreatedAt: r.now().UTC(),
	}
	if actor != nil {
		entry.ActorUID = actor.UID
		entry.ActorEmail = actor.Email
	}

	if err := r.repo.Record(ctx, entry); err != nil {
		metrics.ObserveAuditFailure()
		log.Error().Err(err).
			Str("audit_id", entry.ID.String()).
			Str("actor_uid", entry.ActorUID).
			Str("target_uid", targetUID).
			Str("action", action).
			Msg("audit: failed to record entry")
	}
}

// List returns the newest entries for targetUID first.
func (r *Recorder) List(ctx context.Context, targetUID string, limit int) ([]*domain.AuditEntry, error) {
	entries, err := r.repo.ListByTarget(ctx, targetUID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit.List: %w", err)
	}
	return entries, nil
}
