package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded for privileged mutations.
const (
	ActionSuspend   = "suspend"
	ActionUnsuspend = "unsuspend"
	ActionBlock     = "block"
	ActionDelete    = "delete"
)

type AuditEntry struct {
	ID         uuid.UUID
	ActorUID   string
	ActorEmail string // empty when the credential carried no email
	TargetUID  string
	Action     string
	Payload    map[string]any
	CreatedAt  time.Time
}

// AuditRepository is append-only.
type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByTarget(ctx context.Context, targetUID string, limit int) ([]*AuditEntry, error)
}
