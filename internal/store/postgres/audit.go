package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: marshal payload: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO admin_audit_log (id, actor_uid, actor_email, target_uid, action, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.ActorUID, nilIfEmpty(entry.ActorEmail),
		entry.TargetUID, entry.Action, payload, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: %w", err)
	}

	return nil
}

func (r *AuditRepo) ListByTarget(ctx context.Context, targetUID string, limit int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_uid, actor_email, target_uid, action, payload, created_at
		 FROM admin_audit_log WHERE target_uid = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		targetUID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByTarget: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.ListByTarget")
}

func scanAuditEntries(rows pgx.Rows, caller string) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var actorEmail *string
		var payload []byte

		if err := rows.Scan(
			&e.ID, &e.ActorUID, &actorEmail, &e.TargetUID,
			&e.Action, &payload, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		e.ActorEmail = derefStr(actorEmail)
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("%s: unmarshal payload: %w", caller, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}
