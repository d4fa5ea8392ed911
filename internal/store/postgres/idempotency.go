package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

type IdempotencyRepo struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

func (r *IdempotencyRepo) Create(ctx context.Context, rec *domain.IdempotencyRecord) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO admin_idempotency (id, namespace, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Namespace, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("idempotencyRepo.Create: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idempotencyRepo.Create: %w", domain.ErrDuplicateKey)
	}

	return nil
}
