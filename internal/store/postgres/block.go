package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

// Upsert keeps one row per uid; blocking again refreshes reason and time.
func (r *BlockRepo) Upsert(ctx context.Context, b *domain.BlockRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_blocks (uid, reason, blocked_at) VALUES ($1, $2, $3)
		 ON CONFLICT (uid) DO UPDATE SET reason = EXCLUDED.reason, blocked_at = EXCLUDED.blocked_at`,
		b.UID, nilIfEmpty(b.Reason), b.BlockedAt,
	)
	if err != nil {
		return fmt.Errorf("blockRepo.Upsert: %w", err)
	}

	return nil
}
