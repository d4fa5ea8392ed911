package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

type PartitionRepo struct {
	pool *pgxpool.Pool
}

func NewPartitionRepo(pool *pgxpool.Pool) *PartitionRepo {
	return &PartitionRepo{pool: pool}
}

// DeleteOwned removes one page of rows in a single statement. Table and
// column names come from configuration and are quoted as identifiers.
func (r *PartitionRepo) DeleteOwned(ctx context.Context, p domain.Partition, uid string, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, deletePageSQL(p), uid, limit)
	if err != nil {
		return 0, fmt.Errorf("partitionRepo.DeleteOwned %s: %w", p.Name, err)
	}

	return int(tag.RowsAffected()), nil
}

func deletePageSQL(p domain.Partition) string {
	table := pgx.Identifier{p.Table}.Sanitize()
	owner := pgx.Identifier{p.OwnerField}.Sanitize()

	return fmt.Sprintf(
		`DELETE FROM %[1]s WHERE ctid IN (SELECT ctid FROM %[1]s WHERE %[2]s = $1 LIMIT $2)`,
		table, owner,
	)
}
