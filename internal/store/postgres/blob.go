package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BlobRepo is the object store for user uploads, keyed by slash-separated
// path. Uploads are written by the platform's upload service; the panel only
// removes them.
type BlobRepo struct {
	pool *pgxpool.Pool
}

func NewBlobRepo(pool *pgxpool.Pool) *BlobRepo {
	return &BlobRepo{pool: pool}
}

// DeleteByPrefix removes every object whose path starts with prefix.
func (r *BlobRepo) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("blobRepo.DeleteByPrefix: empty prefix")
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM blob_objects WHERE starts_with(path, $1)`,
		prefix,
	)
	if err != nil {
		return 0, fmt.Errorf("blobRepo.DeleteByPrefix: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
