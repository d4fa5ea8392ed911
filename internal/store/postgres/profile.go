package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

// ProfileRepo stores profile documents as JSONB. Merge uses the jsonb
// concatenation operator so only the supplied top-level keys change.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	var doc []byte

	err := r.pool.QueryRow(ctx, `SELECT doc FROM profiles WHERE uid = $1`, uid).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profileRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("profileRepo.Get: %w", err)
	}

	p, err := domain.DecodeProfile(uid, doc)
	if err != nil {
		return nil, fmt.Errorf("profileRepo.Get: %w", err)
	}

	return p, nil
}

// GetMany returns the profiles that exist among uids. Missing ones are
// simply absent from the map.
func (r *ProfileRepo) GetMany(ctx context.Context, uids []string) (map[string]*domain.Profile, error) {
	out := make(map[string]*domain.Profile, len(uids))
	if len(uids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT uid, doc FROM profiles WHERE uid = ANY($1)`, uids)
	if err != nil {
		return nil, fmt.Errorf("profileRepo.GetMany: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		var doc []byte
		if err := rows.Scan(&uid, &doc); err != nil {
			return nil, fmt.Errorf("profileRepo.GetMany: scan: %w", err)
		}
		p, err := domain.DecodeProfile(uid, doc)
		if err != nil {
			return nil, fmt.Errorf("profileRepo.GetMany: %w", err)
		}
		out[uid] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profileRepo.GetMany: rows: %w", err)
	}

	return out, nil
}

func (r *ProfileRepo) Merge(ctx context.Context, uid string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("profileRepo.Merge: marshal: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO profiles (uid, doc) VALUES ($1, $2::jsonb)
		 ON CONFLICT (uid) DO UPDATE SET doc = profiles.doc || EXCLUDED.doc`,
		uid, patch,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Merge: %w", err)
	}

	return nil
}

// Delete removes the document. An absent document is not an error.
func (r *ProfileRepo) Delete(ctx context.Context, uid string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("profileRepo.Delete: %w", err)
	}
	return nil
}
