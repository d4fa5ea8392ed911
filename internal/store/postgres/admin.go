package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

type AdminRepo struct {
	pool *pgxpool.Pool
}

func NewAdminRepo(pool *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

func (r *AdminRepo) Get(ctx context.Context, emailLower string) (*domain.AdminGrant, error) {
	var g domain.AdminGrant

	err := r.pool.QueryRow(ctx,
		`SELECT email, admin, created_at FROM admins WHERE email = $1`,
		emailLower,
	).Scan(&g.Email, &g.Admin, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adminRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("adminRepo.Get: %w", err)
	}

	return &g, nil
}

func (r *AdminRepo) Provision(ctx context.Context, a *domain.Account, g *domain.AdminGrant) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertAccount(ctx, tx, a); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO admins (email, admin, created_at) VALUES ($1, $2, $3)
			 ON CONFLICT (email) DO UPDATE SET admin = EXCLUDED.admin`,
			g.Email, g.Admin, g.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("adminRepo.Provision: %w", err)
	}

	return nil
}
