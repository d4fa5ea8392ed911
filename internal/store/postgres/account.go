package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

const accountColumns = `uid, email, password_hash, display_name, disabled, provider_ids, created_at, last_sign_in_at`

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// execer is satisfied by both the pool and a pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// insertAccount returns ErrConflict when the uid or email is taken.
func insertAccount(ctx context.Context, db execer, a *domain.Account) error {
	providers := a.ProviderIDs
	if providers == nil {
		providers = []string{}
	}

	_, err := db.Exec(ctx,
		`INSERT INTO accounts (uid, email, password_hash, display_name, disabled, provider_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.UID, nilIfEmpty(a.Email), nilIfEmpty(a.PasswordHash),
		a.DisplayName, a.Disabled, providers, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *AccountRepo) GetByID(ctx context.Context, uid string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE uid = $1`,
		uid,
	)

	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("accountRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("accountRepo.GetByID: %w", err)
	}

	return a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`,
		email,
	)

	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("accountRepo.GetByEmail: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("accountRepo.GetByEmail: %w", err)
	}

	return a, nil
}

func (r *AccountRepo) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 ORDER BY created_at, uid
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("accountRepo.List: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("accountRepo.List: scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("accountRepo.List: rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepo) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET disabled = $1 WHERE uid = $2`,
		disabled, uid,
	)
	if err != nil {
		return fmt.Errorf("accountRepo.SetDisabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("accountRepo.SetDisabled: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AccountRepo) TouchSignIn(ctx context.Context, uid string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET last_sign_in_at = now() WHERE uid = $1`,
		uid,
	)
	if err != nil {
		return fmt.Errorf("accountRepo.TouchSignIn: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("accountRepo.TouchSignIn: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, uid string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("accountRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("accountRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var email, passwordHash *string

	err := row.Scan(&a.UID, &email, &passwordHash, &a.DisplayName, &a.Disabled,
		&a.ProviderIDs, &a.CreatedAt, &a.LastSignInAt)
	if err != nil {
		return nil, err
	}

	a.Email = derefStr(email)
	a.PasswordHash = derefStr(passwordHash)

	return &a, nil
}

// --- Helpers ---

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
