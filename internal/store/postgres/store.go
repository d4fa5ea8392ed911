package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/adminpanel/internal/domain"
)

//go:embed schema.sql
var schema string

type Store struct {
	pool        *pgxpool.Pool
	accounts    *AccountRepo
	profiles    *ProfileRepo
	partitions  *PartitionRepo
	blobs       *BlobRepo
	admins      *AdminRepo
	blocks      *BlockRepo
	audit       *AuditRepo
	idempotency *IdempotencyRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:        pool,
		accounts:    NewAccountRepo(pool),
		profiles:    NewProfileRepo(pool),
		partitions:  NewPartitionRepo(pool),
		blobs:       NewBlobRepo(pool),
		admins:      NewAdminRepo(pool),
		blocks:      NewBlockRepo(pool),
		audit:       NewAuditRepo(pool),
		idempotency: NewIdempotencyRepo(pool),
	}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Migrate: %w", err)
	}
	return nil
}

// Ping is used by the health check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Ping: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Accounts() domain.AccountRepository        { return s.accounts }
func (s *Store) Profiles() domain.ProfileRepository        { return s.profiles }
func (s *Store) Partitions() domain.PartitionRepository    { return s.partitions }
func (s *Store) Blobs() domain.BlobStore                   { return s.blobs }
func (s *Store) Admins() domain.AdminRepository            { return s.admins }
func (s *Store) Blocks() domain.BlockRepository            { return s.blocks }
func (s *Store) Audit() domain.AuditRepository             { return s.audit }
func (s *Store) Idempotency() domain.IdempotencyRepository { return s.idempotency }
