package domain

import (
	"context"
	"time"
)

// Account is the identity-store record that controls sign-in.
type Account struct {
	UID          string
	Email        string // may be empty for phone/OAuth-only accounts
	PasswordHash string // argon2id, empty if the account has no password provider
	DisplayName  string
	Disabled     bool
	ProviderIDs  []string
	CreatedAt    time.Time
	LastSignInAt *time.Time // nullable
}

// AdminGrant is an allow-list entry keyed by lower-cased email.
type AdminGrant struct {
	Email     string
	Admin     bool
	CreatedAt time.Time
}

// BlockRecord is the audit trail row written when an account is blocked.
type BlockRecord struct {
	UID       string
	Reason    string // empty when no reason was given
	BlockedAt time.Time
}

// AccountRepository is the identity store. Lookups and mutations of an
// absent account return ErrNotFound.
type AccountRepository interface {
	GetByID(ctx context.Context, uid string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, limit, offset int) ([]*Account, error)
	SetDisabled(ctx context.Context, uid string, disabled bool) error
	TouchSignIn(ctx context.Context, uid string) error
	Delete(ctx context.Context, uid string) error
}

// AdminRepository stores the administrator allow-list.
type AdminRepository interface {
	Get(ctx context.Context, emailLower string) (*AdminGrant, error)
	// Provision creates the account and its grant atomically. An account
	// that already exists returns ErrConflict and nothing is written.
	Provision(ctx context.Context, a *Account, g *AdminGrant) error
}

type BlockRepository interface {
	Upsert(ctx context.Context, b *BlockRecord) error
}

// AccountEvent is broadcast after a lifecycle mutation so services caching
// profile data can refresh it. Delivery is best-effort.
type AccountEvent struct {
	UID       string    `json:"uid"`
	Action    string    `json:"action"`
	ActorUID  string    `json:"actorUid"`
	Timestamp time.Time `json:"timestamp"`
}
