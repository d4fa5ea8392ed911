package v1

import (
	"context"

	"github.com/gosuda/adminpanel/internal/account"
	"github.com/gosuda/adminpanel/internal/domain"
)

// AccountService abstracts the admin user operations for handler testing.
// *account.Service satisfies this interface.
type AccountService interface {
	Suspend(ctx context.Context, actor *domain.Actor, uid string, params domain.SuspendParams, idemKey string) (*account.UserState, error)
	Unsuspend(ctx context.Context, actor *domain.Actor, uid, idemKey string) (*account.UserState, error)
	Block(ctx context.Context, actor *domain.Actor, uid, reason, idemKey string) (*account.BlockResult, error)
	Delete(ctx context.Context, actor *domain.Actor, uid, idemKey string) (domain.PurgeResult, error)
	Get(ctx context.Context, uid string) (*account.UserDetail, error)
	List(ctx context.Context, limit, offset int) ([]account.UserSummary, error)
	CheckAccess(ctx context.Context, uid, feature, scopeID string) (domain.AccessDecision, error)
	AuditTrail(ctx context.Context, uid string, limit int) ([]*domain.AuditEntry, error)
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateAdmin(ctx context.Context, email, password string) (*domain.Account, error)
}
