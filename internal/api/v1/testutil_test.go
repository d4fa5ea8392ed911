package v1_test

import (
	"context"

	"github.com/gosuda/adminpanel/internal/account"
	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the verified actor into context for DoCtx
// ---------------------------------------------------------------------------

var testActor = &domain.Actor{UID: "admin-1", Email: "root@example.com"}

func adminCtx() context.Context {
	return middleware.WithActor(context.Background(), testActor)
}

// ---------------------------------------------------------------------------
// Mock AccountService
// ---------------------------------------------------------------------------

type mockAccountService struct {
	suspendFunc     func(ctx context.Context, actor *domain.Actor, uid string, params domain.SuspendParams, idemKey string) (*account.UserState, error)
	unsuspendFunc   func(ctx context.Context, actor *domain.Actor, uid, idemKey string) (*account.UserState, error)
	blockFunc       func(ctx context.Context, actor *domain.Actor, uid, reason, idemKey string) (*account.BlockResult, error)
	deleteFunc      func(ctx context.Context, actor *domain.Actor, uid, idemKey string) (domain.PurgeResult, error)
	getFunc         func(ctx context.Context, uid string) (*account.UserDetail, error)
	listFunc        func(ctx context.Context, limit, offset int) ([]account.UserSummary, error)
	checkAccessFunc func(ctx context.Context, uid, feature, scopeID string) (domain.AccessDecision, error)
	auditTrailFunc  func(ctx context.Context, uid string, limit int) ([]*domain.AuditEntry, error)
}

func (m *mockAccountService) Suspend(ctx context.Context, actor *domain.Actor, uid string, params domain.SuspendParams, idemKey string) (*account.UserState, error) {
	return m.suspendFunc(ctx, actor, uid, params, idemKey)
}

func (m *mockAccountService) Unsuspend(ctx context.Context, actor *domain.Actor, uid, idemKey string) (*account.UserState, error) {
	return m.unsuspendFunc(ctx, actor, uid, idemKey)
}

func (m *mockAccountService) Block(ctx context.Context, actor *domain.Actor, uid, reason, idemKey string) (*account.BlockResult, error) {
	return m.blockFunc(ctx, actor, uid, reason, idemKey)
}

func (m *mockAccountService) Delete(ctx context.Context, actor *domain.Actor, uid, idemKey string) (domain.PurgeResult, error) {
	return m.deleteFunc(ctx, actor, uid, idemKey)
}

func (m *mockAccountService) Get(ctx context.Context, uid string) (*account.UserDetail, error) {
	return m.getFunc(ctx, uid)
}

func (m *mockAccountService) List(ctx context.Context, limit, offset int) ([]account.UserSummary, error) {
	return m.listFunc(ctx, limit, offset)
}

func (m *mockAccountService) CheckAccess(ctx context.Context, uid, feature, scopeID string) (domain.AccessDecision, error) {
	return m.checkAccessFunc(ctx, uid, feature, scopeID)
}

func (m *mockAccountService) AuditTrail(ctx context.Context, uid string, limit int) ([]*domain.AuditEntry, error) {
	return m.auditTrailFunc(ctx, uid, limit)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	loginFunc       func(ctx context.Context, email, password string) (string, error)
	createAdminFunc func(ctx context.Context, email, password string) (*domain.Account, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) CreateAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	return m.createAdminFunc(ctx, email, password)
}
