package auth_test

import (
	"context"
	"strings"
	"sync"

	"github.com/gosuda/adminpanel/internal/domain"
)

// memAccounts is an in-memory domain.AccountRepository for auth tests.
type memAccounts struct {
	mu       sync.Mutex
	byID     map[string]*domain.Account
	getErr   error
	touched  []string
	createFn func(a *domain.Account) error
}

func newMemAccounts(accts ...*domain.Account) *memAccounts {
	m := &memAccounts{byID: make(map[string]*domain.Account)}
	for _, a := range accts {
		m.byID[a.UID] = a
	}
	return m
}

func (m *memAccounts) insert(a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createFn != nil {
		if err := m.createFn(a); err != nil {
			return err
		}
	}
	m.byID[a.UID] = a
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, uid string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	a, ok := m.byID[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, a := range m.byID {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAccounts) List(context.Context, int, int) ([]*domain.Account, error) {
	panic("not implemented")
}

func (m *memAccounts) SetDisabled(context.Context, string, bool) error { panic("not implemented") }

func (m *memAccounts) TouchSignIn(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.touched = append(m.touched, uid)
	return nil
}

func (m *memAccounts) Delete(context.Context, string) error { panic("not implemented") }

// memAdmins is an in-memory allow-list keyed by lower-cased email. Provision
// writes the account into accounts, which must be set by the test.
type memAdmins struct {
	mu           sync.Mutex
	grants       map[string]*domain.AdminGrant
	getErr       error
	provisionErr error
	lookups      []string
	accounts     *memAccounts
}

func newMemAdmins(emails ...string) *memAdmins {
	m := &memAdmins{grants: make(map[string]*domain.AdminGrant)}
	for _, e := range emails {
		m.grants[e] = &domain.AdminGrant{Email: e, Admin: true}
	}
	return m
}

func (m *memAdmins) Get(_ context.Context, emailLower string) (*domain.AdminGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups = append(m.lookups, emailLower)
	if m.getErr != nil {
		return nil, m.getErr
	}
	g, ok := m.grants[emailLower]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (m *memAdmins) Provision(_ context.Context, a *domain.Account, g *domain.AdminGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.provisionErr != nil {
		return m.provisionErr
	}
	if err := m.accounts.insert(a); err != nil {
		return err
	}
	m.grants[g.Email] = g
	return nil
}

func newAdminStore(accounts *memAccounts) *memAdmins {
	m := newMemAdmins()
	m.accounts = accounts
	return m
}
