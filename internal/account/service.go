// Package account implements the administrator operations on user accounts.
// Each mutation runs validation, target lookup, the idempotency guard, the
// mutation itself and the audit record, in that order.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/idempotency"
	"github.com/gosuda/adminpanel/internal/observability/metrics"
)

const (
	DefaultListLimit  = 50
	MaxListLimit      = 500
	DefaultAuditLimit = 50
)

// Guard is the idempotency guard.
type Guard interface {
	EnsureOnce(ctx context.Context, namespace, key string) error
}

type Purger interface {
	Purge(ctx context.Context, uid string) (domain.PurgeResult, error)
}

type Auditor interface {
	Record(ctx context.Context, actor *domain.Actor, targetUID, action string, payload map[string]any)
	List(ctx context.Context, targetUID string, limit int) ([]*domain.AuditEntry, error)
}

// EventPublisher broadcasts account lifecycle events. Failures are logged and
// never fail the operation.
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, ev domain.AccountEvent) error
}

// Deps are the collaborators of a Service. Events may be nil.
type Deps struct {
	Accounts domain.AccountRepository
	Profiles domain.ProfileRepository
	Admins   domain.AdminRepository
	Blocks   domain.BlockRepository
	Guard    Guard
	Purger   Purger
	Audit    Auditor
	Events   EventPublisher
}

type Service struct {
	accounts domain.AccountRepository
	profiles domain.ProfileRepository
	admins   domain.AdminRepository
	blocks   domain.BlockRepository
	guard    Guard
	purger   Purger
	audit    Auditor
	events   EventPublisher
	now      func() time.Time
}

func NewService(deps Deps) *Service {
	return &Service{
		accounts: deps.Accounts,
		profiles: deps.Profiles,
		admins:   deps.Admins,
		blocks:   deps.Blocks,
		guard:    deps.Guard,
		purger:   deps.Purger,
		audit:    deps.Audit,
		events:   deps.Events,
		now:      time.Now,
	}
}

// UserState is returned by Suspend and Unsuspend.
type UserState struct {
	UID        string            `json:"uid"`
	Email      string            `json:"email"`
	Disabled   bool              `json:"disabled"`
	Suspension domain.Suspension `json:"suspension"`
}

type BlockResult struct {
	OK       bool   `json:"ok"`
	UID      string `json:"uid"`
	Disabled bool   `json:"disabled"`
}

// AuthInfo is the identity-store view of a user.
type AuthInfo struct {
	Email        string     `json:"email,omitempty"`
	DisplayName  string     `json:"displayName,omitempty"`
	Disabled     bool       `json:"disabled"`
	ProviderIDs  []string   `json:"providerIds"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastSignInAt *time.Time `json:"lastSignInAt,omitempty"`
}

// UserDetail combines both stores. Either side is nil when absent.
type UserDetail struct {
	UID     string          `json:"uid"`
	Profile *domain.Profile `json:"profile"`
	Auth    *AuthInfo       `json:"auth"`
}

type UserSummary struct {
	UID          string     `json:"uid"`
	Email        string     `json:"email,omitempty"`
	DisplayName  string     `json:"displayName,omitempty"`
	Disabled     bool       `json:"disabled"`
	Admin        bool       `json:"admin"`
	UserType     string     `json:"userType,omitempty"`
	SellerType   string     `json:"sellerType,omitempty"`
	Suspended    bool       `json:"suspended"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastSignInAt *time.Time `json:"lastSignInAt,omitempty"`
}

// target is the user an operation acts on. At least one of the two records
// exists.
type target struct {
	account *domain.Account
	profile *domain.Profile
}

func (t target) email() string {
	if t.account != nil && t.account.Email != "" {
		return t.account.Email
	}
	if t.profile != nil {
		return t.profile.Email
	}
	return ""
}

func (t target) disabled() bool {
	return t.account != nil && t.account.Disabled
}

// Suspend sets an active suspension on the profile. It never changes the
// account's sign-in state.
func (s *Service) Suspend(ctx context.Context, actor *domain.Actor, uid string, params domain.SuspendParams, idemKey string) (_ *UserState, err error) {
	defer func() { metrics.ObserveAdminAction(domain.ActionSuspend, err) }()

	susp, err := domain.NewSuspension(params)
	if err != nil {
		return nil, fmt.Errorf("account.Suspend: %w", err)
	}

	t, err := s.lookup(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("account.Suspend: %w", err)
	}

	if err := s.guard.EnsureOnce(ctx, idempotency.SuspendNamespace(uid), idemKey); err != nil {
		return nil, fmt.Errorf("account.Suspend: %w", err)
	}

	if err := s.profiles.Merge(ctx, uid, map[string]any{domain.ProfileKeySuspension: susp}); err != nil {
		return nil, fmt.Errorf("account.Suspend: %w", err)
	}

	s.audit.Record(ctx, actor, uid, domain.ActionSuspend, map[string]any{
		"reason":       susp.Reason,
		"restrictions": susp.Restrictions,
		"loungeIds":    susp.LoungeIDs,
		"channel":      susp.Channel,
	})
	s.publish(ctx, actor, uid, domain.ActionSuspend)

	return &UserState{UID: uid, Email: t.email(), Disabled: t.disabled(), Suspension: susp}, nil
}

// Unsuspend clears the suspension. Clearing an already clear suspension
// succeeds.
func (s *Service) Unsuspend(ctx context.Context, actor *domain.Actor, uid, idemKey string) (_ *UserState, err error) {
	defer func() { metrics.ObserveAdminAction(domain.ActionUnsuspend, err) }()

	t, err := s.lookup(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("account.Unsuspend: %w", err)
	}

	if err := s.guard.EnsureOnce(ctx, idempotency.UnsuspendNamespace(uid), idemKey); err != nil {
		return nil, fmt.Errorf("account.Unsuspend: %w", err)
	}

	cleared := domain.ClearedSuspension()
	if err := s.profiles.Merge(ctx, uid, map[string]any{domain.ProfileKeySuspension: cleared}); err != nil {
		return nil, fmt.Errorf("account.Unsuspend: %w", err)
	}

	s.audit.Record(ctx, actor, uid, domain.ActionUnsuspend, nil)
	s.publish(ctx, actor, uid, domain.ActionUnsuspend)

	return &UserState{UID: uid, Email: t.email(), Disabled: t.disabled(), Suspension: cleared}, nil
}

// Block disables sign-in, mirrors the state onto the profile and writes the
// block trail. The suspension sub-record is left untouched.
func (s *Service) Block(ctx context.Context, actor *domain.Actor, uid, reason, idemKey string) (_ *BlockResult, err error) {
	defer func() { metrics.ObserveAdminAction(domain.ActionBlock, err) }()

	reason = strings.TrimSpace(reason)

	if _, err := s.accounts.GetByID(ctx, uid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account.Block: %w: user not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("account.Block: %w", err)
	}

	if err := s.guard.EnsureOnce(ctx, idempotency.BlockNamespace(uid), idemKey); err != nil {
		return nil, fmt.Errorf("account.Block: %w", err)
	}

	if err := s.accounts.SetDisabled(ctx, uid, true); err != nil {
		return nil, fmt.Errorf("account.Block: %w", err)
	}

	now := s.now().UTC()
	if err := s.profiles.Merge(ctx, uid, map[string]any{
		domain.ProfileKeySuspended:   true,
		domain.ProfileKeyStatus:      domain.StatusSuspended,
		domain.ProfileKeySuspendedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("account.Block: %w", err)
	}

	if err := s.blocks.Upsert(ctx, &domain.BlockRecord{UID: uid, Reason: reason, BlockedAt: now}); err != nil {
		return nil, fmt.Errorf("account.Block: %w", err)
	}

	s.audit.Record(ctx, actor, uid, domain.ActionBlock, map[string]any{"reason": reason})
	s.publish(ctx, actor, uid, domain.ActionBlock)

	return &BlockResult{OK: true, UID: uid, Disabled: true}, nil
}

// Delete purges every record the user owns. Deleting an absent user succeeds
// with zero counts. Partition failures are reported in the result.
func (s *Service) Delete(ctx context.Context, actor *domain.Actor, uid, idemKey string) (_ domain.PurgeResult, err error) {
	defer func() { metrics.ObserveAdminAction(domain.ActionDelete, err) }()

	if err := s.guard.EnsureOnce(ctx, idempotency.DeleteNamespace(uid), idemKey); err != nil {
		return nil, fmt.Errorf("account.Delete: %w", err)
	}

	results, err := s.purger.Purge(ctx, uid)

	payload := map[string]any{"results": results}
	if failed := results.Failed(); len(failed) > 0 {
		payload["failed"] = failed
	}
	if err != nil {
		payload["accountDeleted"] = false
	}
	s.audit.Record(ctx, actor, uid, domain.ActionDelete, payload)

	if err != nil {
		return nil, fmt.Errorf("account.Delete: %w", err)
	}

	s.publish(ctx, actor, uid, domain.ActionDelete)

	return results, nil
}

func (s *Service) Get(ctx context.Context, uid string) (*UserDetail, error) {
	t, err := s.lookup(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("account.Get: %w", err)
	}

	detail := &UserDetail{UID: uid, Profile: t.profile}
	if a := t.account; a != nil {
		providers := a.ProviderIDs
		if providers == nil {
			providers = []string{}
		}
		detail.Auth = &AuthInfo{
			Email:        a.Email,
			DisplayName:  a.DisplayName,
			Disabled:     a.Disabled,
			ProviderIDs:  providers,
			CreatedAt:    a.CreatedAt,
			LastSignInAt: a.LastSignInAt,
		}
	}

	return detail, nil
}

// List pages through identity accounts and joins profile and allow-list data.
func (s *Service) List(ctx context.Context, limit, offset int) ([]UserSummary, error) {
	limit = clampLimit(limit, DefaultListLimit, MaxListLimit)
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("account.List: %w", err)
	}

	uids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		uids = append(uids, a.UID)
	}
	profiles, err := s.profiles.GetMany(ctx, uids)
	if err != nil {
		return nil, fmt.Errorf("account.List: %w", err)
	}

	users := make([]UserSummary, 0, len(accounts))
	for _, a := range accounts {
		admin, err := s.isAdmin(ctx, a.Email)
		if err != nil {
			return nil, fmt.Errorf("account.List: %w", err)
		}

		u := UserSummary{
			UID:          a.UID,
			Email:        a.Email,
			DisplayName:  a.DisplayName,
			Disabled:     a.Disabled,
			Admin:        admin,
			CreatedAt:    a.CreatedAt,
			LastSignInAt: a.LastSignInAt,
		}
		if p, ok := profiles[a.UID]; ok {
			u.UserType = p.UserType
			u.SellerType = p.SellerType
			u.Suspended = p.Suspension.Active
			if u.DisplayName == "" {
				u.DisplayName = p.DisplayName
			}
		}
		users = append(users, u)
	}

	return users, nil
}

// CheckAccess evaluates the stored suspension. A user without a profile has
// no suspension and is allowed.
func (s *Service) CheckAccess(ctx context.Context, uid, feature, scopeID string) (domain.AccessDecision, error) {
	f, ok := domain.ParseRestriction(strings.ToUpper(strings.TrimSpace(feature)))
	if !ok {
		return domain.AccessDecision{}, fmt.Errorf("account.CheckAccess: %w", &domain.ValidationError{
			Field:   "feature",
			Message: "feature must be one of ALL, CHAT, LOUNGES",
		})
	}

	p, err := s.profiles.Get(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.AccessDecision{Allowed: true}, nil
	}
	if err != nil {
		return domain.AccessDecision{}, fmt.Errorf("account.CheckAccess: %w", err)
	}

	return p.Suspension.Evaluate(f, strings.TrimSpace(scopeID)), nil
}

// AuditTrail returns the newest audit entries about uid.
func (s *Service) AuditTrail(ctx context.Context, uid string, limit int) ([]*domain.AuditEntry, error) {
	entries, err := s.audit.List(ctx, uid, clampLimit(limit, DefaultAuditLimit, MaxListLimit))
	if err != nil {
		return nil, fmt.Errorf("account.AuditTrail: %w", err)
	}
	return entries, nil
}

// lookup fails with domain.ErrNotFound when neither store knows uid.
func (s *Service) lookup(ctx context.Context, uid string) (target, error) {
	var t target

	acct, err := s.accounts.GetByID(ctx, uid)
	switch {
	case err == nil:
		t.account = acct
	case !errors.Is(err, domain.ErrNotFound):
		return t, err
	}

	p, err := s.profiles.Get(ctx, uid)
	switch {
	case err == nil:
		t.profile = p
	case !errors.Is(err, domain.ErrNotFound):
		return t, err
	}

	if t.account == nil && t.profile == nil {
		return t, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	return t, nil
}

func (s *Service) isAdmin(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}

	g, err := s.admins.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return g.Admin, nil
}

func (s *Service) publish(ctx context.Context, actor *domain.Actor, uid, action string) {
	if s.events == nil {
		return
	}

	ev := domain.AccountEvent{UID: uid, Action: action, Timestamp: s.now().UTC()}
	if actor != nil {
		ev.ActorUID = actor.UID
	}

	if err := s.events.PublishAccountEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Str("uid", uid).Str("action", action).Msg("account: event publish failed")
	}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
