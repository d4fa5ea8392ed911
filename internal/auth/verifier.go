package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosuda/adminpanel/internal/domain"
)

// Verifier turns a raw bearer credential into an administrator Actor.
type Verifier struct {
	secret   string
	accounts domain.AccountRepository
	admins   domain.AdminRepository
}

func NewVerifier(secret string, accounts domain.AccountRepository, admins domain.AdminRepository) *Verifier {
	return &Verifier{secret: secret, accounts: accounts, admins: admins}
}

// VerifyAdmin fails with domain.ErrUnauthorized when the credential is
// missing, invalid, expired or belongs to a deleted or disabled account, and
// with domain.ErrForbidden when the credential is valid but its subject is
// neither carrying an admin claim nor on the allow-list. It never writes.
func (v *Verifier) VerifyAdmin(ctx context.Context, rawCredential string) (*domain.Actor, error) {
	if rawCredential == "" {
		return nil, fmt.Errorf("auth.VerifyAdmin: %w: missing bearer token", domain.ErrUnauthorized)
	}

	claims, err := ValidateToken(v.secret, rawCredential)
	if err != nil {
		return nil, fmt.Errorf("auth.VerifyAdmin: %w: invalid or expired token", domain.ErrUnauthorized)
	}

	uid := claims.UserID()

	// Revocation check: tokens outlive the account they were issued for.
	acct, err := v.accounts.GetByID(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("auth.VerifyAdmin: %w: account no longer exists", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("auth.VerifyAdmin: %w", err)
	}
	if acct.Disabled {
		return nil, fmt.Errorf("auth.VerifyAdmin: %w: account disabled", domain.ErrUnauthorized)
	}

	email := claims.Email
	if email == "" {
		email = acct.Email
	}

	if !claims.HasAdminClaim() {
		listed, err := v.isAllowListed(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("auth.VerifyAdmin: %w", err)
		}
		if !listed {
			return nil, fmt.Errorf("auth.VerifyAdmin: %w: admin access required", domain.ErrForbidden)
		}
	}

	return &domain.Actor{
		UID:    uid,
		Email:  email,
		Claims: claims.Map(),
	}, nil
}

// isAllowListed treats a missing allow-list entry as "not admin".
func (v *Verifier) isAllowListed(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}

	grant, err := v.admins.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("allow-list lookup: %w", err)
	}

	return grant.Admin, nil
}
