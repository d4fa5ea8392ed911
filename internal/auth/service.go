package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"

	"github.com/gosuda/adminpanel/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountExists      = errors.New("auth: account already exists")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

const passwordProvider = "password"

// Service signs administrators in with email and password and bootstraps new
// administrator accounts. It stands in for the hosted identity provider's
// client SDK; credential verification on API calls goes through Verifier.
type Service struct {
	accounts  domain.AccountRepository
	admins    domain.AdminRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(accounts domain.AccountRepository, admins domain.AdminRepository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		accounts:  accounts,
		admins:    admins,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Login validates email/password and returns an identity token. Disabled
// accounts cannot sign in.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acct, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("auth.Login: %w", err)
	}

	if acct.Disabled || !verifyPassword(password, acct.PasswordHash) {
		return "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	token, err := IssueToken(s.jwtSecret, acct.UID, acct.Email, s.tokenTTL, TokenOptions{})
	if err != nil {
		return "", fmt.Errorf("auth.Login: %w", err)
	}

	if err := s.accounts.TouchSignIn(ctx, acct.UID); err != nil {
		log.Warn().Err(err).Str("uid", acct.UID).Msg("auth: failed to update last sign-in")
	}

	return token, nil
}

// CreateAdmin creates a password account and adds its email to the admin
// allow-list in one write.
func (s *Service) CreateAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	email = normalizeEmail(email)

	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("auth.CreateAdmin: %w", ErrAccountExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("auth.CreateAdmin: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.CreateAdmin: %w", err)
	}

	now := time.Now().UTC()
	acct := &domain.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		ProviderIDs:  []string{passwordProvider},
		CreatedAt:    now,
	}

	grant := &domain.AdminGrant{Email: email, Admin: true, CreatedAt: now}
	if err := s.admins.Provision(ctx, acct, grant); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("auth.CreateAdmin: %w", ErrAccountExists)
		}
		return nil, fmt.Errorf("auth.CreateAdmin: %w", err)
	}

	return acct, nil
}

// CheckBootstrapSecret compares the provided secret in constant time. An
// unconfigured secret never matches.
func CheckBootstrapSecret(configured, provided string) bool {
	if configured == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(computed, expectedHash) == 1
}
