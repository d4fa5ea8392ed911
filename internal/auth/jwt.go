package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity token payload. Subject carries the account uid; the
// admin fields mirror the custom claims an identity provider may attach.
type Claims struct {
	jwt.RegisteredClaims
	UID   string   `json:"uid,omitempty"`
	Email string   `json:"email,omitempty"`
	Role  string   `json:"role,omitempty"`
	Admin bool     `json:"admin,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

const (
	roleAdmin   = "admin"
	tokenIssuer = "adminpanel"
)

// ErrInvalidToken is returned when a token cannot be parsed, is not signed
// with the expected key or has expired.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// UserID prefers the explicit uid claim over the registered subject.
func (c *Claims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

// HasAdminClaim reports whether any of the admin claim forms is present.
func (c *Claims) HasAdminClaim() bool {
	return c.Role == roleAdmin || c.Admin || slices.Contains(c.Roles, roleAdmin)
}

// Map flattens the claims for the request actor.
func (c *Claims) Map() map[string]any {
	m := map[string]any{
		"sub": c.Subject,
	}
	if c.Email != "" {
		m["email"] = c.Email
	}
	if c.Role != "" {
		m["role"] = c.Role
	}
	if c.Admin {
		m["admin"] = true
	}
	if len(c.Roles) > 0 {
		m["roles"] = slices.Clone(c.Roles)
	}
	if c.ExpiresAt != nil {
		m["exp"] = c.ExpiresAt.Unix()
	}
	return m
}

// TokenOptions are the optional custom claims of an issued token.
type TokenOptions struct {
	Role  string
	Admin bool
	Roles []string
}

// IssueToken creates a signed HS256 identity token for uid.
func IssueToken(secret, uid, email string, ttl time.Duration, opts TokenOptions) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
		UID:   uid,
		Email: email,
		Role:  opts.Role,
		Admin: opts.Admin,
		Roles: opts.Roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.IssueToken: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a token string. Tokens without an
// expiry are rejected.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	if !token.Valid || claims.UserID() == "" {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	return claims, nil
}
