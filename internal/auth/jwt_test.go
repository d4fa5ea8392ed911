package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/adminpanel/internal/auth"
)

const testSecret = "test-secret-key-very-long-and-secure-000"

func TestJWT_IssueAndValidateRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueToken(testSecret, "u1", "alice@example.com", 5*time.Minute, auth.TokenOptions{
		Role:  "admin",
		Roles: []string{"support", "admin"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(testSecret, token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, []string{"support", "admin"}, claims.Roles)
	assert.Equal(t, "adminpanel", claims.Issuer)
}

func TestJWT_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueToken(testSecret, "u1", "", -1*time.Second, auth.TokenOptions{})
	require.NoError(t, err)

	claims, err := auth.ValidateToken(testSecret, token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_InvalidSecretRejected(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueToken("correct-secret", "u1", "", 5*time.Minute, auth.TokenOptions{})
	require.NoError(t, err)

	claims, err := auth.ValidateToken("wrong-secret", token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_RejectsMalformedAndUnsafeTokens(t *testing.T) {
	t.Parallel()

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
	noExpStr, err := noExp.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	noSubjectStr, err := noSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	noneStr, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "missing expiry", token: noExpStr},
		{name: "missing subject", token: noSubjectStr},
		{name: "alg none", token: noneStr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := auth.ValidateToken(testSecret, tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestClaims_HasAdminClaim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		claims auth.Claims
		want   bool
	}{
		{name: "no claims", claims: auth.Claims{}, want: false},
		{name: "role admin", claims: auth.Claims{Role: "admin"}, want: true},
		{name: "role other", claims: auth.Claims{Role: "support"}, want: false},
		{name: "admin flag", claims: auth.Claims{Admin: true}, want: true},
		{name: "roles list", claims: auth.Claims{Roles: []string{"viewer", "admin"}}, want: true},
		{name: "roles list without admin", claims: auth.Claims{Roles: []string{"viewer"}}, want: false},
		{name: "case sensitive", claims: auth.Claims{Role: "Admin"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.claims.HasAdminClaim())
		})
	}
}

func TestClaims_UserIDPrefersUIDClaim(t *testing.T) {
	t.Parallel()

	c := auth.Claims{UID: "from-uid"}
	c.Subject = "from-sub"
	assert.Equal(t, "from-uid", c.UserID())

	c.UID = ""
	assert.Equal(t, "from-sub", c.UserID())
}

func TestClaims_Map(t *testing.T) {
	t.Parallel()

	c := auth.Claims{Email: "a@x.io", Role: "admin", Roles: []string{"admin"}}
	c.Subject = "u1"

	m := c.Map()
	assert.Equal(t, "u1", m["sub"])
	assert.Equal(t, "a@x.io", m["email"])
	assert.Equal(t, "admin", m["role"])
	assert.NotContains(t, m, "admin")
	assert.NotContains(t, m, "exp")
}
