package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/adminpanel/internal/domain"
)

// Credential sources, in lookup order after the Authorization header.
const (
	HeaderIDToken = "X-Id-Token"
	SessionCookie = "__session"
)

type AdminVerifier interface {
	VerifyAdmin(ctx context.Context, rawCredential string) (*domain.Actor, error)
}

// RequireAdmin verifies the caller's credential and stores the resulting
// Actor in the request context. It answers 401 when the credential is
// missing or rejected and 403 when the caller is not an administrator.
func RequireAdmin(v AdminVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := v.VerifyAdmin(r.Context(), ExtractCredential(r))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
			case errors.Is(err, domain.ErrUnauthorized):
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
			case errors.Is(err, domain.ErrForbidden):
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"admin access required"}`, http.StatusForbidden)
			default:
				log.Error().Err(err).Str("path", r.URL.Path).Msg("auth: admin verification failed")
				http.Error(w, `{"title":"Internal Server Error","status":500,"detail":"internal error"}`, http.StatusInternalServerError)
			}
		})
	}
}

// ExtractCredential returns the raw identity token from the Authorization
// bearer header, the X-Id-Token header or the __session cookie.
func ExtractCredential(r *http.Request) string {
	if tok := extractBearer(r); tok != "" {
		return tok
	}
	if tok := strings.TrimSpace(r.Header.Get(HeaderIDToken)); tok != "" {
		return tok
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
