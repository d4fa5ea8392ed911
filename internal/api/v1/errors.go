package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/adminpanel/internal/domain"
)

// toHTTPError maps a service error onto the API error taxonomy. Unexpected
// errors are logged and answered with a generic message so no internal
// detail reaches the caller.
func toHTTPError(op string, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return huma.Error400BadRequest(ve.Message)
	case errors.Is(err, domain.ErrValidation):
		return huma.Error400BadRequest("invalid request")
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized("missing or invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("admin access required")
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("idempotency key already used")
	default:
		log.Error().Err(err).Str("operation", op).Msg("api: request failed")
		return huma.Error500InternalServerError(op + " failed")
	}
}
