package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/adminpanel/internal/auth"
)

// HeaderAdminSecret carries the shared secret that authorizes admin creation.
const HeaderAdminSecret = "X-Admin-Secret"

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Admin email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

type CreateAdminInput struct {
	Secret string `header:"X-Admin-Secret" doc:"Shared bootstrap secret"`
	Body   struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Admin email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: bootstrap credential DTO
	}
}

type CreateAdminOutput struct {
	Body struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
		Admin bool   `json:"admin"`
	}
}

// RegisterAuthRoutes mounts the unauthenticated sign-in and bootstrap
// endpoints. An empty bootstrapSecret disables admin creation.
func RegisterAuthRoutes(api huma.API, authSvc AuthService, bootstrapSecret string) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		token, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, toHTTPError("login", err)
		}

		out := &LoginOutput{}
		out.Body.AccessToken = token
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-admin",
		Method:        http.MethodPost,
		Path:          "/auth/admins",
		Summary:       "Create an administrator account",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateAdminInput) (*CreateAdminOutput, error) {
		if !auth.CheckBootstrapSecret(bootstrapSecret, input.Secret) {
			return nil, huma.Error403Forbidden("invalid admin secret")
		}

		acct, err := authSvc.CreateAdmin(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrAccountExists) {
				return nil, huma.Error409Conflict("email already in use")
			}
			return nil, toHTTPError("create admin", err)
		}

		out := &CreateAdminOutput{}
		out.Body.UID = acct.UID
		out.Body.Email = acct.Email
		out.Body.Admin = true
		return out, nil
	})
}
