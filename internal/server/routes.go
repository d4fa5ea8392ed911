package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/gosuda/adminpanel/internal/api/v1"
)

func registerAuthRoutes(api huma.API, authSvc v1.AuthService, bootstrapSecret string) {
	v1.RegisterAuthRoutes(api, authSvc, bootstrapSecret)
}

func registerAPIRoutes(api huma.API, accounts v1.AccountService) {
	v1.RegisterUserRoutes(api, accounts)
}
