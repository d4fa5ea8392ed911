package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/adminpanel/internal/account"
	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/server/middleware"
)

// HeaderIdempotencyKey carries the caller's idempotency key on mutations.
const HeaderIdempotencyKey = "X-Idempotency-Key"

type SuspendInput struct {
	UID            string `path:"uid" minLength:"1" maxLength:"128" doc:"Target user ID"`
	IdempotencyKey string `header:"X-Idempotency-Key" maxLength:"200" doc:"Optional idempotency key"`
	Body           struct {
		Reason       string   `json:"reason,omitempty" maxLength:"1000" doc:"Why the user is suspended (min 3 chars)"`
		Restrictions []string `json:"restrictions,omitempty" doc:"Any of ALL, CHAT, LOUNGES; defaults to ALL"`
		LoungeIDs    []string `json:"loungeIds,omitempty" doc:"Lounges to restrict, required with LOUNGES"`
		Channel      string   `json:"channel,omitempty" maxLength:"200" doc:"Free-text label for the channel"`
	}
}

type UserStateOutput struct {
	Body *account.UserState
}

type UnsuspendInput struct {
	UID            string `path:"uid" minLength:"1" maxLength:"128" doc:"Target user ID"`
	IdempotencyKey string `header:"X-Idempotency-Key" maxLength:"200" doc:"Optional idempotency key"`
}

type BlockInput struct {
	UID            string `path:"uid" minLength:"1" maxLength:"128" doc:"Target user ID"`
	IdempotencyKey string `header:"X-Idempotency-Key" maxLength:"200" doc:"Optional idempotency key"`
	Body           *struct {
		Reason string `json:"reason,omitempty" maxLength:"1000" doc:"Optional reason"`
	} `required:"false"`
}

type BlockOutput struct {
	Body *account.BlockResult
}

type DeleteUserInput struct {
	UID            string `path:"uid" minLength:"1" maxLength:"128" doc:"Target user ID"`
	IdempotencyKey string `header:"X-Idempotency-Key" maxLength:"200" doc:"Optional idempotency key"`
}

type DeleteUserOutput struct {
	Body struct {
		Status  string             `json:"status" doc:"Always \"deleted\""`
		Results domain.PurgeResult `json:"results" doc:"Records removed per partition, -1 when the partition failed"`
	}
}

type ListUsersInput struct {
	Limit  int `query:"limit" minimum:"0" maximum:"500" doc:"Page size (default 50)"`
	Offset int `query:"offset" minimum:"0" doc:"Number of users to skip"`
}

type ListUsersOutput struct {
	Body struct {
		Users []account.UserSummary `json:"users"`
	}
}

type GetUserInput struct {
	UID string `path:"uid" minLength:"1" maxLength:"128" doc:"Target user ID"`
}

type GetUserOutput struct {
	Body *account.UserDetail
}

type CheckAccessInput struct {
	UID     string `path:"uid" minLength:"1" maxLength:"128" doc:"Target user ID"`
	Feature string `query:"feature" required:"true" doc:"ALL, CHAT or LOUNGES"`
	Scope   string `query:"scope" doc:"Lounge ID when feature is LOUNGES"`
}

type CheckAccessOutput struct {
	Body domain.AccessDecision
}

type AuditTrailInput struct {
	UID   string `path:"uid" minLength:"1" maxLength:"128" doc:"Target user ID"`
	Limit int    `query:"limit" minimum:"0" maximum:"500" doc:"Maximum entries (default 50)"`
}

// AuditEntry is the wire form of domain.AuditEntry.
type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	ActorUID   string         `json:"actorUid"`
	ActorEmail string         `json:"actorEmail,omitempty"`
	TargetUID  string         `json:"targetUid"`
	Action     string         `json:"action"`
	Payload    map[string]any `json:"payload"`
	Timestamp  time.Time      `json:"timestamp"`
}

type AuditTrailOutput struct {
	Body struct {
		Entries []AuditEntry `json:"entries"`
	}
}

func RegisterUserRoutes(api huma.API, svc AccountService) {
	huma.Register(api, huma.Operation{
		OperationID: "suspend-user",
		Method:      http.MethodPost,
		Path:        "/users/{uid}/suspend",
		Summary:     "Suspend a user's access to platform features",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *SuspendInput) (*UserStateOutput, error) {
		actor, ok := middleware.ActorFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing or invalid credentials")
		}

		state, err := svc.Suspend(ctx, actor, input.UID, domain.SuspendParams{
			Reason:       input.Body.Reason,
			Restrictions: input.Body.Restrictions,
			LoungeIDs:    input.Body.LoungeIDs,
			Channel:      input.Body.Channel,
		}, input.IdempotencyKey)
		if err != nil {
			return nil, toHTTPError("suspend", err)
		}

		return &UserStateOutput{Body: state}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unsuspend-user",
		Method:      http.MethodPost,
		Path:        "/users/{uid}/unsuspend",
		Summary:     "Clear a user's suspension",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UnsuspendInput) (*UserStateOutput, error) {
		actor, ok := middleware.ActorFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing or invalid credentials")
		}

		state, err := svc.Unsuspend(ctx, actor, input.UID, input.IdempotencyKey)
		if err != nil {
			return nil, toHTTPError("unsuspend", err)
		}

		return &UserStateOutput{Body: state}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "block-user",
		Method:      http.MethodPost,
		Path:        "/users/{uid}/block",
		Summary:     "Disable a user's sign-in",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *BlockInput) (*BlockOutput, error) {
		actor, ok := middleware.ActorFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing or invalid credentials")
		}

		var reason string
		if input.Body != nil {
			reason = input.Body.Reason
		}

		res, err := svc.Block(ctx, actor, input.UID, reason, input.IdempotencyKey)
		if err != nil {
			return nil, toHTTPError("block", err)
		}

		return &BlockOutput{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/users/{uid}",
		Summary:     "Delete a user and purge all of their data",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *DeleteUserInput) (*DeleteUserOutput, error) {
		actor, ok := middleware.ActorFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing or invalid credentials")
		}

		results, err := svc.Delete(ctx, actor, input.UID, input.IdempotencyKey)
		if err != nil {
			return nil, toHTTPError("delete", err)
		}

		out := &DeleteUserOutput{}
		out.Body.Status = "deleted"
		out.Body.Results = results
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
		users, err := svc.List(ctx, input.Limit, input.Offset)
		if err != nil {
			return nil, toHTTPError("list users", err)
		}

		out := &ListUsersOutput{}
		out.Body.Users = users
		if out.Body.Users == nil {
			out.Body.Users = []account.UserSummary{}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{uid}",
		Summary:     "Get a user's profile and identity record",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
		detail, err := svc.Get(ctx, input.UID)
		if err != nil {
			return nil, toHTTPError("get user", err)
		}

		return &GetUserOutput{Body: detail}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-user-access",
		Method:      http.MethodGet,
		Path:        "/users/{uid}/access",
		Summary:     "Check whether a user may use a feature",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *CheckAccessInput) (*CheckAccessOutput, error) {
		decision, err := svc.CheckAccess(ctx, input.UID, input.Feature, input.Scope)
		if err != nil {
			return nil, toHTTPError("check access", err)
		}

		return &CheckAccessOutput{Body: decision}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "user-audit-trail",
		Method:      http.MethodGet,
		Path:        "/users/{uid}/audit",
		Summary:     "List audit entries about a user, newest first",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *AuditTrailInput) (*AuditTrailOutput, error) {
		entries, err := svc.AuditTrail(ctx, input.UID, input.Limit)
		if err != nil {
			return nil, toHTTPError("audit trail", err)
		}

		out := &AuditTrailOutput{}
		out.Body.Entries = make([]AuditEntry, 0, len(entries))
		for _, e := range entries {
			out.Body.Entries = append(out.Body.Entries, AuditEntry{
				ID:         e.ID,
				ActorUID:   e.ActorUID,
				ActorEmail: e.ActorEmail,
				TargetUID:  e.TargetUID,
				Action:     e.Action,
				Payload:    e.Payload,
				Timestamp:  e.CreatedAt,
			})
		}
		return out, nil
	})
}
