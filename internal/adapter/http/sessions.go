package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

// SessionResponse is the API representation of an identity session.
// The bearer token is never echoed back.
type SessionResponse struct {
	SessionID      string `json:"sessionId" doc:"Session id to send in the X-Console-Session header"`
	TenantID       string `json:"tenantId" doc:"Company the actor belongs to"`
	UserID         string `json:"userId" doc:"Remote user id"`
	Role           string `json:"role" doc:"ADMIN or USER"`
	Active         bool   `json:"active" doc:"Whether the company contract is active"`
	DisplayName    string `json:"displayName,omitempty"`
	Color          string `json:"color,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
	HierarchyID    string `json:"hierarchyId,omitempty"`
	HierarchyLabel string `json:"hierarchyLabel,omitempty"`
	CreatedAt      string `json:"createdAt" doc:"Login timestamp (ISO 8601)"`
}

func toSessionResponse(id domain.Identity) SessionResponse {
	return SessionResponse{
		SessionID:      id.SessionID,
		TenantID:       id.TenantID,
		UserID:         id.UserID,
		Role:           id.Role,
		Active:         id.Active,
		DisplayName:    id.DisplayName,
		Color:          id.Color,
		LogoURL:        id.LogoURL,
		HierarchyID:    id.HierarchyID,
		HierarchyLabel: id.HierarchyLabel,
		CreatedAt:      id.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// --- Login ---

type LoginInput struct {
	Body struct {
		Token          string `json:"token" minLength:"1" doc:"Bearer token issued by the identity provider"`
		TenantID       string `json:"tenantId,omitempty" doc:"Company id"`
		UserID         string `json:"userId,omitempty" doc:"Remote user id"`
		Role           string `json:"role" enum:"ADMIN,USER" doc:"Actor role"`
		Active         bool   `json:"active" doc:"Whether the company contract is active"`
		DisplayName    string `json:"displayName,omitempty"`
		Color          string `json:"color,omitempty"`
		LogoURL        string `json:"logoUrl,omitempty"`
		HierarchyID    string `json:"hierarchyId,omitempty"`
		HierarchyLabel string `json:"hierarchyLabel,omitempty"`
	}
}

type SessionOutput struct {
	Body SessionResponse
}

func registerSessions(api huma.API, sessions *app.SessionService) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions",
		Summary:     "Open a console session for an authenticated actor",
		Description: "Trusts the role and contract state it is given. Expose only to the identity provider callback.",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
		b := input.Body
		identity, err := sessions.Login(ctx, domain.Identity{
			Token:          b.Token,
			TenantID:       b.TenantID,
			UserID:         b.UserID,
			Role:           b.Role,
			Active:         b.Active,
			DisplayName:    b.DisplayName,
			Color:          b.Color,
			LogoURL:        b.LogoURL,
			HierarchyID:    b.HierarchyID,
			HierarchyLabel: b.HierarchyLabel,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SessionOutput{Body: toSessionResponse(identity)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-current-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/current",
		Summary:     "Get the current session",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
		actor, err := actorFor(ctx, sessions, *input)
		if err != nil {
			return nil, err
		}
		return &SessionOutput{Body: toSessionResponse(actor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/current",
		Summary:       "Close the current session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *SessionInput) (*EmptyOutput, error) {
		if err := sessions.Logout(ctx, input.Session); err != nil {
			return nil, toHumaError(err)
		}
		return &EmptyOutput{}, nil
	})
}
