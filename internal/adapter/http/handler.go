package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

// SessionHeader carries the console session id issued at login.
const SessionHeader = "X-Console-Session"

// Services groups the application services exposed over HTTP.
type Services struct {
	Sessions  *app.SessionService
	Wizards   *app.WizardService
	Directory *app.DirectoryService
	Tasks     *app.TaskService
}

// SessionInput is embedded in every authenticated request.
type SessionInput struct {
	Session string `header:"X-Console-Session" required:"false" doc:"Session id returned by the login endpoint"`
}

// EmptyOutput is returned by operations that only report success.
type EmptyOutput struct{}

// Register adds all console API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerSessions(api, svc.Sessions)
	registerWizards(api, svc)
	registerUsers(api, svc)
	registerTasks(api, svc)
}

// actorFor resolves the session header into the identity passed to services.
func actorFor(ctx context.Context, sessions *app.SessionService, in SessionInput) (domain.Identity, error) {
	actor, err := sessions.Resolve(ctx, in.Session)
	if err != nil {
		return domain.Identity{}, toHumaError(err)
	}
	return actor, nil
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, domain.ErrInactiveContract):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, domain.ErrWizardNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return huma.Error409Conflict(err.Error())
	}

	var forbidden *domain.ForbiddenError
	if errors.As(err, &forbidden) {
		return huma.Error403Forbidden(forbidden.Error())
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return huma.Error422UnprocessableEntity(validationErr.Message, &huma.ErrorDetail{
			Message:  validationErr.Message,
			Location: "body." + validationErr.Field,
		})
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var remoteErr *domain.RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Status >= http.StatusInternalServerError {
			return huma.Error502BadGateway(remoteErr.Message)
		}
		return huma.Error422UnprocessableEntity(remoteErr.Message)
	}

	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return huma.Error502BadGateway(domain.TransportErrorMessage)
	}

	return huma.Error500InternalServerError("internal server error")
}
