package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrWizardNotFound     = errors.New("wizard session not found")
	ErrSessionNotFound    = errors.New("identity session not found")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInactiveContract   = errors.New("no active contract")
)

// ValidationError is a local precondition failure detected before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RemoteError is returned when the remote API answered with a non-success status.
// Message is the server-supplied text, shown to the user verbatim.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// TransportError is returned when a remote call could not complete or its
// response could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

// TransportErrorMessage is the user-visible text for every transport failure.
const TransportErrorMessage = "could not reach the server, please try again"

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransitionError is returned when a wizard event is not valid from the current stage.
type TransitionError struct {
	Event   Event
	Current Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from stage %q", e.Event, e.Current)
}

// ForbiddenError is returned when the actor's role may not perform an operation.
type ForbiddenError struct {
	Role string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %q is not allowed to access this resource", e.Role)
}

// UserMessage returns the text that should be surfaced to the user for err.
// Transport failures get a generic message; everything else is shown as is.
func UserMessage(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return TransportErrorMessage
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return err.Error()
}
