package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// SessionService manages identity sessions: populated at login, cleared at logout.
type SessionService struct {
	store    domain.IdentityStore
	onLogout []func(sessionID string)
}

// NewSessionService creates a service backed by the given store.
func NewSessionService(store domain.IdentityStore) *SessionService {
	return &SessionService{store: store}
}

// OnLogout registers fn to run after a session is cleared, e.g. to drop
// state keyed by the session id.
func (s *SessionService) OnLogout(fn func(sessionID string)) *SessionService {
	s.onLogout = append(s.onLogout, fn)
	return s
}

// Login stores the externally authenticated identity and returns it with a
// fresh session id.
func (s *SessionService) Login(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	identity.Role = strings.ToUpper(strings.TrimSpace(identity.Role))
	if identity.Role != domain.RoleAdmin && identity.Role != domain.RoleUser {
		return domain.Identity{}, &domain.ValidationError{Field: "role", Message: "must be ADMIN or USER"}
	}

	identity.SessionID = generateID()
	identity.CreatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, identity); err != nil {
		return domain.Identity{}, fmt.Errorf("saving session: %w", err)
	}
	return identity, nil
}

// Resolve returns the identity for a session id. Unknown or empty ids
// resolve to ErrUnauthenticated.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (domain.Identity, error) {
	if sessionID == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	identity, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
		return domain.Identity{}, fmt.Errorf("loading session: %w", err)
	}
	return identity, nil
}

// Logout clears the session. Logging out twice is not an error.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	for _, fn := range s.onLogout {
		fn(sessionID)
	}
	return nil
}
