package domain

import (
	"slices"
	"time"
)

// Actor roles recognised by the console.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Identity holds the authenticated actor's attributes. It is populated at
// login, cleared at logout and passed explicitly to every service call.
type Identity struct {
	SessionID      string
	Token          string
	TenantID       string
	UserID         string
	Role           string
	Active         bool
	DisplayName    string
	Color          string
	LogoURL        string
	HierarchyID    string
	HierarchyLabel string
	CreatedAt      time.Time
}

// Allows checks that the actor holds one of the given roles.
// With no roles, any authenticated actor passes.
func (i Identity) Allows(roles ...string) error {
	if i.SessionID == "" {
		return ErrUnauthenticated
	}
	if len(roles) > 0 && !slices.Contains(roles, i.Role) {
		return &ForbiddenError{Role: i.Role}
	}
	return nil
}

// CanOnboard checks that the actor may run the company onboarding wizard.
func (i Identity) CanOnboard() error {
	if err := i.Allows(RoleAdmin); err != nil {
		return err
	}
	if !i.Active {
		return ErrInactiveContract
	}
	return nil
}
