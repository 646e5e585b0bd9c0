package domain

import "strings"

// RoleID is a client-local identifier, unique within one RoleSet.
type RoleID int

// Role is an editable role name. Name may be empty while being edited.
type Role struct {
	ID   RoleID
	Name string
}

// RoleSet is the ordered list of roles in the editor. It always keeps at least one slot.
type RoleSet struct {
	roles  []Role
	nextID RoleID
}

// NewRoleSet returns a set holding a single empty role.
func NewRoleSet() *RoleSet {
	s := &RoleSet{nextID: 1}
	s.AddRole()
	return s
}

// AddRole appends an empty role and returns its id.
func (s *RoleSet) AddRole() RoleID {
	id := s.nextID
	s.nextID++
	s.roles = append(s.roles, Role{ID: id})
	return id
}

// RemoveRole deletes the role. The last remaining role is never removed.
func (s *RoleSet) RemoveRole(id RoleID) bool {
	if len(s.roles) <= 1 {
		return false
	}
	for i, r := range s.roles {
		if r.ID == id {
			s.roles = append(s.roles[:i:i], s.roles[i+1:]...)
			return true
		}
	}
	return false
}

// RenameRole replaces the name of the matching role.
func (s *RoleSet) RenameRole(id RoleID, name string) bool {
	for i := range s.roles {
		if s.roles[i].ID == id {
			s.roles[i].Name = name
			return true
		}
	}
	return false
}

// ValidRoles returns the roles whose trimmed name is non-empty, in order.
func (s *RoleSet) ValidRoles() []Role {
	var out []Role
	for _, r := range s.roles {
		if strings.TrimSpace(r.Name) != "" {
			out = append(out, r)
		}
	}
	return out
}

// Roles returns a copy of every role, including empty ones.
func (s *RoleSet) Roles() []Role {
	out := make([]Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Len returns the number of role slots.
func (s *RoleSet) Len() int {
	return len(s.roles)
}
