package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// DirectoryService backs the user management page.
type DirectoryService struct {
	gateway domain.DirectoryGateway
}

// NewDirectoryService creates a service with the given gateway.
func NewDirectoryService(gateway domain.DirectoryGateway) *DirectoryService {
	return &DirectoryService{gateway: gateway}
}

// Parameters returns the roles, seat allocation and users of the actor's company.
func (s *DirectoryService) Parameters(ctx context.Context, actor domain.Identity) (domain.UserParameters, error) {
	if err := actor.Allows(domain.RoleAdmin); err != nil {
		return domain.UserParameters{}, err
	}
	if actor.TenantID == "" {
		return domain.UserParameters{}, &domain.ValidationError{Field: "tenantId", Message: "no company is associated with this session"}
	}

	params, err := s.gateway.UserParameters(ctx, actor, actor.TenantID)
	if err != nil {
		return domain.UserParameters{}, fmt.Errorf("fetching user parameters: %w", err)
	}
	return params, nil
}

// UploadUsersCSV sends a bulk user file. The row format is validated remotely.
func (s *DirectoryService) UploadUsersCSV(ctx context.Context, actor domain.Identity, filename string, content []byte) error {
	if err := actor.Allows(domain.RoleAdmin); err != nil {
		return err
	}
	if len(content) == 0 {
		return &domain.ValidationError{Field: "fileContent", Message: "csv file required"}
	}
	if !isText(content) {
		return &domain.ValidationError{Field: "fileContent", Message: "file does not look like a csv document"}
	}
	if filename == "" {
		filename = "users.csv"
	}

	if err := s.gateway.UploadUsersCSV(ctx, actor, filename, content); err != nil {
		return fmt.Errorf("uploading users: %w", err)
	}
	return nil
}

// ReachableNodes lists supervisors and subordinates of a user. An empty
// userID means the actor.
func (s *DirectoryService) ReachableNodes(ctx context.Context, actor domain.Identity, userID string) (domain.ReachableNodes, error) {
	if err := actor.Allows(domain.RoleAdmin, domain.RoleUser); err != nil {
		return domain.ReachableNodes{}, err
	}
	if userID == "" {
		userID = actor.UserID
	}

	nodes, err := s.gateway.ReachableNodes(ctx, actor, userID)
	if err != nil {
		return domain.ReachableNodes{}, fmt.Errorf("fetching hierarchy nodes: %w", err)
	}
	return nodes, nil
}

// SearchUsers filters users by full name or username (case-insensitive) or
// by document number (exact substring). A blank term returns every user.
func SearchUsers(users []domain.User, term string) []domain.User {
	term = strings.TrimSpace(term)
	if term == "" {
		return users
	}
	lowered := strings.ToLower(term)

	var out []domain.User
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FullName), lowered) ||
			strings.Contains(strings.ToLower(u.Username), lowered) ||
			strings.Contains(u.DocumentID, term) {
			out = append(out, u)
		}
	}
	return out
}
