package domain

import "context"

// OnboardingGateway is the remote contract used by the onboarding wizard.
type OnboardingGateway interface {
	CreateCompany(ctx context.Context, actor Identity, company CompanyIdentity) (string, error)
	CreateRoles(ctx context.Context, actor Identity, companyID string, names []string) error
	CreateHierarchy(ctx context.Context, actor Identity, companyID string, levels []HierarchyLevel) error
}

// DirectoryGateway is the remote contract for user management.
type DirectoryGateway interface {
	UserParameters(ctx context.Context, actor Identity, companyID string) (UserParameters, error)
	UploadUsersCSV(ctx context.Context, actor Identity, filename string, content []byte) error
	ReachableNodes(ctx context.Context, actor Identity, userID string) (ReachableNodes, error)
}

// TaskGateway is the remote contract for task assignment.
type TaskGateway interface {
	CreateTask(ctx context.Context, actor Identity, task Task) (string, error)
	AttachDocuments(ctx context.Context, actor Identity, taskID string, docs []Document) error
	QueryTasks(ctx context.Context, actor Identity, filter TaskFilter) ([]Task, error)
}

// IdentityStore persists identity sessions between login and logout.
type IdentityStore interface {
	Save(ctx context.Context, identity Identity) error
	Get(ctx context.Context, sessionID string) (Identity, error)
	Delete(ctx context.Context, sessionID string) error
}

// EventPublisher defines the contract for emitting wizard events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, snapshot WizardSnapshot) error
}

// TransitionValidator checks wizard events against the transition table.
type TransitionValidator interface {
	Apply(ctx context.Context, current Stage, event Event) (Stage, error)
	Available(current Stage) []Event
}
