package domain

import "time"

// Stage represents a phase of the company onboarding wizard.
type Stage string

const (
	StageIdentity  Stage = "identity"
	StageRoles     Stage = "roles"
	StageHierarchy Stage = "hierarchy"
	StageCompleted Stage = "completed"
)

// Number returns the 1-based position of the stage, or 0 for the terminal stage.
func (s Stage) Number() int {
	switch s {
	case StageIdentity:
		return 1
	case StageRoles:
		return 2
	case StageHierarchy:
		return 3
	default:
		return 0
	}
}

// Event represents an action that moves the wizard between stages.
type Event string

const (
	EventIdentityAccepted  Event = "identity_accepted"
	EventRolesAccepted     Event = "roles_accepted"
	EventHierarchyAccepted Event = "hierarchy_accepted"
	EventBack              Event = "back"
)

// Transition defines a valid stage change: an event moves a wizard from Src to Dst.
type Transition struct {
	Event Event
	Src   Stage
	Dst   Stage
}

// WizardTransitions defines all valid stage changes in the onboarding flow.
// This is domain knowledge consumed by the FSM adapter.
var WizardTransitions = []Transition{
	{Event: EventIdentityAccepted, Src: StageIdentity, Dst: StageRoles},
	{Event: EventRolesAccepted, Src: StageRoles, Dst: StageHierarchy},
	{Event: EventHierarchyAccepted, Src: StageHierarchy, Dst: StageCompleted},
	{Event: EventBack, Src: StageRoles, Dst: StageIdentity},
	{Event: EventBack, Src: StageHierarchy, Dst: StageRoles},
}

// CompanyIdentity is the stage 1 payload.
type CompanyIdentity struct {
	Name         string `validate:"required"`
	Color        string `validate:"required,hexcolor"`
	Logo         []byte
	LogoFilename string
}

// WizardSession is the state of one company onboarding flow. It exclusively
// owns its RoleSet and HierarchyTree for the duration of the flow.
type WizardSession struct {
	ID           string
	Owner        string
	Stage        Stage
	CompanyID    string
	PendingError string
	Submitting   bool
	Identity     CompanyIdentity
	Roles        *RoleSet
	Tree         *HierarchyTree
	CreatedAt    time.Time
}

// NewWizardSession creates a session at stage 1 with empty models.
func NewWizardSession(id, owner string) *WizardSession {
	return &WizardSession{
		ID:        id,
		Owner:     owner,
		Stage:     StageIdentity,
		Roles:     NewRoleSet(),
		Tree:      NewHierarchyTree(),
		CreatedAt: time.Now().UTC(),
	}
}

// WizardSnapshot is an immutable summary of a session, used for events.
type WizardSnapshot struct {
	SessionID     string
	CompanyID     string
	Stage         Stage
	RoleCount     int
	NodeCount     int
	TotalQuantity int
}

// Snapshot summarizes the session.
func (s *WizardSession) Snapshot() WizardSnapshot {
	return WizardSnapshot{
		SessionID:     s.ID,
		CompanyID:     s.CompanyID,
		Stage:         s.Stage,
		RoleCount:     len(s.Roles.ValidRoles()),
		NodeCount:     s.Tree.Len(),
		TotalQuantity: s.Tree.TotalQuantity(),
	}
}
