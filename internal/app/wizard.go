package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// WizardService orchestrates company onboarding sessions. Each session is
// single-user and its models are only touched under the session's lock;
// remote calls run without the lock held, guarded by the Submitting flag.
type WizardService struct {
	gateway   domain.OnboardingGateway
	publisher domain.EventPublisher
	validator domain.TransitionValidator

	mu       sync.Mutex
	sessions map[string]*wizardEntry
}

type wizardEntry struct {
	mu      sync.Mutex
	session *domain.WizardSession
}

// NewWizardService creates a service with the given adapters.
func NewWizardService(gateway domain.OnboardingGateway, publisher domain.EventPublisher, validator domain.TransitionValidator) *WizardService {
	return &WizardService{
		gateway:   gateway,
		publisher: publisher,
		validator: validator,
		sessions:  make(map[string]*wizardEntry),
	}
}

// WizardView is a consistent copy of a session's state.
type WizardView struct {
	ID                string
	Stage             domain.Stage
	CompanyID         string
	PendingError      string
	Submitting        bool
	CompanyName       string
	Color             string
	LogoFilename      string
	Roles             []domain.Role
	Nodes             []domain.HierarchyNode
	Tree              []domain.NestedNode
	TotalQuantity     int
	RemainingCapacity int

	// Actions lists the events the current stage accepts; empty while a
	// submission is in flight.
	Actions []domain.Event
}

func (s *WizardService) viewOf(ws *domain.WizardSession) WizardView {
	view := WizardView{
		ID:                ws.ID,
		Stage:             ws.Stage,
		CompanyID:         ws.CompanyID,
		PendingError:      ws.PendingError,
		Submitting:        ws.Submitting,
		CompanyName:       ws.Identity.Name,
		Color:             ws.Identity.Color,
		LogoFilename:      ws.Identity.LogoFilename,
		Roles:             ws.Roles.Roles(),
		Nodes:             ws.Tree.Nodes(),
		Tree:              domain.NestTree(ws.Tree),
		TotalQuantity:     ws.Tree.TotalQuantity(),
		RemainingCapacity: domain.RemainingCapacity(ws.Tree),
	}
	if !ws.Submitting {
		view.Actions = s.validator.Available(ws.Stage)
	}
	return view
}

// Start opens a new onboarding session for the actor.
func (s *WizardService) Start(_ context.Context, actor domain.Identity) (WizardView, error) {
	if err := actor.CanOnboard(); err != nil {
		return WizardView{}, err
	}

	session := domain.NewWizardSession(generateID(), actor.SessionID)

	s.mu.Lock()
	s.sessions[session.ID] = &wizardEntry{session: session}
	s.mu.Unlock()

	slog.Info("wizard started", "wizard_id", session.ID, "tenant_id", actor.TenantID)
	return s.viewOf(session), nil
}

// Get returns the current state of a session.
func (s *WizardService) Get(_ context.Context, actor domain.Identity, id string) (WizardView, error) {
	return s.edit(actor, id, "", func(*domain.WizardSession) error { return nil })
}

// RenderTree writes the session's hierarchy as an indented outline.
func (s *WizardService) RenderTree(_ context.Context, actor domain.Identity, id string, w io.Writer) error {
	entry, err := s.lookup(actor, id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return domain.RenderTree(w, entry.session.Tree)
}

// Discard drops a session, e.g. when the user navigates away.
func (s *WizardService) Discard(_ context.Context, actor domain.Identity, id string) error {
	if _, err := s.lookup(actor, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// DiscardOwnedBy drops every session opened by the given identity session.
func (s *WizardService) DiscardOwnedBy(ownerID string) {
	s.mu.Lock()
	removed := 0
	for id, entry := range s.sessions {
		if entry.session.Owner == ownerID {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		slog.Info("wizards discarded with their session", "owner", ownerID, "removed", removed)
	}
}

// PurgeBefore drops sessions started before cutoff. Sessions with a
// submission in flight are left to finish.
func (s *WizardService) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	entries := make([]*wizardEntry, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	s.mu.Unlock()

	var removed int64
	for _, entry := range entries {
		entry.mu.Lock()
		ws := entry.session
		if ws.CreatedAt.Before(cutoff) && !ws.Submitting {
			s.mu.Lock()
			delete(s.sessions, ws.ID)
			s.mu.Unlock()
			removed++
		}
		entry.mu.Unlock()
	}
	return removed, nil
}

// --- Role editing (stage 2) ---

// AddRole appends an empty role slot.
func (s *WizardService) AddRole(_ context.Context, actor domain.Identity, id string) (WizardView, error) {
	return s.edit(actor, id, domain.StageRoles, func(ws *domain.WizardSession) error {
		ws.Roles.AddRole()
		return nil
	})
}

// RenameRole edits a role name. Emptiness is only checked on submission.
func (s *WizardService) RenameRole(_ context.Context, actor domain.Identity, id string, roleID domain.RoleID, name string) (WizardView, error) {
	return s.edit(actor, id, domain.StageRoles, func(ws *domain.WizardSession) error {
		ws.Roles.RenameRole(roleID, name)
		return nil
	})
}

// RemoveRole deletes a role slot; the last slot is kept.
func (s *WizardService) RemoveRole(_ context.Context, actor domain.Identity, id string, roleID domain.RoleID) (WizardView, error) {
	return s.edit(actor, id, domain.StageRoles, func(ws *domain.WizardSession) error {
		ws.Roles.RemoveRole(roleID)
		return nil
	})
}

// --- Hierarchy editing (stage 3) ---

// AddNode inserts a hierarchy level.
func (s *WizardService) AddNode(_ context.Context, actor domain.Identity, id, name string, parentID *domain.NodeID, quantity int) (WizardView, domain.NodeID, error) {
	var nodeID domain.NodeID
	view, err := s.edit(actor, id, domain.StageHierarchy, func(ws *domain.WizardSession) error {
		var err error
		nodeID, err = ws.Tree.AddNode(name, parentID, quantity)
		return err
	})
	return view, nodeID, err
}

// UpdateQuantity changes a level's quantity, clamped to the remaining capacity.
func (s *WizardService) UpdateQuantity(_ context.Context, actor domain.Identity, id string, nodeID domain.NodeID, quantity int) (WizardView, error) {
	return s.edit(actor, id, domain.StageHierarchy, func(ws *domain.WizardSession) error {
		_, err := ws.Tree.UpdateQuantity(nodeID, quantity)
		return err
	})
}

// RemoveNode deletes a level and its subtree.
func (s *WizardService) RemoveNode(_ context.Context, actor domain.Identity, id string, nodeID domain.NodeID) (WizardView, error) {
	return s.edit(actor, id, domain.StageHierarchy, func(ws *domain.WizardSession) error {
		ws.Tree.RemoveNode(nodeID)
		return nil
	})
}

// --- Navigation ---

// Back returns to the previous stage, keeping every entered role and level.
func (s *WizardService) Back(ctx context.Context, actor domain.Identity, id string) (WizardView, error) {
	entry, err := s.lookup(actor, id)
	if err != nil {
		return WizardView{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	ws := entry.session
	if ws.Submitting {
		return s.viewOf(ws), domain.ErrSubmissionInFlight
	}

	next, err := s.validator.Apply(ctx, ws.Stage, domain.EventBack)
	if err != nil {
		return s.viewOf(ws), err
	}

	ws.Stage = next
	ws.PendingError = ""
	return s.viewOf(ws), nil
}

// --- Submissions ---

// remoteCall performs the network part of a submission and, on success,
// returns the mutation to apply to the session.
type remoteCall func(ctx context.Context) (func(*domain.WizardSession), error)

// SubmitIdentity creates the company and moves to the roles stage.
func (s *WizardService) SubmitIdentity(ctx context.Context, actor domain.Identity, id string, company domain.CompanyIdentity) (WizardView, error) {
	return s.submit(ctx, actor, id, domain.StageIdentity, domain.EventIdentityAccepted, func(ws *domain.WizardSession) (remoteCall, error) {
		company.Name = strings.TrimSpace(company.Name)
		company.Color = strings.TrimSpace(company.Color)

		if err := validateStruct(company); err != nil {
			return nil, err
		}
		if err := checkImage("logo", company.Logo); err != nil {
			return nil, err
		}
		ws.Identity = company

		return func(ctx context.Context) (func(*domain.WizardSession), error) {
			companyID, err := s.gateway.CreateCompany(ctx, actor, company)
			if err != nil {
				return nil, fmt.Errorf("creating company: %w", err)
			}
			if companyID == "" {
				return nil, &domain.TransportError{Op: "creating company", Err: errors.New("response carried no company id")}
			}
			return func(ws *domain.WizardSession) { ws.CompanyID = companyID }, nil
		}, nil
	})
}

// SubmitRoles sends the non-empty roles and moves to the hierarchy stage.
func (s *WizardService) SubmitRoles(ctx context.Context, actor domain.Identity, id string) (WizardView, error) {
	return s.submit(ctx, actor, id, domain.StageRoles, domain.EventRolesAccepted, func(ws *domain.WizardSession) (remoteCall, error) {
		valid := ws.Roles.ValidRoles()
		if len(valid) == 0 {
			return nil, &domain.ValidationError{Field: "roles", Message: "at least one role required"}
		}

		names := make([]string, len(valid))
		for i, r := range valid {
			names[i] = strings.TrimSpace(r.Name)
		}
		companyID := ws.CompanyID

		return func(ctx context.Context) (func(*domain.WizardSession), error) {
			if err := s.gateway.CreateRoles(ctx, actor, companyID, names); err != nil {
				return nil, fmt.Errorf("creating roles: %w", err)
			}
			return nil, nil
		}, nil
	})
}

// SubmitHierarchy sends the tree, keyed by parent name, and completes the flow.
func (s *WizardService) SubmitHierarchy(ctx context.Context, actor domain.Identity, id string) (WizardView, error) {
	return s.submit(ctx, actor, id, domain.StageHierarchy, domain.EventHierarchyAccepted, func(ws *domain.WizardSession) (remoteCall, error) {
		if ws.Tree.Len() == 0 {
			return nil, &domain.ValidationError{Field: "hierarchy", Message: "at least one hierarchy level required"}
		}

		levels := ws.Tree.Levels()
		companyID := ws.CompanyID

		return func(ctx context.Context) (func(*domain.WizardSession), error) {
			if err := s.gateway.CreateHierarchy(ctx, actor, companyID, levels); err != nil {
				return nil, fmt.Errorf("creating hierarchy: %w", err)
			}
			return nil, nil
		}, nil
	})
}

// submit runs one stage submission: local checks under the lock, the remote
// call without it, then the transition. Failures are recorded in PendingError
// and the stage is left unchanged.
func (s *WizardService) submit(
	ctx context.Context,
	actor domain.Identity,
	id string,
	stage domain.Stage,
	event domain.Event,
	prepare func(*domain.WizardSession) (remoteCall, error),
) (WizardView, error) {
	entry, err := s.lookup(actor, id)
	if err != nil {
		return WizardView{}, err
	}

	entry.mu.Lock()
	ws := entry.session
	if ws.Stage != stage {
		view := s.viewOf(ws)
		entry.mu.Unlock()
		return view, &domain.TransitionError{Event: event, Current: ws.Stage}
	}
	if ws.Submitting {
		view := s.viewOf(ws)
		entry.mu.Unlock()
		return view, domain.ErrSubmissionInFlight
	}

	ws.PendingError = ""
	call, err := prepare(ws)
	if err != nil {
		ws.PendingError = domain.UserMessage(err)
		view := s.viewOf(ws)
		entry.mu.Unlock()
		return view, err
	}
	ws.Submitting = true
	entry.mu.Unlock()

	apply, callErr := call(ctx)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	ws.Submitting = false

	if callErr != nil {
		ws.PendingError = domain.UserMessage(callErr)
		slog.WarnContext(ctx, "wizard submission failed",
			"wizard_id", ws.ID,
			"stage", string(stage),
			"error", callErr,
		)
		return s.viewOf(ws), callErr
	}

	next, err := s.validator.Apply(ctx, ws.Stage, event)
	if err != nil {
		return s.viewOf(ws), err
	}
	if apply != nil {
		apply(ws)
	}
	ws.Stage = next
	ws.PendingError = ""

	snapshot := ws.Snapshot()
	if err := s.publisher.Publish(ctx, event, snapshot); err != nil {
		slog.ErrorContext(ctx, "publishing wizard event",
			"event", string(event),
			"wizard_id", ws.ID,
			"error", err,
		)
	}

	if next == domain.StageCompleted {
		s.mu.Lock()
		delete(s.sessions, ws.ID)
		s.mu.Unlock()
		slog.InfoContext(ctx, "wizard completed", "wizard_id", ws.ID, "company_id", ws.CompanyID)
	}

	return s.viewOf(ws), nil
}

// edit applies a synchronous model mutation. Mutations are refused while a
// submission is in flight. An empty stage makes it a read.
func (s *WizardService) edit(actor domain.Identity, id string, stage domain.Stage, mutate func(*domain.WizardSession) error) (WizardView, error) {
	entry, err := s.lookup(actor, id)
	if err != nil {
		return WizardView{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	ws := entry.session
	if stage != "" && ws.Submitting {
		return s.viewOf(ws), domain.ErrSubmissionInFlight
	}
	if stage != "" && ws.Stage != stage {
		return s.viewOf(ws), &domain.ValidationError{
			Field:   "stage",
			Message: fmt.Sprintf("this can only be edited during the %s stage", stage),
		}
	}

	if err := mutate(ws); err != nil {
		return s.viewOf(ws), err
	}
	return s.viewOf(ws), nil
}

func (s *WizardService) lookup(actor domain.Identity, id string) (*wizardEntry, error) {
	if err := actor.Allows(domain.RoleAdmin); err != nil {
		return nil, err
	}

	s.mu.Lock()
	entry, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok || entry.session.Owner != actor.SessionID {
		return nil, domain.ErrWizardNotFound
	}
	return entry, nil
}
