package domain_test

import (
	"strings"
	"testing"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

func TestNewWizardSession(t *testing.T) {
	s := domain.NewWizardSession("w-1", "sess-1")

	if s.Stage != domain.StageIdentity {
		t.Errorf("Stage = %q, want %q", s.Stage, domain.StageIdentity)
	}
	if s.CompanyID != "" {
		t.Errorf("CompanyID = %q, want empty", s.CompanyID)
	}
	if s.Roles.Len() != 1 {
		t.Errorf("Roles.Len() = %d, want 1", s.Roles.Len())
	}
	if s.Tree.Len() != 0 {
		t.Errorf("Tree.Len() = %d, want 0", s.Tree.Len())
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestStage_Number(t *testing.T) {
	cases := map[domain.Stage]int{
		domain.StageIdentity:  1,
		domain.StageRoles:     2,
		domain.StageHierarchy: 3,
		domain.StageCompleted: 0,
	}
	for stage, want := range cases {
		if got := stage.Number(); got != want {
			t.Errorf("%q.Number() = %d, want %d", stage, got, want)
		}
	}
}

func TestWizardTransitions_ValidPaths(t *testing.T) {
	cases := []struct {
		event domain.Event
		src   domain.Stage
		dst   domain.Stage
	}{
		{domain.EventIdentityAccepted, domain.StageIdentity, domain.StageRoles},
		{domain.EventRolesAccepted, domain.StageRoles, domain.StageHierarchy},
		{domain.EventHierarchyAccepted, domain.StageHierarchy, domain.StageCompleted},
		{domain.EventBack, domain.StageRoles, domain.StageIdentity},
		{domain.EventBack, domain.StageHierarchy, domain.StageRoles},
	}

	for _, tc := range cases {
		found := false
		for _, tr := range domain.WizardTransitions {
			if tr.Event == tc.event && tr.Src == tc.src && tr.Dst == tc.dst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing transition: %q from %q → %q", tc.event, tc.src, tc.dst)
		}
	}
}

func TestWizardTransitions_InvalidPaths(t *testing.T) {
	invalid := []struct {
		event domain.Event
		src   domain.Stage
	}{
		{domain.EventBack, domain.StageIdentity},
		{domain.EventBack, domain.StageCompleted},
		{domain.EventRolesAccepted, domain.StageIdentity},
		{domain.EventHierarchyAccepted, domain.StageRoles},
		{domain.EventIdentityAccepted, domain.StageCompleted},
	}

	for _, tc := range invalid {
		for _, tr := range domain.WizardTransitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}

func TestSnapshot(t *testing.T) {
	s := domain.NewWizardSession("w-1", "sess-1")
	s.CompanyID = "42"
	s.Roles.RenameRole(s.Roles.Roles()[0].ID, "Admin")
	s.Roles.AddRole()
	if _, err := s.Tree.AddNode("Dirección", nil, 3); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.CompanyID != "42" || snap.RoleCount != 1 || snap.NodeCount != 1 || snap.TotalQuantity != 3 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestRenderTree(t *testing.T) {
	tree := domain.NewHierarchyTree()
	dir := mustAdd(t, tree, "Dirección", nil, 2)
	eq := mustAdd(t, tree, "Equipo", ptr(dir), 10)
	mustAdd(t, tree, "Soporte", ptr(eq), 4)
	mustAdd(t, tree, "Auditoría", nil, 1)

	var sb strings.Builder
	if err := domain.RenderTree(&sb, tree); err != nil {
		t.Fatalf("RenderTree failed: %v", err)
	}

	want := "- Dirección (2)\n  - Equipo (10)\n    - Soporte (4)\n- Auditoría (1)\n"
	if sb.String() != want {
		t.Errorf("RenderTree() =\n%s\nwant\n%s", sb.String(), want)
	}
}

func TestIdentity_Allows(t *testing.T) {
	anon := domain.Identity{}
	if err := anon.Allows(); err != domain.ErrUnauthenticated {
		t.Errorf("anonymous Allows() = %v, want ErrUnauthenticated", err)
	}

	user := domain.Identity{SessionID: "s", Role: domain.RoleUser}
	if err := user.Allows(domain.RoleUser, domain.RoleAdmin); err != nil {
		t.Errorf("user Allows(USER, ADMIN) = %v", err)
	}
	if _, ok := user.Allows(domain.RoleAdmin).(*domain.ForbiddenError); !ok {
		t.Error("user Allows(ADMIN) should be forbidden")
	}
}

func TestIdentity_CanOnboard(t *testing.T) {
	inactive := domain.Identity{SessionID: "s", Role: domain.RoleAdmin}
	if err := inactive.CanOnboard(); err != domain.ErrInactiveContract {
		t.Errorf("CanOnboard() = %v, want ErrInactiveContract", err)
	}

	active := domain.Identity{SessionID: "s", Role: domain.RoleAdmin, Active: true}
	if err := active.CanOnboard(); err != nil {
		t.Errorf("CanOnboard() = %v, want nil", err)
	}
}
