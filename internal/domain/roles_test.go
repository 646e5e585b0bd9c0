package domain_test

import (
	"testing"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

func TestNewRoleSet_StartsWithOneEmptySlot(t *testing.T) {
	set := domain.NewRoleSet()
	roles := set.Roles()
	if len(roles) != 1 {
		t.Fatalf("len(Roles()) = %d, want 1", len(roles))
	}
	if roles[0].Name != "" {
		t.Errorf("Name = %q, want empty", roles[0].Name)
	}
}

func TestRemoveRole_KeepsLastSlot(t *testing.T) {
	set := domain.NewRoleSet()
	only := set.Roles()[0].ID

	if set.RemoveRole(only) {
		t.Error("RemoveRole on the last role should be a no-op")
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
}

func TestRemoveRole(t *testing.T) {
	set := domain.NewRoleSet()
	first := set.Roles()[0].ID
	second := set.AddRole()
	third := set.AddRole()

	if !set.RemoveRole(second) {
		t.Fatal("RemoveRole returned false")
	}

	roles := set.Roles()
	if len(roles) != 2 || roles[0].ID != first || roles[1].ID != third {
		t.Errorf("Roles() = %+v", roles)
	}

	if set.RemoveRole(second) {
		t.Error("removing an already removed role should report false")
	}
}

func TestAddRole_UniqueIDs(t *testing.T) {
	set := domain.NewRoleSet()
	seen := map[domain.RoleID]bool{set.Roles()[0].ID: true}
	for range 5 {
		id := set.AddRole()
		if seen[id] {
			t.Fatalf("duplicate role id %d", id)
		}
		seen[id] = true
	}
}

func TestValidRoles_SkipsBlankNames(t *testing.T) {
	set := domain.NewRoleSet()
	first := set.Roles()[0].ID
	set.RenameRole(first, "Admin")
	blank := set.AddRole()
	set.RenameRole(blank, "   ")
	worker := set.AddRole()
	set.RenameRole(worker, "Worker")

	valid := set.ValidRoles()
	if len(valid) != 2 {
		t.Fatalf("len(ValidRoles()) = %d, want 2", len(valid))
	}
	if valid[0].Name != "Admin" || valid[1].Name != "Worker" {
		t.Errorf("ValidRoles() = %+v", valid)
	}
}

func TestRenameRole_UnknownID(t *testing.T) {
	set := domain.NewRoleSet()
	if set.RenameRole(99, "Ghost") {
		t.Error("RenameRole on unknown id should report false")
	}
}
