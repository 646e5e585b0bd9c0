package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/orgconsole/internal/adapter/sqlite"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

// newTestRepo creates an in-memory SQLite repository for testing.
func newTestRepo(t *testing.T) *sqlite.IdentityRepository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustSave(t *testing.T, repo *sqlite.IdentityRepository, id domain.Identity) {
	t.Helper()
	if err := repo.Save(context.Background(), id); err != nil {
		t.Fatalf("mustSave failed: %v", err)
	}
}

func testIdentity(sessionID string, createdAt time.Time) domain.Identity {
	return domain.Identity{
		SessionID:      sessionID,
		Token:          "jwt-" + sessionID,
		TenantID:       "42",
		UserID:         "7",
		Role:           domain.RoleAdmin,
		Active:         true,
		DisplayName:    "Acme",
		Color:          "#1E88E5",
		LogoURL:        "https://cdn.example.com/acme.png",
		HierarchyID:    "3",
		HierarchyLabel: "Dirección",
		CreatedAt:      createdAt,
	}
}

func TestSave_And_Get(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	created := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)

	mustSave(t, repo, testIdentity("s-1", created))

	got, err := repo.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := testIdentity("s-1", created)
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt, want.CreatedAt = time.Time{}, time.Time{}
	if got != want {
		t.Errorf("Get() = %+v\nwant %+v", got, want)
	}
}

func TestSave_Upserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := testIdentity("s-1", time.Now().UTC())
	mustSave(t, repo, id)

	id.Token = "refreshed"
	id.Active = false
	mustSave(t, repo, id)

	got, err := repo.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Token != "refreshed" || got.Active {
		t.Errorf("Get() = %+v, want updated token and inactive", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustSave(t, repo, testIdentity("s-1", time.Now().UTC()))

	if err := repo.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get after Delete = %v, want ErrSessionNotFound", err)
	}
	if err := repo.Delete(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("second Delete = %v, want ErrSessionNotFound", err)
	}
}

func TestRoleConstraint(t *testing.T) {
	repo := newTestRepo(t)

	id := testIdentity("s-1", time.Now().UTC())
	id.Role = "ROOT"
	if err := repo.Save(context.Background(), id); err == nil {
		t.Error("expected CHECK constraint failure for unknown role")
	}
}

func TestPurgeBefore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	mustSave(t, repo, testIdentity("old", now.Add(-48*time.Hour)))
	mustSave(t, repo, testIdentity("older", now.Add(-72*time.Hour)))
	mustSave(t, repo, testIdentity("fresh", now.Add(-time.Hour)))

	n, err := repo.PurgeBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("purged = %d, want 2", n)
	}
	if _, err := repo.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}
