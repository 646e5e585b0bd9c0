package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

type mockDirectory struct {
	companyID string
	filename  string
	uploaded  []byte
	userID    string
}

func (m *mockDirectory) UserParameters(_ context.Context, _ domain.Identity, companyID string) (domain.UserParameters, error) {
	m.companyID = companyID
	return domain.UserParameters{Hierarchies: []domain.Seats{{Name: "Equipo", Total: 10, Occupied: 4, Available: 6}}}, nil
}

func (m *mockDirectory) UploadUsersCSV(_ context.Context, _ domain.Identity, filename string, content []byte) error {
	m.filename = filename
	m.uploaded = content
	return nil
}

func (m *mockDirectory) ReachableNodes(_ context.Context, _ domain.Identity, userID string) (domain.ReachableNodes, error) {
	m.userID = userID
	return domain.ReachableNodes{}, nil
}

func TestParameters_UsesActorCompany(t *testing.T) {
	gw := &mockDirectory{}
	svc := app.NewDirectoryService(gw)

	params, err := svc.Parameters(context.Background(), admin)
	if err != nil {
		t.Fatalf("Parameters failed: %v", err)
	}
	if gw.companyID != "t-1" {
		t.Errorf("companyID = %q, want %q", gw.companyID, "t-1")
	}
	if params.Hierarchies[0].Available != 6 {
		t.Errorf("Hierarchies = %+v", params.Hierarchies)
	}

	var forbidden *domain.ForbiddenError
	if _, err := svc.Parameters(context.Background(), member); !errors.As(err, &forbidden) {
		t.Errorf("USER Parameters() = %v, want ForbiddenError", err)
	}
}

func TestUploadUsersCSV(t *testing.T) {
	gw := &mockDirectory{}
	svc := app.NewDirectoryService(gw)
	ctx := context.Background()

	csv := []byte("username,fullName,document\njdoe,John Doe,123\n")
	if err := svc.UploadUsersCSV(ctx, admin, "", csv); err != nil {
		t.Fatalf("UploadUsersCSV failed: %v", err)
	}
	if gw.filename != "users.csv" || string(gw.uploaded) != string(csv) {
		t.Errorf("uploaded %q (%d bytes)", gw.filename, len(gw.uploaded))
	}

	var vErr *domain.ValidationError
	if err := svc.UploadUsersCSV(ctx, admin, "x.csv", nil); !errors.As(err, &vErr) || vErr.Field != "fileContent" {
		t.Errorf("empty upload = %v, want fileContent ValidationError", err)
	}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := svc.UploadUsersCSV(ctx, admin, "x.csv", png); !errors.As(err, &vErr) {
		t.Errorf("binary upload = %v, want ValidationError", err)
	}
}

func TestReachableNodes_DefaultsToActor(t *testing.T) {
	gw := &mockDirectory{}
	actor := member
	actor.UserID = "99"

	if _, err := app.NewDirectoryService(gw).ReachableNodes(context.Background(), actor, ""); err != nil {
		t.Fatalf("ReachableNodes failed: %v", err)
	}
	if gw.userID != "99" {
		t.Errorf("userID = %q, want %q", gw.userID, "99")
	}
}

func TestSearchUsers(t *testing.T) {
	users := []domain.User{
		{ID: 1, Username: "jdoe", FullName: "John Doe", DocumentID: "1020"},
		{ID: 2, Username: "mruiz", FullName: "María Ruiz", DocumentID: "3040"},
	}

	tests := []struct {
		term string
		want []int
	}{
		{"", []int{1, 2}},
		{"maría", []int{2}},
		{"JDOE", []int{1}},
		{"30", []int{2}},
		{"nobody", nil},
	}

	for _, tt := range tests {
		got := app.SearchUsers(users, tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("SearchUsers(%q) = %d users, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i, u := range got {
			if u.ID != tt.want[i] {
				t.Errorf("SearchUsers(%q)[%d] = %d, want %d", tt.term, i, u.ID, tt.want[i])
			}
		}
	}
}
