package http

import (
	"testing"
	"time"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

func TestToSessionResponse_CreatedAtInUTC(t *testing.T) {
	bogota := time.FixedZone("COT", -5*60*60)
	identity := domain.Identity{
		SessionID: "s-1",
		Role:      domain.RoleAdmin,
		CreatedAt: time.Date(2024, time.May, 20, 7, 30, 0, 0, bogota),
	}

	got := toSessionResponse(identity).CreatedAt
	if want := "2024-05-20T12:30:00Z"; got != want {
		t.Errorf("CreatedAt = %q, want %q", got, want)
	}
}
