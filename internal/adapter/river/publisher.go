package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries a wizard event and a snapshot of the session at the
// time the stage was accepted. River serializes this as JSON into its job
// queue table, so the worker never needs the in-memory session.
type EventJobArgs struct {
	Event         string `json:"event"`
	WizardID      string `json:"wizard_id"`
	CompanyID     string `json:"company_id"`
	Stage         string `json:"stage"`
	RoleCount     int    `json:"role_count"`
	NodeCount     int    `json:"node_count"`
	TotalQuantity int    `json:"total_quantity"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "wizard.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a wizard event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, snapshot domain.WizardSnapshot) error {
	_, err := p.client.Insert(ctx, EventJobArgs{
		Event:         string(event),
		WizardID:      snapshot.SessionID,
		CompanyID:     snapshot.CompanyID,
		Stage:         string(snapshot.Stage),
		RoleCount:     snapshot.RoleCount,
		NodeCount:     snapshot.NodeCount,
		TotalQuantity: snapshot.TotalQuantity,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
