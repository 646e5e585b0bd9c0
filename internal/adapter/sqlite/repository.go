package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/orgconsole/internal/domain"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time check: IdentityRepository implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityRepository)(nil)

// IdentityRepository implements domain.IdentityStore using SQLite.
type IdentityRepository struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready repository.
func New(dataSourceName string) (*IdentityRepository, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dataSourceName == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready repository.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*IdentityRepository, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &IdentityRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *IdentityRepository) Close() error {
	return r.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (r *IdentityRepository) DB() *sql.DB {
	return r.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

// Save stores an identity, replacing any previous row for the same session.
func (r *IdentityRepository) Save(ctx context.Context, id domain.Identity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identity_sessions (
			session_id, token, tenant_id, user_id, role, active,
			display_name, color, logo_url, hierarchy_id, hierarchy_label, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id) DO UPDATE SET
			token = excluded.token,
			tenant_id = excluded.tenant_id,
			user_id = excluded.user_id,
			role = excluded.role,
			active = excluded.active,
			display_name = excluded.display_name,
			color = excluded.color,
			logo_url = excluded.logo_url,
			hierarchy_id = excluded.hierarchy_id,
			hierarchy_label = excluded.hierarchy_label`,
		id.SessionID, id.Token, id.TenantID, id.UserID, id.Role, id.Active,
		id.DisplayName, id.Color, id.LogoURL, id.HierarchyID, id.HierarchyLabel,
		id.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("saving identity session: %w", err)
	}
	return nil
}

// Get loads the identity bound to a session.
func (r *IdentityRepository) Get(ctx context.Context, sessionID string) (domain.Identity, error) {
	var (
		id        domain.Identity
		createdAt string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, token, tenant_id, user_id, role, active,
		        display_name, color, logo_url, hierarchy_id, hierarchy_label, created_at
		 FROM identity_sessions WHERE session_id = ?`, sessionID,
	).Scan(
		&id.SessionID, &id.Token, &id.TenantID, &id.UserID, &id.Role, &id.Active,
		&id.DisplayName, &id.Color, &id.LogoURL, &id.HierarchyID, &id.HierarchyLabel, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, domain.ErrSessionNotFound
		}
		return domain.Identity{}, fmt.Errorf("scanning identity session: %w", err)
	}

	id.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return id, nil
}

// Delete removes a session.
func (r *IdentityRepository) Delete(ctx context.Context, sessionID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM identity_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting identity session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// PurgeBefore deletes sessions created before cutoff and reports how many were removed.
func (r *IdentityRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM identity_sessions WHERE created_at < ?`,
		cutoff.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("purging identity sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rows, nil
}
