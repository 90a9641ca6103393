// Package journal records portal write actions (payment submissions, document
// uploads, issue reports, booking requests) in a local sqlite database. The
// backend stays the system of record; the journal only gives tenants and
// support a history of what was submitted through the portal and how it went.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type Entry struct {
	ID        string    `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Entity    string    `json:"entity"` // payment, document, issue, booking, session
	EntityID  int64     `json:"entity_id,omitempty"`
	Action    string    `json:"action"`  // submitted, uploaded, reported, requested, cancelled, revoked
	Outcome   string    `json:"outcome"` // accepted, rejected, failed
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Journal struct {
	db  *sql.DB
	log zerolog.Logger
}

func New(path string, logger *zerolog.Logger) (*Journal, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create journal tables: %w", err)
	}

	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "journal").Logger()
		log.Info().Str("path", path).Msg("journal database initialized")
	}

	return &Journal{db: db, log: log}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS activity (
            id TEXT PRIMARY KEY,
            tenant_id INTEGER NOT NULL,
            entity TEXT NOT NULL,
            entity_id INTEGER NOT NULL DEFAULT 0,
            action TEXT NOT NULL,
            outcome TEXT NOT NULL,
            detail TEXT,
            created_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_activity_tenant_id ON activity(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Record inserts an activity entry, assigning ID and timestamp when empty.
func (j *Journal) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
        INSERT INTO activity (id, tenant_id, entity, entity_id, action, outcome, detail, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TenantID, entry.Entity, entry.EntityID, entry.Action, entry.Outcome, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListByTenant returns the most recent entries for a tenant, newest first.
func (j *Journal) ListByTenant(ctx context.Context, tenantID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
        SELECT id, tenant_id, entity, entity_id, action, outcome, detail, created_at
        FROM activity
        WHERE tenant_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`,
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Entity, &e.EntityID, &e.Action, &e.Outcome, &detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		e.Detail = detail.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity rows: %w", err)
	}
	return entries, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
