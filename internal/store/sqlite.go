package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Reports ---

// SaveReport upserts the report payload for a project.
func (s *SQLiteStore) SaveReport(ctx context.Context, projectID string, payload map[string]any) (*Report, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode report payload: %w", err)
	}

	now := time.Now().UTC()
	id := newULID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, project_id, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		id, projectID, string(data), now,
	)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return s.GetReport(ctx, projectID)
}

// GetReport fetches the saved report for a project.
func (s *SQLiteStore) GetReport(ctx context.Context, projectID string) (*Report, error) {
	r := &Report{}
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, payload, updated_at FROM reports WHERE project_id = ?", projectID,
	).Scan(&r.ID, &r.ProjectID, &raw, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found: %s", projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &r.Payload); err != nil {
		return nil, fmt.Errorf("decode report payload: %w", err)
	}
	return r, nil
}

// HasReport reports whether a saved report exists for a project.
func (s *SQLiteStore) HasReport(ctx context.Context, projectID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reports WHERE project_id = ?", projectID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check report: %w", err)
	}
	return count > 0, nil
}

// DeleteReport removes the saved report for a project.
func (s *SQLiteStore) DeleteReport(ctx context.Context, projectID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("report not found: %s", projectID)
	}
	return nil
}

// ListReportProjects returns the project IDs that have a saved report,
// most recently updated first.
func (s *SQLiteStore) ListReportProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT project_id FROM reports ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Active selection ---

// SetActiveProject records which project subsequent commands operate on.
func (s *SQLiteStore) SetActiveProject(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO selection (key, project_id, updated_at) VALUES ('active', ?, ?)
		ON CONFLICT(key) DO UPDATE SET project_id=excluded.project_id, updated_at=excluded.updated_at`,
		projectID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set active project: %w", err)
	}
	return nil
}

// ActiveProject returns the recorded selection, "" when none is set.
func (s *SQLiteStore) ActiveProject(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT project_id FROM selection WHERE key = 'active'").Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get active project: %w", err)
	}
	return id, nil
}
