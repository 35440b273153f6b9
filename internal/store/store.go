package store

import (
	"context"
	"time"
)

// Report is a locally saved copy of a project's report form data. The
// payload is opaque key/value data round-tripped to the backend.
type Report struct {
	ID        string
	ProjectID string
	Payload   map[string]any
	UpdatedAt time.Time
}

// Store defines the persistence interface for chantier.
type Store interface {
	// Reports
	SaveReport(ctx context.Context, projectID string, payload map[string]any) (*Report, error)
	GetReport(ctx context.Context, projectID string) (*Report, error)
	HasReport(ctx context.Context, projectID string) (bool, error)
	DeleteReport(ctx context.Context, projectID string) error
	ListReportProjects(ctx context.Context) ([]string, error)

	// Active selection
	SetActiveProject(ctx context.Context, projectID string) error
	ActiveProject(ctx context.Context) (string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
