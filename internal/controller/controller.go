// Package controller orchestrates the load pipeline for a selected
// project: workflow statuses first, then the three issue categories in
// parallel, then per-issue history. Results are delivered to a
// Renderer; a generation counter discards everything belonging to a
// superseded selection.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stgm/chantier/internal/history"
	"github.com/stgm/chantier/internal/issue"
	"github.com/stgm/chantier/internal/revizto"
	"github.com/stgm/chantier/internal/status"
)

// Category identifies one of the three issue collections.
type Category string

const (
	CategoryObservations Category = "observations"
	CategoryInstructions Category = "instructions"
	CategoryDeficiencies Category = "deficiencies"
)

// Categories lists the collections in display order.
var Categories = []Category{CategoryObservations, CategoryInstructions, CategoryDeficiencies}

// State describes where the pipeline is for the current selection.
type State int

const (
	StateIdle State = iota
	StateStatusesLoading
	StateStatusesReady
	StateStatusesFailed
	StateIssuesLoading
	StateIssuesReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStatusesLoading:
		return "statuses-loading"
	case StateStatusesReady:
		return "statuses-ready"
	case StateStatusesFailed:
		return "statuses-failed"
	case StateIssuesLoading:
		return "issues-loading"
	case StateIssuesReady:
		return "issues-ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Renderer receives pipeline results. Callbacks are serialized; no two
// run concurrently, and none from a superseded selection run once the
// superseding selection starts delivering. Callbacks may call back into
// the controller (Resolve, Registry, State).
type Renderer interface {
	IssuesReady(category Category, issues []issue.Issue)
	CollectionError(category Category, err error)
	HistoryReady(issueID string, events []history.Event, imageURL string)
	HistoryError(issueID string, err error)
}

// Controller drives the pipeline. Safe for concurrent use.
type Controller struct {
	api      revizto.API
	renderer Renderer

	// renderMu serializes renderer callbacks. Kept separate from mu so
	// callbacks can call back into the controller.
	renderMu sync.Mutex

	mu       sync.Mutex
	gen      uint64
	state    State
	project  string
	registry *status.Registry
}

// New creates a Controller delivering results to r.
func New(api revizto.API, r Renderer) *Controller {
	return &Controller{
		api:      api,
		renderer: r,
		state:    StateIdle,
		registry: status.NewRegistry(status.Fallback(), nil),
	}
}

// State reports the current pipeline state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Project reports the currently selected project, "" when none.
func (c *Controller) Project() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project
}

// Registry returns the status registry of the current selection. The
// snapshot is immutable; re-selection installs a new one rather than
// mutating it.
func (c *Controller) Registry() *status.Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry
}

// Resolve maps a raw status reference through the current registry.
func (c *Controller) Resolve(ref revizto.StatusRef) status.Descriptor {
	return status.Resolve(ref, c.Registry())
}

// SelectProject runs the full pipeline for projectID and blocks until
// it finishes or is superseded by a newer selection. A workflow-settings
// failure is not fatal; issues still load against the built-in statuses.
// The returned error covers only that non-fatal status fetch. Issue and
// history failures are reported through the renderer per item.
func (c *Controller) SelectProject(ctx context.Context, projectID string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.project = projectID
	c.state = StateStatusesLoading
	c.registry = status.NewRegistry(status.Fallback(), nil)
	c.mu.Unlock()

	var statusErr error
	statuses, err := c.api.WorkflowSettings(ctx, projectID)
	if err != nil {
		statusErr = fmt.Errorf("workflow settings for %s: %w", projectID, err)
		slog.Warn("workflow settings unavailable, using built-in statuses",
			"project", projectID, "error", err)
	}

	if !c.installRegistry(gen, statuses, err == nil) {
		return statusErr
	}

	if !c.setState(gen, StateIssuesLoading) {
		return statusErr
	}

	var wg sync.WaitGroup
	for _, cat := range Categories {
		wg.Add(1)
		go func(cat Category) {
			defer wg.Done()
			c.loadCategory(ctx, gen, projectID, cat)
		}(cat)
	}
	wg.Wait()

	c.setState(gen, StateIssuesReady)
	return statusErr
}

// setState moves to s if gen is still current, reporting whether it was.
func (c *Controller) setState(gen uint64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.state = s
	return true
}

// installRegistry swaps in the registry for gen and advances the state.
// Reports whether the selection is still current.
func (c *Controller) installRegistry(gen uint64, statuses []revizto.WorkflowStatus, fetched bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	if fetched {
		c.registry = status.NewRegistry(status.Fallback(), status.FromWorkflow(statuses))
		c.state = StateStatusesReady
	} else {
		c.state = StateStatusesFailed
	}
	return true
}

// current reports whether gen is still the active selection.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// emit runs a renderer callback, serialized against all other
// callbacks, but only while gen is still the current selection.
func (c *Controller) emit(gen uint64, fn func()) bool {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if !c.current(gen) {
		return false
	}
	fn()
	return true
}

func (c *Controller) loadCategory(ctx context.Context, gen uint64, projectID string, cat Category) {
	raw, err := c.fetchCategory(ctx, projectID, cat)
	if err != nil {
		slog.Warn("issue collection failed", "project", projectID, "category", cat, "error", err)
		c.emit(gen, func() { c.renderer.CollectionError(cat, err) })
		return
	}

	c.mu.Lock()
	reg := c.registry
	c.mu.Unlock()

	issues := make([]issue.Issue, 0, len(raw))
	for _, r := range raw {
		issues = append(issues, issue.Normalize(r))
	}
	issues = issue.ExcludeClosed(issues, reg)

	if !c.emit(gen, func() { c.renderer.IssuesReady(cat, issues) }) {
		return
	}

	var wg sync.WaitGroup
	for _, it := range issues {
		if it.ID == issue.DefaultID {
			continue
		}
		wg.Add(1)
		go func(it issue.Issue) {
			defer wg.Done()
			c.loadHistory(ctx, gen, projectID, it)
		}(it)
	}
	wg.Wait()
}

func (c *Controller) fetchCategory(ctx context.Context, projectID string, cat Category) ([]revizto.Issue, error) {
	switch cat {
	case CategoryObservations:
		return c.api.Observations(ctx, projectID)
	case CategoryInstructions:
		return c.api.Instructions(ctx, projectID)
	case CategoryDeficiencies:
		return c.api.Deficiencies(ctx, projectID)
	}
	return nil, fmt.Errorf("unknown category %q", cat)
}

func (c *Controller) loadHistory(ctx context.Context, gen uint64, projectID string, it issue.Issue) {
	comments, err := c.api.Comments(ctx, projectID, it.ID)
	if err != nil {
		slog.Warn("comment history failed", "project", projectID, "issue", it.ID, "error", err)
		c.emit(gen, func() { c.renderer.HistoryError(it.ID, err) })
		return
	}

	events := history.Aggregate(comments)
	image := history.BestImage(it, events)
	c.emit(gen, func() { c.renderer.HistoryReady(it.ID, events, image) })
}
