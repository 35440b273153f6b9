// Package issue normalizes heterogeneous raw issue records into a
// single canonical shape and filters them for display.
package issue

import (
	"time"

	"github.com/stgm/chantier/internal/revizto"
)

// Documented defaults for fields the API omits or mangles.
const (
	DefaultID       = "N/A"
	DefaultTitle    = "Sans titre"
	DefaultAssignee = "Non assignée"
	DefaultSheet    = "N/A"
)

// Links holds the external deep links of an issue.
type Links struct {
	Desktop string
	Web     string
}

// Issue is a normalized issue record. One of these is built per raw
// API record regardless of category (observation, instruction,
// deficiency: all three share a shape upstream). Not mutated after
// construction; image enrichment happens in the rendering layer.
type Issue struct {
	ID          string
	Title       string
	StatusRef   revizto.StatusRef
	Created     string    // raw wire string, "" when absent
	CreatedAt   time.Time // parsed form, zero when unparsable
	Assignee    string
	SheetNumber string
	SheetName   string
	Links       Links
	Preview     string // best preview URL from the record itself
}

// createdLayouts are the timestamp shapes the backend has been seen
// sending. Parsing is best-effort; display falls back to the raw
// string.
var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreated parses a created timestamp, returning the zero time
// when no known layout matches.
func ParseCreated(s string) time.Time {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Normalize extracts the canonical fields from a raw record. Every
// extraction is defensive: a missing or malformed field yields its
// documented default, never an error.
func Normalize(raw revizto.Issue) Issue {
	out := Issue{
		ID:          DefaultID,
		Title:       DefaultTitle,
		Assignee:    DefaultAssignee,
		SheetNumber: DefaultSheet,
		SheetName:   DefaultSheet,
	}

	if id := raw.ID.String(); id != "" {
		out.ID = id
	}
	if title := raw.Title.String(); title != "" {
		out.Title = title
	}

	// Custom status takes precedence over the standard status field
	// whenever the record carries both.
	if raw.CustomStatus.Kind != revizto.RefAbsent {
		out.StatusRef = raw.CustomStatus
	} else {
		out.StatusRef = raw.Status
	}

	if created := raw.Created.String(); created != "" {
		out.Created = created
		out.CreatedAt = ParseCreated(created)
	}
	if assignee := raw.Assignee.String(); assignee != "" {
		out.Assignee = assignee
	}
	if raw.Sheet.Number != "" {
		out.SheetNumber = raw.Sheet.Number
	}
	if raw.Sheet.Name != "" {
		out.SheetName = raw.Sheet.Name
	}

	out.Links = Links{Desktop: raw.OpenLinks.Desktop, Web: raw.OpenLinks.Web}
	out.Preview = previewURL(raw.Preview)

	return out
}

// previewURL picks the record's own preview image: the bare string
// form wins, then original, small, middle.
func previewURL(p revizto.Preview) string {
	switch {
	case p.URL != "":
		return p.URL
	case p.Original != "":
		return p.Original
	case p.Small != "":
		return p.Small
	case p.Middle != "":
		return p.Middle
	}
	return ""
}
