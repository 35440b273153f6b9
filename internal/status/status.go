// Package status maps workflow status identifiers (well-known keywords
// or project-defined UUIDs) to display metadata: canonical name,
// localized label, and chip colors.
package status

import (
	"strings"

	"github.com/stgm/chantier/internal/revizto"
)

// ClosedUUID is the well-known identifier of the standard "Closed"
// status across projects.
const ClosedUUID = "135b58c6-1e14-4716-a134-bbba2bbc90a7"

// Descriptor is the display metadata for one workflow status.
type Descriptor struct {
	ID              string
	Name            string // canonical/English name
	DisplayName     string // localized label
	TextColor       string
	BackgroundColor string
	Category        string
}

// Unknown is returned whenever a status cannot be resolved. Lookups
// never fail; they degrade to this descriptor.
var Unknown = Descriptor{
	Name:            "Unknown",
	DisplayName:     "Inconnu",
	TextColor:       "#FFFFFF",
	BackgroundColor: "#6F7E93",
}

// Fallback returns the built-in descriptors for the four standard
// statuses. They are always present in a registry so issues render
// with sensible labels even when the workflow-settings fetch fails.
func Fallback() []Descriptor {
	return []Descriptor{
		{ID: "open", Name: "Open", DisplayName: "Ouvert", TextColor: "#FFFFFF", BackgroundColor: "#CC2929"},
		{ID: "in_progress", Name: "In progress", DisplayName: "En cours", TextColor: "#FFFFFF", BackgroundColor: "#FFAA00"},
		{ID: "solved", Name: "Solved", DisplayName: "Résolu", TextColor: "#FFFFFF", BackgroundColor: "#42BE65"},
		{ID: "closed", Name: "Closed", DisplayName: "Fermé", TextColor: "#FFFFFF", BackgroundColor: "#B8B8B8"},
	}
}

// frenchNames maps standard English status names to their French
// labels. Names outside this table (including already-French custom
// names) pass through unchanged.
var frenchNames = map[string]string{
	"open":        "Ouvert",
	"opened":      "Ouvert",
	"closed":      "Fermé",
	"solved":      "Résolu",
	"in progress": "En cours",
	"in_progress": "En cours",
}

// TranslateName returns the French display label for a status name.
func TranslateName(name string) string {
	if name == "" {
		return Unknown.DisplayName
	}
	if fr, ok := frenchNames[strings.ToLower(name)]; ok {
		return fr
	}
	return name
}

// FromWorkflow converts project-defined statuses into descriptors
// keyed by their server UUID. Missing colors get the Unknown palette.
func FromWorkflow(statuses []revizto.WorkflowStatus) []Descriptor {
	out := make([]Descriptor, 0, len(statuses))
	for _, ws := range statuses {
		if ws.UUID == "" {
			continue
		}
		d := Descriptor{
			ID:              ws.UUID,
			Name:            ws.Name,
			DisplayName:     TranslateName(ws.Name),
			TextColor:       ws.TextColor,
			BackgroundColor: ws.BackgroundColor,
			Category:        ws.Category,
		}
		if d.TextColor == "" {
			d.TextColor = Unknown.TextColor
		}
		if d.BackgroundColor == "" {
			d.BackgroundColor = Unknown.BackgroundColor
		}
		out = append(out, d)
	}
	return out
}

// Registry is an immutable snapshot of status descriptors. It is
// rebuilt wholesale on every project selection; consumers hold a
// reference and are never exposed to partial updates.
type Registry struct {
	byID  map[string]Descriptor
	order []string
}

// NewRegistry builds a registry from a fallback set and the
// project-defined custom statuses. Custom entries are keyed by UUID
// and only shadow a fallback entry on an (unexpected) ID collision.
func NewRegistry(fallback, custom []Descriptor) *Registry {
	r := &Registry{byID: make(map[string]Descriptor, len(fallback)+len(custom))}
	for _, d := range fallback {
		r.add(d)
	}
	for _, d := range custom {
		r.add(d)
	}
	return r
}

func (r *Registry) add(d Descriptor) {
	if d.ID == "" {
		return
	}
	if _, exists := r.byID[d.ID]; !exists {
		r.order = append(r.order, d.ID)
	}
	r.byID[d.ID] = d
}

// Lookup finds a descriptor by exact identifier.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Display returns the descriptor for id, or Unknown on a miss.
func (r *Registry) Display(id string) Descriptor {
	if d, ok := r.byID[id]; ok {
		return d
	}
	return Unknown
}

// Descriptors returns all entries in insertion order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int { return len(r.byID) }
