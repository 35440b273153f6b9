// Package history turns an issue's raw comment log into classified,
// display-ordered events and picks the best representative image.
package history

import (
	"sort"
	"time"

	"github.com/stgm/chantier/internal/issue"
	"github.com/stgm/chantier/internal/revizto"
)

// Kind classifies a history event for rendering.
type Kind string

const (
	KindText   Kind = "text"
	KindFile   Kind = "file"
	KindMarkup Kind = "markup"
	KindDiff   Kind = "diff"
	KindOther  Kind = "other"
)

// UnknownAuthor is the label used when no author information can be
// extracted from a comment.
const UnknownAuthor = "Utilisateur inconnu"

// Change is one field-level old/new pair of a diff event.
type Change struct {
	Old string
	New string
}

// Event is a classified history entry. Kind-specific payload fields
// are zero for other kinds.
type Event struct {
	Author  string
	Created string    // raw wire string
	At      time.Time // parsed, zero when unparsable
	Kind    Kind

	Text            string
	Filename        string
	Mimetype        string
	PreviewOriginal string
	PreviewMiddle   string
	PreviewSmall    string
	Diff            map[string]Change
}

// Aggregate normalizes and orders raw comments for display: newest
// first, ties kept in input order, unparsable dates treated as epoch
// zero so they sort last. Diff events are retained here; excluding
// them from rendered history is a presentation policy applied by the
// renderer.
func Aggregate(comments []revizto.Comment) []Event {
	events := make([]Event, 0, len(comments))
	for _, c := range comments {
		events = append(events, fromComment(c))
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.After(events[j].At)
	})
	return events
}

func fromComment(c revizto.Comment) Event {
	e := Event{
		Author:          authorName(c.Author),
		Created:         c.Created.String(),
		Kind:            classify(c.Type),
		Text:            c.Text,
		Filename:        c.Filename,
		Mimetype:        c.Mimetype,
		PreviewOriginal: c.Preview.Original,
		PreviewMiddle:   c.Preview.Middle,
		PreviewSmall:    c.Preview.Small,
	}
	if c.Preview.URL != "" && e.PreviewOriginal == "" {
		e.PreviewOriginal = c.Preview.URL
	}
	if e.Created != "" {
		e.At = issue.ParseCreated(e.Created)
	}
	if len(c.Diff) > 0 {
		e.Diff = make(map[string]Change, len(c.Diff))
		for field, ch := range c.Diff {
			e.Diff[field] = Change{Old: ch.Old.String(), New: ch.New.String()}
		}
	}
	return e
}

func classify(t string) Kind {
	switch t {
	case "text":
		return KindText
	case "file":
		return KindFile
	case "markup":
		return KindMarkup
	case "diff":
		return KindDiff
	default:
		return KindOther
	}
}

// authorName resolves a display name: bare string as-is, then
// firstname + lastname, then email, then the unknown label.
func authorName(a revizto.Author) string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Firstname != "" && a.Lastname != "":
		return a.Firstname + " " + a.Lastname
	case a.Email != "":
		return a.Email
	}
	return UnknownAuthor
}
