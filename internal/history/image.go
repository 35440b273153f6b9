package history

import (
	"sort"
	"strings"

	"github.com/stgm/chantier/internal/issue"
)

// BestImage selects the single image that best represents an issue's
// current state. Precedence, first available wins:
//
//  1. most recent file event with an image mimetype and a preview URL
//  2. most recent markup event with a preview URL
//  3. the issue's own preview image
//  4. "", and the caller renders a placeholder
//
// "Most recent" sorts descending by timestamp; ties keep input order.
func BestImage(it issue.Issue, events []Event) string {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.After(sorted[j].At)
	})

	for _, e := range sorted {
		if e.Kind != KindFile {
			continue
		}
		if !strings.HasPrefix(e.Mimetype, "image/") {
			continue
		}
		if url := eventPreview(e); url != "" {
			return url
		}
	}

	for _, e := range sorted {
		if e.Kind != KindMarkup {
			continue
		}
		if url := eventPreview(e); url != "" {
			return url
		}
	}

	return it.Preview
}

// eventPreview prefers the original resolution, then middle.
func eventPreview(e Event) string {
	if e.PreviewOriginal != "" {
		return e.PreviewOriginal
	}
	return e.PreviewMiddle
}
