package issue

import (
	"strings"

	"github.com/stgm/chantier/internal/status"
)

// ExcludeClosed removes issues whose status resolves to closed. Input
// order is preserved for the remainder. An issue is dropped when any
// of these hold for its status key:
//
//   - it equals the well-known Closed UUID
//   - it contains "closed" (case-insensitive)
//   - the registry resolves it to a descriptor named "closed"
func ExcludeClosed(issues []Issue, reg *status.Registry) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, it := range issues {
		if isClosed(it, reg) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func isClosed(it Issue, reg *status.Registry) bool {
	key, ok := it.StatusRef.Key()
	if !ok {
		return false
	}
	if key == status.ClosedUUID {
		return true
	}
	if strings.Contains(strings.ToLower(key), "closed") {
		return true
	}
	if d, found := reg.Lookup(key); found && strings.EqualFold(d.Name, "closed") {
		return true
	}
	return false
}
