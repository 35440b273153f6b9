package status

import (
	"strings"

	"github.com/stgm/chantier/internal/revizto"
)

// Resolve turns a raw status reference into a display descriptor. The
// upstream API is inconsistent: sometimes a bare UUID string, sometimes
// a wrapped value object, sometimes only an English name. Resolution
// degrades through fallbacks instead of failing:
//
//  1. extract a lookup key (object value, object uuid, bare string)
//  2. exact registry lookup
//  3. case-insensitive keyword match against the standard statuses
//  4. Unknown
func Resolve(ref revizto.StatusRef, reg *Registry) Descriptor {
	key, ok := ref.Key()
	if !ok {
		return Unknown
	}

	if d, found := reg.Lookup(key); found {
		return d
	}

	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "open"):
		return reg.Display("open")
	case strings.Contains(lower, "progress"):
		return reg.Display("in_progress")
	case strings.Contains(lower, "solved"), strings.Contains(lower, "fixed"):
		return reg.Display("solved")
	case strings.Contains(lower, "closed"):
		return reg.Display("closed")
	case strings.Contains(lower, "attent"):
		for _, d := range reg.Descriptors() {
			if strings.Contains(strings.ToLower(d.Name), "attente") ||
				strings.Contains(strings.ToLower(d.DisplayName), "attente") {
				return d
			}
		}
	}
	return Unknown
}
