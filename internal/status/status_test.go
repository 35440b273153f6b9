package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stgm/chantier/internal/revizto"
)

func TestFallback_CanonicalDescriptors(t *testing.T) {
	fb := Fallback()
	require.Len(t, fb, 4)

	byID := map[string]Descriptor{}
	for _, d := range fb {
		byID[d.ID] = d
	}

	assert.Equal(t, "Ouvert", byID["open"].DisplayName)
	assert.Equal(t, "#CC2929", byID["open"].BackgroundColor)
	assert.Equal(t, "En cours", byID["in_progress"].DisplayName)
	assert.Equal(t, "#FFAA00", byID["in_progress"].BackgroundColor)
	assert.Equal(t, "Résolu", byID["solved"].DisplayName)
	assert.Equal(t, "#42BE65", byID["solved"].BackgroundColor)
	assert.Equal(t, "Fermé", byID["closed"].DisplayName)
	assert.Equal(t, "#B8B8B8", byID["closed"].BackgroundColor)

	for _, d := range fb {
		assert.Equal(t, "#FFFFFF", d.TextColor)
	}
}

func TestTranslateName(t *testing.T) {
	assert.Equal(t, "Ouvert", TranslateName("Open"))
	assert.Equal(t, "Ouvert", TranslateName("opened"))
	assert.Equal(t, "Fermé", TranslateName("CLOSED"))
	assert.Equal(t, "Résolu", TranslateName("solved"))
	assert.Equal(t, "En cours", TranslateName("In Progress"))
	assert.Equal(t, "En cours", TranslateName("in_progress"))
	// Already-localized or custom names pass through untouched.
	assert.Equal(t, "En attente", TranslateName("En attente"))
	assert.Equal(t, "Inconnu", TranslateName(""))
}

func TestFromWorkflow(t *testing.T) {
	descs := FromWorkflow([]revizto.WorkflowStatus{
		{UUID: "u1", Name: "open", TextColor: "#000000", BackgroundColor: "#EEEEEE", Category: "standard"},
		{UUID: "u2", Name: "En attente"},
		{Name: "no uuid, skipped"},
	})
	require.Len(t, descs, 2)

	assert.Equal(t, "Ouvert", descs[0].DisplayName)
	assert.Equal(t, "#000000", descs[0].TextColor)

	// Missing colors take the Unknown palette.
	assert.Equal(t, "En attente", descs[1].DisplayName)
	assert.Equal(t, Unknown.TextColor, descs[1].TextColor)
	assert.Equal(t, Unknown.BackgroundColor, descs[1].BackgroundColor)
}

func TestRegistry_LookupAndDisplay(t *testing.T) {
	reg := NewRegistry(Fallback(), []Descriptor{
		{ID: "u1", Name: "custom", DisplayName: "Personnalisé"},
	})

	d, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "Personnalisé", d.DisplayName)

	_, ok = reg.Lookup("nope")
	assert.False(t, ok)

	assert.Equal(t, "Ouvert", reg.Display("open").DisplayName)
	assert.Equal(t, Unknown, reg.Display("nope"))

	assert.Equal(t, 5, reg.Len())
}

func TestRegistry_OrderPreserved(t *testing.T) {
	reg := NewRegistry(Fallback(), []Descriptor{
		{ID: "u2", Name: "b"},
		{ID: "u1", Name: "a"},
	})

	descs := reg.Descriptors()
	require.Len(t, descs, 6)
	assert.Equal(t, "open", descs[0].ID)
	assert.Equal(t, "u2", descs[4].ID)
	assert.Equal(t, "u1", descs[5].ID)
}
