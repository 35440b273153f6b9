package revizto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextValue_String(t *testing.T) {
	var v TextValue
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &v))
	assert.Equal(t, "hello", v.String())
}

func TestTextValue_Number(t *testing.T) {
	var v TextValue
	require.NoError(t, json.Unmarshal([]byte(`42`), &v))
	assert.Equal(t, "42", v.String())
}

func TestTextValue_Object(t *testing.T) {
	var v TextValue
	require.NoError(t, json.Unmarshal([]byte(`{"value": "wrapped"}`), &v))
	assert.Equal(t, "wrapped", v.String())
}

func TestTextValue_Malformed(t *testing.T) {
	var v TextValue
	require.NoError(t, json.Unmarshal([]byte(`[1, 2]`), &v))
	assert.Equal(t, "", v.String())
}

func TestStatusRef_BareString(t *testing.T) {
	var r StatusRef
	require.NoError(t, json.Unmarshal([]byte(`"open"`), &r))

	key, ok := r.Key()
	require.True(t, ok)
	assert.Equal(t, "open", key)
}

func TestStatusRef_ObjectValue(t *testing.T) {
	var r StatusRef
	require.NoError(t, json.Unmarshal([]byte(`{"value": "9a3b"}`), &r))

	key, ok := r.Key()
	require.True(t, ok)
	assert.Equal(t, "9a3b", key)
}

func TestStatusRef_ObjectUUID(t *testing.T) {
	var r StatusRef
	require.NoError(t, json.Unmarshal([]byte(`{"uuid": "9a3b"}`), &r))

	key, ok := r.Key()
	require.True(t, ok)
	assert.Equal(t, "9a3b", key)
}

func TestStatusRef_ValueWinsOverUUID(t *testing.T) {
	var r StatusRef
	require.NoError(t, json.Unmarshal([]byte(`{"value": "v", "uuid": "u"}`), &r))

	key, ok := r.Key()
	require.True(t, ok)
	assert.Equal(t, "v", key)
}

func TestStatusRef_EmptyObject(t *testing.T) {
	var r StatusRef
	require.NoError(t, json.Unmarshal([]byte(`{}`), &r))

	_, ok := r.Key()
	assert.False(t, ok)
}

func TestStatusRef_Absent(t *testing.T) {
	var r StatusRef
	_, ok := r.Key()
	assert.False(t, ok)
	assert.Equal(t, RefAbsent, r.Kind)
}

func TestSheetRef_Nested(t *testing.T) {
	var s SheetRef
	require.NoError(t, json.Unmarshal([]byte(`{"value": {"number": "A-101", "name": "Plan RDC"}}`), &s))
	assert.Equal(t, "A-101", s.Number)
	assert.Equal(t, "Plan RDC", s.Name)
}

func TestSheetRef_Flat(t *testing.T) {
	var s SheetRef
	require.NoError(t, json.Unmarshal([]byte(`{"number": "B-2", "name": "Toiture"}`), &s))
	assert.Equal(t, "B-2", s.Number)
	assert.Equal(t, "Toiture", s.Name)
}

func TestSheetRef_BareString(t *testing.T) {
	var s SheetRef
	require.NoError(t, json.Unmarshal([]byte(`"C-3"`), &s))
	assert.Equal(t, "C-3", s.Number)
}

func TestAuthor_BareString(t *testing.T) {
	var a Author
	require.NoError(t, json.Unmarshal([]byte(`"Marie Tremblay"`), &a))
	assert.Equal(t, "Marie Tremblay", a.Name)
}

func TestAuthor_Object(t *testing.T) {
	var a Author
	require.NoError(t, json.Unmarshal([]byte(`{"firstname": "Marie", "lastname": "Tremblay", "email": "mt@example.com"}`), &a))
	assert.Equal(t, "Marie", a.Firstname)
	assert.Equal(t, "Tremblay", a.Lastname)
	assert.Equal(t, "mt@example.com", a.Email)
}

func TestPreview_BareString(t *testing.T) {
	var p Preview
	require.NoError(t, json.Unmarshal([]byte(`"https://x/img.png"`), &p))
	assert.Equal(t, "https://x/img.png", p.URL)
	assert.False(t, p.IsZero())
}

func TestPreview_Object(t *testing.T) {
	var p Preview
	require.NoError(t, json.Unmarshal([]byte(`{"original": "o.png", "small": "s.png", "middle": "m.png"}`), &p))
	assert.Equal(t, "o.png", p.Original)
	assert.Equal(t, "s.png", p.Small)
	assert.Equal(t, "m.png", p.Middle)
}

func TestIssue_FullRecord(t *testing.T) {
	raw := `{
		"id": 17,
		"title": "Fissure au mur",
		"status": {"value": "open"},
		"customStatus": "9a3b",
		"created": "2026-03-01T10:00:00Z",
		"assignee": {"value": "Marie"},
		"sheet": {"value": {"number": "A-101", "name": "Plan"}},
		"openLinks": {"desktop": "app://x", "web": "https://x"},
		"preview": {"original": "o.png"}
	}`
	var is Issue
	require.NoError(t, json.Unmarshal([]byte(raw), &is))

	assert.Equal(t, "17", is.ID.String())
	assert.Equal(t, "Fissure au mur", is.Title.String())
	assert.Equal(t, RefString, is.CustomStatus.Kind)
	assert.Equal(t, "A-101", is.Sheet.Number)
	assert.Equal(t, "https://x", is.OpenLinks.Web)
	assert.Equal(t, "o.png", is.Preview.Original)
}
