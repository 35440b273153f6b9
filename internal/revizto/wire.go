package revizto

import (
	"encoding/json"
	"strconv"
)

// RefKind tells which wire shape a reference field arrived in.
type RefKind int

const (
	RefAbsent RefKind = iota
	RefString
	RefObject
)

// scalarString decodes a JSON scalar (string or number) to a string.
// Anything else yields "".
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// TextValue is a field the API returns either as a bare scalar or
// wrapped as {"value": ...}. Malformed input decodes to the zero value
// rather than failing the whole record.
type TextValue struct {
	Kind RefKind
	Str  string
}

func (v *TextValue) UnmarshalJSON(b []byte) error {
	*v = TextValue{}
	if string(b) == "null" {
		return nil
	}

	var obj struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err == nil && obj.Value != nil {
		v.Kind = RefObject
		v.Str = scalarString(obj.Value)
		return nil
	}

	if s := scalarString(b); s != "" {
		v.Kind = RefString
		v.Str = s
	}
	return nil
}

// String returns the extracted text, "" when absent or unresolvable.
func (v TextValue) String() string { return v.Str }

// StatusRef is a status reference as it appears on an issue record:
// a bare string (name or UUID), {"value": "..."}, {"uuid": "..."}, or
// absent entirely.
type StatusRef struct {
	Kind  RefKind
	Str   string // bare string form
	Value string // object "value" field
	UUID  string // object "uuid" field
}

func (r *StatusRef) UnmarshalJSON(b []byte) error {
	*r = StatusRef{}
	if string(b) == "null" {
		return nil
	}

	var obj struct {
		Value json.RawMessage `json:"value"`
		UUID  json.RawMessage `json:"uuid"`
	}
	if err := json.Unmarshal(b, &obj); err == nil && (obj.Value != nil || obj.UUID != nil) {
		r.Kind = RefObject
		if obj.Value != nil {
			r.Value = scalarString(obj.Value)
		}
		if obj.UUID != nil {
			r.UUID = scalarString(obj.UUID)
		}
		return nil
	}

	var probe any
	if err := json.Unmarshal(b, &probe); err == nil {
		if _, isObj := probe.(map[string]any); isObj {
			// Object with neither value nor uuid: unresolvable.
			r.Kind = RefObject
			return nil
		}
	}

	if s := scalarString(b); s != "" {
		r.Kind = RefString
		r.Str = s
	}
	return nil
}

// Key extracts the lookup key per the resolution rules: object "value"
// first, then object "uuid", then the bare string form. ok is false for
// absent references and objects carrying neither field.
func (r StatusRef) Key() (string, bool) {
	switch r.Kind {
	case RefString:
		return r.Str, r.Str != ""
	case RefObject:
		if r.Value != "" {
			return r.Value, true
		}
		if r.UUID != "" {
			return r.UUID, true
		}
	}
	return "", false
}

// StringRef builds a bare-string reference (test and fixture helper).
func StringRef(s string) StatusRef { return StatusRef{Kind: RefString, Str: s} }

// ValueRef builds a {"value": s} reference.
func ValueRef(s string) StatusRef { return StatusRef{Kind: RefObject, Value: s} }

// UUIDRef builds a {"uuid": s} reference.
func UUIDRef(s string) StatusRef { return StatusRef{Kind: RefObject, UUID: s} }

// Preview is an image reference: either a bare URL string or an object
// holding per-resolution URLs.
type Preview struct {
	Kind     RefKind
	URL      string // bare string form
	Original string
	Small    string
	Middle   string
}

func (p *Preview) UnmarshalJSON(b []byte) error {
	*p = Preview{}
	if string(b) == "null" {
		return nil
	}

	var obj struct {
		Original string `json:"original"`
		Small    string `json:"small"`
		Middle   string `json:"middle"`
	}
	if err := json.Unmarshal(b, &obj); err == nil && (obj.Original != "" || obj.Small != "" || obj.Middle != "") {
		p.Kind = RefObject
		p.Original = obj.Original
		p.Small = obj.Small
		p.Middle = obj.Middle
		return nil
	}

	if s := scalarString(b); s != "" {
		p.Kind = RefString
		p.URL = s
	}
	return nil
}

// IsZero reports whether no usable URL was decoded.
func (p Preview) IsZero() bool {
	return p.URL == "" && p.Original == "" && p.Small == "" && p.Middle == ""
}

// SheetRef is a drawing-sheet reference. The API sends either
// {"value": {"number": ..., "name": ...}}, a flat {"number", "name"}
// object, or a bare string (treated as the sheet number).
type SheetRef struct {
	Kind   RefKind
	Number string
	Name   string
}

func (s *SheetRef) UnmarshalJSON(b []byte) error {
	*s = SheetRef{}
	if string(b) == "null" {
		return nil
	}

	var nested struct {
		Value struct {
			Number json.RawMessage `json:"number"`
			Name   json.RawMessage `json:"name"`
		} `json:"value"`
		Number json.RawMessage `json:"number"`
		Name   json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(b, &nested); err == nil {
		if nested.Value.Number != nil || nested.Value.Name != nil {
			s.Kind = RefObject
			s.Number = scalarString(nested.Value.Number)
			s.Name = scalarString(nested.Value.Name)
			return nil
		}
		if nested.Number != nil || nested.Name != nil {
			s.Kind = RefObject
			s.Number = scalarString(nested.Number)
			s.Name = scalarString(nested.Name)
			return nil
		}
	}

	if str := scalarString(b); str != "" {
		s.Kind = RefString
		s.Number = str
	}
	return nil
}

// Author is a comment author: a bare display string or an object with
// name parts and email.
type Author struct {
	Kind      RefKind
	Name      string // bare string form
	Firstname string
	Lastname  string
	Email     string
}

func (a *Author) UnmarshalJSON(b []byte) error {
	*a = Author{}
	if string(b) == "null" {
		return nil
	}

	var obj struct {
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		Email     string `json:"email"`
	}
	if err := json.Unmarshal(b, &obj); err == nil && (obj.Firstname != "" || obj.Lastname != "" || obj.Email != "") {
		a.Kind = RefObject
		a.Firstname = obj.Firstname
		a.Lastname = obj.Lastname
		a.Email = obj.Email
		return nil
	}

	if s := scalarString(b); s != "" {
		a.Kind = RefString
		a.Name = s
	}
	return nil
}
