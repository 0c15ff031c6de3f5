package domain

import (
	"sort"

	"github.com/squadline/squadline-backend/internal/dates"
)

// Patch is a partial update. Nil Date/Time leave the stored values alone;
// Fields holds type-specific fields by stored name.
type Patch struct {
	Date   *dates.DateValue
	Time   *string
	Fields map[string]any
}

func (p Patch) Empty() bool {
	return p.Date == nil && p.Time == nil && len(p.Fields) == 0
}

// FieldNames returns the patched field names in a stable order: date and
// time first, then the type-specific fields sorted by name. A date or time
// given both typed and in Fields is listed once.
func (p Patch) FieldNames() []string {
	names := make([]string, 0, len(p.Fields)+2)
	for _, f := range []string{FieldDate, FieldTime} {
		if _, inFields := p.Fields[f]; inFields || p.has(f) {
			names = append(names, f)
		}
	}
	extra := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		if name != FieldDate && name != FieldTime {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func (p Patch) has(field string) bool {
	switch field {
	case FieldDate:
		return p.Date != nil
	case FieldTime:
		return p.Time != nil
	}
	return false
}

// FieldResult is the outcome for one patched field.
type FieldResult struct {
	Field    string `json:"field"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// UpdateResult reports every field of a Patch as accepted or rejected.
// Rejected fields are never written.
type UpdateResult struct {
	ID     string        `json:"id"`
	Fields []FieldResult `json:"fields"`
}

// Accept marks field as written.
func (r *UpdateResult) Accept(field string) {
	r.Fields = append(r.Fields, FieldResult{Field: field, Accepted: true})
}

// Reject marks field as excluded from the write.
func (r *UpdateResult) Reject(field, reason string) {
	r.Fields = append(r.Fields, FieldResult{Field: field, Reason: reason})
}

func (r UpdateResult) Accepted() []string {
	var out []string
	for _, f := range r.Fields {
		if f.Accepted {
			out = append(out, f.Field)
		}
	}
	return out
}

func (r UpdateResult) Rejected() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if !f.Accepted {
			out = append(out, f)
		}
	}
	return out
}

// Written reports whether at least one field reached the store.
func (r UpdateResult) Written() bool {
	return len(r.Accepted()) > 0
}
