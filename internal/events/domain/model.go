package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/squadline/squadline-backend/internal/validation"
)

// Stored field names shared by every event kind.
const (
	FieldDate       = "date"
	FieldTime       = "time"
	FieldAttendance = "attendance"
	FieldIsArchived = "isArchived"
	FieldCreatedAt  = "createdAt"
	FieldOrder      = "order"
)

// Event is the shape shared by matches, trainings and refereeing
// assignments.
type Event struct {
	ID         string            `json:"id"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Attendance map[string]Status `json:"attendance"`
	IsArchived bool              `json:"isArchived"`
	CreatedAt  *time.Time        `json:"createdAt,omitempty"`
}

func (e *Event) Shape() *Event { return e }

func (e *Event) Sequence() SequenceKey {
	return SequenceKey{ID: e.ID, Date: e.Date, Time: e.Time}
}

// Entity is implemented by pointers to every concrete event type. The
// generic repository stores the shared Event part itself and delegates the
// type-specific fields to these methods.
type Entity interface {
	Kind() Kind
	Shape() *Event
	Sequence() SequenceKey
	// Extra returns the type-specific fields as stored.
	Extra() map[string]any
	// ApplyExtra decodes the type-specific fields from a stored document.
	ApplyExtra(data map[string]any)
	// Validate records missing or malformed type-specific fields.
	Validate(v *validation.Error)
	// PatchField checks one type-specific field of a partial update and
	// returns the value to store.
	PatchField(name string, value any) (any, error)
}

// EntityPtr constrains a type parameter to *T implementing Entity.
type EntityPtr[T any] interface {
	*T
	Entity
}

// SequenceKey is what list ordering compares.
type SequenceKey struct {
	ID    string
	Date  string
	Time  string
	Order *int
}

// Match is a game against another team.
type Match struct {
	Event
	Opponent string `json:"opponent"`
	Location string `json:"location"`
	Order    *int   `json:"order,omitempty"`
}

func (*Match) Kind() Kind { return KindMatch }

func (m *Match) Sequence() SequenceKey {
	k := m.Event.Sequence()
	k.Order = m.Order
	return k
}

func (m *Match) Extra() map[string]any {
	return map[string]any{
		"opponent": m.Opponent,
		"location": m.Location,
	}
}

func (m *Match) ApplyExtra(data map[string]any) {
	m.Opponent = stringField(data, "opponent")
	m.Location = stringField(data, "location")
	m.Order = intField(data, FieldOrder)
}

func (m *Match) Validate(v *validation.Error) {
	v.Required("opponent", m.Opponent)
}

func (m *Match) PatchField(name string, value any) (any, error) {
	switch name {
	case "opponent":
		return requiredString(value)
	case "location":
		return optionalString(value)
	case FieldOrder:
		return nil, ErrReadOnlyField
	}
	return nil, ErrUnknownField
}

// Training is a recurring or one-off practice session.
type Training struct {
	Event
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (*Training) Kind() Kind { return KindTraining }

func (t *Training) Extra() map[string]any {
	return map[string]any{
		"location":    t.Location,
		"description": t.Description,
	}
}

func (t *Training) ApplyExtra(data map[string]any) {
	t.Location = stringField(data, "location")
	t.Description = stringField(data, "description")
}

func (t *Training) Validate(v *validation.Error) {
	v.Required("location", t.Location)
}

func (t *Training) PatchField(name string, value any) (any, error) {
	switch name {
	case "location":
		return requiredString(value)
	case "description":
		return optionalString(value)
	}
	return nil, ErrUnknownField
}

// RefereeingAssignment is a game the team officiates, staffed by the
// assigned players.
type RefereeingAssignment struct {
	Event
	HomeTeam           string   `json:"homeTeam"`
	AwayTeam           string   `json:"awayTeam"`
	AssignedPlayerUIDs []string `json:"assignedPlayerUids"`
	Notes              string   `json:"notes"`
}

func (*RefereeingAssignment) Kind() Kind { return KindRefereeing }

func (r *RefereeingAssignment) Extra() map[string]any {
	uids := r.AssignedPlayerUIDs
	if uids == nil {
		uids = []string{}
	}
	return map[string]any{
		"homeTeam":           r.HomeTeam,
		"awayTeam":           r.AwayTeam,
		"assignedPlayerUids": append([]string(nil), uids...),
		"notes":              r.Notes,
	}
}

func (r *RefereeingAssignment) ApplyExtra(data map[string]any) {
	r.HomeTeam = stringField(data, "homeTeam")
	r.AwayTeam = stringField(data, "awayTeam")
	r.AssignedPlayerUIDs = stringSliceField(data, "assignedPlayerUids")
	r.Notes = stringField(data, "notes")
}

func (r *RefereeingAssignment) Validate(v *validation.Error) {
	v.Required("homeTeam", r.HomeTeam)
	v.Required("awayTeam", r.AwayTeam)
	for _, uid := range r.AssignedPlayerUIDs {
		if strings.TrimSpace(uid) == "" {
			v.Add("assignedPlayerUids", "must not contain blank ids")
			break
		}
	}
}

func (r *RefereeingAssignment) PatchField(name string, value any) (any, error) {
	switch name {
	case "homeTeam", "awayTeam":
		return requiredString(value)
	case "notes":
		return optionalString(value)
	case "assignedPlayerUids":
		uids, ok := toStrings(value)
		if !ok {
			return nil, fmt.Errorf("must be a list of member ids")
		}
		return uids, nil
	}
	return nil, ErrUnknownField
}

// ArchiveFilter selects which events List returns.
type ArchiveFilter string

const (
	FilterActive   ArchiveFilter = "active"
	FilterArchived ArchiveFilter = "archived"
	FilterAll      ArchiveFilter = "all"
)

// ParseArchiveFilter defaults to active when s is empty.
func ParseArchiveFilter(s string) (ArchiveFilter, error) {
	switch ArchiveFilter(strings.ToLower(s)) {
	case "", FilterActive:
		return FilterActive, nil
	case FilterArchived:
		return FilterArchived, nil
	case FilterAll:
		return FilterAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// SetOrder assigns the manual display position.
func (m *Match) SetOrder(n int) {
	m.Order = &n
}
