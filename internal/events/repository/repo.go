package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/squadline/squadline-backend/internal/dates"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/ordering"
	"github.com/squadline/squadline-backend/internal/validation"
)

// MaxBulkWeeks bounds a weekly series created by BulkCreate.
const MaxBulkWeeks = 52

// Repository stores one event kind under teams/{teamID}/{kind}. Matches,
// trainings and refereeing assignments share this implementation and differ
// only in the type-specific fields their Entity methods encode.
type Repository[T any, P domain.EntityPtr[T]] struct {
	store docstore.Store
	kind  domain.Kind
}

func New[T any, P domain.EntityPtr[T]](store docstore.Store) *Repository[T, P] {
	var zero T
	return &Repository[T, P]{store: store, kind: P(&zero).Kind()}
}

func (r *Repository[T, P]) Kind() domain.Kind {
	return r.kind
}

// Create validates and stores a new event. The date is taken from when,
// the rest from entity. Attendance starts empty and the event starts
// active.
func (r *Repository[T, P]) Create(ctx context.Context, teamID string, when dates.DateValue, entity P) (string, error) {
	date, err := r.validate(when, entity)
	if err != nil {
		return "", err
	}

	id, err := r.store.Add(ctx, r.kind.Collection(teamID), r.fields(entity, date))
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	return id, nil
}

// BulkCreate stores numberOfWeeks+1 copies of base, one per week starting
// at when, in a single all-or-nothing batch.
func (r *Repository[T, P]) BulkCreate(ctx context.Context, teamID string, when dates.DateValue, base P, numberOfWeeks int) ([]string, error) {
	if !r.kind.SupportsBulk() {
		return nil, fmt.Errorf("%s: %w", r.kind, domain.ErrBulkUnsupported)
	}
	if numberOfWeeks < 0 || numberOfWeeks > MaxBulkWeeks {
		v := &validation.Error{}
		v.Add("numberOfWeeks", domain.ErrInvalidWeeks.Error())
		return nil, v
	}
	start, err := r.validate(when, base)
	if err != nil {
		return nil, err
	}

	col := r.kind.Collection(teamID)
	batch := r.store.Batch()
	for k := 0; k <= numberOfWeeks; k++ {
		date, err := dates.AddDays(start, 7*k)
		if err != nil {
			return nil, err
		}
		batch.Create(col, r.fields(base, date))
	}

	ids, err := batch.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk create %s: %w", r.kind, err)
	}
	return ids, nil
}

// List returns the team's events of this kind. Manually ordered kinds come
// back in display order, the others by (date, time).
//
// Sorting happens here rather than in the store query, so documents that
// lack date or time are still listed; they sort ahead of dated ones.
// Documents without isArchived count as active, which keeps active and
// archived a partition of all.
func (r *Repository[T, P]) List(ctx context.Context, teamID string, filter domain.ArchiveFilter) ([]T, error) {
	var q docstore.Query
	switch filter {
	case domain.FilterArchived:
		q.Filters = []docstore.Filter{{Path: domain.FieldIsArchived, Value: true}}
	case domain.FilterActive, domain.FilterAll:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFilter, filter)
	}

	docs, err := r.store.Query(ctx, r.kind.Collection(teamID), q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.kind, err)
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		item := r.decode(doc)
		if filter == domain.FilterActive && P(&item).Shape().IsArchived {
			continue
		}
		items = append(items, item)
	}
	if r.kind.Orderable() {
		ordering.Sort[T, P](items)
	} else {
		ordering.SortChronological[T, P](items)
	}
	return items, nil
}

// GetByID returns nil, nil when the event does not exist.
func (r *Repository[T, P]) GetByID(ctx context.Context, teamID, id string) (*T, error) {
	doc, err := r.store.Get(ctx, r.kind.Collection(teamID), id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", r.kind, id, err)
	}
	t := r.decode(*doc)
	return &t, nil
}

// GetEvent is GetByID for callers that only know the Entity interface.
func (r *Repository[T, P]) GetEvent(ctx context.Context, teamID, id string) (domain.Entity, error) {
	t, err := r.GetByID(ctx, teamID, id)
	if err != nil || t == nil {
		return nil, err
	}
	return P(t), nil
}

// Events lists the shared part of every event matching filter.
func (r *Repository[T, P]) Events(ctx context.Context, teamID string, filter domain.ArchiveFilter) ([]domain.Event, error) {
	items, err := r.List(ctx, teamID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(items))
	for i := range items {
		out = append(out, *P(&items[i]).Shape())
	}
	return out, nil
}

// Update applies the accepted fields of patch in one write. Every field is
// reported in the result; rejected ones are left out of the write. When no
// field is accepted nothing is written.
func (r *Repository[T, P]) Update(ctx context.Context, teamID, id string, patch domain.Patch) (domain.UpdateResult, error) {
	result := domain.UpdateResult{ID: id}
	var updates []docstore.FieldUpdate
	apply := func(field string, value any, err error) {
		if err != nil {
			result.Reject(field, err.Error())
			return
		}
		result.Accept(field)
		updates = append(updates, docstore.FieldUpdate{Path: field, Value: value})
	}

	if patch.Date != nil {
		date, err := dates.Normalize(*patch.Date)
		apply(domain.FieldDate, date, err)
	}
	if patch.Time != nil {
		apply(domain.FieldTime, *patch.Time, dates.ValidateTime(*patch.Time))
	}

	var zero T
	entity := P(&zero)
	for _, name := range patch.FieldNames() {
		value, ok := patch.Fields[name]
		if !ok {
			continue
		}
		switch {
		case name == domain.FieldDate && patch.Date != nil, name == domain.FieldTime && patch.Time != nil:
			// the typed value was applied above
		case name == domain.FieldDate:
			date, err := patchDate(value)
			apply(name, date, err)
		case name == domain.FieldTime:
			t, err := patchTime(value)
			apply(name, t, err)
		case readOnly(name):
			result.Reject(name, domain.ErrReadOnlyField.Error())
		default:
			stored, err := entity.PatchField(name, value)
			apply(name, stored, err)
		}
	}

	if len(updates) == 0 {
		return result, nil
	}
	if err := r.update(ctx, teamID, id, updates...); err != nil {
		return result, err
	}
	return result, nil
}

// Archive hides the event from the active list. A manually ordered event
// also gives up its order, so the positions reassigned by later reorders
// stay unique; once unarchived it sorts after the ordered events.
func (r *Repository[T, P]) Archive(ctx context.Context, teamID, id string) error {
	updates := []docstore.FieldUpdate{{Path: domain.FieldIsArchived, Value: true}}
	if r.kind.Orderable() {
		updates = append(updates, docstore.FieldUpdate{Path: domain.FieldOrder, Value: docstore.DeleteField})
	}
	return r.update(ctx, teamID, id, updates...)
}

func (r *Repository[T, P]) Unarchive(ctx context.Context, teamID, id string) error {
	return r.update(ctx, teamID, id, docstore.FieldUpdate{Path: domain.FieldIsArchived, Value: false})
}

// Delete removes the event and its attendance. It cannot be undone.
func (r *Repository[T, P]) Delete(ctx context.Context, teamID, id string) error {
	if err := r.store.Delete(ctx, r.kind.Collection(teamID), id); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", r.kind, id, err)
	}
	return nil
}

// SetAttendance writes attendance.<memberID> and nothing else.
func (r *Repository[T, P]) SetAttendance(ctx context.Context, teamID, id, memberID string, status domain.Status) error {
	if err := domain.ValidateMemberID(memberID); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	return r.update(ctx, teamID, id, docstore.FieldUpdate{
		Path:  domain.FieldAttendance + "." + memberID,
		Value: string(status),
	})
}

// SetOrder writes the manual display position of one event.
func (r *Repository[T, P]) SetOrder(ctx context.Context, teamID, id string, order int) error {
	if !r.kind.Orderable() {
		return fmt.Errorf("%s: %w", r.kind, domain.ErrNotOrderable)
	}
	return r.update(ctx, teamID, id, docstore.FieldUpdate{Path: domain.FieldOrder, Value: order})
}

func (r *Repository[T, P]) update(ctx context.Context, teamID, id string, updates ...docstore.FieldUpdate) error {
	err := r.store.Update(ctx, r.kind.Collection(teamID), id, updates)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", r.kind, id, domain.ErrEventNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", r.kind, id, err)
	}
	return nil
}

// validate checks everything a create needs before any store call and
// returns the normalized date.
func (r *Repository[T, P]) validate(when dates.DateValue, entity P) (string, error) {
	v := &validation.Error{}
	date, err := dates.Normalize(when)
	if err != nil {
		v.Add(domain.FieldDate, err.Error())
	}
	if err := dates.ValidateTime(entity.Shape().Time); err != nil {
		v.Add(domain.FieldTime, err.Error())
	}
	entity.Validate(v)
	if err := v.Err(); err != nil {
		return "", err
	}
	return date, nil
}

func (r *Repository[T, P]) fields(entity P, date string) map[string]any {
	fields := entity.Extra()
	fields[domain.FieldDate] = date
	fields[domain.FieldTime] = entity.Shape().Time
	fields[domain.FieldAttendance] = map[string]any{}
	fields[domain.FieldIsArchived] = false
	fields[domain.FieldCreatedAt] = docstore.ServerTimestamp
	return fields
}

// decode builds an entity from a stored document, backfilling the fields
// legacy documents may lack.
func (r *Repository[T, P]) decode(doc docstore.Document) T {
	var t T
	p := P(&t)
	e := p.Shape()
	e.ID = doc.ID
	e.Date = decodeDate(doc.Data[domain.FieldDate])
	e.Time, _ = doc.Data[domain.FieldTime].(string)
	e.Attendance = domain.DecodeAttendance(doc.Data[domain.FieldAttendance])
	e.IsArchived, _ = doc.Data[domain.FieldIsArchived].(bool)
	if ts, ok := doc.Data[domain.FieldCreatedAt].(time.Time); ok {
		e.CreatedAt = &ts
	}
	p.ApplyExtra(doc.Data)
	return t
}

// decodeDate accepts the stored string form and the timestamps some older
// documents carry.
func decodeDate(v any) string {
	dv, err := dates.FromAny(v)
	if err != nil {
		return ""
	}
	date, err := dates.Normalize(dv)
	if err != nil {
		s, _ := v.(string)
		return s
	}
	return date
}

func patchDate(v any) (string, error) {
	dv, err := dates.FromAny(v)
	if err != nil {
		return "", err
	}
	return dates.Normalize(dv)
}

func patchTime(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: not a string", dates.ErrInvalidTime)
	}
	return s, dates.ValidateTime(s)
}

func readOnly(field string) bool {
	switch field {
	case "id", domain.FieldAttendance, domain.FieldIsArchived, domain.FieldCreatedAt, domain.FieldOrder:
		return true
	}
	return false
}
