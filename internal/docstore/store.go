// Package docstore is the boundary to the hosted document store. All
// persistence in the service goes through Store so the Firestore backend
// can be swapped for the in-memory one in tests and local development.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
	ErrEmptyBatch  = errors.New("batch has no operations")
	ErrBatchClosed = errors.New("batch already committed")
)

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's clock at write time.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

type deleteField struct{}

// DeleteField removes the field when used as a FieldUpdate value.
var DeleteField any = deleteField{}

func IsDeleteField(v any) bool {
	_, ok := v.(deleteField)
	return ok
}

// Document is a single stored document.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is an equality filter on a (possibly dotted) field path.
type Filter struct {
	Path  string
	Value any
}

// Order sorts by a field path, ascending unless Desc is set.
type Order struct {
	Path string
	Desc bool
}

// Query selects documents of one collection.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
}

// FieldUpdate sets one field. Dotted paths address nested map entries, so
// an update of "attendance.u1" leaves every other attendance entry alone.
type FieldUpdate struct {
	Path  string
	Value any
}

// Store is the operation set the service needs from the document store.
// Collection paths are slash separated, e.g. "teams/t1/matches".
type Store interface {
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Update(ctx context.Context, collection, id string, updates []FieldUpdate) error
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Batch() Batch
}

// Batch groups writes that are applied all-or-nothing.
type Batch interface {
	Create(collection string, fields map[string]any)
	Update(collection, id string, updates []FieldUpdate)
	// Commit applies every queued write and returns the ids of the created
	// documents in the order Create was called.
	Commit(ctx context.Context) ([]string, error)
}
