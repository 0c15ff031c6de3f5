package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Memory is an in-process Store with Firestore-compatible query semantics:
// equality filters never match a missing field, and documents missing an
// ordered field are left out of ordered results.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	clock       clockwork.Clock
	newID       func() string
}

type MemoryOption func(*Memory)

// WithClock sets the clock used to resolve ServerTimestamp.
func WithClock(c clockwork.Clock) MemoryOption {
	return func(m *Memory) { m.clock = c }
}

// WithIDGenerator overrides the auto-id generator.
func WithIDGenerator(fn func() string) MemoryOption {
	return func(m *Memory) { m.newID = fn }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		collections: make(map[string]map[string]map[string]any),
		clock:       clockwork.NewRealClock(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Add(_ context.Context, collection string, fields map[string]any) (string, error) {
	if !validCollection(collection) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newID()
	m.put(collection, id, m.resolve(fields))
	return id, nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

func (m *Memory) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	if !validCollection(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]Document, 0, len(m.collections[collection]))
	for id, data := range m.collections[collection] {
		if !matches(data, q) {
			continue
		}
		docs = append(docs, Document{ID: id, Data: copyMap(data)})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range q.OrderBy {
			a, _ := lookup(docs[i].Data, o.Path)
			b, _ := lookup(docs[j].Data, o.Path)
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return docs[i].ID < docs[j].ID
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (m *Memory) Update(_ context.Context, collection, id string, updates []FieldUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	m.apply(data, updates)
	return nil
}

func (m *Memory) Set(_ context.Context, collection, id string, fields map[string]any) error {
	if !validCollection(collection) || id == "" {
		return fmt.Errorf("%w: %q/%q", ErrInvalidPath, collection, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(collection, id, m.resolve(fields))
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) Batch() Batch {
	return &memoryBatch{store: m}
}

func (m *Memory) put(collection, id string, data map[string]any) {
	col, ok := m.collections[collection]
	if !ok {
		col = make(map[string]map[string]any)
		m.collections[collection] = col
	}
	col[id] = data
}

func (m *Memory) apply(data map[string]any, updates []FieldUpdate) {
	for _, u := range updates {
		if IsDeleteField(u.Value) {
			deletePath(data, u.Path)
			continue
		}
		setPath(data, u.Path, m.resolveValue(u.Value))
	}
}

func (m *Memory) resolve(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = m.resolveValue(v)
	}
	return out
}

func (m *Memory) resolveValue(v any) any {
	if IsServerTimestamp(v) {
		return m.clock.Now().UTC()
	}
	return copyValue(v)
}

type memoryOp struct {
	collection string
	id         string
	fields     map[string]any
	updates    []FieldUpdate
}

type memoryBatch struct {
	store     *Memory
	ops       []memoryOp
	committed bool
}

func (b *memoryBatch) Create(collection string, fields map[string]any) {
	b.ops = append(b.ops, memoryOp{collection: collection, fields: fields})
}

func (b *memoryBatch) Update(collection, id string, updates []FieldUpdate) {
	b.ops = append(b.ops, memoryOp{collection: collection, id: id, updates: updates})
}

func (b *memoryBatch) Commit(_ context.Context) ([]string, error) {
	if b.committed {
		return nil, ErrBatchClosed
	}
	if len(b.ops) == 0 {
		return nil, ErrEmptyBatch
	}
	m := b.store
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate everything before the first write so a failure leaves the
	// store untouched.
	for _, op := range b.ops {
		if !validCollection(op.collection) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, op.collection)
		}
		if op.fields == nil {
			if _, ok := m.collections[op.collection][op.id]; !ok {
				return nil, fmt.Errorf("batch update %s/%s: %w", op.collection, op.id, ErrNotFound)
			}
		}
	}

	var ids []string
	for _, op := range b.ops {
		if op.fields != nil {
			id := m.newID()
			m.put(op.collection, id, m.resolve(op.fields))
			ids = append(ids, id)
			continue
		}
		m.apply(m.collections[op.collection][op.id], op.updates)
	}
	b.committed = true
	return ids, nil
}

func matches(data map[string]any, q Query) bool {
	for _, f := range q.Filters {
		v, ok := lookup(data, f.Path)
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	for _, o := range q.OrderBy {
		if _, ok := lookup(data, o.Path); !ok {
			return false
		}
	}
	return true
}

func lookup(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, seg := range splitPath(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func setPath(data map[string]any, path string, value any) {
	segs := splitPath(path)
	cur := data
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

func deletePath(data map[string]any, path string) {
	segs := splitPath(path)
	cur := data
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, segs[len(segs)-1])
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders values of mixed types by a fixed type rank and then
// by value.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case 2:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 3:
		return a.(time.Time).Compare(b.(time.Time))
	case 4:
		return strings.Compare(a.(string), b.(string))
	}
	return 0
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int32, int64, float32, float64:
		return 2
	case time.Time:
		return 3
	case string:
		return 4
	default:
		return 5
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyMap(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = copyValue(x[i])
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}
