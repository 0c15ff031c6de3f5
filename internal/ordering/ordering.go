// Package ordering sequences manually ordered event lists.
//
// Items with a stored order sort first, ascending by order. Items without
// one (legacy data, events created since the last reorder) follow in
// (date, time) order. The id breaks any remaining tie so the order is total.
package ordering

import (
	"errors"
	"fmt"
	"slices"

	"github.com/squadline/squadline-backend/internal/dates"
	"github.com/squadline/squadline-backend/internal/events/domain"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// Sequenced is satisfied by pointers to every event type.
type Sequenced[T any] interface {
	*T
	Sequence() domain.SequenceKey
}

// Ordered is satisfied by pointers to event types with a manual order.
type Ordered[T any] interface {
	Sequenced[T]
	SetOrder(n int)
}

// Compare returns a negative number when a sorts before b.
func Compare(a, b domain.SequenceKey) int {
	switch {
	case a.Order != nil && b.Order != nil:
		if *a.Order != *b.Order {
			return *a.Order - *b.Order
		}
	case a.Order != nil:
		return -1
	case b.Order != nil:
		return 1
	}
	if c := dates.Compare(a.Date, a.Time, b.Date, b.Time); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

func Less(a, b domain.SequenceKey) bool {
	return Compare(a, b) < 0
}

// Sort orders items in place by Compare.
func Sort[T any, P Sequenced[T]](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return Compare(P(&a).Sequence(), P(&b).Sequence())
	})
}

// SortChronological orders items in place by (date, time, id), ignoring
// any manual order.
func SortChronological[T any, P Sequenced[T]](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		ka, kb := P(&a).Sequence(), P(&b).Sequence()
		ka.Order, kb.Order = nil, nil
		return Compare(ka, kb)
	})
}

// Move returns a copy of items with the element at from removed and
// reinserted at to. The relative order of every other element is kept.
func Move[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: move %d -> %d in list of %d", ErrIndexOutOfRange, from, to, n)
	}
	out := make([]T, 0, n)
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	moved := items[from]
	out = slices.Insert(out, to, moved)
	return out, nil
}

// Assignment is one order write.
type Assignment struct {
	ID    string
	Order int
}

// Reindex sets order = index on every item and returns the assignments
// whose stored order changed.
func Reindex[T any, P Ordered[T]](items []T) []Assignment {
	var changed []Assignment
	for i := range items {
		p := P(&items[i])
		key := p.Sequence()
		if key.Order != nil && *key.Order == i {
			continue
		}
		p.SetOrder(i)
		changed = append(changed, Assignment{ID: key.ID, Order: i})
	}
	return changed
}
