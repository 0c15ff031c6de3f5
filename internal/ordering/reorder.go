package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/metrics"
	"github.com/squadline/squadline-backend/internal/notify"
)

// Store is the persistence the Reorderer needs.
type Store[T any] interface {
	Kind() domain.Kind
	List(ctx context.Context, teamID string, filter domain.ArchiveFilter) ([]T, error)
	SetOrder(ctx context.Context, teamID, id string, order int) error
}

// Reorderer persists drag-and-drop moves. Writes are issued one document
// at a time; when any of them fails the optimistic order is dropped and
// the list is read back from the store.
type Reorderer[T any, P Ordered[T]] struct {
	store     Store[T]
	publisher notify.Publisher
	metrics   *metrics.Recorder
}

func NewReorderer[T any, P Ordered[T]](store Store[T], publisher notify.Publisher, m *metrics.Recorder) *Reorderer[T, P] {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Reorderer[T, P]{store: store, publisher: publisher, metrics: m}
}

// Reorder moves the active item at index from to index to. On success it
// returns the list in its new order. On a write failure it returns the
// list as re-read from the store together with the write error.
func (r *Reorderer[T, P]) Reorder(ctx context.Context, session *authdomain.Session, teamID string, from, to int) ([]T, error) {
	kind := r.store.Kind()
	if !kind.Orderable() {
		return nil, fmt.Errorf("reorder %s: %w", kind, domain.ErrNotOrderable)
	}
	if err := session.RequireAdmin(teamID); err != nil {
		return nil, err
	}

	items, err := r.store.List(ctx, teamID, domain.FilterActive)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	moved, err := Move(items, from, to)
	if err != nil {
		return nil, err
	}
	changes := Reindex[T, P](moved)

	logger := zerolog.Ctx(ctx)
	for _, a := range changes {
		if err := r.store.SetOrder(ctx, teamID, a.ID, a.Order); err != nil {
			logger.Error().Err(err).
				Str("team_id", teamID).
				Str("kind", kind.String()).
				Str("event_id", a.ID).
				Msg("reorder write failed, reloading list")
			return r.reconcile(ctx, teamID, fmt.Errorf("failed to store order of %s: %w", a.ID, err))
		}
	}

	logger.Info().
		Str("team_id", teamID).
		Int("from", from).
		Int("to", to).
		Int("writes", len(changes)).
		Msg("reordered matches")

	if len(changes) > 0 {
		if err := r.publisher.Publish(ctx, notify.Change{TeamID: teamID, Kind: kind.String(), Type: notify.ChangeReordered}); err != nil {
			logger.Warn().Err(err).Msg("failed to publish reorder")
		}
	}
	return moved, nil
}

func (r *Reorderer[T, P]) reconcile(ctx context.Context, teamID string, writeErr error) ([]T, error) {
	r.metrics.ObserveReconcile("ordering")
	fresh, err := r.store.List(ctx, teamID, domain.FilterActive)
	if err != nil {
		return nil, errors.Join(writeErr, fmt.Errorf("failed to reload list: %w", err))
	}
	return fresh, writeErr
}
