package http

import (
	"context"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/events/service"
)

// Reorderer resequences the active list of an orderable kind.
type Reorderer[T any] interface {
	Reorder(ctx context.Context, session *authdomain.Session, teamID string, from, to int) ([]T, error)
}

// Handler serves one event kind under /teams/:teamId/<kind>.
type Handler[T any, P domain.EntityPtr[T]] struct {
	svc       *service.EventService[T, P]
	reorderer Reorderer[T]
}

func New[T any, P domain.EntityPtr[T]](svc *service.EventService[T, P]) *Handler[T, P] {
	return &Handler[T, P]{svc: svc}
}

// WithReorderer enables POST /reorder.
func (h *Handler[T, P]) WithReorderer(r Reorderer[T]) *Handler[T, P] {
	h.reorderer = r
	return h
}
