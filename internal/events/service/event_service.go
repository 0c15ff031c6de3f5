package service

import (
	"context"

	"github.com/rs/zerolog"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/dates"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/events/repository"
	"github.com/squadline/squadline-backend/internal/notify"
)

// EventService guards a Repository with the caller's session: any team
// member may read, only admins may write. Successful writes are announced
// on the team's change channel.
type EventService[T any, P domain.EntityPtr[T]] struct {
	repo      *repository.Repository[T, P]
	publisher notify.Publisher
}

func NewEventService[T any, P domain.EntityPtr[T]](repo *repository.Repository[T, P], publisher notify.Publisher) *EventService[T, P] {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &EventService[T, P]{repo: repo, publisher: publisher}
}

func (s *EventService[T, P]) Kind() domain.Kind {
	return s.repo.Kind()
}

func (s *EventService[T, P]) Create(ctx context.Context, session *authdomain.Session, teamID string, when dates.DateValue, entity P) (*T, error) {
	if err := session.RequireAdmin(teamID); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, teamID, when, entity)
	if err != nil {
		return nil, err
	}

	s.logger(ctx, teamID).Info().Str("event_id", id).Msg("event created")
	s.publish(ctx, notify.Change{TeamID: teamID, EntityID: id, Type: notify.ChangeCreated})
	return s.repo.GetByID(ctx, teamID, id)
}

func (s *EventService[T, P]) BulkCreate(ctx context.Context, session *authdomain.Session, teamID string, when dates.DateValue, base P, numberOfWeeks int) ([]string, error) {
	if err := session.RequireAdmin(teamID); err != nil {
		return nil, err
	}
	ids, err := s.repo.BulkCreate(ctx, teamID, when, base, numberOfWeeks)
	if err != nil {
		return nil, err
	}

	s.logger(ctx, teamID).Info().Int("count", len(ids)).Msg("event series created")
	for _, id := range ids {
		s.publish(ctx, notify.Change{TeamID: teamID, EntityID: id, Type: notify.ChangeCreated})
	}
	return ids, nil
}

func (s *EventService[T, P]) List(ctx context.Context, session *authdomain.Session, teamID string, filter domain.ArchiveFilter) ([]T, error) {
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, teamID, filter)
}

// Get returns nil, nil when the event does not exist.
func (s *EventService[T, P]) Get(ctx context.Context, session *authdomain.Session, teamID, id string) (*T, error) {
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, teamID, id)
}

func (s *EventService[T, P]) Update(ctx context.Context, session *authdomain.Session, teamID, id string, patch domain.Patch) (domain.UpdateResult, error) {
	if err := session.RequireAdmin(teamID); err != nil {
		return domain.UpdateResult{}, err
	}
	result, err := s.repo.Update(ctx, teamID, id, patch)
	if err != nil {
		return result, err
	}

	logger := s.logger(ctx, teamID)
	for _, f := range result.Rejected() {
		logger.Warn().Str("event_id", id).Str("field", f.Field).Str("reason", f.Reason).Msg("update field rejected")
	}
	if result.Written() {
		s.publish(ctx, notify.Change{TeamID: teamID, EntityID: id, Type: notify.ChangeUpdated})
	}
	return result, nil
}

func (s *EventService[T, P]) Archive(ctx context.Context, session *authdomain.Session, teamID, id string) error {
	return s.setArchived(ctx, session, teamID, id, true)
}

func (s *EventService[T, P]) Unarchive(ctx context.Context, session *authdomain.Session, teamID, id string) error {
	return s.setArchived(ctx, session, teamID, id, false)
}

func (s *EventService[T, P]) setArchived(ctx context.Context, session *authdomain.Session, teamID, id string, archived bool) error {
	if err := session.RequireAdmin(teamID); err != nil {
		return err
	}

	change := notify.ChangeArchived
	write := s.repo.Archive
	if !archived {
		change = notify.ChangeUnarchived
		write = s.repo.Unarchive
	}
	if err := write(ctx, teamID, id); err != nil {
		return err
	}
	s.publish(ctx, notify.Change{TeamID: teamID, EntityID: id, Type: change})
	return nil
}

// Delete removes the event for good.
func (s *EventService[T, P]) Delete(ctx context.Context, session *authdomain.Session, teamID, id string) error {
	if err := session.RequireAdmin(teamID); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrEventNotFound
	}
	if err := s.repo.Delete(ctx, teamID, id); err != nil {
		return err
	}

	s.logger(ctx, teamID).Info().Str("event_id", id).Msg("event deleted")
	s.publish(ctx, notify.Change{TeamID: teamID, EntityID: id, Type: notify.ChangeDeleted})
	return nil
}

func (s *EventService[T, P]) logger(ctx context.Context, teamID string) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("team_id", teamID).Str("kind", s.repo.Kind().String()).Logger()
	return &l
}

func (s *EventService[T, P]) publish(ctx context.Context, change notify.Change) {
	change.Kind = s.repo.Kind().String()
	if err := s.publisher.Publish(ctx, change); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("type", string(change.Type)).Msg("failed to publish change")
	}
}
