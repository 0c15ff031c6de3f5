package attendance

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/metrics"
	"github.com/squadline/squadline-backend/internal/notify"
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
)

// EventSource reads events of one kind and writes single attendance
// entries. The event repositories implement it.
type EventSource interface {
	Kind() domain.Kind
	GetEvent(ctx context.Context, teamID, id string) (domain.Entity, error)
	SetAttendance(ctx context.Context, teamID, id, memberID string, status domain.Status) error
}

// MemberLister returns a team's roster.
type MemberLister interface {
	ListMembers(ctx context.Context, teamID string) ([]teamdomain.Member, error)
}

type Service struct {
	sources   map[domain.Kind]EventSource
	members   MemberLister
	publisher notify.Publisher
	metrics   *metrics.Recorder
}

func NewService(members MemberLister, publisher notify.Publisher, m *metrics.Recorder, sources ...EventSource) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	s := &Service{
		sources:   make(map[domain.Kind]EventSource, len(sources)),
		members:   members,
		publisher: publisher,
		metrics:   m,
	}
	for _, src := range sources {
		s.sources[src.Kind()] = src
	}
	return s
}

// SetStatus records one member's status. Only admins may call it, and only
// the attendance.<memberID> field is written.
func (s *Service) SetStatus(ctx context.Context, session *authdomain.Session, teamID string, kind domain.Kind, eventID, memberID string, status domain.Status) error {
	if err := session.RequireAdmin(teamID); err != nil {
		return err
	}
	if err := domain.ValidateMemberID(memberID); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	src, err := s.source(kind)
	if err != nil {
		return err
	}

	if err := src.SetAttendance(ctx, teamID, eventID, memberID, status); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("team_id", teamID).
		Str("kind", kind.String()).
		Str("event_id", eventID).
		Str("member_id", memberID).
		Str("status", string(status)).
		Msg("attendance set")

	change := notify.Change{
		TeamID:   teamID,
		Kind:     kind.String(),
		EntityID: eventID,
		Type:     notify.ChangeAttendance,
		MemberID: memberID,
		Status:   string(status),
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to publish attendance change")
	}
	return nil
}

// Card loads the roster and the event and builds the merged view.
func (s *Service) Card(ctx context.Context, session *authdomain.Session, teamID string, kind domain.Kind, eventID string) (*Card, error) {
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	src, err := s.source(kind)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	event, err := src.GetEvent(ctx, teamID, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%s %s: %w", kind, eventID, domain.ErrEventNotFound)
	}
	return newCard(kind, event, members), nil
}

// Open loads a card into a Board for optimistic editing.
func (s *Service) Open(ctx context.Context, session *authdomain.Session, teamID string, kind domain.Kind, eventID string) (*Board, error) {
	card, err := s.Card(ctx, session, teamID, kind, eventID)
	if err != nil {
		return nil, err
	}
	return &Board{
		svc:     s,
		session: session,
		teamID:  teamID,
		kind:    kind,
		eventID: eventID,
		card:    *card,
	}, nil
}

func (s *Service) source(kind domain.Kind) (EventSource, error) {
	src, ok := s.sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	return src, nil
}
