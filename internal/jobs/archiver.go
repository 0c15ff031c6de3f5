// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/squadline/squadline-backend/internal/dates"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/notify"
)

// TeamLister enumerates every team.
type TeamLister interface {
	ListTeamIDs(ctx context.Context) ([]string, error)
}

// EventSource is the part of an event repository the archiver needs.
type EventSource interface {
	Kind() domain.Kind
	Events(ctx context.Context, teamID string, filter domain.ArchiveFilter) ([]domain.Event, error)
	Archive(ctx context.Context, teamID, id string) error
}

// Archiver archives active events whose date lies before today in the
// team time zone.
type Archiver struct {
	teams     TeamLister
	sources   []EventSource
	clock     clockwork.Clock
	loc       *time.Location
	publisher notify.Publisher
}

func NewArchiver(teams TeamLister, clock clockwork.Clock, loc *time.Location, publisher notify.Publisher, sources ...EventSource) *Archiver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Archiver{teams: teams, sources: sources, clock: clock, loc: loc, publisher: publisher}
}

// Run archives every past event and returns how many were archived. A
// failure on one event does not stop the others; all failures are
// returned joined.
func (a *Archiver) Run(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx)
	today := dates.Today(a.clock.Now(), a.loc)

	teamIDs, err := a.teams.ListTeamIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list teams: %w", err)
	}

	var (
		archived int
		errs     []error
	)
	for _, teamID := range teamIDs {
		for _, src := range a.sources {
			if err := ctx.Err(); err != nil {
				return archived, err
			}

			events, err := src.Events(ctx, teamID, domain.FilterActive)
			if err != nil {
				errs = append(errs, fmt.Errorf("team %s %s: %w", teamID, src.Kind(), err))
				continue
			}
			for _, ev := range events {
				if ev.Date == "" || ev.Date >= today {
					continue
				}
				if err := src.Archive(ctx, teamID, ev.ID); err != nil {
					errs = append(errs, fmt.Errorf("team %s %s %s: %w", teamID, src.Kind(), ev.ID, err))
					continue
				}
				archived++
				a.publish(ctx, teamID, src.Kind(), ev.ID)
			}
		}
	}

	logger.Info().Int("archived", archived).Int("teams", len(teamIDs)).Str("today", today).Msg("auto-archive finished")
	return archived, errors.Join(errs...)
}

func (a *Archiver) publish(ctx context.Context, teamID string, kind domain.Kind, id string) {
	change := notify.Change{TeamID: teamID, Kind: kind.String(), EntityID: id, Type: notify.ChangeArchived}
	if err := a.publisher.Publish(ctx, change); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event_id", id).Msg("failed to publish archive change")
	}
}
