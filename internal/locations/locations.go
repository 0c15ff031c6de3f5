// Package locations keeps the team's saved venues.
package locations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/validation"
)

var ErrLocationNotFound = errors.New("location not found")

type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, session *authdomain.Session, teamID, name, address string) (*Location, error) {
	if err := session.RequireAdmin(teamID); err != nil {
		return nil, err
	}
	loc := Location{Name: strings.TrimSpace(name), Address: strings.TrimSpace(address)}
	v := &validation.Error{}
	v.Required("name", loc.Name)
	if err := v.Err(); err != nil {
		return nil, err
	}

	id, err := s.store.Add(ctx, collection(teamID), map[string]any{
		"name":      loc.Name,
		"address":   loc.Address,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	loc.ID = id

	zerolog.Ctx(ctx).Debug().Str("team_id", teamID).Str("location_id", id).Msg("location created")
	return &loc, nil
}

// List returns the team's venues sorted by name, case-insensitively.
func (s *Service) List(ctx context.Context, session *authdomain.Session, teamID string) ([]Location, error) {
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	docs, err := s.store.Query(ctx, collection(teamID), docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	out := make([]Location, 0, len(docs))
	for _, d := range docs {
		l := Location{ID: d.ID}
		l.Name, _ = d.Data["name"].(string)
		l.Address, _ = d.Data["address"].(string)
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Service) Delete(ctx context.Context, session *authdomain.Session, teamID, id string) error {
	if err := session.RequireAdmin(teamID); err != nil {
		return err
	}
	col := collection(teamID)
	if _, err := s.store.Get(ctx, col, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrLocationNotFound
		}
		return fmt.Errorf("failed to read location %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, col, id); err != nil {
		return fmt.Errorf("failed to delete location %s: %w", id, err)
	}
	return nil
}

func collection(teamID string) string {
	return docstore.TeamCollection(teamID, docstore.Locations)
}
