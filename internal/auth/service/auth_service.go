package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/squadline/squadline-backend/internal/auth/domain"
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
	"github.com/squadline/squadline-backend/internal/teams/repository"
)

type AuthService struct {
	members *repository.Repo
}

func NewAuthService(members *repository.Repo) *AuthService {
	return &AuthService{members: members}
}

// Resolve reacts to an identity change: it loads the caller's profile,
// creating a team-less one on first sign-in, loads the profile's team and
// returns the session for the request. A zero identity yields an anonymous
// session.
func (s *AuthService) Resolve(ctx context.Context, identity domain.Identity) (*domain.Session, error) {
	session := domain.NewSession()
	if identity.UID == "" {
		if err := session.MarkAnonymous(); err != nil {
			return nil, err
		}
		return session, nil
	}

	profile, err := s.ensureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	var team *teamdomain.Team
	if profile.TeamID != "" {
		team, err = s.members.GetTeam(ctx, profile.TeamID)
		switch {
		case errors.Is(err, teamdomain.ErrTeamNotFound):
			zerolog.Ctx(ctx).Warn().
				Str("uid", profile.UID).
				Str("team_id", profile.TeamID).
				Msg("profile points at a missing team")
			profile.TeamID = ""
			team = nil
		case err != nil:
			return nil, err
		}
	}

	if err := session.Authenticate(identity, profile, team); err != nil {
		return nil, err
	}
	return session, nil
}

// Sync refreshes the stored name and email from the identity provider and
// returns the profile.
func (s *AuthService) Sync(ctx context.Context, identity domain.Identity, name string) (*teamdomain.Member, error) {
	if identity.UID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	profile, err := s.ensureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name != "" && name != profile.Name {
		if err := s.members.UpdateMember(ctx, profile.UID, teamdomain.MemberPatch{Name: &name}); err != nil {
			return nil, err
		}
		profile.Name = name
	}
	return profile, nil
}

func (s *AuthService) ensureProfile(ctx context.Context, identity domain.Identity) (*teamdomain.Member, error) {
	profile, err := s.members.GetMember(ctx, identity.UID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, teamdomain.ErrMemberNotFound) {
		return nil, err
	}

	// First sign-in: create the profile without a team. Creating a team or
	// accepting an invite attaches one later.
	fresh := teamdomain.Member{
		UID:              identity.UID,
		Name:             identity.Name,
		Email:            identity.Email,
		Role:             teamdomain.RoleMember,
		Responsibilities: map[string]bool{},
	}
	if err := s.members.SaveMember(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("uid", identity.UID).Msg("created profile on first sign-in")
	return s.members.GetMember(ctx, identity.UID)
}
