package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/teams/domain"
	"github.com/squadline/squadline-backend/internal/teams/repository"
	"github.com/squadline/squadline-backend/internal/validation"
)

// IdentityProvider creates or looks up sign-in accounts for invited
// members.
type IdentityProvider interface {
	EnsureAccount(ctx context.Context, email, name string) (authdomain.Identity, error)
}

type TeamService struct {
	repo *repository.Repo
	idp  IdentityProvider
}

func NewTeamService(repo *repository.Repo, idp IdentityProvider) *TeamService {
	return &TeamService{repo: repo, idp: idp}
}

// CreateTeam creates a team owned by the caller and makes the caller its
// first admin. The session must be refreshed afterwards.
func (s *TeamService) CreateTeam(ctx context.Context, session *authdomain.Session, name string) (*domain.Team, error) {
	if !session.Authenticated() {
		return nil, authdomain.ErrNotAuthenticated
	}
	if session.TeamID() != "" {
		return nil, domain.ErrAlreadyInTeam
	}
	name = strings.TrimSpace(name)
	if name == "" {
		v := &validation.Error{}
		v.Required("name", name)
		return nil, v
	}

	uid := session.UID()
	team, err := s.repo.CreateTeam(ctx, name, uid)
	if err != nil {
		return nil, err
	}
	if err := s.repo.JoinTeam(ctx, uid, team.ID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("team_id", team.ID).Str("uid", uid).Msg("team created")
	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, session *authdomain.Session, teamID string) (*domain.Team, error) {
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	return s.repo.GetTeam(ctx, teamID)
}

func (s *TeamService) ListMembers(ctx context.Context, session *authdomain.Session, teamID string) ([]domain.Member, error) {
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, teamID)
}

// InviteMember creates (or finds) the sign-in account for email and adds
// its profile to the caller's team.
func (s *TeamService) InviteMember(ctx context.Context, session *authdomain.Session, email, name string) (*domain.Member, error) {
	teamID := session.TeamID()
	if err := session.RequireAdmin(teamID); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	v := &validation.Error{}
	if _, err := mail.ParseAddress(email); err != nil {
		v.Add("email", "must be a valid email address")
	}
	v.Required("name", name)
	if err := v.Err(); err != nil {
		return nil, err
	}

	identity, err := s.idp.EnsureAccount(ctx, email, name)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure account for %s: %w", email, err)
	}

	existing, err := s.repo.GetMember(ctx, identity.UID)
	switch {
	case errors.Is(err, domain.ErrMemberNotFound):
	case err != nil:
		return nil, err
	case existing.TeamID == teamID:
		return existing, nil
	case existing.TeamID != "":
		return nil, domain.ErrAlreadyInTeam
	}

	member := domain.Member{
		UID:              identity.UID,
		Name:             name,
		Email:            email,
		Role:             domain.RoleMember,
		TeamID:           teamID,
		Responsibilities: map[string]bool{},
	}
	if existing != nil {
		member.CreatedAt = existing.CreatedAt
		member.AvatarURL = existing.AvatarURL
	}
	if err := s.repo.SaveMember(ctx, member); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("team_id", teamID).Str("uid", member.UID).Msg("member invited")
	return s.repo.GetMember(ctx, member.UID)
}

// UpdateMember lets admins change any profile in their team and members
// change their own name and avatar.
func (s *TeamService) UpdateMember(ctx context.Context, session *authdomain.Session, uid string, patch domain.MemberPatch) (*domain.Member, error) {
	teamID := session.TeamID()
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	if (patch.AdminOnly() || uid != session.UID()) && !session.IsAdmin() {
		return nil, authdomain.ErrForbidden
	}

	target, err := s.teamMember(ctx, teamID, uid)
	if err != nil {
		return nil, err
	}

	v := &validation.Error{}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
		v.Required("name", trimmed)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		v.Add("role", domain.ErrInvalidRole.Error())
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if patch.Role != nil && target.IsAdmin() && *patch.Role != domain.RoleAdmin {
		if err := s.keepAnAdmin(ctx, teamID, uid); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateMember(ctx, uid, patch); err != nil {
		return nil, err
	}
	return s.repo.GetMember(ctx, uid)
}

// RemoveMember detaches uid from the caller's team. The sign-in account is
// kept.
func (s *TeamService) RemoveMember(ctx context.Context, session *authdomain.Session, uid string) error {
	teamID := session.TeamID()
	if err := session.RequireAdmin(teamID); err != nil {
		return err
	}
	target, err := s.teamMember(ctx, teamID, uid)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		if err := s.keepAnAdmin(ctx, teamID, uid); err != nil {
			return err
		}
	}
	if err := s.repo.LeaveTeam(ctx, uid); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("team_id", teamID).Str("uid", uid).Msg("member removed")
	return nil
}

func (s *TeamService) teamMember(ctx context.Context, teamID, uid string) (*domain.Member, error) {
	m, err := s.repo.GetMember(ctx, uid)
	if err != nil {
		return nil, err
	}
	if m.TeamID != teamID {
		return nil, domain.ErrMemberNotFound
	}
	return m, nil
}

// keepAnAdmin fails when uid is the team's only admin.
func (s *TeamService) keepAnAdmin(ctx context.Context, teamID, uid string) error {
	members, err := s.repo.ListMembers(ctx, teamID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UID != uid && m.IsAdmin() {
			return nil
		}
	}
	return domain.ErrLastAdmin
}
