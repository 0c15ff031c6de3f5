package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/teams/domain"
)

// Repo stores teams under teams/{id} and member profiles under the global
// users/{uid} collection.
type Repo struct {
	store docstore.Store
}

func New(store docstore.Store) *Repo {
	return &Repo{store: store}
}

func (r *Repo) CreateTeam(ctx context.Context, name, ownerUID string) (*domain.Team, error) {
	id, err := r.store.Add(ctx, docstore.Teams, map[string]any{
		"name":      name,
		"ownerUid":  ownerUID,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return r.GetTeam(ctx, id)
}

func (r *Repo) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	doc, err := r.store.Get(ctx, docstore.Teams, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return decodeTeam(*doc), nil
}

// ListTeamIDs returns the id of every team.
func (r *Repo) ListTeamIDs(ctx context.Context) ([]string, error) {
	docs, err := r.store.Query(ctx, docstore.Teams, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Repo) GetMember(ctx context.Context, uid string) (*domain.Member, error) {
	doc, err := r.store.Get(ctx, docstore.Users, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", uid, err)
	}
	return decodeMember(*doc), nil
}

// SaveMember creates or replaces the profile at users/{uid}.
func (r *Repo) SaveMember(ctx context.Context, m domain.Member) error {
	fields := map[string]any{
		"name":             m.Name,
		"email":            m.Email,
		"role":             string(m.Role),
		"teamId":           m.TeamID,
		"responsibilities": responsibilities(m.Responsibilities),
		"avatarUrl":        m.AvatarURL,
		"createdAt":        docstore.ServerTimestamp,
	}
	if !m.CreatedAt.IsZero() {
		fields["createdAt"] = m.CreatedAt
	}
	if err := r.store.Set(ctx, docstore.Users, m.UID, fields); err != nil {
		return fmt.Errorf("failed to save member %s: %w", m.UID, err)
	}
	return nil
}

// ListMembers returns the team's members sorted by display name.
func (r *Repo) ListMembers(ctx context.Context, teamID string) ([]domain.Member, error) {
	docs, err := r.store.Query(ctx, docstore.Users, docstore.Query{
		Filters: []docstore.Filter{{Path: "teamId", Value: teamID}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", teamID, err)
	}

	members := make([]domain.Member, 0, len(docs))
	for _, d := range docs {
		members = append(members, *decodeMember(d))
	}
	sort.SliceStable(members, func(i, j int) bool {
		a, b := strings.ToLower(members[i].DisplayName()), strings.ToLower(members[j].DisplayName())
		if a != b {
			return a < b
		}
		return members[i].UID < members[j].UID
	})
	return members, nil
}

// UpdateMember writes the non-nil fields of patch.
func (r *Repo) UpdateMember(ctx context.Context, uid string, patch domain.MemberPatch) error {
	var updates []docstore.FieldUpdate
	if patch.Name != nil {
		updates = append(updates, docstore.FieldUpdate{Path: "name", Value: *patch.Name})
	}
	if patch.AvatarURL != nil {
		updates = append(updates, docstore.FieldUpdate{Path: "avatarUrl", Value: *patch.AvatarURL})
	}
	if patch.Role != nil {
		updates = append(updates, docstore.FieldUpdate{Path: "role", Value: string(*patch.Role)})
	}
	if patch.Responsibilities != nil {
		updates = append(updates, docstore.FieldUpdate{Path: "responsibilities", Value: responsibilities(patch.Responsibilities)})
	}
	if len(updates) == 0 {
		return nil
	}
	return r.update(ctx, uid, updates...)
}

// JoinTeam points the profile at teamID with the given role.
func (r *Repo) JoinTeam(ctx context.Context, uid, teamID string, role domain.Role) error {
	return r.update(ctx, uid,
		docstore.FieldUpdate{Path: "teamId", Value: teamID},
		docstore.FieldUpdate{Path: "role", Value: string(role)},
	)
}

// LeaveTeam clears the team-scoped part of the profile. The profile itself
// and the identity behind it stay.
func (r *Repo) LeaveTeam(ctx context.Context, uid string) error {
	return r.update(ctx, uid,
		docstore.FieldUpdate{Path: "teamId", Value: ""},
		docstore.FieldUpdate{Path: "role", Value: string(domain.RoleMember)},
		docstore.FieldUpdate{Path: "responsibilities", Value: map[string]any{}},
	)
}

func (r *Repo) update(ctx context.Context, uid string, updates ...docstore.FieldUpdate) error {
	err := r.store.Update(ctx, docstore.Users, uid, updates)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update member %s: %w", uid, err)
	}
	return nil
}

func responsibilities(in map[string]bool) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func decodeTeam(doc docstore.Document) *domain.Team {
	t := &domain.Team{ID: doc.ID}
	t.Name, _ = doc.Data["name"].(string)
	t.OwnerUID, _ = doc.Data["ownerUid"].(string)
	t.CreatedAt, _ = doc.Data["createdAt"].(time.Time)
	return t
}

func decodeMember(doc docstore.Document) *domain.Member {
	m := &domain.Member{UID: doc.ID, Responsibilities: map[string]bool{}}
	m.Name, _ = doc.Data["name"].(string)
	m.Email, _ = doc.Data["email"].(string)
	m.TeamID, _ = doc.Data["teamId"].(string)
	m.AvatarURL, _ = doc.Data["avatarUrl"].(string)
	m.CreatedAt, _ = doc.Data["createdAt"].(time.Time)

	role, _ := doc.Data["role"].(string)
	m.Role = domain.Role(role)
	if !m.Role.Valid() {
		m.Role = domain.RoleMember
	}
	if flags, ok := doc.Data["responsibilities"].(map[string]any); ok {
		for k, v := range flags {
			if b, ok := v.(bool); ok {
				m.Responsibilities[k] = b
			}
		}
	}
	return m
}
