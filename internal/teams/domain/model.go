package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleMember  Role = "member"
	RoleTrainer Role = "trainer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleTrainer:
		return true
	}
	return false
}

// Team owns every event, message and location stored under teams/{id}.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerUID  string    `json:"ownerUid"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member is the team-scoped profile stored at users/{uid}. The identity
// record behind it lives in the identity provider and is never deleted from
// here.
type Member struct {
	UID              string          `json:"uid"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Role             Role            `json:"role"`
	TeamID           string          `json:"teamId"`
	Responsibilities map[string]bool `json:"responsibilities"`
	AvatarURL        string          `json:"avatarUrl,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (m Member) IsAdmin() bool { return m.Role == RoleAdmin }

// DisplayName falls back to the email's local part when no name is set.
func (m Member) DisplayName() string {
	if strings.TrimSpace(m.Name) != "" {
		return m.Name
	}
	if i := strings.IndexByte(m.Email, '@'); i > 0 {
		return m.Email[:i]
	}
	return m.UID
}

// MemberPatch lists the profile fields that may change. Nil means
// unchanged.
type MemberPatch struct {
	Name             *string         `json:"name,omitempty"`
	AvatarURL        *string         `json:"avatarUrl,omitempty"`
	Role             *Role           `json:"role,omitempty"`
	Responsibilities map[string]bool `json:"responsibilities,omitempty"`
}

// AdminOnly reports whether the patch touches fields only admins may set.
func (p MemberPatch) AdminOnly() bool {
	return p.Role != nil || p.Responsibilities != nil
}

func (p MemberPatch) Empty() bool {
	return p.Name == nil && p.AvatarURL == nil && !p.AdminOnly()
}
