package domain

import (
	"errors"
	"sync"

	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
)

var (
	ErrNotAuthenticated  = errors.New("user not authenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNoTeam            = errors.New("user has no team")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	UID   string
	Email string
	Name  string
}

type State int

const (
	StateInit State = iota
	StateAuthenticated
	StateAnonymous
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Session carries the caller's identity, profile and team through one unit
// of work. It moves init -> authenticated | anonymous -> disposed and is
// passed explicitly to every service call that needs it.
type Session struct {
	mu       sync.RWMutex
	state    State
	identity Identity
	profile  *teamdomain.Member
	team     *teamdomain.Team
}

func NewSession() *Session {
	return &Session{state: StateInit}
}

// Authenticate moves the session to authenticated. Calling it again while
// authenticated refreshes the profile and team (after team creation or a
// role change).
func (s *Session) Authenticate(id Identity, profile *teamdomain.Member, team *teamdomain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInit && s.state != StateAuthenticated {
		return ErrInvalidTransition
	}
	if id.UID == "" || profile == nil {
		return ErrNotAuthenticated
	}
	s.state = StateAuthenticated
	s.identity = id
	s.profile = profile
	s.team = team
	return nil
}

func (s *Session) MarkAnonymous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInit {
		return ErrInvalidTransition
	}
	s.state = StateAnonymous
	return nil
}

// Dispose ends the session. It is safe to call more than once.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateDisposed
	s.profile = nil
	s.team = nil
}

func (s *Session) State() State {
	if s == nil {
		return StateAnonymous
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}

func (s *Session) UID() string {
	if !s.Authenticated() {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.UID
}

func (s *Session) Identity() Identity {
	if !s.Authenticated() {
		return Identity{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Profile returns a copy of the caller's profile, or nil.
func (s *Session) Profile() *teamdomain.Member {
	if !s.Authenticated() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := *s.profile
	return &p
}

// Team returns a copy of the caller's team, or nil when the caller has not
// joined one yet.
func (s *Session) Team() *teamdomain.Team {
	if !s.Authenticated() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.team == nil {
		return nil
	}
	t := *s.team
	return &t
}

func (s *Session) TeamID() string {
	if t := s.Team(); t != nil {
		return t.ID
	}
	return ""
}

func (s *Session) IsAdmin() bool {
	p := s.Profile()
	return p != nil && p.IsAdmin()
}

// InTeam reports whether the caller belongs to teamID.
func (s *Session) InTeam(teamID string) bool {
	return teamID != "" && s.TeamID() == teamID
}

// RequireMember checks read access to a team's data.
func (s *Session) RequireMember(teamID string) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if !s.InTeam(teamID) {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin checks write access to a team's data.
func (s *Session) RequireAdmin(teamID string) error {
	if err := s.RequireMember(teamID); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
