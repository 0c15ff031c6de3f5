// Package tickets stores support requests in the global tickets
// collection.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/validation"
)

const (
	StatusOpen = "open"

	MaxSubjectLength = 200
	MaxBodyLength    = 5000
)

var ErrRateLimited = errors.New("too many tickets, try again later")

type Ticket struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	TeamID    string    `json:"teamId,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

// Submit files a ticket for the caller. A team is not required, so users
// stuck before creating or joining one can still ask for help.
func (s *Service) Submit(ctx context.Context, session *authdomain.Session, subject, body string) (*Ticket, error) {
	if !session.Authenticated() {
		return nil, authdomain.ErrNotAuthenticated
	}

	t := Ticket{
		UID:     session.UID(),
		Email:   session.Identity().Email,
		TeamID:  session.TeamID(),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
		Status:  StatusOpen,
	}
	if p := session.Profile(); p != nil && p.Email != "" {
		t.Email = p.Email
	}

	v := &validation.Error{}
	v.Required("subject", t.Subject)
	v.Required("body", t.Body)
	if utf8.RuneCountInString(t.Subject) > MaxSubjectLength {
		v.Add("subject", fmt.Sprintf("must be at most %d characters", MaxSubjectLength))
	}
	if utf8.RuneCountInString(t.Body) > MaxBodyLength {
		v.Add("body", fmt.Sprintf("must be at most %d characters", MaxBodyLength))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	id, err := s.store.Add(ctx, docstore.Tickets, map[string]any{
		"uid":       t.UID,
		"email":     t.Email,
		"teamId":    t.TeamID,
		"subject":   t.Subject,
		"body":      t.Body,
		"status":    t.Status,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit ticket: %w", err)
	}
	t.ID = id

	zerolog.Ctx(ctx).Info().Str("ticket_id", id).Str("uid", t.UID).Msg("ticket submitted")
	return &t, nil
}

// Mine lists the caller's tickets, newest first.
func (s *Service) Mine(ctx context.Context, session *authdomain.Session) ([]Ticket, error) {
	if !session.Authenticated() {
		return nil, authdomain.ErrNotAuthenticated
	}
	docs, err := s.store.Query(ctx, docstore.Tickets, docstore.Query{
		Filters: []docstore.Filter{{Path: "uid", Value: session.UID()}},
		OrderBy: []docstore.Order{{Path: "createdAt", Desc: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	out := make([]Ticket, 0, len(docs))
	for _, d := range docs {
		t := Ticket{ID: d.ID}
		t.UID, _ = d.Data["uid"].(string)
		t.Email, _ = d.Data["email"].(string)
		t.TeamID, _ = d.Data["teamId"].(string)
		t.Subject, _ = d.Data["subject"].(string)
		t.Body, _ = d.Data["body"].(string)
		t.Status, _ = d.Data["status"].(string)
		t.CreatedAt, _ = d.Data["createdAt"].(time.Time)
		out = append(out, t)
	}
	return out, nil
}
