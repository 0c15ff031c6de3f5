// Package board is the team's message board stored under
// teams/{teamId}/messages.
package board

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
	"github.com/squadline/squadline-backend/internal/notify"
	"github.com/squadline/squadline-backend/internal/validation"
)

const (
	MaxTextLength = 2000
	DefaultLimit  = 50
	MaxLimit      = 200
)

var ErrMessageNotFound = errors.New("message not found")

type Message struct {
	ID         string    `json:"id"`
	AuthorUID  string    `json:"authorUid"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Service struct {
	store     docstore.Store
	publisher notify.Publisher
}

func NewService(store docstore.Store, publisher notify.Publisher) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Service{store: store, publisher: publisher}
}

// Post adds a message to the caller's team board.
func (s *Service) Post(ctx context.Context, session *authdomain.Session, text string) (*Message, error) {
	teamID := session.TeamID()
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	v := &validation.Error{}
	v.Required("text", text)
	if utf8.RuneCountInString(text) > MaxTextLength {
		v.Add("text", fmt.Sprintf("must be at most %d characters", MaxTextLength))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	author := session.Profile()
	col := collection(teamID)
	id, err := s.store.Add(ctx, col, map[string]any{
		"authorUid":  author.UID,
		"authorName": author.DisplayName(),
		"text":       text,
		"createdAt":  docstore.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	s.publish(ctx, teamID, id, notify.ChangeCreated)
	doc, err := s.store.Get(ctx, col, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", id, err)
	}
	return decode(*doc), nil
}

// List returns up to limit messages, newest first. A limit outside
// 1..MaxLimit falls back to DefaultLimit.
func (s *Service) List(ctx context.Context, session *authdomain.Session, teamID string, limit int) ([]Message, error) {
	if err := session.RequireMember(teamID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	docs, err := s.store.Query(ctx, collection(teamID), docstore.Query{
		OrderBy: []docstore.Order{{Path: "createdAt", Desc: true}},
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, *decode(d))
	}
	return out, nil
}

// Delete removes a message. Authors may delete their own messages, admins
// any message of their team.
func (s *Service) Delete(ctx context.Context, session *authdomain.Session, id string) error {
	teamID := session.TeamID()
	if err := session.RequireMember(teamID); err != nil {
		return err
	}

	col := collection(teamID)
	doc, err := s.store.Get(ctx, col, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read message %s: %w", id, err)
	}
	if msg := decode(*doc); msg.AuthorUID != session.UID() && !session.IsAdmin() {
		return authdomain.ErrForbidden
	}

	if err := s.store.Delete(ctx, col, id); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	s.publish(ctx, teamID, id, notify.ChangeDeleted)
	return nil
}

func (s *Service) publish(ctx context.Context, teamID, id string, typ notify.ChangeType) {
	err := s.publisher.Publish(ctx, notify.Change{TeamID: teamID, Kind: docstore.Messages, EntityID: id, Type: typ})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("message_id", id).Msg("failed to publish message change")
	}
}

func collection(teamID string) string {
	return docstore.TeamCollection(teamID, docstore.Messages)
}

func decode(doc docstore.Document) *Message {
	m := &Message{ID: doc.ID}
	m.AuthorUID, _ = doc.Data["authorUid"].(string)
	m.AuthorName, _ = doc.Data["authorName"].(string)
	m.Text, _ = doc.Data["text"].(string)
	m.CreatedAt, _ = doc.Data["createdAt"].(time.Time)
	return m
}
