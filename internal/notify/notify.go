// Package notify publishes change notifications so connected clients can
// reconcile their optimistic state against the store.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "squad:team:" // squad:team:{team_id}:events

type ChangeType string

const (
	ChangeCreated    ChangeType = "created"
	ChangeUpdated    ChangeType = "updated"
	ChangeArchived   ChangeType = "archived"
	ChangeUnarchived ChangeType = "unarchived"
	ChangeDeleted    ChangeType = "deleted"
	ChangeAttendance ChangeType = "attendance"
	ChangeReordered  ChangeType = "reordered"
)

// Change describes one write to a team-scoped entity.
type Change struct {
	TeamID   string     `json:"team_id"`
	Kind     string     `json:"kind"`
	EntityID string     `json:"entity_id,omitempty"`
	Type     ChangeType `json:"type"`
	MemberID string     `json:"member_id,omitempty"`
	Status   string     `json:"status,omitempty"`
	At       time.Time  `json:"at"`
}

// Publisher delivers changes. Publishing is best effort: callers log the
// error and never fail the originating write because of it.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Channel returns the pub/sub channel carrying a team's changes.
func Channel(teamID string) string {
	return fmt.Sprintf("%s%s:events", channelPrefix, teamID)
}

// RedisPublisher publishes JSON encoded changes over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, now: time.Now}
}

func (p *RedisPublisher) Publish(ctx context.Context, change Change) error {
	if change.TeamID == "" {
		return fmt.Errorf("publish change: team id required")
	}
	if change.At.IsZero() {
		change.At = p.now().UTC()
	}

	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(change.TeamID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Nop drops every change. Used when Redis is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }
