package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/events/domain"
)

var ErrNotOnCard = errors.New("member is not on this card")

// Board holds the local state of one attendance card. Toggle shows a
// change immediately and then writes it; when the write fails the board
// is reloaded from the store so it never shows a status that was not
// saved.
type Board struct {
	svc     *Service
	session *authdomain.Session
	teamID  string
	kind    domain.Kind
	eventID string

	mu   sync.Mutex
	card Card
}

// Snapshot returns a copy of the current card.
func (b *Board) Snapshot() Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.card.clone()
}

// Toggle sets memberID's status locally, recomputes the present count and
// writes the entry. On a write error the board is reloaded and the write
// error returned.
func (b *Board) Toggle(ctx context.Context, memberID string, status domain.Status) error {
	if !b.session.IsAdmin() {
		return authdomain.ErrForbidden
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if err := b.apply(memberID, status); err != nil {
		return err
	}

	err := b.svc.SetStatus(ctx, b.session, b.teamID, b.kind, b.eventID, memberID, status)
	if err == nil {
		return nil
	}

	zerolog.Ctx(ctx).Warn().Err(err).
		Str("event_id", b.eventID).
		Str("member_id", memberID).
		Msg("attendance write failed, reloading card")
	b.svc.metrics.ObserveReconcile("attendance")
	if rerr := b.Reload(ctx); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

// Reload replaces the local state with the stored one.
func (b *Board) Reload(ctx context.Context) error {
	fresh, err := b.svc.Card(ctx, b.session, b.teamID, b.kind, b.eventID)
	if err != nil {
		return fmt.Errorf("failed to reload attendance: %w", err)
	}
	b.mu.Lock()
	b.card = *fresh
	b.mu.Unlock()
	return nil
}

func (b *Board) apply(memberID string, status domain.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.card.Entries {
		if b.card.Entries[i].UID == memberID {
			b.card.Entries[i].Status = status
			b.card.Entries[i].Recorded = true
			b.card.PresentCount = PresentCount(b.card.Entries)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotOnCard, memberID)
}
