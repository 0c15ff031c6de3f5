package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/docstore"
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
	"github.com/squadline/squadline-backend/internal/validation"
)

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	store := docstore.NewMemory(docstore.WithClock(clock))
	svc := NewService(store)

	// No team yet: tickets are still accepted.
	s := authdomain.NewSession()
	require.NoError(t, s.Authenticate(
		authdomain.Identity{UID: "u1", Email: "kim@example.com"},
		&teamdomain.Member{UID: "u1", Role: teamdomain.RoleMember},
		nil,
	))

	first, err := svc.Submit(ctx, s, " Cannot join team ", "The invite never arrived.")
	require.NoError(t, err)
	assert.Equal(t, "Cannot join team", first.Subject)
	assert.Equal(t, StatusOpen, first.Status)
	assert.Equal(t, "kim@example.com", first.Email)

	doc, err := store.Get(ctx, docstore.Tickets, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "open", doc.Data["status"])
	assert.Equal(t, clock.Now(), doc.Data["createdAt"])

	clock.Advance(time.Hour)
	second, err := svc.Submit(ctx, s, "Second", "Body")
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, s)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Submit(ctx, s, "", "body")
		assert.ErrorIs(t, err, validation.ErrValidation)
		_, err = svc.Submit(ctx, s, "subject", " ")
		assert.ErrorIs(t, err, validation.ErrValidation)
	})

	t.Run("anonymous", func(t *testing.T) {
		anon := authdomain.NewSession()
		require.NoError(t, anon.MarkAnonymous())
		_, err := svc.Submit(ctx, anon, "s", "b")
		assert.ErrorIs(t, err, authdomain.ErrNotAuthenticated)
	})
}
