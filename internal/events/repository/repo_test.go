package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadline/squadline-backend/internal/dates"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/validation"
)

const teamID = "team-1"

func newMatch(t string, opponent string) *domain.Match {
	return &domain.Match{Event: domain.Event{Time: t}, Opponent: opponent, Location: "Home"}
}

func ids[T any, P domain.EntityPtr[T]](items []T) []string {
	out := make([]string, 0, len(items))
	for i := range items {
		out = append(out, P(&items[i]).Shape().ID)
	}
	return out
}

func TestRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Match](store)

	march, err := repo.Create(ctx, teamID, dates.Raw("2025-03-01"), newMatch("14:00", "Rival FC"))
	require.NoError(t, err)
	feb, err := repo.Create(ctx, teamID, dates.Raw("2025-02-15T10:00:00Z"), newMatch("18:00", "Old Boys"))
	require.NoError(t, err)

	t.Run("active list is sorted by date and time", func(t *testing.T) {
		items, err := repo.List(ctx, teamID, domain.FilterActive)
		require.NoError(t, err)
		assert.Equal(t, []string{feb, march}, ids[domain.Match](items))
		assert.Equal(t, "2025-02-15", items[0].Date)
		assert.Empty(t, items[1].Attendance)
		assert.NotNil(t, items[1].Attendance)
		assert.False(t, items[1].IsArchived)
		assert.Nil(t, items[1].Order)
		assert.NotNil(t, items[1].CreatedAt)
	})

	t.Run("archive moves the match without touching other fields", func(t *testing.T) {
		require.NoError(t, repo.SetAttendance(ctx, teamID, march, "u1", domain.StatusAbsent))
		require.NoError(t, repo.Archive(ctx, teamID, march))

		active, err := repo.List(ctx, teamID, domain.FilterActive)
		require.NoError(t, err)
		assert.Equal(t, []string{feb}, ids[domain.Match](active))

		archived, err := repo.List(ctx, teamID, domain.FilterArchived)
		require.NoError(t, err)
		require.Len(t, archived, 1)
		assert.Equal(t, march, archived[0].ID)
		assert.Equal(t, "Rival FC", archived[0].Opponent)
		assert.Equal(t, map[string]domain.Status{"u1": domain.StatusAbsent}, archived[0].Attendance)

		require.NoError(t, repo.Unarchive(ctx, teamID, march))
		active, err = repo.List(ctx, teamID, domain.FilterActive)
		require.NoError(t, err)
		assert.Len(t, active, 2)
	})

	t.Run("other teams are not visible", func(t *testing.T) {
		items, err := repo.List(ctx, "team-2", domain.FilterAll)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestRepository_CreateValidation(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Match](store)

	cases := []struct {
		name  string
		date  dates.DateValue
		match *domain.Match
		field string
	}{
		{"malformed date", dates.Raw("01/03/2025"), newMatch("14:00", "Rival FC"), "date"},
		{"malformed time", dates.Raw("2025-03-01"), newMatch("2pm", "Rival FC"), "time"},
		{"missing opponent", dates.Raw("2025-03-01"), newMatch("14:00", " "), "opponent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, teamID, tc.date, tc.match)
			require.ErrorIs(t, err, validation.ErrValidation)

			var verr *validation.Error
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.FieldErrors, tc.field)
		})
	}

	items, err := repo.List(ctx, teamID, domain.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepository_ArchivePartition(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Match](store)
	col := domain.KindMatch.Collection(teamID)

	var created []string
	for i, d := range []string{"2025-01-04", "2025-01-11", "2025-01-18", "2025-01-25"} {
		id, err := repo.Create(ctx, teamID, dates.Raw(d), newMatch("10:00", "Team"))
		require.NoError(t, err)
		created = append(created, id)
		if i%2 == 0 {
			require.NoError(t, repo.Archive(ctx, teamID, id))
		}
	}
	require.NoError(t, repo.SetOrder(ctx, teamID, created[1], 0))
	require.NoError(t, repo.SetOrder(ctx, teamID, created[2], 1))
	require.NoError(t, store.Set(ctx, col, "legacy", map[string]any{
		"date": "2024-12-01", "time": "09:00", "opponent": "Legacy", "isArchived": false,
	}))
	require.NoError(t, store.Set(ctx, col, "unflagged", map[string]any{
		"date": "2024-11-01", "time": "09:00", "opponent": "Unflagged",
	}))

	active, err := repo.List(ctx, teamID, domain.FilterActive)
	require.NoError(t, err)
	archived, err := repo.List(ctx, teamID, domain.FilterArchived)
	require.NoError(t, err)
	all, err := repo.List(ctx, teamID, domain.FilterAll)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, id := range append(ids[domain.Match](active), ids[domain.Match](archived)...) {
		seen[id]++
	}
	assert.Len(t, seen, len(all))
	assert.Len(t, all, len(active)+len(archived))
	for _, id := range ids[domain.Match](all) {
		assert.Equal(t, 1, seen[id], id)
	}
	assert.Contains(t, ids[domain.Match](active), "unflagged")
	assert.Len(t, archived, 2)
}

func TestRepository_ListKeepsUndatedDocuments(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Training](store)
	col := domain.KindTraining.Collection(teamID)

	_, err := repo.Create(ctx, teamID, dates.Raw("2025-03-01"), &domain.Training{
		Event: domain.Event{Time: "18:00"}, Location: "Gym",
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, col, "no-time", map[string]any{
		"date": "2025-02-01", "location": "Field",
	}))
	require.NoError(t, store.Set(ctx, col, "no-date", map[string]any{
		"time": "10:00", "location": "Hall",
	}))

	for _, filter := range []domain.ArchiveFilter{domain.FilterActive, domain.FilterAll} {
		t.Run(string(filter), func(t *testing.T) {
			items, err := repo.List(ctx, teamID, filter)
			require.NoError(t, err)
			require.Len(t, items, 3)
			assert.Equal(t, "no-date", items[0].ID)
			assert.Equal(t, "no-time", items[1].ID)
			assert.Empty(t, items[1].Time)
		})
	}
}

func TestRepository_ArchiveClearsOrder(t *testing.T) {
	ctx := context.Background()
	repo := New[domain.Match](docstore.NewMemory())

	id, err := repo.Create(ctx, teamID, dates.Raw("2025-03-01"), newMatch("14:00", "Rival FC"))
	require.NoError(t, err)
	require.NoError(t, repo.SetOrder(ctx, teamID, id, 3))
	require.NoError(t, repo.Archive(ctx, teamID, id))

	m, err := repo.GetByID(ctx, teamID, id)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.IsArchived)
	assert.Nil(t, m.Order)
	assert.Equal(t, "Rival FC", m.Opponent)

	trainings := New[domain.Training](docstore.NewMemory())
	tid, err := trainings.Create(ctx, teamID, dates.Raw("2025-03-01"), &domain.Training{
		Event: domain.Event{Time: "18:00"}, Location: "Gym",
	})
	require.NoError(t, err)
	require.NoError(t, trainings.Archive(ctx, teamID, tid))
}

func TestRepository_LegacyDocuments(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Training](store)
	col := domain.KindTraining.Collection(teamID)

	require.NoError(t, store.Set(ctx, col, "old", map[string]any{
		"date":     time.Date(2024, 9, 3, 18, 0, 0, 0, time.UTC),
		"time":     "18:00",
		"location": "Gym",
	}))

	tr, err := repo.GetByID(ctx, teamID, "old")
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, "2024-09-03", tr.Date)
	assert.NotNil(t, tr.Attendance)
	assert.False(t, tr.IsArchived)
	assert.Equal(t, "Gym", tr.Location)

	all, err := repo.List(ctx, teamID, domain.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	missing, err := repo.GetByID(ctx, teamID, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Match](store)

	id, err := repo.Create(ctx, teamID, dates.Raw("2025-03-01"), newMatch("14:00", "Rival FC"))
	require.NoError(t, err)
	require.NoError(t, repo.SetAttendance(ctx, teamID, id, "u1", domain.StatusExcused))

	t.Run("accepted and rejected fields are reported", func(t *testing.T) {
		bad := dates.Raw("next friday")
		newTime := "16:30"
		res, err := repo.Update(ctx, teamID, id, domain.Patch{
			Date: &bad,
			Time: &newTime,
			Fields: map[string]any{
				"location":   "Away ground",
				"attendance": map[string]any{},
				"nonsense":   1,
			},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"time", "location"}, res.Accepted())

		rejected := map[string]string{}
		for _, f := range res.Rejected() {
			rejected[f.Field] = f.Reason
		}
		assert.Contains(t, rejected, "date")
		assert.Contains(t, rejected, "attendance")
		assert.Contains(t, rejected, "nonsense")

		m, err := repo.GetByID(ctx, teamID, id)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-01", m.Date)
		assert.Equal(t, "16:30", m.Time)
		assert.Equal(t, "Away ground", m.Location)
		assert.Equal(t, domain.StatusExcused, m.Attendance["u1"])
	})

	t.Run("date in fields is normalized", func(t *testing.T) {
		res, err := repo.Update(ctx, teamID, id, domain.Patch{
			Fields: map[string]any{"date": "2025-04-05T09:00:00Z"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"date"}, res.Accepted())

		m, err := repo.GetByID(ctx, teamID, id)
		require.NoError(t, err)
		assert.Equal(t, "2025-04-05", m.Date)
	})

	t.Run("all rejected writes nothing", func(t *testing.T) {
		res, err := repo.Update(ctx, teamID, "missing", domain.Patch{Fields: map[string]any{"opponent": ""}})
		require.NoError(t, err)
		assert.False(t, res.Written())
		assert.Len(t, res.Rejected(), 1)
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := repo.Update(ctx, teamID, "missing", domain.Patch{Fields: map[string]any{"opponent": "X"}})
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

func TestRepository_SetAttendance(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Training](store)

	id, err := repo.Create(ctx, teamID, dates.Raw("2025-03-04"), &domain.Training{
		Event: domain.Event{Time: "19:00"}, Location: "Gym",
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetAttendance(ctx, teamID, id, "a", domain.StatusAbsent))
	require.NoError(t, repo.SetAttendance(ctx, teamID, id, "b", domain.StatusExcused))
	require.NoError(t, repo.SetAttendance(ctx, teamID, id, "a", domain.StatusPresent))

	tr, err := repo.GetByID(ctx, teamID, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Status{
		"a": domain.StatusPresent,
		"b": domain.StatusExcused,
	}, tr.Attendance)

	assert.ErrorIs(t, repo.SetAttendance(ctx, teamID, id, "a.b", domain.StatusAbsent), domain.ErrInvalidMemberID)
	assert.ErrorIs(t, repo.SetAttendance(ctx, teamID, id, "a", "late"), domain.ErrInvalidStatus)
	assert.ErrorIs(t, repo.SetAttendance(ctx, teamID, "missing", "a", domain.StatusAbsent), domain.ErrEventNotFound)
}

func TestRepository_BulkCreate(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := New[domain.Training](store)
	base := &domain.Training{Event: domain.Event{Time: "19:00"}, Location: "Gym", Description: "Drills"}

	created, err := repo.BulkCreate(ctx, teamID, dates.Raw("2025-02-22"), base, 3)
	require.NoError(t, err)
	assert.Len(t, created, 4)

	items, err := repo.List(ctx, teamID, domain.FilterActive)
	require.NoError(t, err)
	require.Len(t, items, 4)
	want := []string{"2025-02-22", "2025-03-01", "2025-03-08", "2025-03-15"}
	for i, tr := range items {
		assert.Equal(t, want[i], tr.Date)
		assert.Equal(t, "19:00", tr.Time)
		assert.Equal(t, "Gym", tr.Location)
		assert.Equal(t, "Drills", tr.Description)
	}

	t.Run("zero weeks creates one", func(t *testing.T) {
		created, err := repo.BulkCreate(ctx, "team-2", dates.Raw("2025-02-22"), base, 0)
		require.NoError(t, err)
		assert.Len(t, created, 1)
	})

	t.Run("week bounds", func(t *testing.T) {
		_, err := repo.BulkCreate(ctx, teamID, dates.Raw("2025-02-22"), base, 53)
		assert.ErrorIs(t, err, validation.ErrValidation)
		_, err = repo.BulkCreate(ctx, teamID, dates.Raw("2025-02-22"), base, -1)
		assert.ErrorIs(t, err, validation.ErrValidation)
	})

	t.Run("matches cannot be bulk created", func(t *testing.T) {
		matches := New[domain.Match](store)
		_, err := matches.BulkCreate(ctx, teamID, dates.Raw("2025-02-22"), newMatch("10:00", "X"), 2)
		assert.ErrorIs(t, err, domain.ErrBulkUnsupported)
	})

	t.Run("failed batch writes nothing", func(t *testing.T) {
		failing := New[domain.Training](failingBatchStore{Memory: docstore.NewMemory()})
		_, err := failing.BulkCreate(ctx, teamID, dates.Raw("2025-02-22"), base, 2)
		require.Error(t, err)

		items, err := failing.List(ctx, teamID, domain.FilterAll)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestRepository_RefereeingKeepsAwayTeam(t *testing.T) {
	ctx := context.Background()
	repo := New[domain.RefereeingAssignment](docstore.NewMemory())

	id, err := repo.Create(ctx, teamID, dates.Raw("2025-05-10"), &domain.RefereeingAssignment{
		Event:              domain.Event{Time: "11:00"},
		HomeTeam:           "Lions",
		AwayTeam:           "Tigers",
		AssignedPlayerUIDs: []string{"u1", "u2"},
	})
	require.NoError(t, err)

	ra, err := repo.GetByID(ctx, teamID, id)
	require.NoError(t, err)
	assert.Equal(t, "Tigers", ra.AwayTeam)
	assert.Equal(t, []string{"u1", "u2"}, ra.AssignedPlayerUIDs)

	res, err := repo.Update(ctx, teamID, id, domain.Patch{Fields: map[string]any{
		"assignedPlayerUids": []any{"u3"},
	}})
	require.NoError(t, err)
	assert.True(t, res.Written())

	ra, err = repo.GetByID(ctx, teamID, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, ra.AssignedPlayerUIDs)
}

func TestRepository_SetOrder(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	trainings := New[domain.Training](store)
	assert.ErrorIs(t, trainings.SetOrder(ctx, teamID, "x", 1), domain.ErrNotOrderable)

	matches := New[domain.Match](store)
	a, err := matches.Create(ctx, teamID, dates.Raw("2025-03-01"), newMatch("10:00", "A"))
	require.NoError(t, err)
	b, err := matches.Create(ctx, teamID, dates.Raw("2025-03-08"), newMatch("10:00", "B"))
	require.NoError(t, err)

	require.NoError(t, matches.SetOrder(ctx, teamID, b, 0))
	items, err := matches.List(ctx, teamID, domain.FilterActive)
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, ids[domain.Match](items))
	require.NotNil(t, items[0].Order)
	assert.Equal(t, 0, *items[0].Order)
}

type failingBatchStore struct {
	*docstore.Memory
}

func (s failingBatchStore) Batch() docstore.Batch {
	return failingBatch{}
}

type failingBatch struct{}

func (failingBatch) Create(string, map[string]any)                 {}
func (failingBatch) Update(string, string, []docstore.FieldUpdate) {}
func (failingBatch) Commit(context.Context) ([]string, error) {
	return nil, errors.New("unavailable")
}
