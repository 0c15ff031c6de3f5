package docstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("doc-%02d", n)
	}
}

func TestMemory_AddGet(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemory(WithClock(clock), WithIDGenerator(sequentialIDs()))
	col := TeamCollection("t1", Matches)

	id, err := store.Add(ctx, col, map[string]any{
		"opponent":   "Rival FC",
		"attendance": map[string]any{},
		"createdAt":  ServerTimestamp,
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-01", id)

	doc, err := store.Get(ctx, col, id)
	require.NoError(t, err)
	assert.Equal(t, "Rival FC", doc.Data["opponent"])
	assert.Equal(t, clock.Now().UTC(), doc.Data["createdAt"])

	t.Run("returned data is a copy", func(t *testing.T) {
		doc.Data["opponent"] = "mutated"
		again, err := store.Get(ctx, col, id)
		require.NoError(t, err)
		assert.Equal(t, "Rival FC", again.Data["opponent"])
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := store.Get(ctx, col, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects document path", func(t *testing.T) {
		_, err := store.Add(ctx, "teams/t1", map[string]any{})
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestMemory_Query(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(WithIDGenerator(sequentialIDs()))
	col := TeamCollection("t1", Trainings)

	seed := []map[string]any{
		{"date": "2025-03-08", "time": "18:00", "isArchived": false},
		{"date": "2025-03-01", "time": "19:00", "isArchived": false},
		{"date": "2025-03-01", "time": "09:00", "isArchived": true},
		{"date": "2025-02-01", "isArchived": false},
	}
	for _, s := range seed {
		_, err := store.Add(ctx, col, s)
		require.NoError(t, err)
	}

	t.Run("equality filter and multi-field sort", func(t *testing.T) {
		docs, err := store.Query(ctx, col, Query{
			Filters: []Filter{{Path: "isArchived", Value: false}},
			OrderBy: []Order{{Path: "date"}, {Path: "time"}},
		})
		require.NoError(t, err)
		require.Len(t, docs, 2, "document without time is excluded from ordered results")
		assert.Equal(t, "doc-02", docs[0].ID)
		assert.Equal(t, "doc-01", docs[1].ID)
	})

	t.Run("descending with limit", func(t *testing.T) {
		docs, err := store.Query(ctx, col, Query{OrderBy: []Order{{Path: "date", Desc: true}}, Limit: 1})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "doc-01", docs[0].ID)
	})

	t.Run("numeric equality across int kinds", func(t *testing.T) {
		users := "users"
		_, err := store.Add(ctx, users, map[string]any{"age": int64(30)})
		require.NoError(t, err)
		docs, err := store.Query(ctx, users, Query{Filters: []Filter{{Path: "age", Value: 30}}})
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}

func TestMemory_UpdateDottedPath(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	col := TeamCollection("t1", Matches)

	id, err := store.Add(ctx, col, map[string]any{
		"attendance": map[string]any{"u1": "present", "u2": "absent"},
	})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, col, id, []FieldUpdate{{Path: "attendance.u1", Value: "excused"}}))
	require.NoError(t, store.Update(ctx, col, id, []FieldUpdate{{Path: "attendance.u3", Value: "absent"}}))

	doc, err := store.Get(ctx, col, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"u1": "excused", "u2": "absent", "u3": "absent"}, doc.Data["attendance"])

	err = store.Update(ctx, col, "missing", []FieldUpdate{{Path: "x", Value: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_UpdateDeleteField(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	col := TeamCollection("t1", Matches)

	id, err := store.Add(ctx, col, map[string]any{
		"order":      2,
		"attendance": map[string]any{"u1": "present", "u2": "absent"},
	})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, col, id, []FieldUpdate{
		{Path: "order", Value: DeleteField},
		{Path: "attendance.u2", Value: DeleteField},
		{Path: "missing.deep", Value: DeleteField},
	}))

	doc, err := store.Get(ctx, col, id)
	require.NoError(t, err)
	assert.NotContains(t, doc.Data, "order")
	assert.NotContains(t, doc.Data, "missing")
	assert.Equal(t, map[string]any{"u1": "present"}, doc.Data["attendance"])

	docs, err := store.Query(ctx, col, Query{OrderBy: []Order{{Path: "order"}}})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemory_SetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, Users, "u1", map[string]any{"name": "Ana"}))
	require.NoError(t, store.Set(ctx, Users, "u1", map[string]any{"name": "Ana B"}))

	doc, err := store.Get(ctx, Users, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", doc.Data["name"])

	require.NoError(t, store.Delete(ctx, Users, "u1"))
	require.NoError(t, store.Delete(ctx, Users, "u1"))
	_, err = store.Get(ctx, Users, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Batch(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(WithIDGenerator(sequentialIDs()))
	col := TeamCollection("t1", Trainings)

	t.Run("commits all writes", func(t *testing.T) {
		b := store.Batch()
		b.Create(col, map[string]any{"date": "2025-03-01"})
		b.Create(col, map[string]any{"date": "2025-03-08"})
		ids, err := b.Commit(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-01", "doc-02"}, ids)

		_, err = b.Commit(ctx)
		assert.ErrorIs(t, err, ErrBatchClosed)
	})

	t.Run("writes nothing when one operation fails", func(t *testing.T) {
		before, err := store.Query(ctx, col, Query{})
		require.NoError(t, err)

		b := store.Batch()
		b.Create(col, map[string]any{"date": "2025-03-15"})
		b.Update(col, "missing", []FieldUpdate{{Path: "isArchived", Value: true}})
		_, err = b.Commit(ctx)
		assert.ErrorIs(t, err, ErrNotFound)

		after, err := store.Query(ctx, col, Query{})
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := store.Batch().Commit(ctx)
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "matches", CollectionName(TeamCollection("t1", Matches)))
	assert.Equal(t, "users", CollectionName(Users))
}
