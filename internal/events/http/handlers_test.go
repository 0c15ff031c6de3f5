package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadline/squadline-backend/internal/auth"
	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/events/repository"
	"github.com/squadline/squadline-backend/internal/events/service"
	"github.com/squadline/squadline-backend/internal/ordering"
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
)

const teamID = "t1"

func withSession(role teamdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := authdomain.NewSession()
		_ = s.Authenticate(authdomain.Identity{UID: "u1"},
			&teamdomain.Member{UID: "u1", Role: role, TeamID: teamID}, &teamdomain.Team{ID: teamID})
		c.Set(auth.CtxSession, s)
		c.Next()
	}
}

func newRouter(role teamdomain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := docstore.NewMemory()

	matchRepo := repository.New[domain.Match](store)
	matches := New(service.NewEventService(matchRepo, nil)).
		WithReorderer(ordering.NewReorderer[domain.Match](matchRepo, nil, nil))
	trainings := New(service.NewEventService(repository.New[domain.Training](store), nil))

	r := gin.New()
	team := r.Group("/teams/:teamId", withSession(role))
	matches.Register(team.Group("/matches"))
	trainings.Register(team.Group("/trainings"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestHandler_MatchFlow(t *testing.T) {
	r := newRouter(teamdomain.RoleAdmin)

	code, body := do(t, r, http.MethodPost, "/teams/t1/matches", map[string]any{
		"date": "2025-03-01T14:00:00Z", "time": "14:00", "opponent": "Rival FC",
	})
	require.Equal(t, http.StatusCreated, code, body)
	item := body["item"].(map[string]any)
	id := item["id"].(string)
	assert.Equal(t, "2025-03-01", item["date"])
	assert.Equal(t, map[string]any{}, item["attendance"])

	code, body = do(t, r, http.MethodPost, "/teams/t1/matches", map[string]any{
		"date": "2025-02-15", "time": "18:00", "opponent": "Old Boys",
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = do(t, r, http.MethodGet, "/teams/t1/matches?filter=active", nil)
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Old Boys", items[0].(map[string]any)["opponent"])

	t.Run("update reports rejected fields", func(t *testing.T) {
		code, body := do(t, r, http.MethodPatch, "/teams/t1/matches/"+id, map[string]any{
			"date": "someday", "location": "Away",
		})
		require.Equal(t, http.StatusOK, code)
		fields := body["result"].(map[string]any)["fields"].([]any)
		require.Len(t, fields, 2)
		first := fields[0].(map[string]any)
		assert.Equal(t, "date", first["field"])
		assert.Equal(t, false, first["accepted"])
		assert.NotEmpty(t, first["reason"])
		assert.Equal(t, map[string]any{"field": "location", "accepted": true}, fields[1])
	})

	t.Run("validation errors carry fields", func(t *testing.T) {
		code, body := do(t, r, http.MethodPost, "/teams/t1/matches", map[string]any{
			"date": "2025-13-01", "time": "25:00", "opponent": "X",
		})
		require.Equal(t, http.StatusBadRequest, code)
		fe := body["field_errors"].(map[string]any)
		assert.Contains(t, fe, "date")
		assert.Contains(t, fe, "time")
	})

	t.Run("reorder", func(t *testing.T) {
		code, body := do(t, r, http.MethodPost, "/teams/t1/matches/reorder", map[string]any{"from": 1, "to": 0})
		require.Equal(t, http.StatusOK, code, body)
		items := body["items"].([]any)
		assert.Equal(t, "Rival FC", items[0].(map[string]any)["opponent"])
		assert.EqualValues(t, 0, items[0].(map[string]any)["order"])
	})

	t.Run("archive and filter", func(t *testing.T) {
		code, _ := do(t, r, http.MethodPost, "/teams/t1/matches/"+id+"/archive", nil)
		require.Equal(t, http.StatusOK, code)

		_, body := do(t, r, http.MethodGet, "/teams/t1/matches?filter=archived", nil)
		assert.Len(t, body["items"].([]any), 1)
		code, _ = do(t, r, http.MethodGet, "/teams/t1/matches?filter=deleted", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("delete then 404", func(t *testing.T) {
		code, _ := do(t, r, http.MethodDelete, "/teams/t1/matches/"+id, nil)
		require.Equal(t, http.StatusOK, code)
		code, _ = do(t, r, http.MethodGet, "/teams/t1/matches/"+id, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestHandler_TrainingBulk(t *testing.T) {
	r := newRouter(teamdomain.RoleAdmin)

	code, body := do(t, r, http.MethodPost, "/teams/t1/trainings/bulk", map[string]any{
		"date": "2025-02-22", "time": "19:00", "location": "Gym", "numberOfWeeks": 2,
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Len(t, body["ids"].([]any), 3)

	code, _ = do(t, r, http.MethodPost, "/teams/t1/trainings/bulk", map[string]any{
		"date": "2025-02-22", "time": "19:00", "location": "Gym",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodPost, "/teams/t1/matches/bulk", map[string]any{"numberOfWeeks": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandler_MemberIsReadOnly(t *testing.T) {
	r := newRouter(teamdomain.RoleMember)

	code, _ := do(t, r, http.MethodPost, "/teams/t1/trainings", map[string]any{
		"date": "2025-02-22", "time": "19:00", "location": "Gym",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, body := do(t, r, http.MethodGet, "/teams/t1/trainings", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["items"])
}
