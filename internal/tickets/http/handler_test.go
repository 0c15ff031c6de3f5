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
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
	"github.com/squadline/squadline-backend/internal/tickets"
)

func withUser(c *gin.Context) {
	uid := c.GetHeader("X-User-Id")
	s := authdomain.NewSession()
	_ = s.Authenticate(authdomain.Identity{UID: uid}, &teamdomain.Member{UID: uid}, nil)
	c.Set(auth.CtxSession, s)
	c.Next()
}

func submit(t *testing.T, r *gin.Engine, uid string) int {
	t.Helper()
	body, err := json.Marshal(map[string]string{"subject": "Help", "body": "Please"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/tickets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", uid)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestSubmit_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(tickets.NewService(docstore.NewMemory()), NewLimiter(1, 2))
	r := gin.New()
	h.Register(r.Group("/tickets", withUser))

	assert.Equal(t, http.StatusCreated, submit(t, r, "u1"))
	assert.Equal(t, http.StatusCreated, submit(t, r, "u1"))
	assert.Equal(t, http.StatusTooManyRequests, submit(t, r, "u1"))

	// Buckets are per user.
	assert.Equal(t, http.StatusCreated, submit(t, r, "u2"))
}
