package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authctx "github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/auth/domain"
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
)

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if t, ok := f[token]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

type fakeResolver struct {
	teamID string
	last   *domain.Session
}

func (f *fakeResolver) Resolve(_ context.Context, id domain.Identity) (*domain.Session, error) {
	s := domain.NewSession()
	if id.UID == "" {
		_ = s.MarkAnonymous()
	} else {
		_ = s.Authenticate(id, &teamdomain.Member{UID: id.UID, Role: teamdomain.RoleMember, TeamID: f.teamID}, &teamdomain.Team{ID: f.teamID})
	}
	f.last = s
	return s, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := fakeVerifier{"good": {UID: "u1", Claims: map[string]interface{}{"email": "ana@example.com"}}}

	r := gin.New()
	r.GET("/me", FirebaseAuthMiddleware(verifier), func(c *gin.Context) {
		id, _ := authctx.IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"uid": id.UID, "email": id.Email})
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"uid":"u1","email":"ana@example.com"}`, w.Body.String())
			}
		})
	}
}

func TestSessionAndRequireTeam(t *testing.T) {
	resolver := &fakeResolver{teamID: "t1"}

	r := gin.New()
	r.Use(DevIdentity(), Session(resolver))
	r.GET("/teams/:teamId", RequireTeam("teamId"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"team": authctx.SessionFrom(c).TeamID()})
	})

	do := func(uid, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if uid != "" {
			req.Header.Set("X-User-Id", uid)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("u1", "/teams/t1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"team":"t1"}`, w.Body.String())
	assert.Equal(t, domain.StateDisposed, resolver.last.State())

	assert.Equal(t, http.StatusForbidden, do("u1", "/teams/t2").Code)
	assert.Equal(t, http.StatusUnauthorized, do("", "/teams/t1").Code)
}
