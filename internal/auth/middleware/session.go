package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authctx "github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/auth/domain"
)

// SessionResolver turns a verified identity into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, identity domain.Identity) (*domain.Session, error)
}

// Session resolves the request's session after the identity middleware ran
// and disposes of it when the request is done.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := authctx.IdentityFrom(c)
		session, err := resolver.Resolve(c.Request.Context(), identity)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("uid", identity.UID).Msg("failed to resolve session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}
		defer session.Dispose()

		c.Set(authctx.CtxSession, session)
		c.Next()
	}
}

// RequireTeam rejects requests whose :teamId is not the caller's team, so
// no handler below it ever reads another team's data.
func RequireTeam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := authctx.SessionFrom(c)
		if !session.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrNotAuthenticated.Error()})
			return
		}
		if !session.InTeam(c.Param(param)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}
