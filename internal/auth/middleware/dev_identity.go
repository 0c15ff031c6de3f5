package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authctx "github.com/squadline/squadline-backend/internal/auth"
)

// DevIdentity trusts the X-User-Id, X-User-Email and X-User-Name headers
// instead of verifying a token. Use this ONLY for development/testing.
func DevIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-Id header"})
			return
		}

		c.Set(authctx.CtxFirebaseUID, uid)
		c.Set(authctx.CtxEmail, strings.TrimSpace(c.GetHeader("X-User-Email")))
		c.Set(authctx.CtxName, strings.TrimSpace(c.GetHeader("X-User-Name")))
		c.Next()
	}
}
