package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/squadline/squadline-backend/internal/auth/domain"
)

// Keys set on the gin context by the auth middlewares.
const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxName        = "name"
	CtxSession     = "session"
)

// UserFirebaseUID extracts the uid set by the identity middleware.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// IdentityFrom returns the verified identity on the request, if any.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	uid := UserFirebaseUID(c)
	if uid == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{
		UID:   uid,
		Email: c.GetString(CtxEmail),
		Name:  c.GetString(CtxName),
	}, true
}

// SessionFrom returns the request's session. It is never nil: requests that
// did not pass the session middleware get an anonymous one.
func SessionFrom(c *gin.Context) *domain.Session {
	if v, ok := c.Get(CtxSession); ok {
		if s, ok := v.(*domain.Session); ok {
			return s
		}
	}
	s := domain.NewSession()
	_ = s.MarkAnonymous()
	return s
}
