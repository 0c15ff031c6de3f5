package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/auth/domain"
)

// Me returns the caller's session: profile, team and whether a team still
// has to be created or joined.
func (h *Handler) Me(c *gin.Context) {
	session := auth.SessionFrom(c)
	if !session.Authenticated() {
		httpapi.WriteError(c, domain.ErrNotAuthenticated)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":     session.State().String(),
		"user":      session.Profile(),
		"team":      session.Team(),
		"isAdmin":   session.IsAdmin(),
		"needsTeam": session.TeamID() == "",
	})
}

// SyncUser is called by clients right after sign-in. It creates the
// profile on first sign-in and refreshes the display name when one is
// sent.
func (h *Handler) SyncUser(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		httpapi.WriteError(c, domain.ErrNotAuthenticated)
		return
	}

	var body struct {
		Name string `json:"name,omitempty"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			httpapi.BadRequest(c, err.Error())
			return
		}
	}

	user, err := h.authService.Sync(c.Request.Context(), identity, body.Name)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
