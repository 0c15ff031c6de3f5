package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/teams/domain"
)

func (h *Handler) createTeam(c *gin.Context) {
	var req createTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}

	team, err := h.teams.CreateTeam(c.Request.Context(), auth.SessionFrom(c), req.Name)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"team": team})
}

func (h *Handler) getTeam(c *gin.Context) {
	team, err := h.teams.GetTeam(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team})
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.teams.ListMembers(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *Handler) inviteMember(c *gin.Context) {
	var req inviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}

	member, err := h.teams.InviteMember(c.Request.Context(), auth.SessionFrom(c), req.Email, req.Name)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

func (h *Handler) updateMember(c *gin.Context) {
	var patch domain.MemberPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}
	if patch.Empty() {
		httpapi.BadRequest(c, "no fields to update")
		return
	}

	member, err := h.teams.UpdateMember(c.Request.Context(), auth.SessionFrom(c), c.Param("uid"), patch)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}

func (h *Handler) removeMember(c *gin.Context) {
	if err := h.teams.RemoveMember(c.Request.Context(), auth.SessionFrom(c), c.Param("uid")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
