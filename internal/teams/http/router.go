package http

import "github.com/gin-gonic/gin"

// RegisterRoot adds POST /teams, the only team route a caller without a
// team may use.
func (h *Handler) RegisterRoot(rg *gin.RouterGroup) {
	rg.POST("/teams", h.createTeam)
}

// Register attaches the routes of one team; rg must carry :teamId.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.getTeam)

	members := rg.Group("/members")
	members.GET("", h.listMembers)
	members.POST("", h.inviteMember)
	members.PATCH("/:uid", h.updateMember)
	members.DELETE("/:uid", h.removeMember)
}
