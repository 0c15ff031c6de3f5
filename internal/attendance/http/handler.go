// Package http serves attendance cards under each event kind.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/attendance"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/events/domain"
)

type Handler struct {
	svc *attendance.Service
}

func New(svc *attendance.Service) *Handler {
	return &Handler{svc: svc}
}

// Register adds GET /:id/attendance and PUT /:id/attendance/:uid to a kind
// group.
func (h *Handler) Register(rg *gin.RouterGroup, kind domain.Kind) {
	rg.GET("/:id/attendance", h.card(kind))
	rg.PUT("/:id/attendance/:uid", h.set(kind))
}

func (h *Handler) card(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		card, err := h.svc.Card(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), kind, c.Param("id"))
		if err != nil {
			httpapi.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, card)
	}
}

type setStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// set toggles one member. A failed write answers with the card as
// re-read from the store.
func (h *Handler) set(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setStatusReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httpapi.BadRequest(c, err.Error())
			return
		}
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			httpapi.WriteError(c, err)
			return
		}

		ctx := c.Request.Context()
		board, err := h.svc.Open(ctx, auth.SessionFrom(c), c.Param("teamId"), kind, c.Param("id"))
		if err != nil {
			httpapi.WriteError(c, err)
			return
		}
		if err := board.Toggle(ctx, c.Param("uid"), status); err != nil {
			if code := httpapi.StatusFor(err); code >= http.StatusInternalServerError {
				c.JSON(code, gin.H{"error": "attendance update failed, card reloaded", "card": board.Snapshot()})
				return
			}
			httpapi.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, board.Snapshot())
	}
}
