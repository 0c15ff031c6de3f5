package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/board"
)

type Handler struct {
	svc *board.Service
}

func New(svc *board.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches the board routes; rg must carry :teamId.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.post)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpapi.BadRequest(c, "limit must be a number")
			return
		}
		limit = n
	}

	messages, err := h.svc.List(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), limit)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type postReq struct {
	Text string `json:"text"`
}

func (h *Handler) post(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}

	msg, err := h.svc.Post(c.Request.Context(), auth.SessionFrom(c), req.Text)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
