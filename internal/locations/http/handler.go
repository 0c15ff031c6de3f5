package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/locations"
)

type Handler struct {
	svc *locations.Service
}

func New(svc *locations.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": items})
}

type createReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}

	loc, err := h.svc.Create(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), req.Name, req.Address)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": loc})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), c.Param("id")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
