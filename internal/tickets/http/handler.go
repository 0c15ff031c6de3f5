package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/tickets"
)

type Handler struct {
	svc     *tickets.Service
	limiter *Limiter
}

func New(svc *tickets.Service, limiter *Limiter) *Handler {
	return &Handler{svc: svc, limiter: limiter}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.mine)
	rg.POST("", h.submit)
}

type submitReq struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *Handler) submit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}

	session := auth.SessionFrom(c)
	if session.Authenticated() && h.limiter != nil && !h.limiter.Allow(session.UID()) {
		httpapi.WriteError(c, tickets.ErrRateLimited)
		return
	}

	t, err := h.svc.Submit(c.Request.Context(), session, req.Subject, req.Body)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": t})
}

func (h *Handler) mine(c *gin.Context) {
	items, err := h.svc.Mine(c.Request.Context(), auth.SessionFrom(c))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": items})
}
