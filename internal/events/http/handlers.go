package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/dates"
	"github.com/squadline/squadline-backend/internal/events/domain"
)

func (h *Handler[T, P]) list(c *gin.Context) {
	filter, err := domain.ParseArchiveFilter(c.Query("filter"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	items, err := h.svc.List(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), filter)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler[T, P]) get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	if item == nil {
		httpapi.WriteError(c, domain.ErrEventNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// create accepts the kind's JSON shape. The date may be a plain date or
// any ISO timestamp.
func (h *Handler[T, P]) create(c *gin.Context) {
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}
	p := P(&entity)

	item, err := h.svc.Create(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), dates.Raw(p.Shape().Date), p)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

type bulkReq struct {
	NumberOfWeeks *int `json:"numberOfWeeks"`
}

// bulkCreate takes the same body as create plus numberOfWeeks.
func (h *Handler[T, P]) bulkCreate(c *gin.Context) {
	var req bulkReq
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil || req.NumberOfWeeks == nil {
		httpapi.BadRequest(c, "numberOfWeeks is required")
		return
	}
	var base T
	if err := c.ShouldBindBodyWith(&base, binding.JSON); err != nil {
		httpapi.BadRequest(c, err.Error())
		return
	}
	p := P(&base)

	ids, err := h.svc.BulkCreate(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), dates.Raw(p.Shape().Date), p, *req.NumberOfWeeks)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ids": ids})
}

// update applies a partial update. The response lists every field as
// accepted or rejected; 200 is returned even when some were rejected.
func (h *Handler[T, P]) update(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		httpapi.BadRequest(c, "expected a JSON object with at least one field")
		return
	}

	result, err := h.svc.Update(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), c.Param("id"), patchFromBody(body))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// patchFromBody lifts string date and time values into the typed fields.
// Anything else stays in Fields so it is reported back as rejected.
func patchFromBody(body map[string]any) domain.Patch {
	patch := domain.Patch{Fields: make(map[string]any, len(body))}
	for k, v := range body {
		switch s, ok := v.(string); {
		case k == domain.FieldDate && ok:
			d := dates.Raw(s)
			patch.Date = &d
		case k == domain.FieldTime && ok:
			patch.Time = &s
		default:
			patch.Fields[k] = v
		}
	}
	return patch
}

func (h *Handler[T, P]) archive(c *gin.Context) {
	if err := h.svc.Archive(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), c.Param("id")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler[T, P]) unarchive(c *gin.Context) {
	if err := h.svc.Unarchive(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), c.Param("id")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler[T, P]) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), c.Param("id")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reorderReq struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// reorder returns the list in its new order. When a write fails the
// response is 500 and carries the list as re-read from the store.
func (h *Handler[T, P]) reorder(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		httpapi.BadRequest(c, "from and to are required")
		return
	}

	items, err := h.reorderer.Reorder(c.Request.Context(), auth.SessionFrom(c), c.Param("teamId"), *req.From, *req.To)
	if err != nil {
		status := httpapi.StatusFor(err)
		if items != nil {
			c.JSON(status, gin.H{"error": "reorder failed, list reloaded", "items": items})
			return
		}
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
