package http

import "github.com/gin-gonic/gin"

// Register attaches the kind's routes to rg, which must carry :teamId.
func (h *Handler[T, P]) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	if h.svc.Kind().SupportsBulk() {
		rg.POST("/bulk", h.bulkCreate)
	}
	if h.reorderer != nil && h.svc.Kind().Orderable() {
		rg.POST("/reorder", h.reorder)
	}
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/archive", h.archive)
	rg.POST("/:id/unarchive", h.unarchive)
}
