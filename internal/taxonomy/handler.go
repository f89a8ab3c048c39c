// File: internal/taxonomy/handler.go
package taxonomy

import (
	"github.com/gin-gonic/gin"

	"inzerio_backend/internal/common"
)

// Handler exposes the public category and region catalogs.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/categories", h.listCategories)
	router.GET("/regions", h.listRegions)
}

func (h *Handler) listCategories(c *gin.Context) {
	common.RespondOK(c, "Categories retrieved.", Categories())
}

func (h *Handler) listRegions(c *gin.Context) {
	common.RespondOK(c, "Regions retrieved.", Regions())
}
