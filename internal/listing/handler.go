// File: internal/listing/handler.go
package listing

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"inzerio_backend/internal/common"
)

// Handler exposes the catalog endpoints. Search and detail are public; the
// /my routes require auth.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/listings", h.search)
	router.GET("/listings/:id", h.getByID)

	myGroup := router.Group("/my/listings")
	myGroup.Use(authMW)
	{
		myGroup.GET("", h.getUserListings)
		myGroup.PATCH("/:id/status", h.updateStatus)
		myGroup.DELETE("/:id", h.delete)
	}
}

func (h *Handler) search(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	result, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listings retrieved.", result)
}

func (h *Handler) getByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing retrieved.", resp)
}

func (h *Handler) getUserListings(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	items, err := h.service.GetUserListings(c.Request.Context(), uid)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Your listings retrieved.", items)
}

func (h *Handler) updateStatus(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	resp, err := h.service.UpdateStatus(c.Request.Context(), uid, c.Param("id"), req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing status updated.", resp)
}

func (h *Handler) delete(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	if err := h.service.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
