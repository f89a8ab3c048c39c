// File: internal/promotion/handler.go
package promotion

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"inzerio_backend/internal/common"
	"inzerio_backend/internal/config"
	"inzerio_backend/internal/listing"
)

// Handler exposes the TOP promotion endpoints. All routes require auth.
type Handler struct {
	service Service
	cfg     *config.Config
	logger  *zap.Logger
}

func NewHandler(service Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{service: service, cfg: cfg, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	topGroup := router.Group("/top")
	topGroup.Use(authMW)
	{
		topGroup.GET("/packages", h.listPackages)
		topGroup.GET("/eligibility", h.checkEligibility)
		topGroup.POST("/checkout", h.startCheckout)
		topGroup.POST("/return", h.handleReturn)
		topGroup.POST("/:id/cancel", h.cancelTop)
	}
	router.GET("/my/top", authMW, h.listTop)
}

func (h *Handler) listPackages(c *gin.Context) {
	common.RespondOK(c, "Promotion tiers retrieved.", Packages(h.cfg))
}

func (h *Handler) checkEligibility(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	days, err := strconv.Atoi(c.DefaultQuery("duration_days", "30"))
	if err != nil || PackageForDuration(h.cfg, days) == nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid duration_days."))
		return
	}
	elig, err := h.service.CheckEligibility(c.Request.Context(), uid, days)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Eligibility checked.", elig)
}

func (h *Handler) startCheckout(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	session, err := h.service.StartCheckout(c.Request.Context(), uid, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Checkout session created.", session)
}

func (h *Handler) handleReturn(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	var req CheckoutReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	activated, err := h.service.HandleReturn(c.Request.Context(), uid, req.Payment, req.AdID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if activated == nil {
		common.RespondOK(c, "No pending promotion to settle.", nil)
		return
	}
	common.RespondOK(c, "Promotion activated.", listing.ToListingResponse(activated))
}

func (h *Handler) cancelTop(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	if err := h.service.CancelTop(c.Request.Context(), uid, c.Param("id")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Promotion cancelled.", nil)
}

func (h *Handler) listTop(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	items, err := h.service.ListTop(c.Request.Context(), uid)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Promoted listings retrieved.", items)
}
