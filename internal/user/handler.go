// File: internal/user/handler.go
package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"inzerio_backend/internal/common"
)

// PlanReturnRequest reports the outcome of a plan checkout redirect.
type PlanReturnRequest struct {
	Payment string `json:"payment" binding:"required,oneof=success canceled"`
	Plan    string `json:"plan" binding:"required,oneof=hobby business"`
}

// Handler exposes the profile and plan endpoints. All routes require auth.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/me/plan", authMW, h.getPlanStatus)

	planGroup := router.Group("/plan")
	planGroup.Use(authMW)
	{
		planGroup.POST("/checkout", h.purchasePlan)
		planGroup.POST("/return", h.handleReturn)
		planGroup.POST("/cancel", h.cancelPlan)
		planGroup.POST("/undo-cancel", h.undoCancelPlan)
	}
}

func (h *Handler) getPlanStatus(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	status, err := h.service.GetPlanStatus(c.Request.Context(), uid)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Plan status retrieved.", status)
}

func (h *Handler) purchasePlan(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	var req PurchasePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	session, err := h.service.PurchasePlan(c.Request.Context(), uid, req.Plan)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Checkout session created.", session)
}

func (h *Handler) handleReturn(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	var req PlanReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if req.Payment != "success" {
		common.RespondOK(c, "Plan purchase was not completed.", nil)
		return
	}
	status, err := h.service.ConfirmPlanPurchase(c.Request.Context(), uid, req.Plan)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Plan activated.", status)
}

func (h *Handler) cancelPlan(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	status, err := h.service.CancelPlan(c.Request.Context(), uid)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Plan cancellation scheduled.", status)
}

func (h *Handler) undoCancelPlan(c *gin.Context) {
	uid := common.GetUserIDFromContext(c)
	status, err := h.service.UndoCancelPlan(c.Request.Context(), uid)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Plan cancellation removed.", status)
}
