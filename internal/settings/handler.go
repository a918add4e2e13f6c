// File: internal/settings/handler.go
package settings

import (
	"errors"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes the settings and billing panel.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the settings routes. Everything requires a session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	settingsGroup := router.Group("/settings", authMW)
	{
		settingsGroup.GET("/profile", h.profile)
		settingsGroup.PUT("/profile", h.updateProfile)
		settingsGroup.GET("/credits", h.credits)
		settingsGroup.POST("/api-keys", h.generateAPIKeys)
		settingsGroup.POST("/plan/checkout", h.checkout)
		settingsGroup.POST("/plan/confirm", h.confirmPayment)
	}
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("Settings: invalid request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}

func (h *Handler) profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", profile)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}
	profile, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetSession(c), middleware.GetClientKey(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated.", profile)
}

func (h *Handler) credits(c *gin.Context) {
	usage, err := h.service.CreditUsage(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", usage)
}

func (h *Handler) generateAPIKeys(c *gin.Context) {
	pair, err := h.service.GenerateAPIKeys(c.Request.Context(), middleware.GetSession(c), middleware.GetClientKey(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "API credentials generated. Store the secret now; it will not be shown again.", pair)
}

func (h *Handler) checkout(c *gin.Context) {
	var req CheckoutRequest
	if !h.bind(c, &req) {
		return
	}
	order, err := h.service.Checkout(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", order)
}

func (h *Handler) confirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.ConfirmPayment(c.Request.Context(), middleware.GetSession(c), middleware.GetClientKey(c), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Payment outcome recorded.", nil)
}
