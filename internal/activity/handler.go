// File: internal/activity/handler.go
package activity

import (
	"errors"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes the lead timeline and the comment/email composer.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the activity routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	leadGroup := router.Group("/leads/:id", authMW)
	{
		leadGroup.GET("/activities", h.timeline)
		leadGroup.POST("/comments", h.addComment)
		leadGroup.POST("/emails", h.sendEmail)
	}
}

func (h *Handler) timeline(c *gin.Context) {
	entries, err := h.service.Timeline(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", gin.H{"timeline": entries})
}

func (h *Handler) addComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Comment creation: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if err := h.service.AddComment(c.Request.Context(), middleware.GetSession(c), middleware.GetClientKey(c), c.Param("id"), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Comment added.", nil)
}

func (h *Handler) sendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Email composer: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if err := h.service.SendEmail(c.Request.Context(), middleware.GetSession(c), middleware.GetClientKey(c), c.Param("id"), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Email sent.", nil)
}
