// File: internal/todo/handler.go
package todo

import (
	"errors"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes to-do creation and its reference data.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the to-do routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	todoGroup := router.Group("/todos", authMW)
	{
		todoGroup.GET("/refdata", h.refData)
		todoGroup.POST("", h.create)
	}
}

func (h *Handler) refData(c *gin.Context) {
	ref, err := h.service.RefData(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", ref)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("To-do creation: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	created, err := h.service.Create(c.Request.Context(), middleware.GetSession(c), middleware.GetClientKey(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "To-do created successfully.", created)
}
