// File: internal/territory/handler.go
package territory

import (
	"errors"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes territory creation.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the territory routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	territoryGroup := router.Group("/territories", authMW)
	{
		territoryGroup.POST("", h.create)
	}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateTerritoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Territory creation: invalid request body", zap.Error(err))
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
	common.RespondCreated(c, "Territory created successfully.", created)
}
