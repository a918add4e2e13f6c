// File: internal/notification/handler.go
package notification

import (
	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the toast queue.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the notification routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notifications", h.drain)
}

func (h *Handler) drain(c *gin.Context) {
	key := middleware.GetClientKey(c)
	toasts := h.service.Drain(key)
	common.RespondOK(c, "", gin.H{"toasts": toasts})
}
