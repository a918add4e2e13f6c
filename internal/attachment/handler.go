// File: internal/attachment/handler.go
package attachment

import (
	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes file uploads.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the attachment routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	attachmentGroup := router.Group("/attachments", authMW)
	{
		attachmentGroup.POST("", h.upload)
	}
}

func (h *Handler) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("No file was provided."))
		return
	}
	doctype := c.PostForm("doctype")
	docname := c.PostForm("docname")

	att, err := h.service.Upload(c.Request.Context(), middleware.GetSession(c), middleware.GetClientKey(c), header, doctype, docname)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "File uploaded successfully.", att)
}
