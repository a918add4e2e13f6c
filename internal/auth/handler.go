// File: internal/auth/handler.go
package auth

import (
	"errors"
	"net/http"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes the auth workflow over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the auth routes. Only /me and /logout require an
// established session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/register", h.register)
		authGroup.POST("/google", h.googleLogin)
		authGroup.POST("/google/complete", h.completeGoogleSignup)
		authGroup.POST("/facebook", h.facebookLogin)

		authed := authGroup.Group("")
		authed.Use(authMW)
		{
			authed.GET("/me", h.me)
			authed.POST("/logout", h.logout)
		}
	}
}

// bindJSON decodes and validates the request body, translating validator
// failures into the per-field inline error map.
func bindJSON(c *gin.Context, logger *zap.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Invalid request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
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

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	sess, err := h.service.Login(c.Request.Context(), middleware.GetClientKey(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Logged in successfully.", gin.H{"session": sess})
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	result, err := h.service.Register(c.Request.Context(), middleware.GetClientKey(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Registration successful. Please check your inbox for the activation email.", result)
}

func (h *Handler) googleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	result, err := h.service.GoogleLogin(c.Request.Context(), middleware.GetClientKey(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if result.SignupRequired {
		common.RespondOK(c, "Signup required.", result)
		return
	}
	common.RespondOK(c, "Logged in with Google.", result)
}

func (h *Handler) completeGoogleSignup(c *gin.Context) {
	var req GoogleSignupRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	sess, err := h.service.CompleteGoogleSignup(c.Request.Context(), middleware.GetClientKey(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account created and logged in.", gin.H{"session": sess})
}

func (h *Handler) facebookLogin(c *gin.Context) {
	var req FacebookLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	sess, err := h.service.FacebookLogin(c.Request.Context(), middleware.GetClientKey(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Logged in with Facebook.", gin.H{"session": sess})
}

func (h *Handler) me(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	common.RespondOK(c, "", gin.H{"session": sess})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.GetClientKey(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
