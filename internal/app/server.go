// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crm_gateway_backend/internal/activity"
	"crm_gateway_backend/internal/attachment"
	"crm_gateway_backend/internal/auth"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/deal"
	"crm_gateway_backend/internal/jobs"
	"crm_gateway_backend/internal/middleware"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"
	"crm_gateway_backend/internal/settings"
	"crm_gateway_backend/internal/territory"
	"crm_gateway_backend/internal/todo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	cleanupJob *jobs.CleanupJob
}

// NewServer assembles the router and all feature handlers.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	sessions session.Repository,
	authHandler *auth.Handler,
	dealHandler *deal.Handler,
	todoHandler *todo.Handler,
	territoryHandler *territory.Handler,
	attachmentHandler *attachment.Handler,
	activityHandler *activity.Handler,
	settingsHandler *settings.Handler,
	notificationHandler *notification.Handler,
	cleanupJob *jobs.CleanupJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.ClientKey())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader, middleware.ClientKeyHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader, middleware.ClientKeyHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(sessions, logger.Named("AuthMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "CRM gateway is healthy!"})
	})

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1, authMW)
	dealHandler.RegisterRoutes(v1, authMW)
	todoHandler.RegisterRoutes(v1, authMW)
	territoryHandler.RegisterRoutes(v1, authMW)
	attachmentHandler.RegisterRoutes(v1, authMW)
	activityHandler.RegisterRoutes(v1, authMW)
	settingsHandler.RegisterRoutes(v1, authMW)
	notificationHandler.RegisterRoutes(v1)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		cleanupJob: cleanupJob,
	}, nil
}

// Start launches the cleanup job and serves HTTP.
func (s *Server) Start() error {
	if s.cleanupJob != nil {
		if err := s.cleanupJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to start cleanup job", zap.Error(err))
		}
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the cleanup job and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cleanupJob != nil {
		s.cleanupJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
