// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"crm_gateway_backend/internal/activity"
	"crm_gateway_backend/internal/app"
	"crm_gateway_backend/internal/attachment"
	"crm_gateway_backend/internal/auth"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/deal"
	"crm_gateway_backend/internal/erp"
	"crm_gateway_backend/internal/jobs"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/platform/logger"
	"crm_gateway_backend/internal/settings"
	"crm_gateway_backend/internal/territory"
	"crm_gateway_backend/internal/todo"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideCleanup,

		// Session Store
		provideSessionBus,
		provideSessionRepository,

		// ERP API Client
		erp.NewClient,
		wire.Bind(new(auth.ERPGateway), new(*erp.Client)),
		wire.Bind(new(deal.ERPGateway), new(*erp.Client)),
		wire.Bind(new(todo.ERPGateway), new(*erp.Client)),
		wire.Bind(new(territory.ERPGateway), new(*erp.Client)),
		wire.Bind(new(activity.ERPGateway), new(*erp.Client)),
		wire.Bind(new(settings.ERPGateway), new(*erp.Client)),
		wire.Bind(new(attachment.Uploader), new(*erp.Client)),

		// Toasts
		provideNotificationService,
		notification.NewHandler,

		// Auth Workflow
		auth.NewService,
		auth.NewHandler,

		// Feature Modules
		deal.NewService,
		deal.NewHandler,
		todo.NewService,
		todo.NewHandler,
		territory.NewService,
		territory.NewHandler,
		attachment.NewService,
		attachment.NewHandler,
		activity.NewService,
		activity.NewHandler,
		settings.NewService,
		settings.NewHandler,

		// Jobs
		jobs.NewCleanupJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
