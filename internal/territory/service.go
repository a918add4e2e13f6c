// File: internal/territory/service.go
package territory

import (
	"context"
	"encoding/json"
	"net/url"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"go.uber.org/zap"
)

const territoryDoctype = "CRM Territory"

// ERPGateway is the slice of the ERP client the territory workflow uses.
type ERPGateway interface {
	GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error)
	CreateDoc(ctx context.Context, sess *session.Session, doctype string, doc any) (json.RawMessage, error)
}

// Service creates territories with a uniqueness pre-check.
type Service struct {
	cfg     *config.Config
	gateway ERPGateway
	toasts  *notification.Service
	logger  *zap.Logger
}

// NewService creates a new territory service.
func NewService(cfg *config.Config, gateway ERPGateway, toasts *notification.Service, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, gateway: gateway, toasts: toasts, logger: logger.Named("TerritoryService")}
}

// Create checks the name is free and creates the territory. No create call is
// issued when the name is taken.
func (s *Service) Create(ctx context.Context, sess *session.Session, key string, req CreateTerritoryRequest) (*Territory, error) {
	filters, _ := json.Marshal([][]string{{"territory_name", "=", req.Name}})
	query := url.Values{}
	query.Set("filters", string(filters))
	query.Set("limit", "1")

	existing, err := s.gateway.GetList(ctx, sess, territoryDoctype, query)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, common.ErrConflict.WithDetails("A territory with this name already exists.")
	}

	doc := map[string]any{
		"territory_name":    req.Name,
		"territory_manager": req.Manager,
	}
	if _, err := s.gateway.CreateDoc(ctx, sess, territoryDoctype, doc); err != nil {
		return nil, err
	}

	s.toasts.Enqueue(key, notification.ToastSuccess, "Territory created successfully.", s.cfg.SettingsToastTTL)
	s.logger.Info("Territory created", zap.String("territory", req.Name))
	return &Territory{Name: req.Name, Manager: req.Manager}, nil
}
