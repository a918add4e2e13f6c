// File: internal/deal/service.go
package deal

import (
	"context"
	"encoding/json"
	"net/url"

	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"go.uber.org/zap"
)

const (
	organizationDoctype = "CRM Organization"
	contactDoctype      = "CRM Contact"
	dealDoctype         = "CRM Deal"
	sourceDoctype       = "CRM Lead Source"
	territoryDoctype    = "CRM Territory"
	statusDoctype       = "CRM Deal Status"
)

// ERPGateway is the slice of the ERP client the deal workflow uses.
type ERPGateway interface {
	GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error)
	CreateDoc(ctx context.Context, sess *session.Session, doctype string, doc any) (json.RawMessage, error)
	DeleteDoc(ctx context.Context, sess *session.Session, doctype, name string) error
}

// Service creates deals and serves the modal's reference data.
type Service struct {
	cfg     *config.Config
	gateway ERPGateway
	toasts  *notification.Service
	logger  *zap.Logger
}

// NewService creates a new deal service.
func NewService(cfg *config.Config, gateway ERPGateway, toasts *notification.Service, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, gateway: gateway, toasts: toasts, logger: logger.Named("DealService")}
}

// RefData fetches the dropdown option lists the modal shows.
func (s *Service) RefData(ctx context.Context, sess *session.Session) (*RefData, error) {
	ref := &RefData{}
	for _, load := range []struct {
		doctype string
		field   string
		dest    *[]string
	}{
		{sourceDoctype, "source_name", &ref.Sources},
		{territoryDoctype, "territory_name", &ref.Territories},
		{organizationDoctype, "organization_name", &ref.Organizations},
		{statusDoctype, "deal_status", &ref.Statuses},
	} {
		query := url.Values{}
		query.Set("fields", `["name","`+load.field+`"]`)
		docs, err := s.gateway.GetList(ctx, sess, load.doctype, query)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if value, ok := doc[load.field].(string); ok && value != "" {
				*load.dest = append(*load.dest, value)
			} else if name, ok := doc["name"].(string); ok {
				*load.dest = append(*load.dest, name)
			}
		}
	}
	return ref, nil
}

// Create runs the organization → contact → deal sequence. A failure after
// the organization was created rolls the organization back, mirroring the
// registration saga: no orphan organizations.
func (s *Service) Create(ctx context.Context, sess *session.Session, key string, req CreateDealRequest) (*Deal, error) {
	orgDoc := map[string]any{
		"organization_name": req.Organization,
		"website":           req.Website,
		"territory":         req.Territory,
		"annual_revenue":    req.AnnualRevenue,
		"no_of_employees":   req.NoOfEmployees,
	}
	orgRaw, err := s.gateway.CreateDoc(ctx, sess, organizationDoctype, orgDoc)
	if err != nil {
		return nil, err
	}
	orgName := docName(orgRaw, req.Organization)

	rollbackOrg := func() {
		if delErr := s.gateway.DeleteDoc(ctx, sess, organizationDoctype, orgName); delErr != nil {
			s.logger.Error("Failed to roll back organization after deal creation failure",
				zap.String("organization", orgName), zap.Error(delErr))
		}
	}

	contactName := ""
	if req.Email != "" || req.FirstName != "" {
		contactDoc := map[string]any{
			"first_name":   req.FirstName,
			"last_name":    req.LastName,
			"email_id":     req.Email,
			"mobile_no":    req.Phone,
			"organization": orgName,
		}
		contactRaw, err := s.gateway.CreateDoc(ctx, sess, contactDoctype, contactDoc)
		if err != nil {
			rollbackOrg()
			return nil, err
		}
		contactName = docName(contactRaw, "")
	}

	dealDoc := map[string]any{
		"organization": orgName,
		"contact":      contactName,
		"source":       req.Source,
		"territory":    req.Territory,
	}
	dealRaw, err := s.gateway.CreateDoc(ctx, sess, dealDoctype, dealDoc)
	if err != nil {
		rollbackOrg()
		return nil, err
	}

	created := &Deal{
		Name:         docName(dealRaw, ""),
		Organization: orgName,
		Contact:      contactName,
		Status:       "Qualification",
	}
	s.toasts.Enqueue(key, notification.ToastSuccess, "Deal created successfully.", s.cfg.SettingsToastTTL)
	s.logger.Info("Deal created", zap.String("deal", created.Name), zap.String("organization", orgName))
	return created, nil
}

// docName pulls the document name out of a create response, falling back to
// the provided default when the payload is not in the expected shape.
func docName(raw json.RawMessage, fallback string) string {
	var doc struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil && doc.Name != "" {
		return doc.Name
	}
	return fallback
}
