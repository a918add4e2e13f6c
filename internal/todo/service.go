// File: internal/todo/service.go
package todo

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
	todoDoctype = "ToDo"
	userDoctype = "User"
)

// ERPGateway is the slice of the ERP client the to-do workflow uses.
type ERPGateway interface {
	GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error)
	CreateDoc(ctx context.Context, sess *session.Session, doctype string, doc any) (json.RawMessage, error)
}

// Service creates to-dos and serves the assignment dropdown.
type Service struct {
	cfg     *config.Config
	gateway ERPGateway
	toasts  *notification.Service
	logger  *zap.Logger
}

// NewService creates a new to-do service.
func NewService(cfg *config.Config, gateway ERPGateway, toasts *notification.Service, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, gateway: gateway, toasts: toasts, logger: logger.Named("TodoService")}
}

// RefData fetches the users a to-do can be assigned to.
func (s *Service) RefData(ctx context.Context, sess *session.Session) (*RefData, error) {
	query := url.Values{}
	query.Set("fields", `["name","email","full_name"]`)
	query.Set("filters", `[["enabled","=",1]]`)
	docs, err := s.gateway.GetList(ctx, sess, userDoctype, query)
	if err != nil {
		return nil, err
	}
	ref := &RefData{}
	for _, doc := range docs {
		email, _ := doc["email"].(string)
		fullName, _ := doc["full_name"].(string)
		if email == "" {
			continue
		}
		ref.AssignableUsers = append(ref.AssignableUsers, AssignableUser{Email: email, FullName: fullName})
	}
	return ref, nil
}

// Create creates a to-do document.
func (s *Service) Create(ctx context.Context, sess *session.Session, key string, req CreateTodoRequest) (*Todo, error) {
	doc := map[string]any{
		"custom_title":   req.Title,
		"description":    req.Description,
		"date":           req.DueDate,
		"priority":       req.Priority,
		"allocated_to":   req.AllocatedTo,
		"reference_name": req.Reference,
		"status":         "Open",
	}
	raw, err := s.gateway.CreateDoc(ctx, sess, todoDoctype, doc)
	if err != nil {
		return nil, err
	}

	var created struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(raw, &created)

	todo := &Todo{
		Name:        created.Name,
		Title:       req.Title,
		Status:      "Open",
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		AllocatedTo: req.AllocatedTo,
	}
	s.toasts.Enqueue(key, notification.ToastSuccess, "To-do created successfully.", s.cfg.SettingsToastTTL)
	s.logger.Info("To-do created", zap.String("todo", created.Name))
	return todo, nil
}
