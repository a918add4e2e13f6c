// File: internal/settings/service.go
package settings

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

const (
	userDoctype = "User"

	creditUsageMethod   = "crm.api.billing.get_credit_usage"
	generateKeysMethod  = "frappe.core.doctype.user.user.generate_keys"
	createOrderMethod   = "crm.api.billing.create_upgrade_order"
	reportPaymentMethod = "crm.api.billing.report_payment"
)

// ERPGateway is the slice of the ERP client the settings panel uses.
type ERPGateway interface {
	CallMethod(ctx context.Context, sess *session.Session, method string, form url.Values) (json.RawMessage, error)
	GetDoc(ctx context.Context, sess *session.Session, doctype, name string) (json.RawMessage, error)
	UpdateDoc(ctx context.Context, sess *session.Session, doctype, name string, patch any) (json.RawMessage, error)
}

// Service backs the settings and billing panel.
type Service struct {
	cfg      *config.Config
	gateway  ERPGateway
	sessions session.Repository
	toasts   *notification.Service
	logger   *zap.Logger
}

// NewService creates a new settings service.
func NewService(cfg *config.Config, gateway ERPGateway, sessions session.Repository, toasts *notification.Service, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, gateway: gateway, sessions: sessions, toasts: toasts, logger: logger.Named("SettingsService")}
}

// Profile fetches the user's profile from the ERP.
func (s *Service) Profile(ctx context.Context, sess *session.Session) (*Profile, error) {
	raw, err := s.gateway.GetDoc(ctx, sess, userDoctype, sess.Email)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		FullName  string `json:"full_name"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, common.ErrInternalServer.WithDetails("Unexpected profile payload.")
	}
	return &Profile{Email: doc.Email, FirstName: doc.FirstName, LastName: doc.LastName, FullName: doc.FullName}, nil
}

// UpdateProfile applies profile edits upstream and refreshes the cached
// full name in the session.
func (s *Service) UpdateProfile(ctx context.Context, sess *session.Session, key string, req UpdateProfileRequest) (*Profile, error) {
	patch := map[string]any{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
	}
	if _, err := s.gateway.UpdateDoc(ctx, sess, userDoctype, sess.Email, patch); err != nil {
		return nil, err
	}

	fullName := req.FirstName
	if req.LastName != "" {
		fullName += " " + req.LastName
	}
	updated := *sess
	updated.FullName = fullName
	if err := s.sessions.Set(ctx, key, updated); err != nil {
		s.logger.Warn("Failed to refresh session after profile update", zap.Error(err))
	}

	s.toasts.Enqueue(key, notification.ToastSuccess, "Profile updated.", s.cfg.SettingsToastTTL)
	return &Profile{Email: sess.Email, FirstName: req.FirstName, LastName: req.LastName, FullName: fullName}, nil
}

// CreditUsage fetches the company's AI credit consumption.
func (s *Service) CreditUsage(ctx context.Context, sess *session.Session) (*CreditUsage, error) {
	form := url.Values{}
	form.Set("company", sess.Company)
	raw, err := s.gateway.CallMethod(ctx, sess, creditUsageMethod, form)
	if err != nil {
		return nil, err
	}
	var usage CreditUsage
	if err := json.Unmarshal(raw, &usage); err != nil {
		return nil, common.ErrInternalServer.WithDetails("Unexpected credit usage payload.")
	}
	return &usage, nil
}

// GenerateAPIKeys asks the ERP for a fresh key pair and replaces the session
// wholesale with the new credentials. The secret is only ever returned here.
func (s *Service) GenerateAPIKeys(ctx context.Context, sess *session.Session, key string) (*APIKeyPair, error) {
	form := url.Values{}
	form.Set("user", sess.Email)
	raw, err := s.gateway.CallMethod(ctx, sess, generateKeysMethod, form)
	if err != nil {
		return nil, err
	}
	var pair struct {
		APIKey    string `json:"api_key"`
		APISecret string `json:"api_secret"`
	}
	if err := json.Unmarshal(raw, &pair); err != nil || pair.APISecret == "" {
		return nil, common.ErrInternalServer.WithDetails("Unexpected key generation payload.")
	}
	if pair.APIKey == "" {
		// Some backends keep the existing key and rotate only the secret.
		pair.APIKey = sess.APIKey
	}

	updated := *sess
	updated.APIKey = pair.APIKey
	updated.APISecret = pair.APISecret
	if err := s.sessions.Set(ctx, key, updated); err != nil {
		s.logger.Error("Failed to refresh session with new API keys", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not refresh session with new credentials.")
	}

	s.toasts.Enqueue(key, notification.ToastSuccess, "API credentials generated.", s.cfg.SettingsToastTTL)
	s.logger.Info("API keys rotated", zap.String("user", sess.Email))
	return &APIKeyPair{APIKey: pair.APIKey, APISecret: pair.APISecret}, nil
}

// Checkout creates an upgrade order and returns what the payment widget
// needs. The widget itself runs client-side.
func (s *Service) Checkout(ctx context.Context, sess *session.Session, req CheckoutRequest) (*CheckoutOrder, error) {
	form := url.Values{}
	form.Set("company", sess.Company)
	form.Set("plan", req.Plan)
	raw, err := s.gateway.CallMethod(ctx, sess, createOrderMethod, form)
	if err != nil {
		return nil, err
	}
	var order struct {
		OrderID  string `json:"order_id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(raw, &order); err != nil || order.OrderID == "" {
		return nil, common.ErrInternalServer.WithDetails("Unexpected order payload.")
	}
	return &CheckoutOrder{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.cfg.RazorpayKeyID,
		Plan:     req.Plan,
	}, nil
}

// ConfirmPayment reports the payment outcome upstream. A failed or cancelled
// payment is still reported so the ERP keeps an audit record; the error shown
// to the user is about the payment, not the report.
func (s *Service) ConfirmPayment(ctx context.Context, sess *session.Session, key string, req ConfirmPaymentRequest) error {
	form := url.Values{}
	form.Set("company", sess.Company)
	form.Set("order_id", req.OrderID)
	form.Set("payment_id", req.PaymentID)
	form.Set("status", req.Status)

	if _, err := s.gateway.CallMethod(ctx, sess, reportPaymentMethod, form); err != nil {
		if req.Status == "success" {
			return err
		}
		// Audit report of an already-failed payment: log only.
		s.logger.Warn("Failed to report unsuccessful payment", zap.String("order", req.OrderID), zap.Error(err))
	}

	if req.Status == "success" {
		s.toasts.Enqueue(key, notification.ToastSuccess, "Plan upgraded successfully.", s.cfg.SettingsToastTTL)
		return nil
	}
	s.toasts.Enqueue(key, notification.ToastError, "Payment was not completed.", s.cfg.SettingsToastTTL)
	return nil
}
