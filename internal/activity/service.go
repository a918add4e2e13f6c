// File: internal/activity/service.go
package activity

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"

	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"go.uber.org/zap"
)

const (
	leadDoctype          = "CRM Lead"
	communicationDoctype = "Communication"
	commentDoctype       = "Comment"
	activityDoctype      = "CRM Activity"

	addCommentMethod = "frappe.desk.form.utils.add_comment"
	sendEmailMethod  = "frappe.core.doctype.communication.email.make"
)

// ERPGateway is the slice of the ERP client the activity views use.
type ERPGateway interface {
	GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error)
	CallMethod(ctx context.Context, sess *session.Session, method string, form url.Values) (json.RawMessage, error)
}

// Service reads and appends to a lead's timeline.
type Service struct {
	cfg     *config.Config
	gateway ERPGateway
	toasts  *notification.Service
	logger  *zap.Logger
}

// NewService creates a new activity service.
func NewService(cfg *config.Config, gateway ERPGateway, toasts *notification.Service, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, gateway: gateway, toasts: toasts, logger: logger.Named("ActivityService")}
}

// Timeline merges communications, comments and activity records for a lead
// into one reverse-chronological list.
func (s *Service) Timeline(ctx context.Context, sess *session.Session, leadID string) ([]TimelineEntry, error) {
	entries := []TimelineEntry{}

	for _, source := range []struct {
		doctype string
		kind    EntryKind
		filters [][]string
	}{
		{communicationDoctype, KindCommunication, [][]string{{"reference_doctype", "=", leadDoctype}, {"reference_name", "=", leadID}}},
		{commentDoctype, KindComment, [][]string{{"reference_doctype", "=", leadDoctype}, {"reference_name", "=", leadID}}},
		{activityDoctype, KindActivity, [][]string{{"reference_name", "=", leadID}}},
	} {
		filters, _ := json.Marshal(source.filters)
		query := url.Values{}
		query.Set("filters", string(filters))
		docs, err := s.gateway.GetList(ctx, sess, source.doctype, query)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			entries = append(entries, entryFromDoc(source.kind, doc))
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// AddComment appends a comment to a lead, referencing any already-uploaded
// attachments.
func (s *Service) AddComment(ctx context.Context, sess *session.Session, key, leadID string, req CreateCommentRequest) error {
	form := url.Values{}
	form.Set("reference_doctype", leadDoctype)
	form.Set("reference_name", leadID)
	form.Set("content", req.Content)
	form.Set("comment_email", sess.Email)
	form.Set("comment_by", sess.FullName)
	if len(req.Attachments) > 0 {
		names, _ := json.Marshal(req.Attachments)
		form.Set("attachments", string(names))
	}

	if _, err := s.gateway.CallMethod(ctx, sess, addCommentMethod, form); err != nil {
		return err
	}
	s.toasts.Enqueue(key, notification.ToastSuccess, "Comment added.", s.cfg.SettingsToastTTL)
	s.logger.Info("Comment added", zap.String("lead", leadID))
	return nil
}

// SendEmail sends an email against a lead through the ERP communication
// endpoint.
func (s *Service) SendEmail(ctx context.Context, sess *session.Session, key, leadID string, req SendEmailRequest) error {
	form := url.Values{}
	form.Set("doctype", leadDoctype)
	form.Set("name", leadID)
	form.Set("recipients", strings.Join(req.Recipients, ","))
	form.Set("subject", req.Subject)
	form.Set("content", req.Content)
	form.Set("send_email", "1")
	if len(req.CC) > 0 {
		form.Set("cc", strings.Join(req.CC, ","))
	}
	if len(req.BCC) > 0 {
		form.Set("bcc", strings.Join(req.BCC, ","))
	}
	if len(req.Attachments) > 0 {
		names, _ := json.Marshal(req.Attachments)
		form.Set("attachments", string(names))
	}

	if _, err := s.gateway.CallMethod(ctx, sess, sendEmailMethod, form); err != nil {
		return err
	}
	s.toasts.Enqueue(key, notification.ToastSuccess, "Email sent.", s.cfg.SettingsToastTTL)
	s.logger.Info("Email sent", zap.String("lead", leadID), zap.Int("recipients", len(req.Recipients)))
	return nil
}

// entryFromDoc normalizes an ERP record into a timeline entry. Unparseable
// timestamps sort to the end rather than failing the whole timeline.
func entryFromDoc(kind EntryKind, doc map[string]any) TimelineEntry {
	entry := TimelineEntry{Kind: kind}
	if name, ok := doc["name"].(string); ok {
		entry.Name = name
	}
	if subject, ok := doc["subject"].(string); ok {
		entry.Subject = subject
	}
	if content, ok := doc["content"].(string); ok {
		entry.Content = content
	}
	if sender, ok := doc["sender"].(string); ok {
		entry.Sender = sender
	} else if owner, ok := doc["owner"].(string); ok {
		entry.Sender = owner
	}
	if creation, ok := doc["creation"].(string); ok {
		for _, layout := range []string{"2006-01-02 15:04:05.000000", "2006-01-02 15:04:05", time.RFC3339} {
			if ts, err := time.Parse(layout, creation); err == nil {
				entry.CreatedAt = ts
				break
			}
		}
	}
	return entry
}
