// File: internal/activity/service_test.go
package activity

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	listResults map[string][]map[string]any
	methodCalls []string
	lastForm    url.Values
}

func (f *fakeGateway) GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error) {
	return f.listResults[doctype], nil
}

func (f *fakeGateway) CallMethod(ctx context.Context, sess *session.Session, method string, form url.Values) (json.RawMessage, error) {
	f.methodCalls = append(f.methodCalls, method)
	f.lastForm = form
	return json.RawMessage(`{}`), nil
}

func newTestService(gateway *fakeGateway) *Service {
	cfg := &config.Config{SettingsToastTTL: 3 * time.Second}
	return NewService(cfg, gateway, notification.NewService(zap.NewNop()), zap.NewNop())
}

func TestTimeline_MergesSourcesNewestFirst(t *testing.T) {
	gateway := &fakeGateway{listResults: map[string][]map[string]any{
		communicationDoctype: {
			{"name": "COMM-1", "subject": "Intro call", "creation": "2026-08-20 10:00:00"},
		},
		commentDoctype: {
			{"name": "CMT-1", "content": "Followed up", "creation": "2026-08-22 09:30:00"},
		},
		activityDoctype: {
			{"name": "ACT-1", "subject": "Status changed", "creation": "2026-08-21 16:45:00.123456"},
		},
	}}
	service := newTestService(gateway)

	entries, err := service.Timeline(context.Background(), nil, "LEAD-0001")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "CMT-1", entries[0].Name)
	assert.Equal(t, "ACT-1", entries[1].Name)
	assert.Equal(t, "COMM-1", entries[2].Name)
	assert.Equal(t, KindComment, entries[0].Kind)
}

func TestTimeline_UnparseableTimestampSortsLast(t *testing.T) {
	gateway := &fakeGateway{listResults: map[string][]map[string]any{
		commentDoctype: {
			{"name": "CMT-OK", "creation": "2026-08-22 09:30:00"},
			{"name": "CMT-BAD", "creation": "yesterday-ish"},
		},
	}}
	service := newTestService(gateway)

	entries, err := service.Timeline(context.Background(), nil, "LEAD-0001")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "CMT-OK", entries[0].Name)
	assert.Equal(t, "CMT-BAD", entries[1].Name)
}

func TestAddComment_SendsAuthorAndAttachments(t *testing.T) {
	gateway := &fakeGateway{}
	service := newTestService(gateway)

	sess := &session.Session{Email: "jane@acme.com", FullName: "Jane Doe"}
	err := service.AddComment(context.Background(), sess, "c1", "LEAD-0001", CreateCommentRequest{
		Content:     "Looks promising.",
		Attachments: []string{"FILE-0001"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{addCommentMethod}, gateway.methodCalls)
	assert.Equal(t, "LEAD-0001", gateway.lastForm.Get("reference_name"))
	assert.Equal(t, "jane@acme.com", gateway.lastForm.Get("comment_email"))
	assert.Equal(t, "Jane Doe", gateway.lastForm.Get("comment_by"))
	assert.JSONEq(t, `["FILE-0001"]`, gateway.lastForm.Get("attachments"))
}

func TestSendEmail_JoinsRecipients(t *testing.T) {
	gateway := &fakeGateway{}
	service := newTestService(gateway)

	sess := &session.Session{Email: "jane@acme.com"}
	err := service.SendEmail(context.Background(), sess, "c1", "LEAD-0001", SendEmailRequest{
		Recipients: []string{"a@x.com", "b@x.com"},
		Subject:    "Proposal",
		Content:    "<p>Attached.</p>",
		CC:         []string{"cc@x.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{sendEmailMethod}, gateway.methodCalls)
	assert.Equal(t, "a@x.com,b@x.com", gateway.lastForm.Get("recipients"))
	assert.Equal(t, "cc@x.com", gateway.lastForm.Get("cc"))
	assert.Equal(t, "1", gateway.lastForm.Get("send_email"))
}
