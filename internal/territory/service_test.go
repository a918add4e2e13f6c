// File: internal/territory/service_test.go
package territory

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	listResult []map[string]any
	created    []string
}

func (f *fakeGateway) GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error) {
	return f.listResult, nil
}

func (f *fakeGateway) CreateDoc(ctx context.Context, sess *session.Session, doctype string, doc any) (json.RawMessage, error) {
	f.created = append(f.created, doctype)
	return json.RawMessage(`{"name":"T-0001"}`), nil
}

func newTestService(gateway *fakeGateway) *Service {
	cfg := &config.Config{SettingsToastTTL: 3 * time.Second}
	return NewService(cfg, gateway, notification.NewService(zap.NewNop()), zap.NewNop())
}

func TestCreate_DuplicateNameRejectedWithoutCreate(t *testing.T) {
	gateway := &fakeGateway{listResult: []map[string]any{{"name": "North"}}}
	service := newTestService(gateway)

	_, err := service.Create(context.Background(), nil, "c1", CreateTerritoryRequest{Name: "North"})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Equal(t, "A territory with this name already exists.", apiErr.Details)
	assert.Empty(t, gateway.created)
}

func TestCreate_Success(t *testing.T) {
	gateway := &fakeGateway{}
	service := newTestService(gateway)

	created, err := service.Create(context.Background(), nil, "c1", CreateTerritoryRequest{Name: "South", Manager: "jane@acme.com"})
	require.NoError(t, err)
	assert.Equal(t, "South", created.Name)
	assert.Equal(t, "jane@acme.com", created.Manager)
	assert.Equal(t, []string{territoryDoctype}, gateway.created)
}
