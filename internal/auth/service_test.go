// File: internal/auth/service_test.go
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/erp"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGateway is a scriptable stand-in for the ERP client. It records every
// call so the tests can assert which upstream requests were (not) issued.
type fakeGateway struct {
	methodCalls []string
	listCalls   []string
	created     []string
	deleted     []string

	methodResults map[string]json.RawMessage
	methodErrs    map[string]error
	listResults   map[string][]map[string]any
	listErrs      map[string]error
	createErrs    map[string]error
	deleteErr     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		methodResults: make(map[string]json.RawMessage),
		methodErrs:    make(map[string]error),
		listResults:   make(map[string][]map[string]any),
		listErrs:      make(map[string]error),
		createErrs:    make(map[string]error),
	}
}

func (f *fakeGateway) CallMethod(ctx context.Context, sess *session.Session, method string, form url.Values) (json.RawMessage, error) {
	f.methodCalls = append(f.methodCalls, method)
	if err := f.methodErrs[method]; err != nil {
		return nil, err
	}
	if raw, ok := f.methodResults[method]; ok {
		return raw, nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeGateway) CallMethodMultipart(ctx context.Context, sess *session.Session, method string, fields map[string]string, file *erp.FileUpload) (json.RawMessage, error) {
	return f.CallMethod(ctx, sess, method, nil)
}

func (f *fakeGateway) GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error) {
	f.listCalls = append(f.listCalls, doctype)
	if err := f.listErrs[doctype]; err != nil {
		return nil, err
	}
	return f.listResults[doctype], nil
}

func (f *fakeGateway) CreateDoc(ctx context.Context, sess *session.Session, doctype string, doc any) (json.RawMessage, error) {
	f.created = append(f.created, doctype)
	if err := f.createErrs[doctype]; err != nil {
		return nil, err
	}
	return json.RawMessage(`{"name":"DOC-0001"}`), nil
}

func (f *fakeGateway) DeleteDoc(ctx context.Context, sess *session.Session, doctype, name string) error {
	f.deleted = append(f.deleted, doctype+"/"+name)
	return f.deleteErr
}

func testConfig() *config.Config {
	return &config.Config{
		AuthToastTTL:     5 * time.Second,
		SettingsToastTTL: 3 * time.Second,
	}
}

func newTestService(gateway *fakeGateway) (*Service, session.Repository, *notification.Service) {
	logger := zap.NewNop()
	sessions := session.NewMemoryRepository(time.Hour, time.Minute, nil)
	toasts := notification.NewService(logger)
	return NewService(testConfig(), gateway, sessions, toasts, logger), sessions, toasts
}

// googleToken builds an unsigned JWT whose payload carries the given claims.
func googleToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".signature"
}

func TestLogin_Success(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[loginMethod] = json.RawMessage(
		`{"success_key":1,"sid":"S1","api_key":"K","api_secret":"Sec","company":"Acme"}`)
	service, sessions, toasts := newTestService(gateway)

	sess, err := service.Login(context.Background(), "client-1", LoginRequest{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", sess.Email)
	assert.Equal(t, "S1", sess.SID)
	assert.Equal(t, "K", sess.APIKey)
	assert.Equal(t, "Sec", sess.APISecret)
	assert.Equal(t, "Acme", sess.Company)

	stored, err := sessions.Get(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, *sess, *stored)

	pending := toasts.Drain("client-1")
	require.Len(t, pending, 1)
	assert.Equal(t, notification.ToastSuccess, pending[0].Type)
}

func TestLogin_BackendRejected(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[loginMethod] = json.RawMessage(`{"success_key":0,"message":"Invalid login credentials"}`)
	service, sessions, _ := newTestService(gateway)

	_, err := service.Login(context.Background(), "client-1", LoginRequest{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, "Invalid login credentials", apiErr.Details)

	_, err = sessions.Get(context.Background(), "client-1")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogin_ReplacesPriorSessionWholesale(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[loginMethod] = json.RawMessage(
		`{"success_key":1,"sid":"S1","api_key":"K1","api_secret":"Sec1","company":"Acme","role_profile":"Admin"}`)
	service, sessions, _ := newTestService(gateway)

	_, err := service.Login(context.Background(), "client-1", LoginRequest{Email: "first@acme.com", Password: "pw"})
	require.NoError(t, err)

	// Second account's payload has no role_profile; nothing from the first
	// account may survive the switch.
	gateway.methodResults[loginMethod] = json.RawMessage(
		`{"success_key":1,"sid":"S2","api_key":"K2","api_secret":"Sec2","company":"Globex"}`)
	_, err = service.Login(context.Background(), "client-1", LoginRequest{Email: "second@globex.com", Password: "pw"})
	require.NoError(t, err)

	stored, err := sessions.Get(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, "K2", stored.APIKey)
	assert.Equal(t, "Sec2", stored.APISecret)
	assert.Equal(t, "Globex", stored.Company)
	assert.Equal(t, "second@globex.com", stored.Email)
	assert.Empty(t, stored.RoleProfile)
}

func TestRegister_CompanyNameTaken(t *testing.T) {
	gateway := newFakeGateway()
	gateway.listResults[companyDoctype] = []map[string]any{{"name": "Acme"}}
	service, _, _ := newTestService(gateway)

	_, err := service.Register(context.Background(), "client-1", RegisterRequest{
		FirstName: "Jane", Email: "jane@acme.com", Phone: "12345",
		CompanyName: "Acme", NoOfEmployees: "10",
	})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", apiErr.Code)

	// No mutation may be attempted once the name is known to be taken.
	assert.Empty(t, gateway.created)
	assert.Empty(t, gateway.deleted)
}

func TestRegister_EmailTaken(t *testing.T) {
	gateway := newFakeGateway()
	gateway.listResults[userDoctype] = []map[string]any{{"name": "jane@acme.com"}}
	service, _, _ := newTestService(gateway)

	_, err := service.Register(context.Background(), "client-1", RegisterRequest{
		FirstName: "Jane", Email: "jane@acme.com", Phone: "12345",
		CompanyName: "Acme", NoOfEmployees: "10",
	})
	require.Error(t, err)
	assert.Empty(t, gateway.created)
}

func TestRegister_RollsBackCompanyWhenUserCreationFails(t *testing.T) {
	gateway := newFakeGateway()
	gateway.createErrs[userDoctype] = common.ErrUnprocessable.WithDetails("Invalid phone number.")
	service, _, _ := newTestService(gateway)

	_, err := service.Register(context.Background(), "client-1", RegisterRequest{
		FirstName: "Jane", Email: "jane@acme.com", Phone: "12345",
		CompanyName: "Acme", NoOfEmployees: "10",
	})
	require.Error(t, err)

	// The original step-4 error surfaces, not the rollback outcome.
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", apiErr.Code)

	// Exactly one compensating delete, for the company just created.
	require.Len(t, gateway.deleted, 1)
	assert.Equal(t, companyDoctype+"/Acme", gateway.deleted[0])
}

func TestRegister_RollbackFailureIsSwallowed(t *testing.T) {
	gateway := newFakeGateway()
	gateway.createErrs[userDoctype] = common.ErrUnprocessable.WithDetails("Invalid phone number.")
	gateway.deleteErr = errors.New("erp unreachable")
	service, _, _ := newTestService(gateway)

	_, err := service.Register(context.Background(), "client-1", RegisterRequest{
		FirstName: "Jane", Email: "jane@acme.com", Phone: "12345",
		CompanyName: "Acme", NoOfEmployees: "10",
	})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", apiErr.Code)
}

func TestRegister_Success(t *testing.T) {
	gateway := newFakeGateway()
	service, sessions, toasts := newTestService(gateway)

	result, err := service.Register(context.Background(), "client-1", RegisterRequest{
		FirstName: "Jane", Email: "jane@acme.com", Phone: "12345",
		CompanyName: "Acme", NoOfEmployees: "10",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@acme.com", result.Email)
	assert.Equal(t, []string{companyDoctype, userDoctype}, gateway.created)

	// Registration does not log the user in.
	_, err = sessions.Get(context.Background(), "client-1")
	assert.ErrorIs(t, err, session.ErrNoSession)

	pending := toasts.Drain("client-1")
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Message, "activation email")
}

func TestGoogleLogin_TokenWithoutEmailAbortsBeforeExistenceCheck(t *testing.T) {
	gateway := newFakeGateway()
	service, _, _ := newTestService(gateway)

	token := googleToken(t, map[string]any{"given_name": "Jane"})
	_, err := service.GoogleLogin(context.Background(), "client-1", GoogleLoginRequest{Credential: token})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Could not extract email from Google token.", apiErr.Details)

	assert.Empty(t, gateway.methodCalls)
}

func TestGoogleLogin_ExistingAccount(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[googleCheckMethod] = json.RawMessage(`{"exists":1}`)
	gateway.methodResults[googleLoginMethod] = json.RawMessage(
		`{"success_key":1,"sid":"G1","api_key":"GK","api_secret":"GS","company":"Acme","email":"jane@acme.com"}`)
	service, sessions, _ := newTestService(gateway)

	token := googleToken(t, map[string]any{"email": "jane@acme.com", "given_name": "Jane", "family_name": "Doe"})
	result, err := service.GoogleLogin(context.Background(), "client-1", GoogleLoginRequest{Credential: token})
	require.NoError(t, err)
	assert.False(t, result.SignupRequired)
	require.NotNil(t, result.Session)
	assert.Equal(t, "jane@acme.com", result.Session.Email)

	// The staged credential is gone after the success path.
	_, err = sessions.GetHandoff(context.Background(), "client-1")
	assert.ErrorIs(t, err, session.ErrNoHandoff)
}

func TestGoogleLogin_NewAccountRequiresSignup(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[googleCheckMethod] = json.RawMessage(`{"exists":0}`)
	service, sessions, _ := newTestService(gateway)

	token := googleToken(t, map[string]any{"email": "new@acme.com", "given_name": "New", "family_name": "User"})
	result, err := service.GoogleLogin(context.Background(), "client-1", GoogleLoginRequest{Credential: token})
	require.NoError(t, err)
	assert.True(t, result.SignupRequired)
	require.NotNil(t, result.Prefill)
	assert.Equal(t, "new@acme.com", result.Prefill.Email)
	assert.Equal(t, "New", result.Prefill.FirstName)
	assert.Equal(t, "User", result.Prefill.LastName)

	// The token stays staged for the signup completion step.
	handoff, err := sessions.GetHandoff(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, token, handoff.Token)

	// No login call was made yet.
	assert.Equal(t, []string{googleCheckMethod}, gateway.methodCalls)
}

func TestCompleteGoogleSignup_Success(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[googleCheckMethod] = json.RawMessage(`{"exists":0}`)
	gateway.methodResults[googleLoginMethod] = json.RawMessage(
		`{"success_key":1,"sid":"G2","api_key":"GK2","api_secret":"GS2","company":"NewCo","email":"new@acme.com"}`)
	service, sessions, _ := newTestService(gateway)

	token := googleToken(t, map[string]any{"email": "new@acme.com"})
	_, err := service.GoogleLogin(context.Background(), "client-1", GoogleLoginRequest{Credential: token})
	require.NoError(t, err)

	sess, err := service.CompleteGoogleSignup(context.Background(), "client-1", GoogleSignupRequest{
		FirstName: "New", LastName: "User", Phone: "12345",
		CompanyName: "NewCo", NoOfEmployees: "5", TermsAccepted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@acme.com", sess.Email)
	assert.Equal(t, "GK2", sess.APIKey)

	// Handoff cleanup is idempotent: clearing again succeeds.
	_, err = sessions.GetHandoff(context.Background(), "client-1")
	assert.ErrorIs(t, err, session.ErrNoHandoff)
	assert.NoError(t, sessions.ClearHandoff(context.Background(), "client-1"))
}

func TestCompleteGoogleSignup_ExpiredHandoff(t *testing.T) {
	gateway := newFakeGateway()
	service, _, _ := newTestService(gateway)

	_, err := service.CompleteGoogleSignup(context.Background(), "client-1", GoogleSignupRequest{
		FirstName: "New", LastName: "User", Phone: "12345",
		CompanyName: "NewCo", NoOfEmployees: "5", TermsAccepted: true,
	})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	assert.Empty(t, gateway.methodCalls)
}

func TestFacebookLogin_Cancelled(t *testing.T) {
	gateway := newFakeGateway()
	service, _, _ := newTestService(gateway)

	_, err := service.FacebookLogin(context.Background(), "client-1", FacebookLoginRequest{Status: "cancelled"})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Facebook login was cancelled.", apiErr.Details)
	assert.Empty(t, gateway.methodCalls)
}

func TestFacebookLogin_Success(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[facebookLoginMethod] = json.RawMessage(
		`{"success_key":1,"sid":"F1","api_key":"FK","api_secret":"FS","company":"Acme","email":"fb@acme.com"}`)
	service, sessions, _ := newTestService(gateway)

	sess, err := service.FacebookLogin(context.Background(), "client-1", FacebookLoginRequest{AccessToken: "fb-token"})
	require.NoError(t, err)
	assert.Equal(t, "fb@acme.com", sess.Email)

	stored, err := sessions.Get(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, "FK", stored.APIKey)
}

func TestSingleFlight_RejectsConcurrentSubmission(t *testing.T) {
	gateway := newFakeGateway()
	service, _, _ := newTestService(gateway)

	require.NoError(t, service.acquire("client-1"))
	err := service.acquire("client-1")
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", apiErr.Code)

	// A different client key is unaffected.
	assert.NoError(t, service.acquire("client-2"))

	service.release("client-1")
	assert.NoError(t, service.acquire("client-1"))
}

func TestLogout_ClearsSession(t *testing.T) {
	gateway := newFakeGateway()
	gateway.methodResults[loginMethod] = json.RawMessage(`{"success_key":1,"sid":"S1","api_key":"K","api_secret":"Sec"}`)
	service, sessions, _ := newTestService(gateway)

	_, err := service.Login(context.Background(), "client-1", LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), "client-1"))
	_, err = sessions.Get(context.Background(), "client-1")
	assert.ErrorIs(t, err, session.ErrNoSession)
}
