// File: internal/auth/service.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/erp"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/oauth"
	"crm_gateway_backend/internal/session"

	"go.uber.org/zap"
)

const (
	loginMethod         = "crm.api.sessions.login"
	googleCheckMethod   = "crm.api.oauth.check_google_account"
	googleLoginMethod   = "crm.api.oauth.google_login"
	facebookLoginMethod = "crm.api.oauth.facebook_login"

	companyDoctype = "Company"
	userDoctype    = "User"

	defaultRoleProfile = "Sales User"
)

// ERPGateway is the slice of the ERP client the auth workflow uses. Narrowed
// to an interface so the service tests can run against a fake backend.
type ERPGateway interface {
	CallMethod(ctx context.Context, sess *session.Session, method string, form url.Values) (json.RawMessage, error)
	CallMethodMultipart(ctx context.Context, sess *session.Session, method string, fields map[string]string, file *erp.FileUpload) (json.RawMessage, error)
	GetList(ctx context.Context, sess *session.Session, doctype string, query url.Values) ([]map[string]any, error)
	CreateDoc(ctx context.Context, sess *session.Session, doctype string, doc any) (json.RawMessage, error)
	DeleteDoc(ctx context.Context, sess *session.Session, doctype, name string) error
}

// Service orchestrates the three mutually exclusive auth flows: password
// login, new-company self-registration, and OAuth login-or-signup.
type Service struct {
	cfg      *config.Config
	gateway  ERPGateway
	sessions session.Repository
	toasts   *notification.Service
	logger   *zap.Logger

	// Single submission in flight per client key. Replaces the SPA's
	// loading-flag guard, which still allowed double Enter-key submits.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewService creates the auth workflow service.
func NewService(
	cfg *config.Config,
	gateway ERPGateway,
	sessions session.Repository,
	toasts *notification.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		gateway:  gateway,
		sessions: sessions,
		toasts:   toasts,
		logger:   logger.Named("AuthService"),
		inflight: make(map[string]struct{}),
	}
}

// acquire marks a submission in flight for the client key. A second submit
// while the first is still pending is rejected instead of queued: no auth
// request is ever retried or duplicated automatically.
func (s *Service) acquire(key string) error {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return common.ErrConflict.WithDetails("A request is already in flight. Please wait for it to finish.")
	}
	s.inflight[key] = struct{}{}
	return nil
}

func (s *Service) release(key string) {
	s.inflightMu.Lock()
	delete(s.inflight, key)
	s.inflightMu.Unlock()
}

// Login performs email/password login against the ERP and replaces the
// session for the client key on success.
func (s *Service) Login(ctx context.Context, key string, req LoginRequest) (*session.Session, error) {
	if err := s.acquire(key); err != nil {
		return nil, err
	}
	defer s.release(key)

	form := url.Values{}
	form.Set("usr", req.Email)
	form.Set("pwd", req.Password)

	raw, err := s.gateway.CallMethod(ctx, nil, loginMethod, form)
	if err != nil {
		return nil, err
	}
	msg, err := decodeLoginMessage(raw)
	if err != nil {
		return nil, err
	}

	sess := sessionFromLogin(req.Email, msg)
	if err := s.sessions.Set(ctx, key, sess); err != nil {
		s.logger.Error("Failed to store session after login", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not establish session.")
	}

	s.toasts.Enqueue(key, notification.ToastSuccess, "Logged in successfully.", s.cfg.AuthToastTTL)
	s.logger.Info("Password login successful", zap.String("email", req.Email))
	return &sess, nil
}

// Register runs the four-step registration saga: company existence check,
// user existence check, company creation, user creation. A user-creation
// failure triggers a compensating delete of the company so a company never
// exists without its admin user.
func (s *Service) Register(ctx context.Context, key string, req RegisterRequest) (*RegisterResult, error) {
	if err := s.acquire(key); err != nil {
		return nil, err
	}
	defer s.release(key)

	companies, err := s.gateway.GetList(ctx, nil, companyDoctype, existsQuery("company_name", req.CompanyName))
	if err != nil {
		return nil, err
	}
	if len(companies) > 0 {
		return nil, common.ErrConflict.WithDetails("A company with this name already exists.")
	}

	users, err := s.gateway.GetList(ctx, nil, userDoctype, existsQuery("email", req.Email))
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return nil, common.ErrConflict.WithDetails("A user with this email already exists.")
	}

	companyDoc := map[string]any{
		"company_name":    req.CompanyName,
		"no_of_employees": req.NoOfEmployees,
	}
	if _, err := s.gateway.CreateDoc(ctx, nil, companyDoctype, companyDoc); err != nil {
		return nil, err
	}

	userDoc := map[string]any{
		"email":             req.Email,
		"first_name":        req.FirstName,
		"mobile_no":         req.Phone,
		"company":           req.CompanyName,
		"role_profile_name": defaultRoleProfile,
		"send_welcome_email": 1,
	}
	if _, err := s.gateway.CreateDoc(ctx, nil, userDoctype, userDoc); err != nil {
		// Compensating action: the company was created but its admin user was
		// not. Roll the company back; a rollback failure is logged only, the
		// user sees the original error.
		if delErr := s.gateway.DeleteDoc(ctx, nil, companyDoctype, req.CompanyName); delErr != nil {
			s.logger.Error("Failed to roll back company after user creation failure",
				zap.String("company", req.CompanyName),
				zap.Error(delErr))
		} else {
			s.logger.Info("Rolled back company after user creation failure",
				zap.String("company", req.CompanyName))
		}
		return nil, err
	}

	s.toasts.Enqueue(key, notification.ToastSuccess,
		"Registration successful. Please check your inbox for the activation email.", s.cfg.AuthToastTTL)
	s.logger.Info("Registration completed", zap.String("email", req.Email), zap.String("company", req.CompanyName))
	return &RegisterResult{Email: req.Email}, nil
}

// GoogleLogin decodes the ID token, stages it for the possible signup step,
// asks the ERP whether the account exists, and either logs in directly or
// reports that the signup modal must be completed first.
func (s *Service) GoogleLogin(ctx context.Context, key string, req GoogleLoginRequest) (*GoogleLoginResult, error) {
	if err := s.acquire(key); err != nil {
		return nil, err
	}
	defer s.release(key)

	claims, err := oauth.DecodeGoogleToken(req.Credential)
	if err != nil {
		if errors.Is(err, oauth.ErrNoEmail) {
			return nil, common.ErrBadRequest.WithDetails("Could not extract email from Google token.")
		}
		// A payload that fails to parse at all is tolerated for prefill
		// purposes, but without an email there is nothing to check against.
		s.logger.Warn("Google token decode failed", zap.Error(err))
		return nil, common.ErrBadRequest.WithDetails("Could not extract email from Google token.")
	}

	handoff := session.Handoff{
		Provider:    "google",
		Token:       req.Credential,
		RawResponse: req.RawResponse,
		Email:       claims.Email,
		FirstName:   claims.GivenName,
		LastName:    claims.FamilyName,
		CreatedAt:   time.Now(),
	}
	if err := s.sessions.PutHandoff(ctx, key, handoff); err != nil {
		s.logger.Error("Failed to stage Google credential", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not stage Google credential.")
	}

	form := url.Values{}
	form.Set("id_token", req.Credential)
	raw, err := s.gateway.CallMethod(ctx, nil, googleCheckMethod, form)
	if err != nil {
		return nil, err
	}
	var check struct {
		Exists int `json:"exists"`
	}
	if err := json.Unmarshal(raw, &check); err != nil {
		return nil, common.ErrInternalServer.WithDetails("Unexpected response from server.")
	}

	if check.Exists != 1 {
		// New account: the signup modal takes over; the staged token is
		// consumed by CompleteGoogleSignup.
		return &GoogleLoginResult{
			SignupRequired: true,
			Prefill: &SignupPrefill{
				Email:     claims.Email,
				FirstName: claims.GivenName,
				LastName:  claims.FamilyName,
			},
		}, nil
	}

	sess, err := s.googleERPLogin(ctx, key, req.Credential, nil)
	if err != nil {
		return nil, err
	}
	return &GoogleLoginResult{Session: sess}, nil
}

// CompleteGoogleSignup finishes signup for a new Google account. The ERP
// creates the account and logs it in within the same call.
func (s *Service) CompleteGoogleSignup(ctx context.Context, key string, req GoogleSignupRequest) (*session.Session, error) {
	if err := s.acquire(key); err != nil {
		return nil, err
	}
	defer s.release(key)

	handoff, err := s.sessions.GetHandoff(ctx, key)
	if err != nil {
		if errors.Is(err, session.ErrNoHandoff) {
			return nil, common.ErrBadRequest.WithDetails("Your Google sign-in expired. Please sign in with Google again.")
		}
		return nil, common.ErrInternalServer.WithDetails("Could not read staged Google credential.")
	}

	profile := url.Values{}
	profile.Set("first_name", req.FirstName)
	profile.Set("last_name", req.LastName)
	profile.Set("phone", req.Phone)
	profile.Set("company_name", req.CompanyName)
	profile.Set("no_of_employees", req.NoOfEmployees)

	return s.googleERPLogin(ctx, key, handoff.Token, profile)
}

// googleERPLogin performs the ERP login call shared by the existing-account
// and new-account paths, establishes the session, and clears the staged
// credential. The handoff clear is idempotent so both paths can call it
// unconditionally.
func (s *Service) googleERPLogin(ctx context.Context, key, idToken string, profile url.Values) (*session.Session, error) {
	form := url.Values{}
	form.Set("id_token", idToken)
	for name, values := range profile {
		for _, value := range values {
			form.Add(name, value)
		}
	}

	raw, err := s.gateway.CallMethod(ctx, nil, googleLoginMethod, form)
	if err != nil {
		return nil, err
	}
	msg, err := decodeLoginMessage(raw)
	if err != nil {
		return nil, err
	}

	sess := sessionFromLogin(msg.Email, msg)
	if err := s.sessions.Set(ctx, key, sess); err != nil {
		s.logger.Error("Failed to store session after Google login", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not establish session.")
	}
	if err := s.sessions.ClearHandoff(ctx, key); err != nil {
		s.logger.Warn("Failed to clear staged Google credential", zap.Error(err))
	}

	s.toasts.Enqueue(key, notification.ToastSuccess, "Logged in with Google.", s.cfg.AuthToastTTL)
	s.logger.Info("Google login successful", zap.String("email", sess.Email))
	return &sess, nil
}

// FacebookLogin relays the SDK's access token to the ERP as multipart form
// data. A login the user cancelled in the SDK popup never reaches the ERP.
func (s *Service) FacebookLogin(ctx context.Context, key string, req FacebookLoginRequest) (*session.Session, error) {
	if err := s.acquire(key); err != nil {
		return nil, err
	}
	defer s.release(key)

	if req.Status == "cancelled" || req.AccessToken == "" {
		return nil, common.ErrBadRequest.WithDetails("Facebook login was cancelled.")
	}

	fields := map[string]string{"access_token": req.AccessToken}
	raw, err := s.gateway.CallMethodMultipart(ctx, nil, facebookLoginMethod, fields, nil)
	if err != nil {
		return nil, err
	}
	msg, err := decodeLoginMessage(raw)
	if err != nil {
		return nil, err
	}

	sess := sessionFromLogin(msg.Email, msg)
	if err := s.sessions.Set(ctx, key, sess); err != nil {
		s.logger.Error("Failed to store session after Facebook login", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not establish session.")
	}
	if err := s.sessions.ClearHandoff(ctx, key); err != nil {
		s.logger.Warn("Failed to clear staged Facebook credential", zap.Error(err))
	}

	s.toasts.Enqueue(key, notification.ToastSuccess, "Logged in with Facebook.", s.cfg.AuthToastTTL)
	s.logger.Info("Facebook login successful", zap.String("email", sess.Email))
	return &sess, nil
}

// Logout clears the session for the client key.
func (s *Service) Logout(ctx context.Context, key string) error {
	return s.sessions.Clear(ctx, key)
}

// decodeLoginMessage parses the shared ERP auth envelope and maps a missing
// or negative success_key to a rejection carrying the backend message.
func decodeLoginMessage(raw json.RawMessage) (*loginMessage, error) {
	var msg loginMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, common.ErrInternalServer.WithDetails("Unexpected response from server.")
	}
	if msg.SuccessKey != 1 {
		detail := msg.Message
		if detail == "" {
			detail = "Invalid credentials or inactive account."
		}
		return nil, common.ErrUnauthorized.WithDetails(detail)
	}
	return &msg, nil
}

// sessionFromLogin builds a fresh session from the ERP payload. The session
// is written wholesale so nothing from a previous account can survive.
func sessionFromLogin(email string, msg *loginMessage) session.Session {
	if msg.Email != "" {
		email = msg.Email
	}
	return session.Session{
		Company:     msg.Company,
		Username:    msg.Username,
		Email:       email,
		FullName:    msg.FullName,
		SID:         msg.SID,
		APIKey:      msg.APIKey,
		APISecret:   msg.APISecret,
		RoleProfile: msg.RoleProfile,
		CreatedAt:   time.Now(),
	}
}

// existsQuery builds the list-endpoint filter for a single-field equality
// existence check.
func existsQuery(field, value string) url.Values {
	filters, _ := json.Marshal([][]string{{field, "=", value}})
	query := url.Values{}
	query.Set("filters", string(filters))
	query.Set("limit", "1")
	return query
}
