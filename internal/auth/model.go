// File: internal/auth/model.go
package auth

import "crm_gateway_backend/internal/session"

// LoginRequest defines the structure for password login requests. Login
// deliberately enforces only shape, not the registration complexity rules:
// accounts created before those rules must still be able to sign in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest carries the new-company self-registration form. Every field
// is validated independently so the client can show all inline errors at once.
type RegisterRequest struct {
	FirstName     string `json:"first_name" binding:"required,min=2"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required,numeric"`
	CompanyName   string `json:"company_name" binding:"required,min=2"`
	NoOfEmployees string `json:"no_of_employees" binding:"required,numeric"`
}

// GoogleLoginRequest carries the ID token issued by Google's sign-in widget.
type GoogleLoginRequest struct {
	Credential  string `json:"credential" binding:"required"`
	RawResponse string `json:"raw_response,omitempty"`
}

// GoogleSignupRequest completes signup for a Google account the ERP has never
// seen. The staged token is re-read from the handoff; the profile fields come
// from the signup modal.
type GoogleSignupRequest struct {
	FirstName     string `json:"first_name" binding:"required,min=2"`
	LastName      string `json:"last_name" binding:"required,min=2"`
	Phone         string `json:"phone" binding:"required,numeric"`
	CompanyName   string `json:"company_name" binding:"required,min=2"`
	NoOfEmployees string `json:"no_of_employees" binding:"required,numeric"`
	TermsAccepted bool   `json:"terms_accepted" binding:"required,eq=true"`
}

// FacebookLoginRequest relays the access token from Facebook's SDK. Status is
// what the SDK reported client-side; a cancelled login never reaches the ERP.
type FacebookLoginRequest struct {
	AccessToken string `json:"access_token"`
	Status      string `json:"status"`
}

// GoogleLoginResult is the outcome of the login-or-signup branch.
type GoogleLoginResult struct {
	SignupRequired bool             `json:"signup_required"`
	Session        *session.Session `json:"session,omitempty"`
	Prefill        *SignupPrefill   `json:"prefill,omitempty"`
}

// SignupPrefill holds the decoded display hints for the signup modal.
type SignupPrefill struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterResult reports a completed registration. No session is established:
// the user activates the account via email and then logs in.
type RegisterResult struct {
	Email string `json:"email"`
}

// loginMessage is the ERP auth envelope shared by every login flow.
type loginMessage struct {
	SuccessKey  int    `json:"success_key"`
	Message     string `json:"message"`
	SID         string `json:"sid"`
	APIKey      string `json:"api_key"`
	APISecret   string `json:"api_secret"`
	Company     string `json:"company"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	RoleProfile string `json:"role_profile"`
}
