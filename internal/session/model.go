// File: internal/session/model.go
package session

import "time"

// Session is the authenticated identity and the API credentials used to
// authorize calls to the ERP backend. It is always written wholesale: a new
// login fully replaces the previous session so no field can leak across
// accounts.
type Session struct {
	Company     string    `json:"company"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	SID         string    `json:"sid"`
	APIKey      string    `json:"api_key"`
	APISecret   string    `json:"api_secret"`
	RoleProfile string    `json:"role_profile"`
	CreatedAt   time.Time `json:"created_at"`
}

// Handoff carries a provider credential across the user-facing gap between
// the OAuth existence check and the signup completion step. It is short-lived
// and cleared as soon as either path completes.
type Handoff struct {
	Provider    string    `json:"provider"` // "google" or "facebook"
	Token       string    `json:"token"`
	RawResponse string    `json:"raw_response,omitempty"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	CreatedAt   time.Time `json:"created_at"`
}
