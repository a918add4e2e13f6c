// File: internal/oauth/decoder.go
package oauth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoEmail is returned when the token payload carries no email claim.
var ErrNoEmail = errors.New("could not extract email from Google token")

// GoogleClaims are the display hints pulled from a Google ID token. The token
// is decoded without signature verification: the values are used only to
// prefill the signup form, never as an authentication proof. The ERP backend
// re-verifies the token on every auth call.
type GoogleClaims struct {
	Email      string
	GivenName  string
	FamilyName string
}

type googleIDClaims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// DecodeGoogleToken parses the payload segment of a Google ID token. The only
// hard requirement is a non-empty email claim; missing name parts are
// tolerated because the user can fill them in on the signup form.
func DecodeGoogleToken(idToken string) (*GoogleClaims, error) {
	parser := jwt.NewParser()
	claims := &googleIDClaims{}
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, ErrNoEmail
	}
	return &GoogleClaims{
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
	}, nil
}
