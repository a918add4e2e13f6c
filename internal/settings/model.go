// File: internal/settings/model.go
package settings

// Profile is the editable slice of the user's account. Email is read-only:
// it is the account identifier on the ERP side.
type Profile struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// UpdateProfileRequest carries profile edits.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2"`
	LastName  string `json:"last_name" binding:"omitempty,min=2"`
}

// CreditUsage reports AI credit consumption for the user's company.
type CreditUsage struct {
	TotalCredits     float64 `json:"total_credits"`
	ConsumedCredits  float64 `json:"consumed_credits"`
	RemainingCredits float64 `json:"remaining_credits"`
	Plan             string  `json:"plan"`
}

// APIKeyPair is returned once, at generation time. The secret is never
// retrievable again.
type APIKeyPair struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// CheckoutRequest starts a plan upgrade.
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// CheckoutOrder is what the payment widget needs to open.
type CheckoutOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
	Plan     string `json:"plan"`
}

// ConfirmPaymentRequest reports the widget's outcome. Failed and cancelled
// payments are still reported upstream for audit.
type ConfirmPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status" binding:"required,oneof=success failed cancelled"`
}
