// File: internal/deal/model.go
package deal

// CreateDealRequest carries the deal-creation modal's fields. Organization is
// the only hard requirement; contact fields are optional but validated for
// shape when present.
type CreateDealRequest struct {
	Organization  string `json:"organization" binding:"required,min=2"`
	Website       string `json:"website" binding:"omitempty,url"`
	Territory     string `json:"territory"`
	AnnualRevenue string `json:"annual_revenue" binding:"omitempty,numeric"`
	NoOfEmployees string `json:"no_of_employees" binding:"omitempty,numeric"`
	Source        string `json:"source"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"omitempty,numeric"`
}

// Deal is the created deal as reported back to the client.
type Deal struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Contact      string `json:"contact,omitempty"`
	Status       string `json:"status"`
}

// RefData is the dropdown reference data the modal fetches eagerly on open.
type RefData struct {
	Sources       []string `json:"sources"`
	Territories   []string `json:"territories"`
	Organizations []string `json:"organizations"`
	Statuses      []string `json:"statuses"`
}
