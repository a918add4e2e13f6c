// File: internal/territory/model.go
package territory

// CreateTerritoryRequest carries the territory creation modal's fields.
type CreateTerritoryRequest struct {
	Name    string `json:"territory_name" binding:"required,min=2"`
	Manager string `json:"territory_manager" binding:"omitempty,email"`
}

// Territory is the created territory as reported back to the client.
type Territory struct {
	Name    string `json:"name"`
	Manager string `json:"territory_manager,omitempty"`
}
