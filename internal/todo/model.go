// File: internal/todo/model.go
package todo

// CreateTodoRequest carries the to-do creation modal's fields.
type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Priority    string `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	AllocatedTo string `json:"allocated_to" binding:"omitempty,email"`
	Reference   string `json:"reference"`
}

// Todo is the created to-do as reported back to the client.
type Todo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AllocatedTo string `json:"allocated_to,omitempty"`
}

// RefData lists the users a to-do can be assigned to.
type RefData struct {
	AssignableUsers []AssignableUser `json:"assignable_users"`
}

// AssignableUser is one dropdown entry in the assignment field.
type AssignableUser struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
