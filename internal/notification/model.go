// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
)

// ToastType defines the visual type of a toast.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
)

// Toast is a short-lived outcome notification queued for one client. The SPA
// drains pending toasts and renders them; undelivered toasts expire on their
// own.
type Toast struct {
	ID        uuid.UUID `json:"id"`
	Type      ToastType `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"-"`
}
