// File: internal/activity/model.go
package activity

import "time"

// EntryKind distinguishes the three record types merged into the timeline.
type EntryKind string

const (
	KindCommunication EntryKind = "communication"
	KindComment       EntryKind = "comment"
	KindActivity      EntryKind = "activity"
)

// TimelineEntry is one row of a lead's activity timeline.
type TimelineEntry struct {
	Kind      EntryKind `json:"kind"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject,omitempty"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest carries a new comment for a lead. Attachment names are
// files already uploaded through the attachment endpoint.
type CreateCommentRequest struct {
	Content     string   `json:"content" binding:"required"`
	Attachments []string `json:"attachments"`
}

// SendEmailRequest carries an outgoing email composed against a lead.
type SendEmailRequest struct {
	Recipients  []string `json:"recipients" binding:"required,min=1,dive,email"`
	Subject     string   `json:"subject" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	CC          []string `json:"cc" binding:"omitempty,dive,email"`
	BCC         []string `json:"bcc" binding:"omitempty,dive,email"`
	Attachments []string `json:"attachments"`
}
