package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification categories.
const (
	TypeAssociationAccepted = "ASSOCIATION_ACCEPTED"
	TypeExamStatus          = "EXAM_STATUS"
	TypeGeneral             = "GENERAL"
)

// Notification is an immutable message fanned out to a set of recipients.
// Ids are sequential so "most recent first" is simply id descending.
type Notification struct {
	ID            int64      `db:"id" json:"id"`
	SenderID      uuid.UUID  `db:"sender_id" json:"sender_id"`
	Title         string     `db:"title" json:"title"`
	Message       string     `db:"message" json:"message"`
	Type          string     `db:"notification_type" json:"type"`
	ExamID        *uuid.UUID `db:"exam_id" json:"exam_id,omitempty"`
	AssociationID *uuid.UUID `db:"association_id" json:"association_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// NotificationRecipient is the per-recipient read-state link.
type NotificationRecipient struct {
	NotificationID int64      `db:"notification_id" json:"notification_id"`
	RecipientID    uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	Read           bool       `db:"read" json:"read"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
}

// InboxItem is a notification as seen by one recipient.
type InboxItem struct {
	Notification
	Read   bool       `json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// RecipientView exposes only what a client needs to render a recipient row.
type RecipientView struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Read   bool       `json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// View is the sender-facing result of a fan-out.
type View struct {
	Notification
	SenderName  string          `json:"sender_name"`
	SenderEmail string          `json:"sender_email"`
	Recipients  []RecipientView `json:"recipients"`
}
