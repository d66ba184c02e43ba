package notification

import (
	"context"

	"github.com/google/uuid"
)

// NotificationRepository persists notifications and their recipient links.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// AddRecipients inserts the unread link rows. Duplicate ids never
	// produce two rows for the same (notification, recipient) pair.
	AddRecipients(ctx context.Context, notificationID int64, recipientIDs []uuid.UUID) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*InboxItem, int, error)
	ListRecipients(ctx context.Context, notificationID int64) ([]*NotificationRecipient, error)
	IsRecipient(ctx context.Context, notificationID int64, recipientID uuid.UUID) (bool, error)
	// MarkRead flips the unread flag and reports whether a row changed.
	// Re-marking an already read link affects zero rows.
	MarkRead(ctx context.Context, notificationID int64, recipientID uuid.UUID) (bool, error)
	ExistsForAssociation(ctx context.Context, associationID uuid.UUID) (bool, error)
}
