package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type notificationRepoPG struct{ pool *pgxpool.Pool }

func NewNotificationRepoPG(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepoPG{pool: pool}
}

func (r *notificationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *notificationRepoPG) Create(ctx context.Context, n *Notification) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO notification (sender_id, title, message, notification_type, exam_id, association_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		n.SenderID, n.Title, n.Message, n.Type, n.ExamID, n.AssociationID).
		Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepoPG) AddRecipients(ctx context.Context, notificationID int64, recipientIDs []uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notification_recipient (notification_id, recipient_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (notification_id, recipient_id) DO NOTHING`,
		notificationID, recipientIDs)
	return err
}

const inboxCols = `n.id, n.sender_id, n.title, n.message, n.notification_type,
	n.exam_id, n.association_id, n.created_at, r.read, r.read_at`

func (r *notificationRepoPG) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*InboxItem, int, error) {
	where := ` WHERE r.recipient_id = $1`
	if unreadOnly {
		where += ` AND r.read = FALSE`
	}
	from := ` FROM notification_recipient r JOIN notification n ON n.id = r.notification_id`

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+from+where, recipientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+inboxCols+from+where+` ORDER BY n.id DESC LIMIT $2 OFFSET $3`,
		recipientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*InboxItem
	for rows.Next() {
		var it InboxItem
		if err := rows.Scan(&it.ID, &it.SenderID, &it.Title, &it.Message, &it.Type,
			&it.ExamID, &it.AssociationID, &it.CreatedAt, &it.Read, &it.ReadAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &it)
	}
	return items, total, rows.Err()
}

func (r *notificationRepoPG) ListRecipients(ctx context.Context, notificationID int64) ([]*NotificationRecipient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT notification_id, recipient_id, read, read_at
		FROM notification_recipient WHERE notification_id = $1`, notificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*NotificationRecipient
	for rows.Next() {
		var nr NotificationRecipient
		if err := rows.Scan(&nr.NotificationID, &nr.RecipientID, &nr.Read, &nr.ReadAt); err != nil {
			return nil, err
		}
		items = append(items, &nr)
	}
	return items, rows.Err()
}

func (r *notificationRepoPG) IsRecipient(ctx context.Context, notificationID int64, recipientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notification_recipient
			WHERE notification_id = $1 AND recipient_id = $2
		)`, notificationID, recipientID).Scan(&exists)
	return exists, err
}

func (r *notificationRepoPG) MarkRead(ctx context.Context, notificationID int64, recipientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE notification_recipient SET read = TRUE, read_at = NOW()
		WHERE notification_id = $1 AND recipient_id = $2 AND read = FALSE`,
		notificationID, recipientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *notificationRepoPG) ExistsForAssociation(ctx context.Context, associationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM notification WHERE association_id = $1)`,
		associationID).Scan(&exists)
	return exists, err
}
