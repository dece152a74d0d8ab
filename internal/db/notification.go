package db

import (
	"context"

	"github.com/google/uuid"
)

const createNotification = `
INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, reference_id, reference_kind)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, recipient_id, sender_id, type, title, message, reference_id, reference_kind, is_read, created_at
`

type CreateNotificationParams struct {
	ID            uuid.UUID
	RecipientID   string
	SenderID      *string
	Type          NotificationType
	Title         string
	Message       string
	ReferenceID   *string
	ReferenceKind *string
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	row := q.db.QueryRow(ctx, createNotification,
		arg.ID,
		arg.RecipientID,
		arg.SenderID,
		arg.Type,
		arg.Title,
		arg.Message,
		arg.ReferenceID,
		arg.ReferenceKind,
	)

	return scanNotification(row)
}

const listNotificationsByRecipient = `
SELECT id, recipient_id, sender_id, type, title, message, reference_id, reference_kind, is_read, created_at
FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListNotificationsByRecipient(ctx context.Context, recipientID string) ([]Notification, error) {
	rows, err := q.db.Query(ctx, listNotificationsByRecipient, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

const getNotificationByID = `
SELECT id, recipient_id, sender_id, type, title, message, reference_id, reference_kind, is_read, created_at
FROM notifications
WHERE id = $1
`

func (q *Queries) GetNotificationByID(ctx context.Context, id uuid.UUID) (Notification, error) {
	return scanNotification(q.db.QueryRow(ctx, getNotificationByID, id))
}

const markNotificationRead = `
UPDATE notifications
SET is_read = true
WHERE id = $1
RETURNING id, recipient_id, sender_id, type, title, message, reference_id, reference_kind, is_read, created_at
`

func (q *Queries) MarkNotificationRead(ctx context.Context, id uuid.UUID) (Notification, error) {
	return scanNotification(q.db.QueryRow(ctx, markNotificationRead, id))
}

const deleteNotification = `
DELETE FROM notifications
WHERE id = $1
`

func (q *Queries) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteNotification, id)
	return err
}

func scanNotification(row rowScanner) (Notification, error) {
	var n Notification
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.SenderID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.ReferenceID,
		&n.ReferenceKind,
		&n.IsRead,
		&n.CreatedAt,
	)
	return n, err
}
