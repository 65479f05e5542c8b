package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates the Postgres notification feed.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, item domain.NotificationItem) error {
	const query = `
        INSERT INTO notifications (id, type, title, message, created_at, read, issue_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query, item.ID, item.Type, item.Title, item.Message, item.CreatedAt, item.Read, item.IssueID)
	return mapPgError(err, "notification", map[string]any{"notification_id": item.ID})
}

func (r *notificationRepository) List(ctx context.Context, limit int) ([]domain.NotificationItem, error) {
	query := `SELECT id, type, title, message, created_at, read, issue_id FROM notifications ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationItem
	for rows.Next() {
		var item domain.NotificationItem
		if err := rows.Scan(&item.ID, &item.Type, &item.Title, &item.Message, &item.CreatedAt, &item.Read, &item.IssueID); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("notification", map[string]any{"notification_id": id})
	}
	return nil
}
