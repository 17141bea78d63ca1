package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	notifdomain "github.com/movstream/backend/internal/notification/domain"
)

type Repository interface {
	Create(ctx context.Context, log notifdomain.EmailNotificationLog) error
	List(ctx context.Context, limit int) ([]notifdomain.EmailNotificationLog, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const logColumns = `id, type, subject, message, recipient_group, recipient_count, status, COALESCE(error_detail, ''), sent_by, created_at`

func (r *PgRepository) Create(ctx context.Context, log notifdomain.EmailNotificationLog) error {
	errorDetail := any(log.ErrorDetail)
	if log.ErrorDetail == "" {
		errorDetail = nil
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_notification_logs (id, type, subject, message, recipient_group, recipient_count, status, error_detail, sent_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID, log.Type, log.Subject, log.Message, log.RecipientGroup, log.RecipientCount,
		log.Status, errorDetail, log.SentBy, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification log: %w", err)
	}
	return nil
}

func (r *PgRepository) List(ctx context.Context, limit int) ([]notifdomain.EmailNotificationLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+logColumns+` FROM email_notification_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	defer rows.Close()

	var logs []notifdomain.EmailNotificationLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func scanLog(row pgx.Row) (notifdomain.EmailNotificationLog, error) {
	var l notifdomain.EmailNotificationLog
	err := row.Scan(&l.ID, &l.Type, &l.Subject, &l.Message, &l.RecipientGroup, &l.RecipientCount,
		&l.Status, &l.ErrorDetail, &l.SentBy, &l.CreatedAt)
	if err != nil {
		return notifdomain.EmailNotificationLog{}, fmt.Errorf("scan notification log: %w", err)
	}
	return l, nil
}
