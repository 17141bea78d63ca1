package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	fbdomain "github.com/movstream/backend/internal/feedback/domain"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

type Repository interface {
	Create(ctx context.Context, fb fbdomain.Feedback) error
	FindByID(ctx context.Context, id string) (fbdomain.Feedback, error)
	List(ctx context.Context, filter fbdomain.ListFilter) ([]fbdomain.Feedback, int, error)
	MarkRead(ctx context.Context, id string) (fbdomain.Feedback, error)
	Respond(ctx context.Context, id, status, responseMessage string) (fbdomain.Feedback, error)
	CountUnread(ctx context.Context) (int, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const feedbackColumns = `id, COALESCE(user_id, ''), name, email, type, subject, message, status, is_read, COALESCE(response_message, ''), created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, fb fbdomain.Feedback) error {
	userID := any(fb.UserID)
	if fb.UserID == "" {
		userID = nil
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO feedback (id, user_id, name, email, type, subject, message, status, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		fb.ID, userID, fb.Name, fb.Email, fb.Type, fb.Subject, fb.Message, fb.Status, fb.IsRead, fb.CreatedAt, fb.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (fbdomain.Feedback, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id)
	return scanFeedback(row)
}

func (r *PgRepository) List(ctx context.Context, filter fbdomain.ListFilter) ([]fbdomain.Feedback, int, error) {
	where, args := buildFeedbackFilter(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}

	limit := filter.Limit
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM feedback%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		feedbackColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var items []fbdomain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, fb)
	}
	return items, total, rows.Err()
}

func (r *PgRepository) MarkRead(ctx context.Context, id string) (fbdomain.Feedback, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE feedback SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+feedbackColumns, id)
	return scanFeedback(row)
}

func (r *PgRepository) Respond(ctx context.Context, id, status, responseMessage string) (fbdomain.Feedback, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE feedback SET status = $2, response_message = $3, is_read = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+feedbackColumns, id, status, responseMessage)
	return scanFeedback(row)
}

func (r *PgRepository) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback WHERE is_read = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread feedback: %w", err)
	}
	return count, nil
}

func buildFeedbackFilter(filter fbdomain.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Type != "" {
		args = append(args, filter.Type)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Unread {
		clauses = append(clauses, "is_read = FALSE")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanFeedback(row pgx.Row) (fbdomain.Feedback, error) {
	var fb fbdomain.Feedback
	err := row.Scan(&fb.ID, &fb.UserID, &fb.Name, &fb.Email, &fb.Type, &fb.Subject, &fb.Message,
		&fb.Status, &fb.IsRead, &fb.ResponseMessage, &fb.CreatedAt, &fb.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fbdomain.Feedback{}, ErrFeedbackNotFound
		}
		return fbdomain.Feedback{}, fmt.Errorf("scan feedback: %w", err)
	}
	return fb, nil
}
