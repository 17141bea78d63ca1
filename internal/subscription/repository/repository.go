package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	subdomain "github.com/movstream/backend/internal/subscription/domain"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type Repository interface {
	Create(ctx context.Context, sub subdomain.Subscription) error
	FindByID(ctx context.Context, id string) (subdomain.Subscription, error)
	ListByStatus(ctx context.Context, status string) ([]subdomain.Subscription, error)
	UpdateStatus(ctx context.Context, id, status string) (subdomain.Subscription, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const subscriptionColumns = `id, user_id, plan, price, status, created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, sub subdomain.Subscription) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, plan, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sub.ID, sub.UserID, sub.Plan, sub.Price, sub.Status, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (subdomain.Subscription, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	return scanSubscription(row)
}

func (r *PgRepository) ListByStatus(ctx context.Context, status string) ([]subdomain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subdomain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id, status string) (subdomain.Subscription, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+subscriptionColumns, id, status)
	return scanSubscription(row)
}

func scanSubscription(row pgx.Row) (subdomain.Subscription, error) {
	var s subdomain.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.Price, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subdomain.Subscription{}, ErrSubscriptionNotFound
		}
		return subdomain.Subscription{}, fmt.Errorf("scan subscription: %w", err)
	}
	return s, nil
}
