package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	userdomain "github.com/movstream/backend/internal/user/domain"
)

var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateEmail = errors.New("email already exists")

type Repository interface {
	Create(ctx context.Context, user userdomain.User) error
	FindByID(ctx context.Context, id string) (userdomain.User, error)
	List(ctx context.Context, filter userdomain.ListFilter) ([]userdomain.User, int, error)
	SetActiveStatus(ctx context.Context, id string, isActive bool) (userdomain.User, error)
	FindRecipientsByGroup(ctx context.Context, group string) ([]userdomain.Recipient, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, full_name, email, password_hash, role, COALESCE(account_type, ''), is_active, is_verified, created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, user userdomain.User) error {
	accountType := any(user.AccountType)
	if user.AccountType == "" {
		accountType = nil
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, email, password_hash, role, account_type, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.FullName, user.Email, user.PasswordHash, user.Role, accountType,
		user.IsActive, user.IsVerified, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (userdomain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PgRepository) List(ctx context.Context, filter userdomain.ListFilter) ([]userdomain.User, int, error) {
	where, args := buildUserFilter(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit := filter.Limit
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []userdomain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *PgRepository) SetActiveStatus(ctx context.Context, id string, isActive bool) (userdomain.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, isActive)
	return scanUser(row)
}

// SetAccountType upgrades or downgrades an account tier. An empty accountType
// clears the column, returning the account to the free tier.
func (r *PgRepository) SetAccountType(ctx context.Context, userID, accountType string) error {
	value := any(accountType)
	if accountType == "" {
		value = nil
	}
	tag, err := r.pool.Exec(ctx, `UPDATE users SET account_type = $2, updated_at = NOW() WHERE id = $1`, userID, value)
	if err != nil {
		return fmt.Errorf("set account type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) FindRecipientsByGroup(ctx context.Context, group string) ([]userdomain.Recipient, error) {
	query := `SELECT email, full_name FROM users WHERE is_active = TRUE`
	switch group {
	case userdomain.GroupPremium:
		query += ` AND account_type IS NOT NULL`
	case userdomain.GroupFree:
		query += ` AND account_type IS NULL`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find recipients: %w", err)
	}
	defer rows.Close()

	var recipients []userdomain.Recipient
	for rows.Next() {
		var rec userdomain.Recipient
		if err := rows.Scan(&rec.Email, &rec.FullName); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func buildUserFilter(filter userdomain.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanUser(row pgx.Row) (userdomain.User, error) {
	var u userdomain.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.AccountType,
		&u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userdomain.User{}, ErrUserNotFound
		}
		return userdomain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
