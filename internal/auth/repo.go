package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contanube/contanube/internal/shared"
)

// Repository abstracts account and session persistence.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	UpdateSubscription(ctx context.Context, userID int64, plan, status string, end *time.Time, paymentID string) error
	DowngradeExpired(ctx context.Context, now time.Time) (int64, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

const uniqueViolation = "23505"

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const userColumns = `id, email, name, company, password_hash, plan, subscription_status, subscription_end, payment_id, is_active, created_at, updated_at`

func (r *pgRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *pgRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *pgRepository) CreateUser(ctx context.Context, user User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, company, password_hash, plan, subscription_status, subscription_end, payment_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING `+userColumns,
		user.Email, user.Name, user.Company, user.PasswordHash,
		user.Plan, user.SubscriptionStatus, user.SubscriptionEnd, user.PaymentID,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *pgRepository) UpdateSubscription(ctx context.Context, userID int64, plan, status string, end *time.Time, paymentID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET plan = $2, subscription_status = $3, subscription_end = $4, payment_id = $5, updated_at = now()
		WHERE id = $1`,
		userID, plan, status, end, paymentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) DowngradeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET plan = 'free', subscription_status = 'expired', updated_at = now()
		WHERE plan <> 'free' AND subscription_status = 'active' AND subscription_end IS NOT NULL AND subscription_end < $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		id, userID, expiresAt, ip, ua,
	)
	return err
}

func (r *pgRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Company, &user.PasswordHash,
		&user.Plan, &user.SubscriptionStatus, &user.SubscriptionEnd, &user.PaymentID,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
