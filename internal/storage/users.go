package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/selah-app/selah-backend/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, status, plan,
	trial_end_date, trial_blocked, current_period_end, stripe_customer_id,
	stripe_subscription_id, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var trialEndDate, currentPeriodEnd sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Status, &u.Plan, &trialEndDate, &u.TrialBlocked, &currentPeriodEnd,
		&u.StripeCustomerID, &u.StripeSubID, &u.CreatedAt); err != nil {
		return nil, err
	}
	if trialEndDate.Valid {
		u.TrialEndDate = &trialEndDate.Time
	}
	if currentPeriodEnd.Valid {
		u.CurrentPeriodEnd = &currentPeriodEnd.Time
	}
	return u, nil
}

// RegisterUser inserts a new user and returns the generated UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role, status, trial_end_date)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.Status,
		user.TrialEndDate).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername returns a user by username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser returns a user by UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdatePassword replaces the stored password hash.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1 WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreatePasswordResetToken stores a single-use reset token.
func (s *Storage) CreatePasswordResetToken(ctx context.Context, token, userUID string, expiresAt time.Time) error {
	const op = "storage.CreatePasswordResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO password_reset_tokens (token, user_uid, expires_at)
			  VALUES ($1, $2, $3)`
	_, err := s.DB.ExecContext(ctx, query, token, userUID, expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumePasswordResetToken marks a token used and returns its owner.
// Fails when the token is unknown, expired or already used.
func (s *Storage) ConsumePasswordResetToken(ctx context.Context, token string) (string, error) {
	const op = "storage.ConsumePasswordResetToken"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE password_reset_tokens
			  SET used_at = NOW()
			  WHERE token = $1 AND used_at IS NULL AND expires_at > NOW()
			  RETURNING user_uid`
	var userUID string
	if err := s.DB.QueryRowContext(ctx, query, token).Scan(&userUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}
