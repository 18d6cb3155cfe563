package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/selah-app/selah-backend/internal/models"
)

// ActivatePremium moves a user to premium with the given plan and period end,
// storing the Stripe identifiers for later restore calls.
func (s *Storage) ActivatePremium(ctx context.Context, userUID, plan string, periodEnd time.Time, customerID, subscriptionID string) error {
	const op = "storage.ActivatePremium"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1, plan = $2, current_period_end = $3,
			      stripe_customer_id = $4, stripe_subscription_id = $5
			  WHERE uid = $6`
	_, err := s.DB.ExecContext(ctx, query,
		models.StatusPremium, plan, periodEnd, customerID, subscriptionID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateStatus sets the entitlement status of a user.
func (s *Storage) UpdateStatus(ctx context.Context, userUID, status string) error {
	const op = "storage.UpdateStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET status = $1 WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, status, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ExtendPeriod moves the premium period end forward after a verified renewal.
func (s *Storage) ExtendPeriod(ctx context.Context, userUID string, periodEnd time.Time) error {
	const op = "storage.ExtendPeriod"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET status = $1, current_period_end = $2
			  WHERE uid = $3`
	_, err := s.DB.ExecContext(ctx, query, models.StatusPremium, periodEnd, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RedeemActivationCode marks a code redeemed and activates premium for the
// user in one transaction. The bool reports whether the code was available.
func (s *Storage) RedeemActivationCode(ctx context.Context, userUID, code string) (*models.ActivationCode, bool, error) {
	const op = "storage.RedeemActivationCode"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	redeemQuery := `UPDATE activation_codes
					SET redeemed_by = $1, redeemed_at = NOW()
					WHERE code = $2 AND redeemed_by IS NULL
					RETURNING id, code, plan, grant_months, redeemed_by, redeemed_at, created_at`
	var ac models.ActivationCode
	err = tx.QueryRowContext(ctx, redeemQuery, userUID, code).Scan(
		&ac.ID, &ac.Code, &ac.Plan, &ac.GrantMonths, &ac.RedeemedBy, &ac.RedeemedAt, &ac.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	periodEnd := time.Now().UTC().AddDate(0, ac.GrantMonths, 0)
	updateQuery := `UPDATE users
					SET status = $1, plan = $2, current_period_end = $3
					WHERE uid = $4`
	if _, err := tx.ExecContext(ctx, updateQuery, models.StatusPremium, ac.Plan, periodEnd, userUID); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &ac, true, nil
}

// ExpireTrial blocks a trial whose end date has passed. The flag keeps the
// user locked out even if the row's status is later read before a sweep.
func (s *Storage) ExpireTrial(ctx context.Context, userUID string) error {
	const op = "storage.ExpireTrial"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET status = $1, trial_blocked = TRUE WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, models.StatusTrialExpired, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByStripeSubscription resolves the owner of a Stripe subscription.
// Used when a webhook event carries only the subscription ID.
func (s *Storage) GetUserByStripeSubscription(ctx context.Context, subscriptionID string) (*models.User, error) {
	const op = "storage.GetUserByStripeSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_subscription_id = $1`
	row := s.DB.QueryRowContext(ctx, query, subscriptionID)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindTrialsExpiringToday returns users whose trial ends today and who are
// still in trial state.
func (s *Storage) FindTrialsExpiringToday(ctx context.Context) ([]*models.User, error) {
	const op = "storage.FindTrialsExpiringToday"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE status = $1 AND trial_end_date::DATE <= CURRENT_DATE`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusTrial)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindLapsedPremium returns premium users whose paid period has passed and
// whose subscription must be re-verified against the billing backend.
func (s *Storage) FindLapsedPremium(ctx context.Context) ([]*models.User, error) {
	const op = "storage.FindLapsedPremium"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE status = $1 AND current_period_end < NOW()`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusPremium)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
