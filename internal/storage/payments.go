package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/selah-app/selah-backend/internal/models"
)

// SavePayment records a verified checkout session. The unique constraint on
// session_id makes replays a no-op; the bool reports whether a row was added.
func (s *Storage) SavePayment(ctx context.Context, payment models.Payment) (int, bool, error) {
	const op = "storage.SavePayment"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_uid, session_id, subscription_id, plan, amount, currency, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (session_id) DO NOTHING
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.SessionID, payment.SubscriptionID, payment.Plan,
		payment.Amount, payment.Currency, payment.Status).Scan(&newID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return newID, true, nil
}

// ListPayments returns the user's payment history, newest first.
func (s *Storage) ListPayments(ctx context.Context, userUID string) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, session_id, subscription_id, plan, amount, currency, status, created_at
			  FROM payments
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserUID, &p.SessionID, &p.SubscriptionID,
			&p.Plan, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
