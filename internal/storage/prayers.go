package storage

import (
	"context"
	"fmt"

	"github.com/selah-app/selah-backend/internal/models"
)

// CreatePrayer inserts a new prayer request and returns its ID.
func (s *Storage) CreatePrayer(ctx context.Context, prayer models.PrayerRequest) (int, error) {
	const op = "storage.CreatePrayer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO prayer_requests (user_uid, title, description, category)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		prayer.UserUID, prayer.Title, prayer.Description, prayer.Category).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadPrayer returns one prayer request owned by the user.
func (s *Storage) ReadPrayer(ctx context.Context, userUID string, id int) (*models.PrayerRequest, error) {
	const op = "storage.ReadPrayer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, title, description, category, answered, answered_at, created_at
			  FROM prayer_requests
			  WHERE id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userUID)

	var result models.PrayerRequest
	if err := row.Scan(&result.ID, &result.UserUID, &result.Title, &result.Description,
		&result.Category, &result.Answered, &result.AnsweredAt, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListPrayers returns the user's prayer requests with optional filters and
// pagination, newest first.
func (s *Storage) ListPrayers(ctx context.Context, userUID string, filter models.PrayerFilter) ([]*models.PrayerRequest, error) {
	const op = "storage.ListPrayers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, title, description, category, answered, answered_at, created_at
			  FROM prayer_requests
			  WHERE user_uid = $1
			    AND ($2::boolean IS NULL OR answered = $2)
			    AND ($3::text IS NULL OR category = $3)
			  ORDER BY created_at DESC
			  LIMIT $4 OFFSET $5`

	var category *string
	if filter.Category != "" {
		category = &filter.Category
	}
	rows, err := s.DB.QueryContext(ctx, query, userUID, filter.Answered, category, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PrayerRequest
	for rows.Next() {
		var item models.PrayerRequest
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Title, &item.Description,
			&item.Category, &item.Answered, &item.AnsweredAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePrayer updates the mutable fields of a prayer request and returns the
// number of affected rows.
func (s *Storage) UpdatePrayer(ctx context.Context, userUID string, id int, prayer models.PrayerRequest) (int, error) {
	const op = "storage.UpdatePrayer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE prayer_requests
			  SET title = $1, description = $2, category = $3
			  WHERE id = $4 AND user_uid = $5`
	result, err := s.DB.ExecContext(ctx, query,
		prayer.Title, prayer.Description, prayer.Category, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePrayer deletes a prayer request and returns the number of deleted rows.
func (s *Storage) RemovePrayer(ctx context.Context, userUID string, id int) (int, error) {
	const op = "storage.RemovePrayer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM prayer_requests WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkPrayerAnswered sets the answered flag once and returns the number of
// affected rows. Already-answered requests are left untouched.
func (s *Storage) MarkPrayerAnswered(ctx context.Context, userUID string, id int) (int, error) {
	const op = "storage.MarkPrayerAnswered"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE prayer_requests
			  SET answered = true, answered_at = NOW()
			  WHERE id = $1 AND user_uid = $2 AND answered = false`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
