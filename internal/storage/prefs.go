package storage

import (
	"context"
	"fmt"

	"github.com/selah-app/selah-backend/internal/models"
)

// UpsertPreference writes one preference key, last write wins.
func (s *Storage) UpsertPreference(ctx context.Context, pref models.Preference) error {
	const op = "storage.UpsertPreference"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO preferences (user_uid, key, value, updated_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (user_uid, key)
			  DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := s.DB.ExecContext(ctx, query, pref.UserUID, pref.Key, pref.Value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPreferences returns all preference entries for a user.
func (s *Storage) ListPreferences(ctx context.Context, userUID string) ([]*models.Preference, error) {
	const op = "storage.ListPreferences"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, key, value, updated_at
			  FROM preferences
			  WHERE user_uid = $1
			  ORDER BY key`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Preference
	for rows.Next() {
		var p models.Preference
		if err := rows.Scan(&p.UserUID, &p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
