package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/selah-app/selah-backend/internal/models"
)

// ListPlans returns all seeded reading plans.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.ReadingPlan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, slug, title, description, total_days
			  FROM reading_plans
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ReadingPlan
	for rows.Next() {
		var item models.ReadingPlan
		if err := rows.Scan(&item.ID, &item.Slug, &item.Title, &item.Description, &item.TotalDays); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlanBySlug returns one plan.
func (s *Storage) GetPlanBySlug(ctx context.Context, slug string) (*models.ReadingPlan, error) {
	const op = "storage.GetPlanBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, slug, title, description, total_days
			  FROM reading_plans
			  WHERE slug = $1`
	var result models.ReadingPlan
	row := s.DB.QueryRowContext(ctx, query, slug)
	if err := row.Scan(&result.ID, &result.Slug, &result.Title, &result.Description, &result.TotalDays); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListPlanDays returns the plan's days joined with the user's completion.
func (s *Storage) ListPlanDays(ctx context.Context, userUID string, planID int) ([]*models.DailyReadingStatus, error) {
	const op = "storage.ListPlanDays"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT d.day, d.passage, p.completed_at
			  FROM daily_readings d
			  LEFT JOIN reading_progress p
			    ON p.plan_id = d.plan_id AND p.day = d.day AND p.user_uid = $1
			  WHERE d.plan_id = $2
			  ORDER BY d.day`
	rows, err := s.DB.QueryContext(ctx, query, userUID, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.DailyReadingStatus
	for rows.Next() {
		var item models.DailyReadingStatus
		var completedAt *time.Time
		if err := rows.Scan(&item.Day, &item.Passage, &completedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Completed = completedAt != nil
		item.CompletedAt = completedAt
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ToggleProgress flips completion for one day of a plan. Insert wins when the
// row is absent, delete when present; the bool reports the resulting state.
// The foreign key on (plan_id, day) keeps progress inside the plan, which
// also keeps the completed count at or below total_days.
func (s *Storage) ToggleProgress(ctx context.Context, userUID string, planID, day int) (bool, error) {
	const op = "storage.ToggleProgress"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery := `DELETE FROM reading_progress
					WHERE user_uid = $1 AND plan_id = $2 AND day = $3`
	res, err := tx.ExecContext(ctx, deleteQuery, userUID, planID, day)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	completed := false
	if deleted == 0 {
		insertQuery := `INSERT INTO reading_progress (user_uid, plan_id, day)
						VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, insertQuery, userUID, planID, day); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		completed = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return completed, nil
}

// CountProgress returns the number of completed days for one user and plan.
func (s *Storage) CountProgress(ctx context.Context, userUID string, planID int) (int, error) {
	const op = "storage.CountProgress"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM reading_progress
			  WHERE user_uid = $1 AND plan_id = $2`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID, planID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListCompletions returns all completion timestamps for a user across plans,
// used for streak and heatmap computation.
func (s *Storage) ListCompletions(ctx context.Context, userUID string) ([]time.Time, error) {
	const op = "storage.ListCompletions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT completed_at FROM reading_progress WHERE user_uid = $1`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
