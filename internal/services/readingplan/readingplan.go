// Package readingplan contains the business logic for devotional reading
// plans: plan listing, day completion toggles, per-plan progress and the
// cross-plan streak summary.
package readingplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/selah-app/selah-backend/internal/lib/streak"
	"github.com/selah-app/selah-backend/internal/models"
)

// ErrPlanNotFound is returned for an unknown plan slug.
var ErrPlanNotFound = errors.New("reading plan not found")

// ErrDayOutOfRange is returned for a day outside the plan's range.
var ErrDayOutOfRange = errors.New("day out of plan range")

// Heatmap history window.
const heatmapDays = 90

// Repository describes the storage contract for plans and progress.
type Repository interface {
	ListPlans(ctx context.Context) ([]*models.ReadingPlan, error)
	GetPlanBySlug(ctx context.Context, slug string) (*models.ReadingPlan, error)
	ListPlanDays(ctx context.Context, userUID string, planID int) ([]*models.DailyReadingStatus, error)
	ToggleProgress(ctx context.Context, userUID string, planID, day int) (bool, error)
	CountProgress(ctx context.Context, userUID string, planID int) (int, error)
	ListCompletions(ctx context.Context, userUID string) ([]time.Time, error)
}

// ReadingPlanService handles plan and progress operations.
type ReadingPlanService struct {
	repo Repository
}

// New creates a ReadingPlanService.
func New(repo Repository) *ReadingPlanService {
	return &ReadingPlanService{repo: repo}
}

// ListPlans returns all seeded plans.
func (s *ReadingPlanService) ListPlans(ctx context.Context) ([]*models.ReadingPlan, error) {
	const op = "readingplan.ListPlans"

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// GetPlan returns a plan with its days joined against the user's completions.
func (s *ReadingPlanService) GetPlan(ctx context.Context, userUID, slug string) (*models.ReadingPlan, []*models.DailyReadingStatus, error) {
	const op = "readingplan.GetPlan"

	plan, err := s.repo.GetPlanBySlug(ctx, slug)
	if err != nil {
		return nil, nil, ErrPlanNotFound
	}
	days, err := s.repo.ListPlanDays(ctx, userUID, plan.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, days, nil
}

// ToggleDay flips the completion of one day and returns the resulting state
// together with the updated progress. The toggle is idempotent per direction:
// the server state after the call is authoritative regardless of what the
// client assumed.
func (s *ReadingPlanService) ToggleDay(ctx context.Context, userUID, slug string, day int) (bool, *models.PlanProgress, error) {
	const op = "readingplan.ToggleDay"

	plan, err := s.repo.GetPlanBySlug(ctx, slug)
	if err != nil {
		return false, nil, ErrPlanNotFound
	}
	if day < 1 || day > plan.TotalDays {
		return false, nil, ErrDayOutOfRange
	}

	completed, err := s.repo.ToggleProgress(ctx, userUID, plan.ID, day)
	if err != nil {
		return false, nil, fmt.Errorf("%s: %w", op, err)
	}
	progress, err := s.progress(ctx, userUID, plan)
	if err != nil {
		return false, nil, fmt.Errorf("%s: %w", op, err)
	}
	return completed, progress, nil
}

// Progress returns the authoritative completion summary for one plan.
func (s *ReadingPlanService) Progress(ctx context.Context, userUID, slug string) (*models.PlanProgress, error) {
	const op = "readingplan.Progress"

	plan, err := s.repo.GetPlanBySlug(ctx, slug)
	if err != nil {
		return nil, ErrPlanNotFound
	}
	progress, err := s.progress(ctx, userUID, plan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return progress, nil
}

func (s *ReadingPlanService) progress(ctx context.Context, userUID string, plan *models.ReadingPlan) (*models.PlanProgress, error) {
	completed, err := s.repo.CountProgress(ctx, userUID, plan.ID)
	if err != nil {
		return nil, err
	}
	if completed > plan.TotalDays {
		completed = plan.TotalDays
	}
	percent := 0.0
	if plan.TotalDays > 0 {
		percent = float64(completed) / float64(plan.TotalDays) * 100
	}
	return &models.PlanProgress{
		Slug:          plan.Slug,
		CompletedDays: completed,
		TotalDays:     plan.TotalDays,
		Percent:       percent,
	}, nil
}

// Streak returns the cross-plan streak summary with a rolling heatmap.
func (s *ReadingPlanService) Streak(ctx context.Context, userUID string) (*models.StreakSummary, error) {
	const op = "readingplan.Streak"

	completions, err := s.repo.ListCompletions(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	today := time.Now().UTC()
	since := today.AddDate(0, 0, -heatmapDays)
	return &models.StreakSummary{
		CurrentStreak: streak.Current(completions, today),
		LongestStreak: streak.Longest(completions),
		Heatmap:       streak.Heatmap(completions, since, today),
	}, nil
}
