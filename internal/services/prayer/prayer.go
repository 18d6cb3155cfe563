// Package prayer contains the business logic for the prayer journal.
// Every operation is scoped to the owning user.
package prayer

import (
	"context"
	"errors"
	"fmt"

	"github.com/selah-app/selah-backend/internal/models"
)

// ErrPrayerNotFound is returned when an entry does not exist or belongs to
// a different user.
var ErrPrayerNotFound = errors.New("prayer request not found")

// ErrAlreadyAnswered is returned when an entry is marked answered twice.
var ErrAlreadyAnswered = errors.New("prayer request already answered")

// Repository describes the storage contract for prayer requests.
type Repository interface {
	CreatePrayer(ctx context.Context, prayer models.PrayerRequest) (int, error)
	ReadPrayer(ctx context.Context, userUID string, id int) (*models.PrayerRequest, error)
	ListPrayers(ctx context.Context, userUID string, filter models.PrayerFilter) ([]*models.PrayerRequest, error)
	UpdatePrayer(ctx context.Context, userUID string, id int, prayer models.PrayerRequest) (int, error)
	RemovePrayer(ctx context.Context, userUID string, id int) (int, error)
	MarkPrayerAnswered(ctx context.Context, userUID string, id int) (int, error)
}

// PrayerService handles journal operations for authenticated users.
type PrayerService struct {
	repo Repository
}

// New creates a PrayerService.
func New(repo Repository) *PrayerService {
	return &PrayerService{repo: repo}
}

// Create saves a new journal entry and returns its ID.
func (s *PrayerService) Create(ctx context.Context, userUID string, dummy models.DummyPrayer) (int, error) {
	const op = "prayer.Create"

	entry := models.PrayerRequest{
		UserUID:     userUID,
		Title:       dummy.Title,
		Description: dummy.Description,
		Category:    dummy.Category,
	}
	id, err := s.repo.CreatePrayer(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Read returns a single entry owned by the user.
func (s *PrayerService) Read(ctx context.Context, userUID string, id int) (*models.PrayerRequest, error) {
	entry, err := s.repo.ReadPrayer(ctx, userUID, id)
	if err != nil {
		return nil, ErrPrayerNotFound
	}
	return entry, nil
}

// List returns the user's entries narrowed by the filter.
func (s *PrayerService) List(ctx context.Context, userUID string, filter models.PrayerFilter) ([]*models.PrayerRequest, error) {
	const op = "prayer.List"

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	entries, err := s.repo.ListPrayers(ctx, userUID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// Update replaces the editable fields of an entry.
func (s *PrayerService) Update(ctx context.Context, userUID string, id int, dummy models.DummyPrayer) error {
	const op = "prayer.Update"

	entry := models.PrayerRequest{
		Title:       dummy.Title,
		Description: dummy.Description,
		Category:    dummy.Category,
	}
	affected, err := s.repo.UpdatePrayer(ctx, userUID, id, entry)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrPrayerNotFound
	}
	return nil
}

// Remove deletes an entry permanently.
func (s *PrayerService) Remove(ctx context.Context, userUID string, id int) error {
	const op = "prayer.Remove"

	affected, err := s.repo.RemovePrayer(ctx, userUID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrPrayerNotFound
	}
	return nil
}

// MarkAnswered marks an entry answered exactly once and returns the updated
// entry.
func (s *PrayerService) MarkAnswered(ctx context.Context, userUID string, id int) (*models.PrayerRequest, error) {
	const op = "prayer.MarkAnswered"

	affected, err := s.repo.MarkPrayerAnswered(ctx, userUID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		// Either the entry is missing or it was already answered.
		entry, err := s.repo.ReadPrayer(ctx, userUID, id)
		if err != nil {
			return nil, ErrPrayerNotFound
		}
		if entry.Answered {
			return nil, ErrAlreadyAnswered
		}
		return nil, ErrPrayerNotFound
	}
	entry, err := s.repo.ReadPrayer(ctx, userUID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}
