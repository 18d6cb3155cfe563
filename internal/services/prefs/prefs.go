// Package prefs stores per-user client settings as key-value pairs.
package prefs

import (
	"context"
	"fmt"

	"github.com/selah-app/selah-backend/internal/models"
)

// Repository describes the storage contract for preferences.
type Repository interface {
	UpsertPreference(ctx context.Context, pref models.Preference) error
	ListPreferences(ctx context.Context, userUID string) ([]*models.Preference, error)
}

// PrefsService handles preference reads and upserts.
type PrefsService struct {
	repo Repository
}

// New creates a PrefsService.
func New(repo Repository) *PrefsService {
	return &PrefsService{repo: repo}
}

// Set upserts one preference. The last write wins.
func (s *PrefsService) Set(ctx context.Context, userUID, key, value string) error {
	const op = "prefs.Set"

	err := s.repo.UpsertPreference(ctx, models.Preference{
		UserUID: userUID,
		Key:     key,
		Value:   value,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List returns all preferences of a user as a key-value map.
func (s *PrefsService) List(ctx context.Context, userUID string) (map[string]string, error) {
	const op = "prefs.List"

	prefs, err := s.repo.ListPreferences(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make(map[string]string, len(prefs))
	for _, p := range prefs {
		result[p.Key] = p.Value
	}
	return result, nil
}
