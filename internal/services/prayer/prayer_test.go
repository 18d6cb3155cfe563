package prayer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/selah-app/selah-backend/internal/models"
	"github.com/selah-app/selah-backend/internal/services/prayer"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreatePrayer(ctx context.Context, entry models.PrayerRequest) (int, error) {
	args := m.Called(ctx, entry)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadPrayer(ctx context.Context, userUID string, id int) (*models.PrayerRequest, error) {
	args := m.Called(ctx, userUID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrayerRequest), args.Error(1)
}

func (m *RepoMock) ListPrayers(ctx context.Context, userUID string, filter models.PrayerFilter) ([]*models.PrayerRequest, error) {
	args := m.Called(ctx, userUID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PrayerRequest), args.Error(1)
}

func (m *RepoMock) UpdatePrayer(ctx context.Context, userUID string, id int, entry models.PrayerRequest) (int, error) {
	args := m.Called(ctx, userUID, id, entry)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemovePrayer(ctx context.Context, userUID string, id int) (int, error) {
	args := m.Called(ctx, userUID, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) MarkPrayerAnswered(ctx context.Context, userUID string, id int) (int, error) {
	args := m.Called(ctx, userUID, id)
	return args.Int(0), args.Error(1)
}

func TestPrayerService_Create(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreatePrayer", mock.Anything, mock.MatchedBy(func(entry models.PrayerRequest) bool {
		return entry.UserUID == "user-uid" &&
			entry.Title == "For my family" &&
			entry.Category == "family" &&
			!entry.Answered
	})).Return(42, nil).Once()

	svc := prayer.New(repo)
	id, err := svc.Create(context.Background(), "user-uid", models.DummyPrayer{
		Title:       "For my family",
		Description: "Peace at home",
		Category:    "family",
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, id)
	repo.AssertExpectations(t)
}

func TestPrayerService_List_ClampsPagination(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListPrayers", mock.Anything, "user-uid", mock.MatchedBy(func(f models.PrayerFilter) bool {
		return f.Limit == 50 && f.Offset == 0
	})).Return([]*models.PrayerRequest{}, nil).Once()

	svc := prayer.New(repo)
	_, err := svc.List(context.Background(), "user-uid", models.PrayerFilter{Limit: 1000, Offset: -5})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPrayerService_Update(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name: "successful update",
			setupMocks: func(r *RepoMock) {
				r.On("UpdatePrayer", mock.Anything, "user-uid", 42, mock.Anything).Return(1, nil).Once()
			},
		},
		{
			name: "missing or foreign entry",
			setupMocks: func(r *RepoMock) {
				r.On("UpdatePrayer", mock.Anything, "user-uid", 42, mock.Anything).Return(0, nil).Once()
			},
			wantErr: prayer.ErrPrayerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := prayer.New(repo)
			err := svc.Update(context.Background(), "user-uid", 42, models.DummyPrayer{
				Title:    "Updated",
				Category: "health",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPrayerService_Remove(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RemovePrayer", mock.Anything, "user-uid", 42).Return(0, nil).Once()

	svc := prayer.New(repo)
	err := svc.Remove(context.Background(), "user-uid", 42)
	assert.ErrorIs(t, err, prayer.ErrPrayerNotFound)
}

func TestPrayerService_MarkAnswered(t *testing.T) {
	answeredAt := time.Now().UTC()

	t.Run("marks once and returns the entry", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("MarkPrayerAnswered", mock.Anything, "user-uid", 42).Return(1, nil).Once()
		repo.On("ReadPrayer", mock.Anything, "user-uid", 42).Return(&models.PrayerRequest{
			ID:         42,
			UserUID:    "user-uid",
			Answered:   true,
			AnsweredAt: &answeredAt,
		}, nil).Once()

		svc := prayer.New(repo)
		entry, err := svc.MarkAnswered(context.Background(), "user-uid", 42)
		assert.NoError(t, err)
		assert.True(t, entry.Answered)
		assert.NotNil(t, entry.AnsweredAt)
	})

	t.Run("second mark reports already answered", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("MarkPrayerAnswered", mock.Anything, "user-uid", 42).Return(0, nil).Once()
		repo.On("ReadPrayer", mock.Anything, "user-uid", 42).Return(&models.PrayerRequest{
			ID:       42,
			Answered: true,
		}, nil).Once()

		svc := prayer.New(repo)
		_, err := svc.MarkAnswered(context.Background(), "user-uid", 42)
		assert.ErrorIs(t, err, prayer.ErrAlreadyAnswered)
	})

	t.Run("missing entry", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("MarkPrayerAnswered", mock.Anything, "user-uid", 42).Return(0, nil).Once()
		repo.On("ReadPrayer", mock.Anything, "user-uid", 42).
			Return(nil, errors.New("not found")).Once()

		svc := prayer.New(repo)
		_, err := svc.MarkAnswered(context.Background(), "user-uid", 42)
		assert.ErrorIs(t, err, prayer.ErrPrayerNotFound)
	})
}
