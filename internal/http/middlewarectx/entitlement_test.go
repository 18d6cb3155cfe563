package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/models"
)

type EntitlementProviderMock struct {
	mock.Mock
}

func (m *EntitlementProviderMock) Snapshot(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error) {
	args := m.Called(ctx, userUID)
	snapshot, _ := args.Get(0).(*models.EntitlementSnapshot)
	return snapshot, args.Error(1)
}

func TestEntitlementMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		userUID        string
		snapshot       *models.EntitlementSnapshot
		snapshotErr    error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing user identity",
			userUID:        "",
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "provider error",
			userUID:        "uid-1",
			snapshotErr:    errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantCalled:     false,
		},
		{
			name:           "expired trial is denied",
			userUID:        "uid-1",
			snapshot:       &models.EntitlementSnapshot{Status: models.StatusTrialExpired},
			wantStatusCode: http.StatusForbidden,
			wantCalled:     false,
		},
		{
			name:           "canceled premium is denied",
			userUID:        "uid-1",
			snapshot:       &models.EntitlementSnapshot{Status: models.StatusCanceled},
			wantStatusCode: http.StatusForbidden,
			wantCalled:     false,
		},
		{
			name:           "active trial passes",
			userUID:        "uid-1",
			snapshot:       &models.EntitlementSnapshot{Status: models.StatusTrial, DaysRemaining: 3},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "premium passes",
			userUID:        "uid-1",
			snapshot:       &models.EntitlementSnapshot{Status: models.StatusPremium},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(EntitlementProviderMock)
			if tt.userUID != "" {
				provider.On("Snapshot", mock.Anything, tt.userUID).
					Return(tt.snapshot, tt.snapshotErr).Once()
			}

			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.EntitlementMiddleware(newNoopLogger(), provider)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			provider.AssertExpectations(t)
		})
	}
}
