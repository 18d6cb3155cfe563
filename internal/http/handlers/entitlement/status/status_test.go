package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Snapshot(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntitlementSnapshot), args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		withIdentity   bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "trial snapshot",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Snapshot", mock.Anything, "user123").Return(&models.EntitlementSnapshot{
					Status:            models.StatusTrial,
					DaysRemaining:     4,
					MessagesUsedToday: 2,
					MessageQuota:      10,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"entitlement":{"status":"trial","days_remaining":4,"messages_used_today":2,"message_quota":10}}}`,
		},
		{
			name:         "premium snapshot",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Snapshot", mock.Anything, "user123").Return(&models.EntitlementSnapshot{
					Status: models.StatusPremium,
					Plan:   models.PlanMonthly,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"entitlement":{"status":"premium","days_remaining":0,"messages_used_today":0,"message_quota":0,"plan":"monthly"}}}`,
		},
		{
			name:           "missing identity",
			withIdentity:   false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"missing user identity"}`,
		},
		{
			name:         "service error",
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("Snapshot", mock.Anything, "user123").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to read entitlement"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/entitlement", nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.withIdentity {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "user123")
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
