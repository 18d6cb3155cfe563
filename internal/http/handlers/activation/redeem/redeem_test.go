package redeem

import (
	"bytes"
	"context"
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
	"github.com/selah-app/selah-backend/internal/services/entitlement"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RedeemCode(ctx context.Context, userUID, code string) (*models.EntitlementSnapshot, error) {
	args := m.Called(ctx, userUID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntitlementSnapshot), args.Error(1)
}

func TestRedeemHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		requestBody    string
		withIdentity   bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:         "available code",
			requestBody:  `{"code":"SELAH-2026"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("RedeemCode", mock.Anything, "user123", "SELAH-2026").
					Return(&models.EntitlementSnapshot{
						Status: models.StatusPremium,
						Plan:   models.PlanYearly,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"entitlement":{"status":"premium","days_remaining":0,"messages_used_today":0,"message_quota":0,"plan":"yearly"}}}`,
		},
		{
			name:         "spent code",
			requestBody:  `{"code":"SELAH-2026"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("RedeemCode", mock.Anything, "user123", "SELAH-2026").
					Return(nil, entitlement.ErrCodeUnavailable)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"unknown or already redeemed code"}`,
		},
		{
			name:           "missing code",
			requestBody:    `{}`,
			withIdentity:   true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Code is a required field"}`,
		},
		{
			name:           "missing identity",
			requestBody:    `{"code":"SELAH-2026"}`,
			withIdentity:   false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"missing user identity"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost,
				"/api/v1/activation/redeem", bytes.NewReader([]byte(tt.requestBody)))
			req.Header.Set("Content-Type", "application/json")

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
