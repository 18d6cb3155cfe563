package verifycheckout

import (
	"bytes"
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
	"github.com/selah-app/selah-backend/internal/services/entitlement"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) VerifyCheckout(ctx context.Context, userUID, sessionID string) (*models.EntitlementSnapshot, error) {
	args := m.Called(ctx, userUID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntitlementSnapshot), args.Error(1)
}

func TestVerifyCheckoutHandler(t *testing.T) {
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
			name:         "paid session",
			requestBody:  `{"session_id":"cs_123"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("VerifyCheckout", mock.Anything, "user123", "cs_123").
					Return(&models.EntitlementSnapshot{
						Status: models.StatusPremium,
						Plan:   models.PlanMonthly,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"entitlement":{"status":"premium","days_remaining":0,"messages_used_today":0,"message_quota":0,"plan":"monthly"}}}`,
		},
		{
			name:         "unpaid session",
			requestBody:  `{"session_id":"cs_open"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("VerifyCheckout", mock.Anything, "user123", "cs_open").
					Return(nil, entitlement.ErrCheckoutNotPaid)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `{"status":"Error","error":"checkout session is not paid"}`,
		},
		{
			name:         "session of another user",
			requestBody:  `{"session_id":"cs_foreign"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("VerifyCheckout", mock.Anything, "user123", "cs_foreign").
					Return(nil, entitlement.ErrCheckoutOwnerMismatch)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"checkout session belongs to another user"}`,
		},
		{
			name:           "missing session id",
			requestBody:    `{}`,
			withIdentity:   true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field SessionID is a required field"}`,
		},
		{
			name:           "malformed JSON",
			requestBody:    "not a json",
			withIdentity:   true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "missing identity",
			requestBody:    `{"session_id":"cs_123"}`,
			withIdentity:   false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"missing user identity"}`,
		},
		{
			name:         "stripe error",
			requestBody:  `{"session_id":"cs_123"}`,
			withIdentity: true,
			setupMock: func(m *MockService) {
				m.On("VerifyCheckout", mock.Anything, "user123", "cs_123").
					Return(nil, errors.New("stripe: rate limited"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to verify checkout"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost,
				"/api/v1/billing/verify-checkout", bytes.NewReader([]byte(tt.requestBody)))
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
