package sender

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/selah-app/selah-backend/internal/lib/smtp"
	"github.com/selah-app/selah-backend/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) From() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func happyTransport(t *testing.T, wantRecipient string) *MockTransport {
	t.Helper()

	writer := new(MockSMTPWriter)
	writer.On("Write", mock.Anything).Return(1, nil)
	writer.On("Close").Return(nil)

	client := new(MockSMTPClient)
	client.On("Mail", "selah@example.com").Return(nil)
	client.On("Rcpt", wantRecipient).Return(nil)
	client.On("Data").Return(writer, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	transport := new(MockTransport)
	transport.On("From").Return("selah@example.com")
	transport.On("Connect").Return(client, nil)
	return transport
}

func TestSendTrialExpiring(t *testing.T) {
	event := models.TrialExpiringEvent{
		Email:    "grace@example.com",
		Username: "grace",
		TrialEnd: "2026-09-05",
	}
	body, err := json.Marshal(event)
	assert.NoError(t, err)

	transport := happyTransport(t, "grace@example.com")
	svc := NewSenderService(newNoopLogger(), transport)

	assert.NoError(t, svc.SendTrialExpiring(body))
	transport.AssertExpectations(t)
}

func TestSendTrialExpiring_BadPayload(t *testing.T) {
	svc := NewSenderService(newNoopLogger(), new(MockTransport))
	err := svc.SendTrialExpiring([]byte("{not json"))
	assert.Error(t, err)
}

func TestSendPremiumLapsed(t *testing.T) {
	event := models.PremiumLapsedEvent{
		Email:     "grace@example.com",
		Username:  "grace",
		Plan:      models.PlanMonthly,
		PeriodEnd: "2026-08-20",
	}
	body, err := json.Marshal(event)
	assert.NoError(t, err)

	transport := happyTransport(t, "grace@example.com")
	svc := NewSenderService(newNoopLogger(), transport)

	assert.NoError(t, svc.SendPremiumLapsed(body))
	transport.AssertExpectations(t)
}

func TestSendPasswordReset(t *testing.T) {
	event := models.PasswordResetEvent{
		Email:    "grace@example.com",
		Username: "grace",
		Token:    "reset-token",
	}
	body, err := json.Marshal(event)
	assert.NoError(t, err)

	transport := happyTransport(t, "grace@example.com")
	svc := NewSenderService(newNoopLogger(), transport)

	assert.NoError(t, svc.SendPasswordReset(body))
	transport.AssertExpectations(t)
}

func TestSendEmail_ConnectFailure(t *testing.T) {
	event := models.PasswordResetEvent{Email: "grace@example.com", Username: "grace", Token: "x"}
	body, err := json.Marshal(event)
	assert.NoError(t, err)

	transport := new(MockTransport)
	transport.On("From").Return("selah@example.com")
	transport.On("Connect").Return(nil, errors.New("dial tcp: connection refused"))

	svc := NewSenderService(newNoopLogger(), transport)
	assert.Error(t, svc.SendPasswordReset(body))
}
