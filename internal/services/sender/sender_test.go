package sender

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/greenspire/plant-rental/internal/lib/smtp"
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

func (m *MockTransport) GetSMTPUser() string {
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
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func setupHappyTransport(transport *MockTransport, captured *[]byte) {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("sender@greenspire.example")
	transport.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "sender@greenspire.example").Return(nil).Once()
	mockClient.On("Rcpt", "asha@example.com").Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) {
			*captured = args.Get(0).([]byte)
		}).Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
}

func TestSenderService_SendSubscriptionCreated(t *testing.T) {
	tests := []struct {
		name         string
		body         []byte
		setupMocks   func(*MockTransport, *[]byte)
		wantErr      bool
		wantContains []string
	}{
		{
			name: "success - welcome email with maintenance date",
			body: []byte(`{"email":"asha@example.com","name":"Asha","package_name":"Green Office",` +
				`"subscription_id":42,"next_maintenance_date":"2024-03-17T00:00:00Z"}`),
			setupMocks: setupHappyTransport,
			wantContains: []string{
				"To: asha@example.com",
				"Subject: Welcome to your GreenSpire plant subscription",
				"Green Office subscription #42",
				"17 Mar 2024",
			},
		},
		{
			name: "success - missing maintenance date falls back to soon",
			body: []byte(`{"email":"asha@example.com","name":"Asha","package_name":"Green Office",` +
				`"subscription_id":42}`),
			setupMocks:   setupHappyTransport,
			wantContains: []string{"scheduled for soon"},
		},
		{
			name:       "error - invalid message body",
			body:       []byte(`{not json`),
			setupMocks: func(_ *MockTransport, _ *[]byte) {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			var captured []byte
			tt.setupMocks(transport, &captured)
			svc := NewSenderService(transport, newNoopLogger())

			err := svc.SendSubscriptionCreated(tt.body)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				for _, want := range tt.wantContains {
					assert.True(t, strings.Contains(string(captured), want),
						"email should contain %q, got %s", want, captured)
				}
			}
			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_SendVisitConfirmed(t *testing.T) {
	transport := new(MockTransport)
	var captured []byte
	setupHappyTransport(transport, &captured)
	svc := NewSenderService(transport, newNoopLogger())

	body := []byte(`{"email":"asha@example.com","name":"Asha","package_name":"Green Office",` +
		`"subscription_id":42,"visit_id":5,"next_maintenance_date":"2024-03-24T00:00:00Z"}`)

	err := svc.SendVisitConfirmed(body)

	assert.NoError(t, err)
	assert.Contains(t, string(captured), "Subject: Your service visit is confirmed")
	assert.Contains(t, string(captured), "visit #5")
	assert.Contains(t, string(captured), "24 Mar 2024")
	transport.AssertExpectations(t)
}

func TestSenderService_Send_ConnectFailure(t *testing.T) {
	transport := new(MockTransport)
	transport.On("GetSMTPUser").Return("sender@greenspire.example")
	transport.On("Connect").Return(nil, assert.AnError).Once()
	svc := NewSenderService(transport, newNoopLogger())

	err := svc.Send("asha@example.com", "Re: your message", "hello")

	assert.Error(t, err)
	transport.AssertExpectations(t)
}
