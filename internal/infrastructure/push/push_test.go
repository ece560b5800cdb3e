package push

import (
	"context"
	"strings"
	"testing"

	"carereminder/internal/pkg/logger"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Send(ctx context.Context, token string, msg Message) error {
	return m.Called(ctx, token, msg).Error(0)
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		valid bool
	}{
		{"short opaque", "xyz", true},
		{"expo", "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]", true},
		{"fcm like", "dGVzdC1kZXZpY2U6QVBBOTFiSGhxZmZx", true},
		{"empty", "", false},
		{"whitespace", "abc def", false},
		{"newline", "abc\n", false},
		{"too long", strings.Repeat("a", maxTokenLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToken(tt.token)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidToken)
			}
		})
	}
}

func TestRateLimitedGateway_PassesThrough(t *testing.T) {
	next := new(mockGateway)
	msg := Message{Title: "t", Body: "b"}
	next.On("Send", mock.Anything, "xyz", msg).Return(nil).Twice()

	g := NewRateLimitedGateway(next, 100, 2)
	require.NoError(t, g.Send(context.Background(), "xyz", msg))
	require.NoError(t, g.Send(context.Background(), "xyz", msg))

	next.AssertExpectations(t)
}

func TestRateLimitedGateway_CancelledContextSkipsSend(t *testing.T) {
	next := new(mockGateway)
	g := NewRateLimitedGateway(next, 0.001, 1)

	next.On("Send", mock.Anything, "xyz", mock.Anything).Return(nil).Once()
	require.NoError(t, g.Send(context.Background(), "xyz", Message{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, g.Send(ctx, "xyz", Message{}))
	next.AssertNumberOfCalls(t, "Send", 1)
}

func TestLogGateway(t *testing.T) {
	base, hook := test.NewNullLogger()
	g := NewLogGateway(logger.FromLogrus(base))

	require.NoError(t, g.Send(context.Background(), "xyz", Message{Title: "Appointment Reminder: X"}))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Appointment Reminder: X", hook.LastEntry().Data["title"])
}
