package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-shop/internal/config"
	"github.com/spec-kit/farm-shop/internal/events"
	"github.com/spec-kit/farm-shop/internal/service"
)

type smsRecorder struct {
	mu    sync.Mutex
	sent  []string
	phone string
}

func (r *smsRecorder) Send(_ context.Context, phone, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phone = phone
	r.sent = append(r.sent, body)
	return nil
}

func TestNotificationWorker_DeliversInBackground(t *testing.T) {
	inner := events.NewInMemoryDispatcher()
	sms := &smsRecorder{}
	notifications := service.NewNotificationService(inner, zap.NewNop(), config.NotificationConfig{}, sms)
	w := StartNotificationWorker(notifications, inner, nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Publish(ctx, events.Event{
		Type:    events.EventPasswordResetRequested,
		Payload: events.PasswordResetRequestedPayload{Phone: "9876543210", Code: "123456"},
	}))
	cancel()

	w.Stop()
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "9876543210", sms.phone)
	assert.Contains(t, sms.sent[0], "123456")

	assert.ErrorIs(t, w.Publish(context.Background(), events.Event{Type: events.EventOrderPlaced}), ErrStopped)
	w.Stop()
}
