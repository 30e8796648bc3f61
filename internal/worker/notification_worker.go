package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/farm-shop/internal/events"
	"github.com/spec-kit/farm-shop/internal/service"
)

// ErrStopped is returned by Publish after Stop.
var ErrStopped = errors.New("notification worker stopped")

const defaultBuffer = 64

// NotificationWorker is an events.Dispatcher that hands events to a
// background goroutine, so notification handlers never run on the request
// path.
type NotificationWorker struct {
	next   events.Dispatcher
	logger *zap.Logger
	queue  chan queuedEvent

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// StartNotificationWorker registers the notification handlers on next and
// starts delivering queued events to it.
func StartNotificationWorker(notifications *service.NotificationService, next events.Dispatcher, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		next:   next,
		logger: logger,
		queue:  make(chan queuedEvent, buffer),
		done:   make(chan struct{}),
	}
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	go w.run()
	return w
}

// Publish queues event. It blocks while the queue is full until ctx ends.
func (w *NotificationWorker) Publish(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers handler on the underlying dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.next.Subscribe(eventType, handler)
}

// Stop drains the queue and waits for the last handler to return.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for q := range w.queue {
		if err := w.next.Publish(q.ctx, q.event); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("event_type", string(q.event.Type)),
				zap.String("event_id", q.event.ID),
				zap.Error(err))
		}
	}
}
