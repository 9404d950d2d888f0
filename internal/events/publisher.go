package events

import (
	"sync"

	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/saga"
	"github.com/cobaltdesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

// LogPublisher writes lifecycle events to the structured log.
type LogPublisher struct {
	logger *logging.Logger
}

// NewLogPublisher creates a publisher backed by the structured log
func NewLogPublisher(logger *logging.Logger) *LogPublisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogPublisher{logger: logger.Named("events")}
}

func (p *LogPublisher) Publish(event types.Event) {
	p.logger.Info("lifecycle event",
		zap.String("type", string(event.Type)),
		zap.Any("payload", event.Payload))
}

// Multi fans one event out to several publishers in order.
type Multi struct {
	publishers []saga.Publisher
}

// NewMulti creates a fan-out publisher
func NewMulti(publishers ...saga.Publisher) *Multi {
	return &Multi{publishers: publishers}
}

func (m *Multi) Publish(event types.Event) {
	for _, p := range m.publishers {
		p.Publish(event)
	}
}

// Async decouples publishing from delivery: events are queued on a channel
// and forwarded by a single goroutine, so a slow subscriber never blocks the
// orchestrator and delivery order is preserved. When the queue is full the
// event is dropped, publishing is fire-and-forget.
type Async struct {
	inner  saga.Publisher
	queue  chan types.Event
	done   chan struct{}
	logger *logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewAsync wraps a publisher with a buffered delivery queue
func NewAsync(inner saga.Publisher, buffer int, logger *logging.Logger) *Async {
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &Async{
		inner:  inner,
		queue:  make(chan types.Event, buffer),
		done:   make(chan struct{}),
		logger: logger.Named("events-async"),
	}
	go a.deliver()
	return a
}

func (a *Async) Publish(event types.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.logger.Warn("publish after close, dropping event",
			zap.String("type", string(event.Type)))
		return
	}
	select {
	case a.queue <- event:
	default:
		a.logger.Warn("event queue full, dropping event",
			zap.String("type", string(event.Type)))
	}
}

// Close drains the queue and stops the delivery goroutine. Later Publish
// calls are dropped, not panicked on. Safe to call more than once.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	close(a.queue)
	<-a.done
}

func (a *Async) deliver() {
	defer close(a.done)
	for event := range a.queue {
		a.inner.Publish(event)
	}
}
