package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bizops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Start after the bus has been stopped
var ErrBusStopped = errors.New("event bus stopped")

// DropHook is called for every event discarded because the queue was full
type DropHook func(ctx context.Context, event shared.DomainEvent)

// Option configures an InMemoryEventBus
type Option func(*InMemoryEventBus)

// WithAsyncQueue makes delivery asynchronous once the bus is started: events
// are placed on a queue of size slots drained by workers goroutines.
func WithAsyncQueue(size, workers int) Option {
	return func(b *InMemoryEventBus) {
		if size < 1 {
			size = 1
		}
		if workers < 1 {
			workers = 1
		}
		b.async = true
		b.queueSize = size
		b.workers = workers
	}
}

// WithDropHook registers a callback for dropped events
func WithDropHook(hook DropHook) Option {
	return func(b *InMemoryEventBus) {
		b.onDrop = hook
	}
}

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus implements EventBus with in-process pub/sub. Without an
// async queue, or before Start, events are delivered inline. With a queue,
// Publish never blocks: when the queue is full the event is dropped and
// logged at warn, so delivery is at most once.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	onDrop   DropHook

	async     bool
	queueSize int
	workers   int

	mu      sync.RWMutex
	queue   chan envelope
	running bool
	stopped bool
	wg      sync.WaitGroup

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...Option) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events to their handlers. Handler failures are logged
// and never returned to the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	// delivery outlives the request that published the events
	ctx = context.WithoutCancel(ctx)

	for _, event := range events {
		if event == nil {
			continue
		}
		if !b.enqueue(ctx, event) {
			b.dispatch(ctx, event)
		}
	}
	return nil
}

// enqueue hands event to the workers. It returns false when no worker is
// running and the caller must deliver inline.
func (b *InMemoryEventBus) enqueue(ctx context.Context, event shared.DomainEvent) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return false
	}
	select {
	case b.queue <- envelope{ctx: ctx, event: event}:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event queue full, dropping event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Int("queue_size", b.queueSize),
		)
		if b.onDrop != nil {
			b.onDrop(ctx, event)
		}
	}
	return true
}

// Subscribe registers a handler. Without explicit event types the
// handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the queue workers. Without an async queue it only marks
// the bus as started.
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return ErrBusStopped
	}
	if b.running || !b.async {
		return nil
	}

	b.queue = make(chan envelope, b.queueSize)
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(b.queue)
	}
	b.running = true
	b.logger.Info("event bus started",
		zap.Int("queue_size", b.queueSize),
		zap.Int("workers", b.workers),
	)
	return nil
}

// Stop closes the queue and waits for the workers to drain it, or for ctx
// to expire. Events published after Stop are delivered inline.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped",
			zap.Uint64("delivered", b.delivered.Load()),
			zap.Uint64("dropped", b.dropped.Load()),
		)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus drain interrupted: %w", ctx.Err())
	}
}

// Stats reports delivery counters
func (b *InMemoryEventBus) Stats() Stats {
	return Stats{
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
		Failed:    b.failed.Load(),
	}
}

// Stats are cumulative delivery counters of a bus
type Stats struct {
	Delivered uint64
	Dropped   uint64
	Failed    uint64
}

func (b *InMemoryEventBus) worker(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.dispatch(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.failed.Add(1)
			b.logger.Warn("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
			continue
		}
		b.delivered.Add(1)
	}
}

// dispatchToHandler converts a handler panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
