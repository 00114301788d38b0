package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	// Wait blocks until every handler started by Publish so far has returned.
	Wait()
}

// Executor runs jobs off the caller's goroutine. Submit reports false when it did not accept the job.
type Executor interface {
	Submit(job func()) bool
}

// inMemoryDispatcher fans events out to in-process handlers.
// Without an executor handlers run inline; with one they run in the background.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	executor  Executor
	logger    *zap.Logger
	inflight  sync.WaitGroup
}

// NewInMemoryDispatcher creates a synchronous dispatcher.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	return NewAsyncDispatcher(nil, logger)
}

// NewAsyncDispatcher creates a dispatcher whose handlers run on executor.
// Publish returns before handlers finish and never reports handler errors.
// When executor refuses a job the handlers run on the publisher's goroutine, so a saturated
// executor slows publishers down instead of losing events.
func NewAsyncDispatcher(executor Executor, logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		executor:  executor,
		logger:    logger,
	}
}

// Publish invokes handlers for the given event. Handler errors are logged and never returned.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	if d.executor == nil {
		d.run(ctx, event, handlers)
		return nil
	}

	// The request context is finished long before background handlers are.
	jobCtx := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	ok := d.executor.Submit(func() {
		defer d.inflight.Done()
		d.run(jobCtx, event, handlers)
	})
	if !ok {
		d.logger.Warn("executor saturated, running handlers inline",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID))
		d.run(jobCtx, event, handlers)
		d.inflight.Done()
	}
	return nil
}

func (d *inMemoryDispatcher) run(ctx context.Context, event Event, handlers []EventHandler) {
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Int64("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func (d *inMemoryDispatcher) Wait() {
	d.inflight.Wait()
}
