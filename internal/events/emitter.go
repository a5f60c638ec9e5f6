package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEmitter stores registered handlers in memory and dispatches events
// to them synchronously, in registration order.
type InMemoryEmitter struct {
	handlers map[uint64]Handler
	order    []uint64
	nextID   uint64
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEmitter creates a new instance of InMemoryEmitter.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	return &InMemoryEmitter{
		handlers: make(map[uint64]Handler),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// Subscribe adds a handler and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (e *InMemoryEmitter) Subscribe(handler Handler) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.handlers[id] = handler
	e.order = append(e.order, id)
	e.logger.Debug("registered event handler", "handler_count", len(e.handlers))

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.handlers[id]; !ok {
			return
		}
		delete(e.handlers, id)
		for i, v := range e.order {
			if v == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
		e.logger.Debug("removed event handler", "handler_count", len(e.handlers))
	}
}

// HandlerCount reports how many handlers are registered.
func (e *InMemoryEmitter) HandlerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers)
}

// Emit publishes the given event to all registered handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEmitter) Emit(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]Handler, 0, len(e.order))
	for _, id := range e.order {
		handlers = append(handlers, e.handlers[id])
	}
	e.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
