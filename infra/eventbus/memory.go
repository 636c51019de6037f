package eventbus

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/amirasaad/fxconv/pkg/eventbus"
)

// DefaultMemoryCapacity bounds how many envelopes the memory bus keeps for Recent.
const DefaultMemoryCapacity = 1000

// MemoryEventBus is a synchronous in-memory implementation of eventbus.Bus.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []eventbus.Envelope
	capacity  int
	seq       uint64
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
		capacity: DefaultMemoryCapacity,
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit records the event and dispatches it to all registered handlers for its type.
func (b *MemoryEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	env, err := eventbus.Seal(event, time.Now())
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.seq++
	env.ID = strconv.FormatUint(b.seq, 10)
	b.published = append(b.published, env)
	if len(b.published) > b.capacity {
		b.published = b.published[len(b.published)-b.capacity:]
	}
	handlers := b.handlers[event.Type()]
	b.mu.Unlock()

	dispatch(ctx, b.logger, handlers, event)
	return nil
}

// Recent returns up to n of the most recently emitted events, newest first.
func (b *MemoryEventBus) Recent(_ context.Context, n int) ([]eventbus.Envelope, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n <= 0 || n > len(b.published) {
		n = len(b.published)
	}
	out := make([]eventbus.Envelope, 0, n)
	for i := len(b.published) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.published[i])
	}
	return out, nil
}

// Published returns every recorded envelope, oldest first. This is useful for testing.
func (b *MemoryEventBus) Published() []eventbus.Envelope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]eventbus.Envelope, len(b.published))
	copy(out, b.published)
	return out
}

// ClearPublished clears the list of published events. This is useful for testing.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

func dispatch(ctx context.Context, logger *slog.Logger, handlers []eventbus.HandlerFunc, event eventbus.Event) {
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logger.Warn("event handler failed", "type", event.Type(), "error", err)
		}
	}
}

// Ensure MemoryEventBus implements the Bus interface.
var _ eventbus.Bus = (*MemoryEventBus)(nil)
