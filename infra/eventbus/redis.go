package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/fxconv/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus appends every event to a capped Redis stream and dispatches it to
// handlers registered in this process.
type RedisEventBus struct {
	client   *redis.Client
	stream   string
	maxLen   int64
	handlers map[string][]eventbus.HandlerFunc
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379/0")
// stream: name of the Redis stream events are appended to
func NewWithRedis(url, stream string, maxLen int64, logger *slog.Logger) (*RedisEventBus, error) {
	if url == "" || stream == "" {
		return nil, fmt.Errorf("redis event bus: url and stream are required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	return NewWithRedisClient(client, stream, maxLen, logger), nil
}

// NewWithRedisClient wraps an existing client.
func NewWithRedisClient(client *redis.Client, stream string, maxLen int64, logger *slog.Logger) *RedisEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisEventBus{
		client:   client,
		stream:   stream,
		maxLen:   maxLen,
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("component", "redis-event-bus"),
	}
}

// Register registers a handler for a specific event type.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to the Redis stream, then dispatches it locally.
// Local handlers still run when the stream write fails.
func (b *RedisEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	b.mu.RUnlock()
	defer dispatch(ctx, b.logger, handlers, event)

	env, err := eventbus.Seal(event, time.Now())
	if err != nil {
		b.logger.Error("failed to marshal event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: marshal failed: %w", err)
	}
	envBytes, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("redis event bus: envelope marshal failed: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(envBytes)},
	}
	if b.maxLen > 0 {
		args.MaxLen = b.maxLen
		args.Approx = true
	}
	if err := b.client.XAdd(ctx, args).Err(); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}

	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Recent returns up to n of the most recent stream entries, newest first.
func (b *RedisEventBus) Recent(ctx context.Context, n int) ([]eventbus.Envelope, error) {
	if n <= 0 {
		n = 100
	}
	msgs, err := b.client.XRevRangeN(ctx, b.stream, "+", "-", int64(n)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis event bus: read failed: %w", err)
	}
	out := make([]eventbus.Envelope, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["event"].(string)
		if !ok {
			continue
		}
		var env eventbus.Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			b.logger.Warn("skipping malformed stream entry", "id", msg.ID, "error", err)
			continue
		}
		env.ID = msg.ID
		out = append(out, env)
	}
	return out, nil
}

// Close closes the underlying client.
func (b *RedisEventBus) Close() error {
	return b.client.Close()
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
