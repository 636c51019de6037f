package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/fxconv/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Message string `json:"message"`
}

func (e testEvent) Type() string { return "test.event" }

type otherEvent struct{}

func (otherEvent) Type() string { return "other.event" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryEventBus_EmitDispatchesByType(t *testing.T) {
	bus := NewWithMemory(discardLogger())

	var got []string
	bus.Register("test.event", func(_ context.Context, e eventbus.Event) error {
		got = append(got, e.(testEvent).Message)
		return nil
	})
	bus.Register("test.event", func(context.Context, eventbus.Event) error {
		return errors.New("handler errors are logged, not returned")
	})

	require.NoError(t, bus.Emit(context.Background(), testEvent{Message: "hello"}))
	require.NoError(t, bus.Emit(context.Background(), otherEvent{}))

	assert.Equal(t, []string{"hello"}, got)
	published := bus.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "test.event", published[0].Type)
	assert.Equal(t, "1", published[0].ID)

	var payload testEvent
	require.NoError(t, json.Unmarshal(published[0].Payload, &payload))
	assert.Equal(t, "hello", payload.Message)
}

func TestMemoryEventBus_RecentNewestFirst(t *testing.T) {
	bus := NewWithMemory(discardLogger())
	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Emit(context.Background(), testEvent{Message: m}))
	}

	recent, err := bus.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].ID)
	assert.Equal(t, "2", recent[1].ID)

	all, err := bus.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryEventBus_Capacity(t *testing.T) {
	bus := NewWithMemory(discardLogger())
	bus.capacity = 2
	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Emit(context.Background(), testEvent{Message: m}))
	}
	published := bus.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "2", published[0].ID)
}
