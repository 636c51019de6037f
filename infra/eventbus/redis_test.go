package eventbus

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirasaad/fxconv/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisBus(t *testing.T) (*RedisEventBus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	bus, err := NewWithRedis("redis://"+mr.Addr(), "fxconv:test", 100, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus, mr
}

func TestRedisEventBus_EmitAppendsToStream(t *testing.T) {
	bus, mr := setupRedisBus(t)

	received := make(chan string, 1)
	bus.Register("test.event", func(_ context.Context, e eventbus.Event) error {
		received <- e.(testEvent).Message
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), testEvent{Message: "rates loaded"}))
	assert.Equal(t, "rates loaded", <-received)

	entries, err := mr.Stream("fxconv:test")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRedisEventBus_Recent(t *testing.T) {
	bus, _ := setupRedisBus(t)
	ctx := context.Background()

	require.NoError(t, bus.Emit(ctx, testEvent{Message: "first"}))
	require.NoError(t, bus.Emit(ctx, otherEvent{}))

	recent, err := bus.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "other.event", recent[0].Type)
	assert.Equal(t, "test.event", recent[1].Type)
	assert.NotEmpty(t, recent[0].ID)
}

func TestRedisEventBus_EmitFailureStillDispatchesLocally(t *testing.T) {
	bus, mr := setupRedisBus(t)
	called := false
	bus.Register("test.event", func(context.Context, eventbus.Event) error {
		called = true
		return nil
	})

	mr.Close()
	err := bus.Emit(context.Background(), testEvent{Message: "x"})
	require.Error(t, err)
	assert.True(t, called)
}

func TestNewWithRedis_Validation(t *testing.T) {
	_, err := NewWithRedis("", "stream", 0, discardLogger())
	require.Error(t, err)

	_, err = NewWithRedis("not a url", "stream", 0, discardLogger())
	require.Error(t, err)
}
