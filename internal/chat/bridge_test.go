package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBridgeDeliversToAllSubscribers(t *testing.T) {
	b := NewLocalBridge()
	ctx := context.Background()

	var got1, got2 []byte
	stop1, err := b.Subscribe(ctx, "chat:global", func(p []byte) { got1 = p }, nil)
	require.NoError(t, err)
	defer stop1()
	stop2, err := b.Subscribe(ctx, "chat:global", func(p []byte) { got2 = p }, nil)
	require.NoError(t, err)
	defer stop2()

	require.NoError(t, b.Publish(ctx, "chat:global", []byte("hello")))

	assert.Equal(t, []byte("hello"), got1)
	assert.Equal(t, []byte("hello"), got2)
}

func TestLocalBridgeChannelIsolation(t *testing.T) {
	b := NewLocalBridge()
	ctx := context.Background()

	var calls int
	stop, err := b.Subscribe(ctx, "chat:party", func([]byte) { calls++ }, nil)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, b.Publish(ctx, "chat:global", []byte("hello")))
	assert.Equal(t, 0, calls)
}

func TestLocalBridgeStopEndsDelivery(t *testing.T) {
	b := NewLocalBridge()
	ctx := context.Background()

	var calls int
	stop, err := b.Subscribe(ctx, "chat:global", func([]byte) { calls++ }, nil)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "chat:global", []byte("one")))
	stop()
	require.NoError(t, b.Publish(ctx, "chat:global", []byte("two")))

	assert.Equal(t, 1, calls)
}
