package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queued(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case p := <-c.send:
			out = append(out, p)
		default:
			return out
		}
	}
}

func TestRelayDeliversExactlyOncePerClient(t *testing.T) {
	r := NewRelay(NewLocalBridge())
	ctx := context.Background()

	a := newClient(nil, nil, "chat:global")
	b := newClient(nil, nil, "chat:global")
	require.NoError(t, r.Join(ctx, "chat:global", a))
	require.NoError(t, r.Join(ctx, "chat:global", b))

	require.NoError(t, r.Publish(ctx, "chat:global", []byte("hello")))

	gotA := queued(a)
	gotB := queued(b)
	require.Len(t, gotA, 1)
	require.Len(t, gotB, 1)
	assert.Equal(t, []byte("hello"), gotA[0])
	assert.Equal(t, []byte("hello"), gotB[0])
}

func TestRelayChannelIsolation(t *testing.T) {
	r := NewRelay(NewLocalBridge())
	ctx := context.Background()

	a := newClient(nil, nil, "chat:global")
	b := newClient(nil, nil, "chat:party")
	require.NoError(t, r.Join(ctx, "chat:global", a))
	require.NoError(t, r.Join(ctx, "chat:party", b))

	require.NoError(t, r.Publish(ctx, "chat:global", []byte("hello")))

	assert.Len(t, queued(a), 1)
	assert.Empty(t, queued(b))
}

func TestRelayLeaveIsIdempotent(t *testing.T) {
	r := NewRelay(NewLocalBridge())
	ctx := context.Background()

	a := newClient(nil, nil, "chat:global")
	b := newClient(nil, nil, "chat:global")
	require.NoError(t, r.Join(ctx, "chat:global", a))
	require.NoError(t, r.Join(ctx, "chat:global", b))

	r.Leave("chat:global", a)
	r.Leave("chat:global", a)

	require.NoError(t, r.Publish(ctx, "chat:global", []byte("still here")))
	assert.Empty(t, queued(a))
	assert.Len(t, queued(b), 1)
}

func TestRelayDropChannelClosesClients(t *testing.T) {
	r := NewRelay(NewLocalBridge())
	ctx := context.Background()

	a := newClient(nil, nil, "chat:global")
	require.NoError(t, r.Join(ctx, "chat:global", a))

	r.dropChannel("chat:global")

	assert.Equal(t, 0, r.registry.Count("chat:global"))
	select {
	case <-a.done:
	default:
		t.Fatal("client not closed after channel drop")
	}
}

func TestRelayLastLeaveReleasesBridgeSubscription(t *testing.T) {
	bridge := NewLocalBridge()
	r := NewRelay(bridge)
	ctx := context.Background()

	a := newClient(nil, nil, "chat:global")
	require.NoError(t, r.Join(ctx, "chat:global", a))
	r.Leave("chat:global", a)

	bridge.mu.RLock()
	defer bridge.mu.RUnlock()
	assert.Empty(t, bridge.subs["chat:global"])
}
