package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrySubscribeUnsubscribe(t *testing.T) {
	r := NewRegistry()
	a := newClient(nil, nil, "chat:global")
	b := newClient(nil, nil, "chat:global")

	r.Subscribe("chat:global", a)
	r.Subscribe("chat:global", b)

	assert.Equal(t, 2, r.Count("chat:global"))
	assert.True(t, r.Has("chat:global", a))
	assert.Len(t, r.Connections("chat:global"), 2)

	r.Unsubscribe("chat:global", a)
	assert.Equal(t, 1, r.Count("chat:global"))
	assert.False(t, r.Has("chat:global", a))
	assert.True(t, r.Has("chat:global", b))
}

func TestRegistryUnsubscribeUnknownClient(t *testing.T) {
	r := NewRegistry()
	a := newClient(nil, nil, "chat:global")

	r.Unsubscribe("chat:global", a)
	r.Unsubscribe("chat:nowhere", a)

	assert.Equal(t, 0, r.Count("chat:global"))
}

func TestRegistryChannelsAreIndependent(t *testing.T) {
	r := NewRegistry()
	a := newClient(nil, nil, "chat:global")
	b := newClient(nil, nil, "chat:party")

	r.Subscribe("chat:global", a)
	r.Subscribe("chat:party", b)

	assert.Equal(t, 1, r.Count("chat:global"))
	assert.Equal(t, 1, r.Count("chat:party"))
	assert.False(t, r.Has("chat:party", a))
}
