package chat

import (
	"context"
	"sync"
)

// Bridge fans published payloads out to every current subscriber of a
// channel, including subscribers in other server processes sharing the
// same backend. Delivery is fire-and-forget, at most once; there is no
// durability or replay.
type Bridge interface {
	// Publish delivers payload to the channel's current subscribers.
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe invokes fn for every payload published to the channel until
	// the returned stop function is called. If the subscription dies on its
	// own (broker connection lost), onDrop is called once so the subscriber
	// can tear down instead of going deaf.
	Subscribe(ctx context.Context, channel string, fn func(payload []byte), onDrop func()) (stop func(), err error)
}

// LocalBridge is an in-process Bridge for tests and single-node setups.
type LocalBridge struct {
	mu   sync.RWMutex
	subs map[string]map[int]func([]byte)
	next int
}

func NewLocalBridge() *LocalBridge {
	return &LocalBridge{subs: make(map[string]map[int]func([]byte))}
}

func (b *LocalBridge) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	fns := make([]func([]byte), 0, len(b.subs[channel]))
	for _, fn := range b.subs[channel] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
	return nil
}

// Subscribe never invokes onDrop; an in-process bridge has no broker
// connection to lose.
func (b *LocalBridge) Subscribe(_ context.Context, channel string, fn func([]byte), _ func()) (func(), error) {
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]func([]byte))
	}
	b.subs[channel][id] = fn
	b.mu.Unlock()

	stop := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m := b.subs[channel]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(b.subs, channel)
			}
		}
	}
	return stop, nil
}
