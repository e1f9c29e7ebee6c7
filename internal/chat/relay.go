package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Relay ties the process-local Registry to the cross-process Bridge. The
// first local subscriber on a channel opens one bridge subscription, the
// last one out closes it; delivered payloads are handed to every local
// client exactly once.
type Relay struct {
	registry *Registry
	bridge   Bridge

	mu    sync.Mutex
	refs  map[string]int
	stops map[string]func()
}

func NewRelay(bridge Bridge) *Relay {
	return &Relay{
		registry: NewRegistry(),
		bridge:   bridge,
		refs:     make(map[string]int),
		stops:    make(map[string]func()),
	}
}

// Join registers the client on the channel and ensures the bridge
// subscription for it exists.
func (r *Relay) Join(ctx context.Context, channel string, c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs[channel] == 0 {
		stop, err := r.bridge.Subscribe(ctx, channel, func(payload []byte) {
			r.deliver(channel, payload)
		}, func() {
			r.dropChannel(channel)
		})
		if err != nil {
			return err
		}
		r.stops[channel] = stop
	}
	r.refs[channel]++
	r.registry.Subscribe(channel, c)
	return nil
}

// Leave removes the client and drops the bridge subscription when it was
// the channel's last local subscriber. Idempotent: a second Leave for the
// same client is a no-op.
func (r *Relay) Leave(channel string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registry.Has(channel, c) {
		return
	}
	r.registry.Unsubscribe(channel, c)

	r.refs[channel]--
	if r.refs[channel] <= 0 {
		delete(r.refs, channel)
		if stop := r.stops[channel]; stop != nil {
			stop()
		}
		delete(r.stops, channel)
	}
}

// Publish sends via the bridge. Local delivery happens through the
// subscription callback like delivery from any other process, so the
// sender receives its own message as an echo.
func (r *Relay) Publish(ctx context.Context, channel string, payload []byte) error {
	return r.bridge.Publish(ctx, channel, payload)
}

func (r *Relay) deliver(channel string, payload []byte) {
	for _, c := range r.registry.Connections(channel) {
		c.Send(payload)
	}
}

// dropChannel runs when a bridge subscription dies underneath us. Every
// local client on the channel is closed so nobody sits on a socket that
// can no longer receive.
func (r *Relay) dropChannel(channel string) {
	r.mu.Lock()
	delete(r.refs, channel)
	delete(r.stops, channel)
	clients := r.registry.Connections(channel)
	for _, c := range clients {
		r.registry.Unsubscribe(channel, c)
	}
	r.mu.Unlock()

	if len(clients) > 0 {
		log.Warn().Str("channel", channel).Int("clients", len(clients)).Msg("bridge subscription lost, closing clients")
	}
	for _, c := range clients {
		c.close()
	}
}
