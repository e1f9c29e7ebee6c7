package chat

import "sync"

// Registry tracks which live clients are subscribed to each channel within
// this process. Cross-process membership is the Bridge's concern; the
// registry only answers "who do I hand this payload to locally".
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]bool
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]map[*Client]bool)}
}

// Subscribe adds a client to a channel.
func (r *Registry) Subscribe(channel string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[channel]; !ok {
		r.channels[channel] = make(map[*Client]bool)
	}
	r.channels[channel][c] = true
}

// Unsubscribe removes a client from a channel. Removing a client that was
// never subscribed is a no-op.
func (r *Registry) Unsubscribe(channel string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.channels[channel]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(r.channels, channel)
	}
}

// Has reports whether the client is currently subscribed to the channel.
func (r *Registry) Has(channel string, c *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels[channel][c]
}

// Connections returns a snapshot of the clients on a channel. Callers may
// iterate it freely; it is never mutated by the registry.
func (r *Registry) Connections(channel string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := r.channels[channel]
	out := make([]*Client, 0, len(clients))
	for c := range clients {
		out = append(out, c)
	}
	return out
}

// Count returns the number of clients on a channel.
func (r *Registry) Count(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}
