package chat

import (
	"context"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// RedisBridge implements Bridge over Redis pub/sub so multiple server
// instances sharing one Redis deliver consistently.
type RedisBridge struct {
	rdb *redis.Client
}

func NewRedisBridge(rdb *redis.Client) *RedisBridge {
	return &RedisBridge{rdb: rdb}
}

func (b *RedisBridge) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

func (b *RedisBridge) Subscribe(ctx context.Context, channel string, fn func([]byte), onDrop func()) (func(), error) {
	sub := b.rdb.Subscribe(ctx, channel)

	// Confirm the subscription before returning so no publish between
	// "subscribed" and "listening" is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	var stopped atomic.Bool
	ch := sub.Channel()
	go func() {
		for msg := range ch {
			fn([]byte(msg.Payload))
		}
		// The channel only closes on stop or a lost broker connection.
		if !stopped.Load() && onDrop != nil {
			onDrop()
		}
	}()

	stop := func() {
		stopped.Store(true)
		_ = sub.Close()
	}
	return stop, nil
}
