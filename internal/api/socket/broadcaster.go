package socket

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LocalBroadcaster delivers notices to the clients of this instance only.
type LocalBroadcaster struct {
	hub *Hub
}

// NewLocalBroadcaster wraps hub.
func NewLocalBroadcaster(hub *Hub) *LocalBroadcaster {
	return &LocalBroadcaster{hub: hub}
}

// Broadcast encodes the notice and queues it for every client.
func (b *LocalBroadcaster) Broadcast(_ context.Context, event string, payload any) error {
	raw, err := EncodeNotice(event, payload)
	if err != nil {
		return err
	}
	b.hub.Broadcast(raw)
	return nil
}

// RedisBroadcaster publishes notices on a Redis channel so that every
// instance relays them to its own clients.
type RedisBroadcaster struct {
	client  redis.UniversalClient
	channel string
	hub     *Hub
	logger  *zap.Logger
}

// NewRedisBroadcaster builds a broadcaster publishing on channel.
func NewRedisBroadcaster(client redis.UniversalClient, channel string, hub *Hub, logger *zap.Logger) *RedisBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroadcaster{client: client, channel: channel, hub: hub, logger: logger}
}

// Broadcast publishes the notice. When Redis is unreachable the notice is
// still delivered to local clients.
func (b *RedisBroadcaster) Broadcast(ctx context.Context, event string, payload any) error {
	raw, err := EncodeNotice(event, payload)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.logger.Warn("redis publish failed, delivering locally",
			zap.String("event", event),
			zap.String("channel", b.channel),
			zap.Error(err))
		b.hub.Broadcast(raw)
		return nil
	}
	return nil
}

// Relay forwards every message published on the channel to the local hub
// until ctx is cancelled.
func (b *RedisBroadcaster) Relay(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("broadcast relay subscribed", zap.String("channel", b.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.hub.Broadcast([]byte(msg.Payload))
		}
	}
}
