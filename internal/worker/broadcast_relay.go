package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Relay forwards broadcasts from a shared channel to local clients until ctx
// is cancelled.
type Relay interface {
	Relay(ctx context.Context) error
}

const relayRetryDelay = 2 * time.Second

// StartBroadcastRelay runs relay in the background, resubscribing after
// failures. The returned channel is closed once the loop has stopped.
func StartBroadcastRelay(ctx context.Context, relay Relay, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if relay == nil {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		for {
			err := relay.Relay(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.Warn("broadcast relay stopped, retrying", zap.Error(err), zap.Duration("delay", relayRetryDelay))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(relayRetryDelay):
			}
		}
	}()
	return done
}
