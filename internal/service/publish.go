package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
)

// publisher emits domain events. A nil dispatcher disables publishing.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, actor *domain.ConsoleUser, eventType events.EventType, action events.Action, entityID string, payload any) {
	if p.dispatcher == nil {
		return
	}
	event := events.Event{
		Type:     eventType,
		EntityID: entityID,
		Action:   action,
		Actor:    events.ActorFrom(actor),
		Payload:  payload,
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
