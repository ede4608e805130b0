package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/events"
)

// NoticeBroadcaster fans a server-initiated message out to connected clients.
type NoticeBroadcaster interface {
	Broadcast(ctx context.Context, event string, payload any) error
}

// ChangeNotice is the payload of a `<resource>/changed` broadcast.
type ChangeNotice struct {
	ID     string        `json:"id"`
	Action events.Action `json:"action"`
	Actor  events.Actor  `json:"actor"`
	Data   any           `json:"data,omitempty"`
}

// noticeNames maps domain events to the broadcast event clients listen on.
var noticeNames = map[events.EventType]string{
	events.EventDepartmentChanged:  "department/changed",
	events.EventDesignationChanged: "designation/changed",
	events.EventEmployeeChanged:    "employee/changed",
	events.EventPolicyChanged:      "policy/changed",
	events.EventTaskChanged:        "task/changed",
}

// NoticeName returns the broadcast event for t.
func NoticeName(t events.EventType) (string, bool) {
	name, ok := noticeNames[t]
	return name, ok
}

// broadcastTimeout bounds one fan-out once it is detached from the request.
const broadcastTimeout = 2 * time.Second

// ChangeNotifier turns domain events into broadcasts so every open view can
// re-fetch its list.
type ChangeNotifier struct {
	dispatcher  events.Dispatcher
	broadcaster NoticeBroadcaster
	logger      *zap.Logger
}

// NewChangeNotifier creates the notifier.
func NewChangeNotifier(dispatcher events.Dispatcher, broadcaster NoticeBroadcaster, logger *zap.Logger) *ChangeNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeNotifier{
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *ChangeNotifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.handle)
}

func (n *ChangeNotifier) handle(ctx context.Context, event events.Event) error {
	name, ok := NoticeName(event.Type)
	if !ok || n.broadcaster == nil {
		return nil
	}
	n.logger.Debug("broadcasting change",
		zap.String("event_type", string(event.Type)),
		zap.String("entity_id", event.EntityID),
		zap.String("action", string(event.Action)))

	notice := ChangeNotice{ID: event.EntityID, Action: event.Action, Actor: event.Actor, Data: event.Payload}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), broadcastTimeout)
	defer cancel()
	if err := n.broadcaster.Broadcast(ctx, name, notice); err != nil {
		n.logger.Warn("broadcast failed", zap.String("event", name), zap.Error(err))
		return err
	}
	return nil
}
