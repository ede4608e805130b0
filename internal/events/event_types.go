package events

import (
	"time"

	"github.com/spec-kit/hr-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDepartmentChanged  EventType = "department.changed"
	EventDesignationChanged EventType = "designation.changed"
	EventEmployeeChanged    EventType = "employee.changed"
	EventPolicyChanged      EventType = "policy.changed"
	EventTaskChanged        EventType = "task.changed"
)

// AllTypes lists every event type in a stable order.
var AllTypes = []EventType{
	EventDepartmentChanged,
	EventDesignationChanged,
	EventEmployeeChanged,
	EventPolicyChanged,
	EventTaskChanged,
}

// Action describes what happened to the entity.
type Action string

const (
	ActionCreated    Action = "created"
	ActionUpdated    Action = "updated"
	ActionDeleted    Action = "deleted"
	ActionReassigned Action = "reassigned"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"userId,omitempty"`
	Name   string      `json:"name,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFrom builds an Actor for a console user. A nil user yields the system actor.
func ActorFrom(user *domain.ConsoleUser) Actor {
	if user == nil {
		return Actor{Name: "system"}
	}
	return Actor{UserID: user.ID, Name: user.Name, Role: user.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  string    `json:"entityId"`
	Action    Action    `json:"action"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// ReassignedPayload accompanies reassign-delete events.
type ReassignedPayload struct {
	TargetID string `json:"targetId"`
}

// SectionPayload names the employee profile section that changed.
type SectionPayload struct {
	Section string `json:"section"`
}
