package websocket

import "time"

// EventKind identifies the type of a realtime event
type EventKind string

const (
	// EventSnapshot carries an ordered snapshot of recent channel messages,
	// delivered once to a client right after it subscribes.
	EventSnapshot EventKind = "snapshot"

	EventMessageCreated   EventKind = "message.created"
	EventMessageUpdated   EventKind = "message.updated"
	EventMessageDeleted   EventKind = "message.deleted"
	EventMessagePinned    EventKind = "message.pinned"
	EventMessageUnpinned  EventKind = "message.unpinned"
	EventReactionUpdated  EventKind = "reaction.updated"
	EventQuestionAnswered EventKind = "question.answered"
)

// Event is the unit of delivery pushed to subscribed clients
type Event struct {
	Kind        EventKind   `json:"kind"`
	CommunityID int64       `json:"communityId"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload,omitempty"`
}

// NewEvent builds an event stamped with the current time
func NewEvent(kind EventKind, communityID int64, payload interface{}) *Event {
	return &Event{
		Kind:        kind,
		CommunityID: communityID,
		Timestamp:   time.Now(),
		Payload:     payload,
	}
}
