package bus

import "time"

// Event kinds published by the backend.
const (
	KindLogAppended     = "log.appended"
	KindLogCreated      = "log.created"
	KindTypingChanged   = "typing.changed"
	KindPresenceChanged = "presence.changed"
	KindStatusChanged   = "daemon.status_changed"
)

// NamespaceLog matches every log event.
const NamespaceLog = "log."

// Event represents a domain event published on the bus. Key scopes the event
// to one document (a conversation id or a participant id).
type Event struct {
	Kind      string
	Key       string
	Timestamp time.Time
	Payload   any
}
