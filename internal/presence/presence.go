// Package presence tracks whether participants are connected and when they
// were last active.
package presence

import (
	"context"
	"time"

	"github.com/matheus3301/pairchat/internal/bus"
)

// State is the connection state of a participant.
type State string

const (
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// Status is the presence record of one participant. A participant that never
// connected reads as disconnected with a zero LastActive.
type Status struct {
	ParticipantID string    `json:"participantId"`
	State         State     `json:"state"`
	LastActive    time.Time `json:"lastActive"`
}

// Online reports whether the participant is connected.
func (s Status) Online() bool {
	return s.State == StateConnected
}

// Store persists presence records and announces every change on the bus
// under bus.KindPresenceChanged, keyed by participant id.
type Store interface {
	Set(ctx context.Context, s Status) error
	Get(ctx context.Context, participant string) (Status, error)
	GetMany(ctx context.Context, participants []string) (map[string]Status, error)
	Close() error
}

func announce(b *bus.Bus, s Status) {
	b.Publish(bus.Event{
		Kind:      bus.KindPresenceChanged,
		Key:       s.ParticipantID,
		Timestamp: time.Now(),
		Payload:   s,
	})
}

func unknown(participant string) Status {
	return Status{ParticipantID: participant, State: StateDisconnected}
}
