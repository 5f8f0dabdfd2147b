// Package events turns engine state transitions into notifications for
// observers. Emission is fire-and-forget: emitters never report failure back
// to the engine.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Name identifies the kind of event.
type Name string

const (
	GroupCreated         Name = "group_created"
	MemberJoined         Name = "member_joined"
	GroupActivated       Name = "group_activated"
	ContributionReceived Name = "contribution_received"
	PayoutCompleted      Name = "payout_completed"
	GroupCompleted       Name = "group_completed"
	ContributionRefunded Name = "contribution_refunded"
	GroupCancelled       Name = "group_cancelled"
)

// Event is one notification.
type Event struct {
	ID      string
	Name    Name
	GroupID uint64
	// Actor is the principal whose call caused the event.
	Actor string
	// Subject is the principal the event is about, when it differs from
	// Actor (the payout recipient, the refunded member).
	Subject string
	// Amount is the value moved by the event, zero for pure state changes.
	Amount    int64
	Cycle     uint32
	Timestamp time.Time
}

// New returns an event with a fresh ID.
func New(name Name, groupID uint64, actor string, at time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		Name:      name,
		GroupID:   groupID,
		Actor:     actor,
		Timestamp: at,
	}
}

// Emitter receives events after the state change they describe is committed.
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, evt Event)

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, evt Event) {
	f(ctx, evt)
}

// Multi fans an event out to every emitter in order.
type Multi []Emitter

// Emit forwards evt to each non-nil emitter.
func (m Multi) Emit(ctx context.Context, evt Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(ctx, evt)
		}
	}
}

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(context.Context, Event) {})
