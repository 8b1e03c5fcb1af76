// Package activity records what happened in a pool: expenses added, edited and
// removed, members joining and leaving, settle ups.
//
// Events are written asynchronously by a Worker so a slow or failing write
// never fails the ledger operation that produced it.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	ExpenseCreated  = "expense.created"
	ExpenseUpdated  = "expense.updated"
	ExpenseDeleted  = "expense.deleted"
	PoolCreated     = "pool.created"
	PoolSettled     = "pool.settled"
	MemberAdded     = "pool.member_added"
	MemberRemoved   = "pool.member_removed"
	DefaultsUpdated = "pool.defaults_updated"
)

// Event is one entry of a pool's activity log.
type Event struct {
	ID        string
	Type      string
	PoolID    string
	ActorID   string
	Data      map[string]string
	CreatedAt int64
}

// EventOption configures an Event.
type EventOption func(*Event)

// WithPool sets the pool the event belongs to.
func WithPool(poolID string) EventOption {
	return func(e *Event) {
		e.PoolID = poolID
	}
}

// WithActor sets the member who caused the event.
func WithActor(memberID string) EventOption {
	return func(e *Event) {
		e.ActorID = memberID
	}
}

// WithData adds a key/value pair to the event payload.
func WithData(key, value string) EventOption {
	return func(e *Event) {
		e.Data[key] = value
	}
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string, opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      make(map[string]string),
		CreatedAt: time.Now().Unix(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Store persists events.
type Store interface {
	SaveEvent(ctx context.Context, e Event) error
	// ListEvents returns a pool's events newest first.
	ListEvents(ctx context.Context, poolID string, limit int) ([]Event, error)
}

// Recorder accepts events for recording.
type Recorder interface {
	Record(e Event)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Event)

// Record calls f(e).
func (f RecorderFunc) Record(e Event) {
	f(e)
}

// Discard is a Recorder that drops every event.
var Discard Recorder = RecorderFunc(func(Event) {})
