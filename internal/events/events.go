// Package events is the notification side channel of the ledger. The engine
// emits an Event after each meaningful state change; sinks consume them
// best-effort and can never influence the result of an operation.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event names emitted by the ledger engine.
const (
	IAPVerified        = "iap-verified"
	IAPRejected        = "iap-rejected"
	FreeCoinsCollected = "free-coins-collected"
	FreeCoinsError     = "free-coins-error"
	Debit              = "debit"
	DebitError         = "debit-error"
)

type Event struct {
	ID        uuid.UUID
	Name      string
	Identity  string
	Platform  string
	Receipt   string
	ProductID string
	Amount    int64
	Err       error
	At        time.Time
}

// New stamps an event with a fresh id and the current time.
func New(name, identity string) Event {
	return Event{
		ID:       uuid.New(),
		Name:     name,
		Identity: identity,
		At:       time.Now().UTC(),
	}
}

// Sink receives events. Emit must not block the caller for long and has no
// way to report failure back.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

type multi []Sink

// Multi fans an event out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
