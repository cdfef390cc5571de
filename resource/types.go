package resource

import (
	"github.com/google/uuid"
)

// Handle is an opaque reference to a value held for a host.
// The zero Handle is always invalid.
type Handle string

// NewHandle returns a fresh random handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// ParseHandle validates s as a handle. Hosts type handles by hand, so
// upper case and braces are accepted and normalised.
func ParseHandle(s string) (Handle, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return Handle(id.String()), nil
}

// Short returns the first eight characters of the handle.
func (h Handle) Short() string {
	if len(h) < 8 {
		return string(h)
	}
	return string(h[:8])
}

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event describes a value entering or leaving a table.
type Event struct {
	Value    any
	Handle   Handle
	TypeName string
	Type     EventType
}

// Observer receives lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by values that need cleanup when they
// leave a table.
type Dropper interface {
	Drop()
}
