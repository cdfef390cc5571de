package resource

import (
	"errors"
	"slices"
	"sync"
)

var ErrClosed = errors.New("resource table closed")

// Entry is a value held in a table.
type Entry struct {
	Value    any
	TypeName string
}

// Table maps handles to host-held values. Iteration follows insertion
// order.
type Table struct {
	entries   map[Handle]Entry
	order     []Handle
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[Handle]Entry),
	}
}

// Insert adds a value under a new handle. typeName is informational and
// used by GetTyped.
func (t *Table) Insert(typeName string, value any) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return "", ErrClosed
	}
	h := NewHandle()
	t.entries[h] = Entry{Value: value, TypeName: typeName}
	t.order = append(t.order, h)
	t.mu.Unlock()

	t.notify(Event{
		Type:     EventCreated,
		Handle:   h,
		TypeName: typeName,
		Value:    value,
	})
	return h, nil
}

// Get retrieves a value by handle.
func (t *Table) Get(h Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[h]
	return e.Value, ok
}

// GetTyped retrieves a value only if it was inserted with typeName.
func (t *Table) GetTyped(h Handle, typeName string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[h]
	if !ok || e.TypeName != typeName {
		return nil, false
	}
	return e.Value, true
}

// Lookup resolves a possibly abbreviated handle: a full handle, or a
// prefix matching exactly one entry.
func (t *Table) Lookup(prefix string) (Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.entries[Handle(prefix)]; ok {
		return Handle(prefix), true
	}
	var found Handle
	for _, h := range t.order {
		if len(prefix) > 0 && len(h) >= len(prefix) && string(h[:len(prefix)]) == prefix {
			if found != "" {
				return "", false
			}
			found = h
		}
	}
	return found, found != ""
}

// Remove drops a value and returns it. Values implementing Dropper are
// dropped first.
func (t *Table) Remove(h Handle) (any, bool) {
	t.mu.Lock()
	e, ok := t.entries[h]
	if !ok {
		t.mu.Unlock()
		return nil, false
	}
	delete(t.entries, h)
	if i := slices.Index(t.order, h); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	t.mu.Unlock()

	if d, ok := e.Value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:     EventDropped,
		Handle:   h,
		TypeName: e.TypeName,
		Value:    e.Value,
	})
	return e.Value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of held values.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Each calls fn for every entry in insertion order until fn returns false.
// fn must not modify the table.
func (t *Table) Each(fn func(Handle, Entry) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, h := range t.order {
		if !fn(h, t.entries[h]) {
			return
		}
	}
}

// Clear drops all values.
func (t *Table) Clear() {
	t.mu.RLock()
	handles := slices.Clone(t.order)
	t.mu.RUnlock()
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close drops all values and rejects further inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.Clear()
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
