package history

import "sync"

// Journal is an in-memory Writer. Events are kept in append order until drained.
type Journal struct {
	mu     sync.Mutex
	events []*Event
}

// NewJournal creates an empty journal
func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Append(event *Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

// Events returns a copy of the buffered events
func (j *Journal) Events() []*Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*Event, len(j.events))
	copy(out, j.events)
	return out
}

// Drain returns the buffered events and empties the journal
func (j *Journal) Drain() []*Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.events
	j.events = nil
	return out
}

// Len returns the number of buffered events
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.events)
}
