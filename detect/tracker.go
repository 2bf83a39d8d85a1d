package detect

import (
	"sync"

	"github.com/realDragonium/mcwatch/snapshot"
)

// Tracker owns one State and serializes compare-and-update on it, so a
// scheduled poll and a reset can never interleave.
type Tracker struct {
	mu    sync.Mutex
	state State
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Compare runs Detect against the remembered state and stores the result.
func (tracker *Tracker) Compare(cur snapshot.Snapshot) []Event {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	next, events := Detect(tracker.state, cur)
	tracker.state = next
	return events
}

// Reset forgets everything; the next Compare is a first observation again.
func (tracker *Tracker) Reset() {
	tracker.mu.Lock()
	tracker.state = State{}
	tracker.mu.Unlock()
}

func (tracker *Tracker) State() State {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.state.copy()
}
