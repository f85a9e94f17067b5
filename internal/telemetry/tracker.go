package telemetry

import (
	"sync"

	"github.com/dkeye/VoiceStats/internal/domain"
)

// ConnectionTracker remembers every connection that already has a fabric.
// There is no removal: connections are never reused across sessions.
type ConnectionTracker struct {
	mu    sync.RWMutex
	known map[domain.ConnectionID]struct{}
}

func NewConnectionTracker() *ConnectionTracker {
	return &ConnectionTracker{known: make(map[domain.ConnectionID]struct{})}
}

// RegisterIfNew records id and reports whether it was seen for the first time.
func (t *ConnectionTracker) RegisterIfNew(id domain.ConnectionID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.known[id]; ok {
		return false
	}
	t.known[id] = struct{}{}
	return true
}

func (t *ConnectionTracker) Has(id domain.ConnectionID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.known[id]
	return ok
}

func (t *ConnectionTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.known)
}
