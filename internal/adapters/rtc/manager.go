package rtc

import (
	"sync"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/rs/zerolog/log"
)

// Manager keeps the session's media connections in insertion order.
type Manager struct {
	mu    sync.RWMutex
	order []domain.ConnectionID
	conns map[domain.ConnectionID]core.MediaConnection
}

func NewManager() *Manager {
	return &Manager{
		conns: make(map[domain.ConnectionID]core.MediaConnection),
	}
}

// Add stores mc; a connection with the same id is replaced in place.
func (m *Manager) Add(mc core.MediaConnection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := mc.ID()
	if _, ok := m.conns[id]; !ok {
		m.order = append(m.order, id)
	} else {
		log.Info().Str("module", "rtc").Str("connection_id", string(id)).Msg("replacing existing connection")
	}
	m.conns[id] = mc
}

func (m *Manager) Remove(id domain.ConnectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[id]; !ok {
		return
	}
	delete(m.conns, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Manager) Get(id domain.ConnectionID) (core.MediaConnection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mc, ok := m.conns[id]
	return mc, ok
}

func (m *Manager) Connections() []core.MediaConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.MediaConnection, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.conns[id])
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// CloseAll closes every connection that can be closed.
func (m *Manager) CloseAll() {
	for _, mc := range m.Connections() {
		if c, ok := mc.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
