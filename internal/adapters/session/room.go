// Package session is an in-process model of a communication session.
// All notifications are delivered from the room's single event loop.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/VoiceStats/internal/adapters/rtc"
	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrRoomClosed = errors.New("room closed")

const eventQueueSize = 64

// Room implements core.Session.
type Room struct {
	name     domain.RoomName
	topology domain.Topology
	local    *LocalParticipant
	conns    *rtc.Manager

	mu     sync.RWMutex
	byID   map[string]*domain.Participant
	order  []string
	joined []func(*domain.Participant)
	left   []func(*domain.Participant)
	ended  []func(error)
	cause  error

	events     chan func()
	done       chan struct{}
	disconnect sync.Once
}

func NewRoom(name domain.RoomName, topology domain.Topology, local *domain.Participant) *Room {
	r := &Room{
		name:     name,
		topology: topology,
		conns:    rtc.NewManager(),
		byID:     make(map[string]*domain.Participant),
		events:   make(chan func(), eventQueueSize),
		done:     make(chan struct{}),
	}
	r.local = newLocalParticipant(local, r.post)
	return r
}

func (r *Room) Name() domain.RoomName                   { return r.name }
func (r *Room) Topology() domain.Topology               { return r.topology }
func (r *Room) LocalParticipant() core.LocalParticipant { return r.local }
func (r *Room) Connections() core.ConnectionManager     { return r.conns }

// Local returns the concrete local participant for publishing and muting.
func (r *Room) Local() *LocalParticipant { return r.local }

// Manager exposes the connection set for adapters that create connections.
func (r *Room) Manager() *rtc.Manager { return r.conns }

// Done is closed once the room has disconnected.
func (r *Room) Done() <-chan struct{} { return r.done }

// Run delivers notifications until ctx is done or the room disconnects.
// Disconnect handlers run last, after every queued notification.
func (r *Room) Run(ctx context.Context) {
	logger := log.With().Str("module", "session").Str("room", string(r.name)).Logger()
	logger.Info().Msg("room loop started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("room ctx done")
			r.Disconnect(nil)
			r.finish()
			return
		case fn := <-r.events:
			fn()
		case <-r.done:
			r.finish()
			logger.Info().Msg("room loop stopped")
			return
		}
	}
}

func (r *Room) finish() {
	r.drain()

	r.mu.RLock()
	handlers := append([]func(error){}, r.ended...)
	cause := r.cause
	r.mu.RUnlock()
	for _, fn := range handlers {
		fn(cause)
	}
}

func (r *Room) drain() {
	for {
		select {
		case fn := <-r.events:
			fn()
		default:
			return
		}
	}
}

// post queues fn for the event loop; after disconnect it is dropped.
func (r *Room) post(fn func()) error {
	select {
	case <-r.done:
		return ErrRoomClosed
	default:
	}
	select {
	case r.events <- fn:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) Participants() []*domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Room) Participant(identity string) (*domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[identity]
	return p, ok
}

func (r *Room) OnParticipantConnected(fn func(*domain.Participant)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined = append(r.joined, fn)
}

func (r *Room) OnParticipantDisconnected(fn func(*domain.Participant)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.left = append(r.left, fn)
}

func (r *Room) OnDisconnected(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, fn)
}

// AddParticipant records a remote participant and notifies subscribers.
// The local identity and already known identities are ignored.
func (r *Room) AddParticipant(p *domain.Participant) error {
	if p.Identity == r.local.Identity() {
		return nil
	}
	return r.post(func() {
		r.mu.Lock()
		if _, ok := r.byID[p.Identity]; ok {
			r.mu.Unlock()
			return
		}
		r.byID[p.Identity] = p
		r.order = append(r.order, p.Identity)
		handlers := append([]func(*domain.Participant){}, r.joined...)
		r.mu.Unlock()

		log.Info().Str("module", "session").Str("room", string(r.name)).Str("participant", p.Identity).Msg("participant connected")
		for _, fn := range handlers {
			fn(p)
		}
	})
}

func (r *Room) RemoveParticipant(identity string) error {
	return r.post(func() {
		r.mu.Lock()
		p, ok := r.byID[identity]
		if !ok {
			r.mu.Unlock()
			return
		}
		delete(r.byID, identity)
		for i, id := range r.order {
			if id == identity {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		handlers := append([]func(*domain.Participant){}, r.left...)
		r.mu.Unlock()

		log.Info().Str("module", "session").Str("room", string(r.name)).Str("participant", identity).Msg("participant disconnected")
		for _, fn := range handlers {
			fn(p)
		}
	})
}

// AddConnection registers a media connection with the session.
func (r *Room) AddConnection(mc core.MediaConnection) {
	r.conns.Add(mc)
}

// Disconnect ends the session once; later calls are no-ops.
func (r *Room) Disconnect(cause error) {
	r.disconnect.Do(func() {
		r.mu.Lock()
		r.cause = cause
		r.mu.Unlock()

		log.Info().Str("module", "session").Str("room", string(r.name)).AnErr("cause", cause).Msg("room disconnected")
		close(r.done)
	})
}
