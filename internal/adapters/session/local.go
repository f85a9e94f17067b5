package session

import (
	"errors"
	"sync"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrTrackNotFound  = errors.New("track not found")
	ErrTrackDuplicate = errors.New("track already published")
)

// LocalParticipant owns the local tracks. State changes are applied
// immediately and their notifications are queued on the room loop.
type LocalParticipant struct {
	meta *domain.Participant
	post func(func()) error

	mu       sync.RWMutex
	tracks   map[domain.TrackID]*domain.Track
	added    []func(*domain.Track)
	enabled  []func(*domain.Track)
	disabled []func(*domain.Track)
}

func newLocalParticipant(meta *domain.Participant, post func(func()) error) *LocalParticipant {
	return &LocalParticipant{
		meta:   meta,
		post:   post,
		tracks: make(map[domain.TrackID]*domain.Track),
	}
}

func (l *LocalParticipant) Identity() string { return l.meta.Identity }
func (l *LocalParticipant) Alias() string    { return l.meta.Alias }

func (l *LocalParticipant) OnTrackAdded(fn func(*domain.Track)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.added = append(l.added, fn)
}

func (l *LocalParticipant) OnTrackEnabled(fn func(*domain.Track)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = append(l.enabled, fn)
}

func (l *LocalParticipant) OnTrackDisabled(fn func(*domain.Track)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disabled = append(l.disabled, fn)
}

func (l *LocalParticipant) Track(id domain.TrackID) (*domain.Track, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tracks[id]
	return t, ok
}

// Tracks returns a snapshot of published track states.
func (l *LocalParticipant) Tracks() []domain.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Track, 0, len(l.tracks))
	for _, t := range l.meta.Tracks {
		out = append(out, *t)
	}
	return out
}

// Publish adds a track and announces it.
func (l *LocalParticipant) Publish(t *domain.Track) error {
	l.mu.Lock()
	if _, ok := l.tracks[t.ID]; ok {
		l.mu.Unlock()
		return ErrTrackDuplicate
	}
	l.tracks[t.ID] = t
	l.meta.Tracks = append(l.meta.Tracks, t)
	handlers := append([]func(*domain.Track){}, l.added...)
	l.mu.Unlock()

	log.Info().Str("module", "session").Str("track_id", string(t.ID)).Str("kind", string(t.Kind)).Msg("track published")
	return l.post(func() {
		for _, fn := range handlers {
			fn(t)
		}
	})
}

// SetEnabled flips a track's state. Setting the current state again is a no-op.
func (l *LocalParticipant) SetEnabled(id domain.TrackID, on bool) error {
	l.mu.Lock()
	t, ok := l.tracks[id]
	if !ok {
		l.mu.Unlock()
		return ErrTrackNotFound
	}
	if t.Enabled == on {
		l.mu.Unlock()
		return nil
	}
	t.Enabled = on
	src := l.disabled
	if on {
		src = l.enabled
	}
	handlers := append([]func(*domain.Track){}, src...)
	l.mu.Unlock()

	log.Info().Str("module", "session").Str("track_id", string(id)).Bool("enabled", on).Msg("track state changed")
	return l.post(func() {
		for _, fn := range handlers {
			fn(t)
		}
	})
}
