package rtc

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PacketStats receives per-kind RTP accounting from inbound tracks.
type PacketStats interface {
	RTPReceived(kind string, bytes int)
	RTPLost(kind string, n int)
}

type readFunc func() (*rtp.Packet, error)

type RemoteTrackState int32

const (
	RemoteTrackActive RemoteTrackState = iota
	RemoteTrackEnded
)

// RemoteTrack drains one inbound track and counts what arrives.
type RemoteTrack struct {
	ID   string
	Kind string

	read  readFunc
	stats PacketStats
	state atomic.Int32

	received atomic.Uint64
	lost     atomic.Uint64
	lastSeq  uint16
	started  bool

	cancel context.CancelFunc
}

// RemoteTrackStats is a point-in-time view of a RemoteTrack.
type RemoteTrackStats struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Received uint64 `json:"received"`
	Lost     uint64 `json:"lost"`
	Active   bool   `json:"active"`
}

func (t *RemoteTrack) GetState() RemoteTrackState {
	return RemoteTrackState(t.state.Load())
}

func (t *RemoteTrack) markEnded() {
	t.state.Store(int32(RemoteTrackEnded))
}

func (t *RemoteTrack) Stats() RemoteTrackStats {
	return RemoteTrackStats{
		ID:       t.ID,
		Kind:     t.Kind,
		Received: t.received.Load(),
		Lost:     t.lost.Load(),
		Active:   t.GetState() == RemoteTrackActive,
	}
}

// loop reads RTP packets until the track fails or ctx ends.
func (t *RemoteTrack) loop(ctx context.Context, logger *zerolog.Logger) {
	defer t.markEnded()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("receiver ctx done")
			return
		default:
		}
		pkt, err := t.read()
		if err != nil {
			logger.Info().Err(err).Msg("receiver read RTP stopped")
			return
		}
		t.observe(pkt)
	}
}

// observe counts the packet and any forward sequence gap before it.
// Duplicates and reordered packets do not move the sequence.
func (t *RemoteTrack) observe(pkt *rtp.Packet) {
	t.received.Add(1)
	if t.stats != nil {
		t.stats.RTPReceived(t.Kind, pkt.MarshalSize())
	}

	seq := pkt.SequenceNumber
	if !t.started {
		t.started = true
		t.lastSeq = seq
		return
	}
	gap := seq - t.lastSeq
	if gap == 0 || gap >= 0x8000 {
		return
	}
	if gap > 1 {
		missing := int(gap - 1)
		t.lost.Add(uint64(missing))
		if t.stats != nil {
			t.stats.RTPLost(t.Kind, missing)
		}
	}
	t.lastSeq = seq
}

// Receivers owns the drain loops of all inbound tracks of a connection.
type Receivers struct {
	stats PacketStats

	mu     sync.RWMutex
	tracks map[string]*RemoteTrack
}

func NewReceivers(stats PacketStats) *Receivers {
	return &Receivers{
		stats:  stats,
		tracks: make(map[string]*RemoteTrack),
	}
}

// Start drains a pion remote track. It fits WebRTCConnection.OnTrack.
func (r *Receivers) Start(ctx context.Context, track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	read := func() (*rtp.Packet, error) {
		pkt, _, err := track.ReadRTP()
		return pkt, err
	}
	r.start(ctx, track.ID(), track.Kind().String(), read)
}

func (r *Receivers) start(ctx context.Context, id, kind string, read readFunc) *RemoteTrack {
	logger := log.With().
		Str("module", "receiver").
		Str("track_id", id).
		Str("kind", kind).
		Logger()

	trackCtx, cancel := context.WithCancel(ctx)
	t := &RemoteTrack{
		ID:     id,
		Kind:   kind,
		read:   read,
		stats:  r.stats,
		cancel: cancel,
	}

	r.mu.Lock()
	if old, ok := r.tracks[id]; ok {
		logger.Info().Msg("replacing existing receiver for track")
		old.cancel()
	}
	r.tracks[id] = t
	r.mu.Unlock()

	logger.Info().Msg("starting receiver loop")
	go t.loop(trackCtx, &logger)
	return t
}

// Stop cancels a receiver and forgets it.
func (r *Receivers) Stop(id string) {
	r.mu.Lock()
	t, ok := r.tracks[id]
	if ok {
		delete(r.tracks, id)
	}
	r.mu.Unlock()
	if ok {
		t.cancel()
	}
}

func (r *Receivers) StopAll() {
	r.mu.Lock()
	tracks := r.tracks
	r.tracks = make(map[string]*RemoteTrack)
	r.mu.Unlock()
	for _, t := range tracks {
		t.cancel()
	}
}

// Snapshot lists receiver stats ordered by track id.
func (r *Receivers) Snapshot() []RemoteTrackStats {
	r.mu.RLock()
	out := make([]RemoteTrackStats, 0, len(r.tracks))
	for _, t := range r.tracks {
		out = append(out, t.Stats())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
