package rtc

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type WebRTCConnection struct {
	id     domain.ConnectionID
	pc     *webrtc.PeerConnection
	cancel context.CancelFunc

	mu       sync.RWMutex
	onICE    func(webrtc.ICECandidateInit)
	onTrack  func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
	onClosed func()
	onFailed func(error)
}

// Config builds a pion configuration from a list of STUN/TURN urls.
func Config(iceServers []string) webrtc.Configuration {
	if len(iceServers) == 0 {
		return webrtc.Configuration{}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: iceServers,
			},
		},
	}
}

// NewWebRTCConnection creates a peer connection; an empty id gets a random one.
func NewWebRTCConnection(cfg webrtc.Configuration, id domain.ConnectionID) (*WebRTCConnection, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	if id == "" {
		id = domain.ConnectionID(uuid.NewString())
	}
	return &WebRTCConnection{pc: pc, id: id}, nil
}

func (c *WebRTCConnection) ID() domain.ConnectionID   { return c.id }
func (c *WebRTCConnection) Native() core.NativeHandle { return c.pc }

// StreamID returns the SSRC of the sender carrying the local track.
func (c *WebRTCConnection) StreamID(trackID domain.TrackID) (domain.StreamID, bool) {
	for _, sender := range c.pc.GetSenders() {
		track := sender.Track()
		if track == nil || track.ID() != string(trackID) {
			continue
		}
		for _, enc := range sender.GetParameters().Encodings {
			if enc.SSRC != 0 {
				return domain.StreamID(strconv.FormatUint(uint64(enc.SSRC), 10)), true
			}
		}
	}
	return "", false
}

func (c *WebRTCConnection) LocalDescription() string {
	if d := c.pc.LocalDescription(); d != nil {
		return d.SDP
	}
	return ""
}

func (c *WebRTCConnection) RemoteDescription() string {
	if d := c.pc.RemoteDescription(); d != nil {
		return d.SDP
	}
	return ""
}

func (c *WebRTCConnection) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "webrtc").Str("connection_id", string(c.id)).Str("ice_state", s.String()).Msg("ICE state")
		if s == webrtc.ICEConnectionStateFailed {
			c.fail(domain.NewSessionError(domain.CodeMediaConnectionError, "ice connection failed"))
		}
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "webrtc").Str("connection_id", string(c.id)).Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed {
			cancel()
			c.mu.RLock()
			fn := c.onClosed
			c.mu.RUnlock()
			if fn != nil {
				fn()
			}
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		c.mu.RLock()
		fn := c.onICE
		c.mu.RUnlock()
		if cand != nil && fn != nil {
			fn(cand.ToJSON())
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "webrtc").
			Str("connection_id", string(c.id)).
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		c.mu.RLock()
		fn := c.onTrack
		c.mu.RUnlock()
		if fn != nil {
			fn(ctx, track, receiver)
		}
	})

	return nil
}

func (c *WebRTCConnection) fail(err error) {
	c.mu.RLock()
	fn := c.onFailed
	c.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// CreateAndSetOffer creates a local offer; candidates trickle via OnICECandidate.
func (c *WebRTCConnection) CreateAndSetOffer() (*webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, domain.NewSessionError(domain.CodeMediaClientLocalDescFailed, err.Error())
	}
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return nil, domain.NewSessionError(domain.CodeMediaClientLocalDescFailed, err.Error())
	}
	return &offer, nil
}

func (c *WebRTCConnection) ApplyAnswer(answer webrtc.SessionDescription) error {
	if err := c.pc.SetRemoteDescription(answer); err != nil {
		return domain.NewSessionError(domain.CodeMediaClientRemoteDescFailed, err.Error())
	}
	return nil
}

func (c *WebRTCConnection) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.pc != nil {
		if err := c.pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "webrtc").Str("connection_id", string(c.id)).Msg("close error")
		} else {
			log.Info().Str("module", "webrtc").Str("connection_id", string(c.id)).Msg("closed")
		}
	}
}

func (c *WebRTCConnection) IsClosed() bool {
	return c.pc.ConnectionState() == webrtc.PeerConnectionStateClosed
}

func (c *WebRTCConnection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

func (c *WebRTCConnection) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onICE = fn
}

// OnTrack sets application-level callback for remote tracks.
func (c *WebRTCConnection) OnTrack(fn func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTrack = fn
}

func (c *WebRTCConnection) OnClosed(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClosed = fn
}

// OnFailed is called with a coded media error when ICE fails.
func (c *WebRTCConnection) OnFailed(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFailed = fn
}

// AddLocalTrack attaches a local static RTP track to the PeerConnection.
func (c *WebRTCConnection) AddLocalTrack(track *webrtc.TrackLocalStaticRTP) (*webrtc.RTPSender, error) {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return nil, domain.NewSessionError(domain.CodeTrackInvalid, err.Error())
	}
	return sender, nil
}
