// Package telemetry binds a communication session to a quality-monitoring
// integration: it registers a fabric per media connection, forwards mute and
// termination events, and classifies session errors before reporting them.
package telemetry

import (
	"errors"
	"sync"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNoConnection = errors.New("session has no media connection")

type Option func(*Binder)

// WithPairing replaces DiscoveryOrderPairing in peer-to-peer sessions.
func WithPairing(p PairingStrategy) Option {
	return func(b *Binder) { b.pairing = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Binder) { b.logger = l }
}

// WithLocalIdentity overrides the identity used for track association.
func WithLocalIdentity(id string) Option {
	return func(b *Binder) { b.localID = id }
}

func WithFabricUsage(u core.FabricUsage) Option {
	return func(b *Binder) { b.usage = u }
}

// Binder observes one session and translates its lifecycle into monitor calls.
type Binder struct {
	session  core.Session
	topology domain.Topology
	name     domain.RoomName
	monitor  core.Monitor

	causes  *CauseTable
	tracker *ConnectionTracker
	pairing PairingStrategy
	usage   core.FabricUsage
	localID string
	logger  zerolog.Logger

	mu      sync.Mutex
	current core.MediaConnection
}

// New registers the initial fabrics and subscribes to session notifications.
// In group topology the session must already hold its server connection.
func New(session core.Session, topology domain.Topology, name domain.RoomName, monitor core.Monitor, opts ...Option) (*Binder, error) {
	b := &Binder{
		session:  session,
		topology: topology,
		name:     name,
		monitor:  monitor,
		causes:   NewCauseTable(),
		tracker:  NewConnectionTracker(),
		pairing:  DiscoveryOrderPairing{},
		usage:    core.FabricUsageMultiplex,
	}
	b.logger = log.With().
		Str("module", "telemetry").
		Str("room", string(name)).
		Logger()
	for _, opt := range opts {
		opt(b)
	}
	if b.localID == "" {
		if lp := session.LocalParticipant(); lp != nil {
			b.localID = lp.Identity()
		}
	}

	b.logger.Debug().Str("topology", topology.String()).Msg("binding session")

	if topology == domain.TopologyPeerToPeer {
		for _, p := range session.Participants() {
			b.connectParticipant(p)
		}
		session.OnParticipantConnected(b.connectParticipant)
	} else {
		if err := b.connectServer(); err != nil {
			return nil, err
		}
		if lp := session.LocalParticipant(); lp != nil {
			lp.OnTrackAdded(b.onTrackAdded)
		}
	}

	if lp := session.LocalParticipant(); lp != nil {
		lp.OnTrackDisabled(b.onTrackDisabled)
		lp.OnTrackEnabled(b.onTrackEnabled)
	}
	session.OnDisconnected(b.onDisconnected)

	return b, nil
}

func (b *Binder) Monitor() core.Monitor     { return b.monitor }
func (b *Binder) Name() domain.RoomName     { return b.name }
func (b *Binder) Topology() domain.Topology { return b.topology }
func (b *Binder) Registered() int           { return b.tracker.Len() }
func (b *Binder) Causes() *CauseTable       { return b.causes }
func (b *Binder) LocalIdentity() string     { return b.localID }

func (b *Binder) currentConnection() core.MediaConnection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Binder) connectServer() error {
	conns := b.session.Connections().Connections()
	if len(conns) == 0 {
		return ErrNoConnection
	}
	mc := conns[0]
	b.tracker.RegisterIfNew(mc.ID())
	b.mu.Lock()
	b.current = mc
	b.mu.Unlock()

	// There is no single remote peer behind the server, so the room is the label.
	b.addFabric(mc, string(b.name))
	return nil
}

// connectParticipant registers fabrics for connections that appeared since the
// last scan, labeling them through the pairing strategy.
func (b *Binder) connectParticipant(p *domain.Participant) {
	if p == nil {
		return
	}
	var fresh []core.MediaConnection
	for _, mc := range b.session.Connections().Connections() {
		if !b.tracker.Has(mc.ID()) {
			fresh = append(fresh, mc)
		}
	}
	if len(fresh) == 0 {
		b.logger.Debug().Str("participant", p.Identity).Msg("no new connections for participant")
		return
	}

	for _, pr := range b.pairing.Pair(p, fresh) {
		if pr.Connection == nil || !b.tracker.RegisterIfNew(pr.Connection.ID()) {
			continue
		}
		b.mu.Lock()
		b.current = pr.Connection
		b.mu.Unlock()
		b.addFabric(pr.Connection, pr.RemoteLabel)
	}
}

func (b *Binder) addFabric(mc core.MediaConnection, remoteLabel string) {
	id := mc.ID()
	b.logger.Info().
		Str("connection_id", string(id)).
		Str("remote", remoteLabel).
		Msg("adding fabric")
	b.monitor.AddNewFabric(mc.Native(), remoteLabel, b.usage, b.name, func(err error) {
		if err != nil {
			b.logger.Warn().Err(err).Str("connection_id", string(id)).Msg("add fabric failed")
			return
		}
		b.logger.Debug().Str("connection_id", string(id)).Msg("add fabric success")
	})
}

func (b *Binder) onTrackAdded(t *domain.Track) {
	mc := b.currentConnection()
	if t == nil || mc == nil {
		return
	}
	ssrc, ok := mc.StreamID(t.ID)
	if !ok {
		b.logger.Debug().Str("track_id", string(t.ID)).Msg("track not negotiated yet, skipping association")
		return
	}
	b.monitor.AssociateMstWithUserID(mc.Native(), b.localID, b.name, ssrc, t.Kind, t.Render)
}

func (b *Binder) onTrackDisabled(t *domain.Track) {
	if t == nil {
		return
	}
	switch t.Kind {
	case domain.TrackKindAudio:
		b.sendFabricEvent(core.FabricEventAudioMute)
	case domain.TrackKindVideo:
		b.sendFabricEvent(core.FabricEventVideoPause)
	}
}

func (b *Binder) onTrackEnabled(t *domain.Track) {
	if t == nil {
		return
	}
	switch t.Kind {
	case domain.TrackKindAudio:
		b.sendFabricEvent(core.FabricEventAudioUnmute)
	case domain.TrackKindVideo:
		b.sendFabricEvent(core.FabricEventVideoResume)
	}
}

func (b *Binder) onDisconnected(cause error) {
	b.sendFabricEvent(core.FabricEventFabricTerminated)
	b.mayReportSessionError(cause)
}

func (b *Binder) sendFabricEvent(ev core.FabricEvent) {
	b.logger.Debug().Str("event", string(ev)).Msg("fabric event")
	for _, mc := range b.session.Connections().Connections() {
		b.monitor.SendFabricEvent(mc.Native(), ev, b.name)
	}
}

// ReportObtainingLocalMediaError reports a failure to acquire local media.
// It is never a signaling error and is always reported.
func (b *Binder) ReportObtainingLocalMediaError(err error) {
	b.reportError(core.FuncGetUserMedia, CategoryApplication, err)
}

// ReportError reports a session error if its code is known.
// nil errors and errors without a code are ignored.
func (b *Binder) ReportError(err error) {
	b.mayReportSessionError(err)
}

// SendUserFeedback forwards feedback with the room name as the conference id.
func (b *Binder) SendUserFeedback(fb core.Feedback, cb core.ResultFunc) {
	b.logger.Debug().Int("overall", fb.OverallRating).Msg("sending user feedback")
	b.monitor.SendUserFeedback(b.name, fb, cb)
}

func (b *Binder) mayReportSessionError(err error) {
	if err == nil {
		return
	}
	var coded core.CodedError
	if !errors.As(err, &coded) || coded.Code() == 0 {
		return
	}

	switch cat := b.causes.Classify(coded.Code()); cat {
	case CategorySignaling:
		b.reportError(core.FuncSignalingError, cat, err)
	case CategoryApplication:
		b.reportError(core.FuncApplicationLog, cat, err)
	default:
		b.logger.Debug().Int("code", coded.Code()).Msg("unclassified session error dropped")
	}
}

func (b *Binder) reportError(fn core.WebRTCFunction, cat Category, err error) {
	if cat == CategoryApplication {
		b.logger.Debug().Str("function", string(fn)).Err(err).Msg("report application event")
	} else {
		b.logger.Warn().Str("function", string(fn)).Err(err).Msg("report signaling error")
	}

	var (
		handle              core.NativeHandle
		localSDP, remoteSDP string
	)
	if mc := b.currentConnection(); mc != nil {
		handle = mc.Native()
		localSDP = mc.LocalDescription()
		remoteSDP = mc.RemoteDescription()
	}
	b.monitor.ReportError(handle, b.name, fn, err, localSDP, remoteSDP)
}
