package telemetry

import (
	"fmt"
	"sync"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
)

type fakeConn struct {
	id      domain.ConnectionID
	streams map[domain.TrackID]domain.StreamID
	local   string
	remote  string
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: domain.ConnectionID(id), streams: map[domain.TrackID]domain.StreamID{}}
}

func (c *fakeConn) ID() domain.ConnectionID   { return c.id }
func (c *fakeConn) Native() core.NativeHandle { return c }
func (c *fakeConn) LocalDescription() string  { return c.local }
func (c *fakeConn) RemoteDescription() string { return c.remote }

func (c *fakeConn) StreamID(id domain.TrackID) (domain.StreamID, bool) {
	s, ok := c.streams[id]
	return s, ok
}

type fakeManager struct{ conns []core.MediaConnection }

func (m *fakeManager) Connections() []core.MediaConnection { return m.conns }

type fakeLocal struct {
	identity string
	added    []func(*domain.Track)
	enabled  []func(*domain.Track)
	disabled []func(*domain.Track)
}

func (l *fakeLocal) Identity() string                       { return l.identity }
func (l *fakeLocal) Alias() string                          { return "" }
func (l *fakeLocal) OnTrackAdded(fn func(*domain.Track))    { l.added = append(l.added, fn) }
func (l *fakeLocal) OnTrackEnabled(fn func(*domain.Track))  { l.enabled = append(l.enabled, fn) }
func (l *fakeLocal) OnTrackDisabled(fn func(*domain.Track)) { l.disabled = append(l.disabled, fn) }

func (l *fakeLocal) addTrack(t *domain.Track) {
	for _, fn := range l.added {
		fn(t)
	}
}

func (l *fakeLocal) setEnabled(t *domain.Track, on bool) {
	t.Enabled = on
	fns := l.disabled
	if on {
		fns = l.enabled
	}
	for _, fn := range fns {
		fn(t)
	}
}

type fakeSession struct {
	name         domain.RoomName
	topology     domain.Topology
	participants []*domain.Participant
	local        *fakeLocal
	manager      *fakeManager
	joined       []func(*domain.Participant)
	disconnected []func(error)
}

func newFakeSession(name string, topology domain.Topology, conns ...*fakeConn) *fakeSession {
	m := &fakeManager{}
	for _, c := range conns {
		m.conns = append(m.conns, c)
	}
	return &fakeSession{
		name:     domain.RoomName(name),
		topology: topology,
		local:    &fakeLocal{identity: "alice"},
		manager:  m,
	}
}

func (s *fakeSession) Name() domain.RoomName                   { return s.name }
func (s *fakeSession) Topology() domain.Topology               { return s.topology }
func (s *fakeSession) Participants() []*domain.Participant     { return s.participants }
func (s *fakeSession) LocalParticipant() core.LocalParticipant { return s.local }
func (s *fakeSession) Connections() core.ConnectionManager     { return s.manager }

func (s *fakeSession) OnParticipantConnected(fn func(*domain.Participant)) {
	s.joined = append(s.joined, fn)
}

func (s *fakeSession) OnDisconnected(fn func(error)) {
	s.disconnected = append(s.disconnected, fn)
}

func (s *fakeSession) addConn(c *fakeConn) {
	s.manager.conns = append(s.manager.conns, c)
}

func (s *fakeSession) join(p *domain.Participant) {
	s.participants = append(s.participants, p)
	for _, fn := range s.joined {
		fn(p)
	}
}

func (s *fakeSession) disconnect(cause error) {
	for _, fn := range s.disconnected {
		fn(cause)
	}
}

type fabricCall struct {
	handle core.NativeHandle
	label  string
	usage  core.FabricUsage
	room   domain.RoomName
}

type associateCall struct {
	handle core.NativeHandle
	userID string
	room   domain.RoomName
	ssrc   domain.StreamID
	kind   domain.TrackKind
}

type eventCall struct {
	handle core.NativeHandle
	event  core.FabricEvent
	room   domain.RoomName
}

type errorCall struct {
	handle    core.NativeHandle
	room      domain.RoomName
	fn        core.WebRTCFunction
	err       error
	localSDP  string
	remoteSDP string
}

type feedbackCall struct {
	room domain.RoomName
	fb   core.Feedback
}

// recordingMonitor records every call and answers callbacks with result.
type recordingMonitor struct {
	mu         sync.Mutex
	result     error
	fabrics    []fabricCall
	associates []associateCall
	events     []eventCall
	errors     []errorCall
	feedback   []feedbackCall
}

func (m *recordingMonitor) AddNewFabric(h core.NativeHandle, label string, usage core.FabricUsage, room domain.RoomName, cb core.ResultFunc) {
	m.mu.Lock()
	m.fabrics = append(m.fabrics, fabricCall{h, label, usage, room})
	res := m.result
	m.mu.Unlock()
	if cb != nil {
		cb(res)
	}
}

func (m *recordingMonitor) AssociateMstWithUserID(h core.NativeHandle, userID string, room domain.RoomName, ssrc domain.StreamID, kind domain.TrackKind, _ any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.associates = append(m.associates, associateCall{h, userID, room, ssrc, kind})
}

func (m *recordingMonitor) SendFabricEvent(h core.NativeHandle, ev core.FabricEvent, room domain.RoomName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventCall{h, ev, room})
}

func (m *recordingMonitor) ReportError(h core.NativeHandle, room domain.RoomName, fn core.WebRTCFunction, err error, localSDP, remoteSDP string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, errorCall{h, room, fn, err, localSDP, remoteSDP})
}

func (m *recordingMonitor) SendUserFeedback(room domain.RoomName, fb core.Feedback, cb core.ResultFunc) {
	m.mu.Lock()
	m.feedback = append(m.feedback, feedbackCall{room, fb})
	res := m.result
	m.mu.Unlock()
	if cb != nil {
		cb(res)
	}
}

func participant(identity string) *domain.Participant {
	p, err := domain.NewParticipant(identity, "")
	if err != nil {
		panic(fmt.Sprintf("participant %q: %v", identity, err))
	}
	return p
}
