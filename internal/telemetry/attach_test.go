package telemetry

import (
	"testing"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach_Validation(t *testing.T) {
	sess := newFakeSession("room", domain.TopologyGroup, newFakeConn("pc-1"))

	_, err := Attach(nil, &recordingMonitor{}, AttachOptions{})
	assert.ErrorIs(t, err, ErrNilSession)

	_, err = Attach(sess, nil, AttachOptions{})
	assert.ErrorIs(t, err, ErrNilMonitor)
}

func TestAttach_DerivesIdentityAndName(t *testing.T) {
	conn := newFakeConn("pc-1")
	conn.streams["mic"] = "99"
	sess := newFakeSession("standup", domain.TopologyGroup, conn)
	mon := &recordingMonitor{}

	b, err := Attach(sess, mon, AttachOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomName("standup"), b.Name())
	assert.Equal(t, "alice", b.LocalIdentity())
	assert.Equal(t, "standup", mon.fabrics[0].label)

	sess.local.addTrack(domain.NewTrack("mic", domain.TrackKindAudio))
	require.Len(t, mon.associates, 1)
	assert.Equal(t, "alice", mon.associates[0].userID)
}

func TestAttach_WrapsConstructionError(t *testing.T) {
	sess := newFakeSession("empty", domain.TopologyGroup)

	_, err := Attach(sess, &recordingMonitor{}, AttachOptions{})
	require.ErrorIs(t, err, ErrNoConnection)
	assert.Contains(t, err.Error(), `"empty"`)
}

func TestAttach_TopologyFromSession(t *testing.T) {
	sess := newFakeSession("p2p", domain.TopologyPeerToPeer, newFakeConn("pc-a"))
	sess.participants = []*domain.Participant{participant("bob")}
	mon := &recordingMonitor{}

	b, err := Attach(sess, mon, AttachOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.TopologyPeerToPeer, b.Topology())
	require.Len(t, mon.fabrics, 1)
	assert.Equal(t, "bob", mon.fabrics[0].label)
}

func TestAttach_TopologyOverride(t *testing.T) {
	sess := newFakeSession("p2p", domain.TopologyPeerToPeer)
	group := domain.TopologyGroup

	_, err := Attach(sess, &recordingMonitor{}, AttachOptions{Topology: &group})
	assert.ErrorIs(t, err, ErrNoConnection)
}
