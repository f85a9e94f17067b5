package monitor

import (
	"errors"
	"testing"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/dkeye/VoiceStats/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMonitor resolves callbacks with result and counts forwarded calls.
type stubMonitor struct {
	result error
	calls  []string
}

func (s *stubMonitor) AddNewFabric(_ core.NativeHandle, _ string, _ core.FabricUsage, _ domain.RoomName, cb core.ResultFunc) {
	s.calls = append(s.calls, "addNewFabric")
	resolve(cb, s.result)
}

func (s *stubMonitor) AssociateMstWithUserID(core.NativeHandle, string, domain.RoomName, domain.StreamID, domain.TrackKind, any) {
	s.calls = append(s.calls, "associateMstWithUserID")
}

func (s *stubMonitor) SendFabricEvent(core.NativeHandle, core.FabricEvent, domain.RoomName) {
	s.calls = append(s.calls, "sendFabricEvent")
}

func (s *stubMonitor) ReportError(core.NativeHandle, domain.RoomName, core.WebRTCFunction, error, string, string) {
	s.calls = append(s.calls, "reportError")
}

func (s *stubMonitor) SendUserFeedback(_ domain.RoomName, _ core.Feedback, cb core.ResultFunc) {
	s.calls = append(s.calls, "sendUserFeedback")
	resolve(cb, s.result)
}

func TestMetered_ForwardsAndCounts(t *testing.T) {
	next := &stubMonitor{}
	m := metrics.New("test")
	mon := NewMetered(next, m)

	var got []error
	mon.AddNewFabric(&handle{1}, "r", core.FabricUsageMultiplex, "r", func(err error) { got = append(got, err) })
	mon.AssociateMstWithUserID(&handle{1}, "alice", "r", "1", domain.TrackKindAudio, nil)
	mon.SendFabricEvent(&handle{1}, core.FabricEventAudioMute, "r")
	mon.ReportError(nil, "r", core.FuncSignalingError, errors.New("x"), "", "")
	mon.SendUserFeedback("r", core.Feedback{OverallRating: 4}, nil)

	assert.Equal(t, []string{"addNewFabric", "associateMstWithUserID", "sendFabricEvent", "reportError", "sendUserFeedback"}, next.calls)
	require.Len(t, got, 1)
	assert.NoError(t, got[0])

	reg := m.Registry()
	n, err := testutil.GatherAndCount(reg, "test_monitor_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	n, err = testutil.GatherAndCount(reg, "test_fabrics_registered")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetered_FailedFabricNotCounted(t *testing.T) {
	next := &stubMonitor{result: errors.New("rejected")}
	m := metrics.New("fail")
	mon := NewMetered(next, m)

	var got error
	mon.AddNewFabric(&handle{1}, "r", core.FabricUsageMultiplex, "r", func(err error) { got = err })
	assert.EqualError(t, got, "rejected")

	out, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range out {
		if mf.GetName() == "fail_fabrics_registered" {
			assert.Zero(t, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestLogMonitor_ResolvesCallbacks(t *testing.T) {
	mon := NewLogMonitor()
	var n int
	mon.AddNewFabric(&handle{1}, "r", core.FabricUsageMultiplex, "r", func(err error) {
		assert.NoError(t, err)
		n++
	})
	mon.SendUserFeedback("r", core.Feedback{}, func(err error) {
		assert.NoError(t, err)
		n++
	})
	mon.ReportError(nil, "r", core.FuncApplicationLog, nil, "", "")
	assert.Equal(t, 2, n)
}
