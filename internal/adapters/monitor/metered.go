package monitor

import (
	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/dkeye/VoiceStats/internal/metrics"
)

// Metered counts every call before handing it to the wrapped monitor.
type Metered struct {
	next core.Monitor
	m    *metrics.Metrics
}

func NewMetered(next core.Monitor, m *metrics.Metrics) *Metered {
	return &Metered{next: next, m: m}
}

func (mm *Metered) AddNewFabric(h core.NativeHandle, remoteLabel string, usage core.FabricUsage, conference domain.RoomName, cb core.ResultFunc) {
	mm.m.MonitorCall("addNewFabric")
	mm.next.AddNewFabric(h, remoteLabel, usage, conference, func(err error) {
		mm.m.Result("addNewFabric", err)
		if err == nil {
			mm.m.FabricAdded()
		}
		resolve(cb, err)
	})
}

func (mm *Metered) AssociateMstWithUserID(h core.NativeHandle, userID string, conference domain.RoomName, ssrc domain.StreamID, kind domain.TrackKind, render any) {
	mm.m.MonitorCall("associateMstWithUserID")
	mm.next.AssociateMstWithUserID(h, userID, conference, ssrc, kind, render)
}

func (mm *Metered) SendFabricEvent(h core.NativeHandle, ev core.FabricEvent, conference domain.RoomName) {
	mm.m.MonitorCall("sendFabricEvent")
	mm.m.FabricEvent(string(ev))
	mm.next.SendFabricEvent(h, ev, conference)
}

func (mm *Metered) ReportError(h core.NativeHandle, conference domain.RoomName, fn core.WebRTCFunction, err error, localSDP, remoteSDP string) {
	mm.m.MonitorCall("reportError")
	mm.m.ErrorReport(string(fn))
	mm.next.ReportError(h, conference, fn, err, localSDP, remoteSDP)
}

func (mm *Metered) SendUserFeedback(conference domain.RoomName, fb core.Feedback, cb core.ResultFunc) {
	mm.m.MonitorCall("sendUserFeedback")
	mm.next.SendUserFeedback(conference, fb, func(err error) {
		mm.m.Result("sendUserFeedback", err)
		resolve(cb, err)
	})
}
