package monitor

import (
	"fmt"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogMonitor writes monitor calls to the log. It is used when no collector is configured.
type LogMonitor struct {
	logger zerolog.Logger
}

func NewLogMonitor() *LogMonitor {
	return &LogMonitor{logger: log.With().Str("module", "monitor").Str("sink", "log").Logger()}
}

func handleLabel(h core.NativeHandle) string {
	if h == nil {
		return ""
	}
	return fmt.Sprintf("%p", h)
}

func (l *LogMonitor) AddNewFabric(h core.NativeHandle, remoteLabel string, usage core.FabricUsage, conference domain.RoomName, cb core.ResultFunc) {
	l.logger.Info().
		Str("handle", handleLabel(h)).
		Str("remote", remoteLabel).
		Str("usage", string(usage)).
		Str("conference", string(conference)).
		Msg("addNewFabric")
	resolve(cb, nil)
}

func (l *LogMonitor) AssociateMstWithUserID(h core.NativeHandle, userID string, conference domain.RoomName, ssrc domain.StreamID, kind domain.TrackKind, _ any) {
	l.logger.Info().
		Str("handle", handleLabel(h)).
		Str("user", userID).
		Str("conference", string(conference)).
		Str("ssrc", string(ssrc)).
		Str("kind", string(kind)).
		Msg("associateMstWithUserID")
}

func (l *LogMonitor) SendFabricEvent(h core.NativeHandle, ev core.FabricEvent, conference domain.RoomName) {
	l.logger.Info().
		Str("handle", handleLabel(h)).
		Str("event", string(ev)).
		Str("conference", string(conference)).
		Msg("sendFabricEvent")
}

func (l *LogMonitor) ReportError(h core.NativeHandle, conference domain.RoomName, fn core.WebRTCFunction, err error, localSDP, remoteSDP string) {
	l.logger.Warn().
		Err(err).
		Str("handle", handleLabel(h)).
		Str("conference", string(conference)).
		Str("function", string(fn)).
		Bool("local_sdp", localSDP != "").
		Bool("remote_sdp", remoteSDP != "").
		Msg("reportError")
}

func (l *LogMonitor) SendUserFeedback(conference domain.RoomName, fb core.Feedback, cb core.ResultFunc) {
	l.logger.Info().
		Str("conference", string(conference)).
		Str("user", fb.UserID).
		Int("overall", fb.OverallRating).
		Msg("sendUserFeedback")
	resolve(cb, nil)
}
