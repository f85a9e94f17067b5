package core

import "github.com/dkeye/VoiceStats/internal/domain"

// NativeHandle is the underlying connection object handed to the monitor.
// Implementations must be comparable (pointer types).
type NativeHandle any

type MediaConnection interface {
	ID() domain.ConnectionID
	Native() NativeHandle
	// StreamID returns the negotiated stream id for a local track, if any.
	StreamID(domain.TrackID) (domain.StreamID, bool)
	// LocalDescription and RemoteDescription return the current SDP or "".
	LocalDescription() string
	RemoteDescription() string
}

type ConnectionManager interface {
	// Connections returns the current connection set in a stable order.
	Connections() []MediaConnection
}
