package core

import "github.com/dkeye/VoiceStats/internal/domain"

// Session is the communication session a binder observes.
// Notifications are delivered serially, in the order the session produces them.
type Session interface {
	Name() domain.RoomName
	Topology() domain.Topology
	// Participants returns remote participants in a stable order.
	Participants() []*domain.Participant
	LocalParticipant() LocalParticipant
	Connections() ConnectionManager

	OnParticipantConnected(func(*domain.Participant))
	// OnDisconnected fires once. cause may be nil.
	OnDisconnected(func(cause error))
}

type LocalParticipant interface {
	Identity() string
	Alias() string

	OnTrackAdded(func(*domain.Track))
	OnTrackEnabled(func(*domain.Track))
	OnTrackDisabled(func(*domain.Track))
}

// CodedError is implemented by session failures that carry a numeric cause.
type CodedError interface {
	error
	Code() int
}
