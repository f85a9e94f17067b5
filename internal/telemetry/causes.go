package telemetry

import "github.com/dkeye/VoiceStats/internal/domain"

// Category is the telemetry class of a session error code.
type Category int

const (
	CategoryUnclassified Category = iota
	CategorySignaling
	CategoryApplication
)

func (c Category) String() string {
	switch c {
	case CategorySignaling:
		return "signaling"
	case CategoryApplication:
		return "application"
	default:
		return "unclassified"
	}
}

var namedCauses = []struct {
	name string
	code int
}{
	{"AccessTokenInvalidError", domain.CodeAccessTokenInvalid},
	{"AccessTokenExpiredError", domain.CodeAccessTokenExpired},
	{"ConfigurationAcquireFailedError", domain.CodeConfigurationAcquireFailed},
	{"ConfigurationAcquireTurnFailedError", domain.CodeConfigurationAcquireTurnFailed},
	{"MediaClientLocalDescFailedError", domain.CodeMediaClientLocalDescFailed},
	{"MediaClientRemoteDescFailedError", domain.CodeMediaClientRemoteDescFailed},
	{"MediaConnectionError", domain.CodeMediaConnectionError},
	{"MediaNoSupportedCodecError", domain.CodeMediaNoSupportedCodec},
	{"MediaServerLocalDescFailedError", domain.CodeMediaServerLocalDescFailed},
	{"MediaServerRemoteDescFailedError", domain.CodeMediaServerRemoteDescFailed},
	{"ParticipantDuplicateIdentityError", domain.CodeParticipantDuplicateIdentity},
	{"ParticipantIdentityCharsInvalidError", domain.CodeParticipantIdentityCharsInvalid},
	{"ParticipantIdentityInvalidError", domain.CodeParticipantIdentityInvalid},
	{"ParticipantIdentityTooLongError", domain.CodeParticipantIdentityTooLong},
	{"ParticipantMaxTracksExceededError", domain.CodeParticipantMaxTracksExceeded},
	{"ParticipantNotFoundError", domain.CodeParticipantNotFound},
	{"RoomConnectFailedError", domain.CodeRoomConnectFailed},
	{"RoomCreateFailedError", domain.CodeRoomCreateFailed},
	{"RoomMaxParticipantsExceededError", domain.CodeRoomMaxParticipantsExceeded},
	{"RoomNameCharsInvalidError", domain.CodeRoomNameCharsInvalid},
	{"RoomNameInvalidError", domain.CodeRoomNameInvalid},
	{"RoomNameTooLongError", domain.CodeRoomNameTooLong},
	{"RoomNotFoundError", domain.CodeRoomNotFound},
	{"SignalingConnectionDisconnectedError", domain.CodeSignalingConnectionDisconnected},
	{"SignalingConnectionError", domain.CodeSignalingConnectionError},
	{"SignalingConnectionTimeoutError", domain.CodeSignalingConnectionTimeout},
	{"SignalingIncomingMessageInvalidError", domain.CodeSignalingIncomingMessageInvalid},
	{"SignalingOutgoingMessageInvalidError", domain.CodeSignalingOutgoingMessageInvalid},
	{"SignalingServerBusyError", domain.CodeSignalingServerBusy},
	{"TrackInvalidError", domain.CodeTrackInvalid},
	{"TrackNameCharsInvalidError", domain.CodeTrackNameCharsInvalid},
	{"TrackNameInvalidError", domain.CodeTrackNameInvalid},
	{"TrackNameTooLongError", domain.CodeTrackNameTooLong},
}

// CauseTable maps named session errors to their codes. Read-only once built.
type CauseTable struct {
	byName map[string]int
	byCode map[int]string
}

func NewCauseTable() *CauseTable {
	t := &CauseTable{
		byName: make(map[string]int, len(namedCauses)),
		byCode: make(map[int]string, len(namedCauses)),
	}
	for _, c := range namedCauses {
		t.byName[c.name] = c.code
		t.byCode[c.code] = c.name
	}
	return t
}

func (t *CauseTable) Code(name string) (int, bool) {
	code, ok := t.byName[name]
	return code, ok
}

func (t *CauseTable) Name(code int) (string, bool) {
	name, ok := t.byCode[code]
	return name, ok
}

func (t *CauseTable) Contains(code int) bool {
	_, ok := t.byCode[code]
	return ok
}

func (t *CauseTable) Len() int { return len(t.byName) }

// Classify maps a code to its telemetry category.
// Only the five signaling transport failures are signaling errors.
func (t *CauseTable) Classify(code int) Category {
	switch code {
	case domain.CodeSignalingConnectionDisconnected,
		domain.CodeSignalingConnectionError,
		domain.CodeSignalingConnectionTimeout,
		domain.CodeSignalingIncomingMessageInvalid,
		domain.CodeSignalingOutgoingMessageInvalid:
		return CategorySignaling
	}
	if t.Contains(code) {
		return CategoryApplication
	}
	return CategoryUnclassified
}
