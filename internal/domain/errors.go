package domain

import "fmt"

// Session error codes reported by the session layer.
const (
	CodeAccessTokenInvalid = 20101
	CodeAccessTokenExpired = 20104

	CodeSignalingConnectionError        = 53000
	CodeSignalingConnectionDisconnected = 53001
	CodeSignalingConnectionTimeout      = 53002
	CodeSignalingIncomingMessageInvalid = 53003
	CodeSignalingOutgoingMessageInvalid = 53004
	CodeSignalingServerBusy             = 53006

	CodeRoomNameInvalid             = 53100
	CodeRoomNameTooLong             = 53101
	CodeRoomNameCharsInvalid        = 53102
	CodeRoomCreateFailed            = 53103
	CodeRoomConnectFailed           = 53104
	CodeRoomMaxParticipantsExceeded = 53105
	CodeRoomNotFound                = 53106

	CodeParticipantIdentityInvalid      = 53200
	CodeParticipantIdentityTooLong      = 53201
	CodeParticipantIdentityCharsInvalid = 53202
	CodeParticipantMaxTracksExceeded    = 53203
	CodeParticipantNotFound             = 53204
	CodeParticipantDuplicateIdentity    = 53205

	CodeTrackInvalid          = 53300
	CodeTrackNameInvalid      = 53301
	CodeTrackNameTooLong      = 53302
	CodeTrackNameCharsInvalid = 53303

	CodeMediaClientLocalDescFailed  = 53400
	CodeMediaServerLocalDescFailed  = 53401
	CodeMediaClientRemoteDescFailed = 53402
	CodeMediaServerRemoteDescFailed = 53403
	CodeMediaNoSupportedCodec       = 53404
	CodeMediaConnectionError        = 53405

	CodeConfigurationAcquireFailed     = 53500
	CodeConfigurationAcquireTurnFailed = 53501
)

// SessionError is a failure raised by the session layer.
type SessionError struct {
	code int
	Msg  string
}

func NewSessionError(code int, msg string) *SessionError {
	return &SessionError{code: code, Msg: msg}
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error %d: %s", e.code, e.Msg)
}

func (e *SessionError) Code() int { return e.code }
