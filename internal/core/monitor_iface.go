package core

import "github.com/dkeye/VoiceStats/internal/domain"

type FabricUsage string

const (
	FabricUsageMultiplex FabricUsage = "multiplex"
	FabricUsageAudio     FabricUsage = "audio"
	FabricUsageVideo     FabricUsage = "video"
	FabricUsageScreen    FabricUsage = "screen"
	FabricUsageData      FabricUsage = "data"
	FabricUsageUnbundled FabricUsage = "unbundled"
)

type FabricEvent string

const (
	FabricEventAudioMute        FabricEvent = "audioMute"
	FabricEventAudioUnmute      FabricEvent = "audioUnmute"
	FabricEventVideoPause       FabricEvent = "videoPause"
	FabricEventVideoResume      FabricEvent = "videoResume"
	FabricEventFabricHold       FabricEvent = "fabricHold"
	FabricEventFabricResume     FabricEvent = "fabricResume"
	FabricEventFabricTerminated FabricEvent = "fabricTerminated"
)

// WebRTCFunction names the operation an error report is attributed to.
type WebRTCFunction string

const (
	FuncGetUserMedia         WebRTCFunction = "getUserMedia"
	FuncCreateOffer          WebRTCFunction = "createOffer"
	FuncCreateAnswer         WebRTCFunction = "createAnswer"
	FuncSetLocalDescription  WebRTCFunction = "setLocalDescription"
	FuncSetRemoteDescription WebRTCFunction = "setRemoteDescription"
	FuncAddICECandidate      WebRTCFunction = "addIceCandidate"
	FuncICEConnectionFailure WebRTCFunction = "iceConnectionFailure"
	FuncSignalingError       WebRTCFunction = "signalingError"
	FuncApplicationLog       WebRTCFunction = "applicationLog"
)

// Feedback is a user's rating of the session.
type Feedback struct {
	UserID             string `json:"userID"`
	OverallRating      int    `json:"overall"`
	AudioQualityRating int    `json:"audio,omitempty"`
	VideoQualityRating int    `json:"video,omitempty"`
	Comment            string `json:"comment,omitempty"`
}

// ResultFunc receives the outcome of an asynchronous monitor call; nil is success.
type ResultFunc func(err error)

// Monitor is the quality-monitoring integration. Every call is fire-and-forget.
type Monitor interface {
	AddNewFabric(h NativeHandle, remoteLabel string, usage FabricUsage, conference domain.RoomName, cb ResultFunc)
	AssociateMstWithUserID(h NativeHandle, userID string, conference domain.RoomName, ssrc domain.StreamID, kind domain.TrackKind, render any)
	SendFabricEvent(h NativeHandle, ev FabricEvent, conference domain.RoomName)
	ReportError(h NativeHandle, conference domain.RoomName, fn WebRTCFunction, err error, localSDP, remoteSDP string)
	SendUserFeedback(conference domain.RoomName, fb Feedback, cb ResultFunc)
}
