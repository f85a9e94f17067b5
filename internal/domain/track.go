package domain

type (
	TrackID   string
	TrackKind string
	// StreamID is the transport-level id (SSRC) of a negotiated local track.
	StreamID string
)

const (
	TrackKindAudio TrackKind = "audio"
	TrackKindVideo TrackKind = "video"
)

// Track is one published media stream.
// Render is an opaque handle the monitoring integration may attach stats to.
type Track struct {
	ID      TrackID   `json:"id"`
	Kind    TrackKind `json:"kind"`
	Enabled bool      `json:"enabled"`
	Render  any       `json:"-"`
}

func NewTrack(id TrackID, kind TrackKind) *Track {
	return &Track{ID: id, Kind: kind, Enabled: true}
}
