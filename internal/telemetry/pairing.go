package telemetry

import (
	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
)

// Pairing labels one connection with the remote endpoint it is believed to reach.
type Pairing struct {
	Connection  core.MediaConnection
	RemoteLabel string
}

// PairingStrategy decides which unregistered connections belong to a newly
// discovered participant in peer-to-peer sessions.
type PairingStrategy interface {
	Pair(p *domain.Participant, unregistered []core.MediaConnection) []Pairing
}

// PairingFunc adapts a function to PairingStrategy.
type PairingFunc func(p *domain.Participant, unregistered []core.MediaConnection) []Pairing

func (f PairingFunc) Pair(p *domain.Participant, unregistered []core.MediaConnection) []Pairing {
	return f(p, unregistered)
}

// DiscoveryOrderPairing assigns every connection not yet registered to the
// participant being processed. It assumes participants and connections are
// discovered in the same order, which the session layer does not promise:
// the resulting labels are a best-effort guess.
type DiscoveryOrderPairing struct{}

func (DiscoveryOrderPairing) Pair(p *domain.Participant, unregistered []core.MediaConnection) []Pairing {
	out := make([]Pairing, 0, len(unregistered))
	for _, mc := range unregistered {
		out = append(out, Pairing{Connection: mc, RemoteLabel: p.Identity})
	}
	return out
}
