package domain

type (
	RoomName     string
	ConnectionID string
)

type Topology int

const (
	TopologyGroup Topology = iota
	TopologyPeerToPeer
)

func (t Topology) String() string {
	switch t {
	case TopologyGroup:
		return "group"
	case TopologyPeerToPeer:
		return "p2p"
	default:
		return "unknown"
	}
}

// ParseTopology accepts "group", "p2p" and "peer_to_peer".
func ParseTopology(s string) (Topology, bool) {
	switch s {
	case "group", "":
		return TopologyGroup, true
	case "p2p", "peer_to_peer", "peer-to-peer":
		return TopologyPeerToPeer, true
	default:
		return TopologyGroup, false
	}
}
