package telemetry

import (
	"errors"
	"fmt"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
)

var (
	ErrNilSession = errors.New("session is nil")
	ErrNilMonitor = errors.New("monitor is nil")
)

type AttachOptions struct {
	// Topology defaults to the session's own topology.
	Topology *domain.Topology

	// LocalIdentity defaults to the session's local participant identity.
	LocalIdentity string
	Extra         []Option
}

// Attach validates its arguments and binds the session to an initialized monitor.
func Attach(session core.Session, monitor core.Monitor, opts AttachOptions) (*Binder, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	if monitor == nil {
		return nil, ErrNilMonitor
	}

	localID := opts.LocalIdentity
	if localID == "" {
		if lp := session.LocalParticipant(); lp != nil {
			localID = lp.Identity()
		}
	}

	topology := session.Topology()
	if opts.Topology != nil {
		topology = *opts.Topology
	}

	all := append([]Option{WithLocalIdentity(localID)}, opts.Extra...)
	b, err := New(session, topology, session.Name(), monitor, all...)
	if err != nil {
		return nil, fmt.Errorf("attach %q: %w", session.Name(), err)
	}
	return b, nil
}
