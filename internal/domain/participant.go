// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxIdentityLen = 128

var (
	ErrIdentityEmpty   = errors.New("identity empty")
	ErrIdentityTooLong = errors.New("identity too long")
)

// Participant is a remote or local endpoint of a session.
type Participant struct {
	Identity string   `json:"identity"`
	Alias    string   `json:"alias,omitempty"`
	Tracks   []*Track `json:"-"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(identity, alias string) (*Participant, error) {
	if len(identity) == 0 {
		return nil, ErrIdentityEmpty
	}
	if len(identity) > MaxIdentityLen {
		return nil, ErrIdentityTooLong
	}
	return &Participant{Identity: identity, Alias: alias}, nil
}

// DisplayName prefers the alias.
func (p *Participant) DisplayName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Identity
}
