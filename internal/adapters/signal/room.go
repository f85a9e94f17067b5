package signal

import (
	"encoding/json"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/rs/zerolog/log"
)

// member is how the server describes a room member.
type member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (m member) participant() (*domain.Participant, error) {
	return domain.NewParticipant(m.ID, m.Username)
}

// Join asks the server to put this client into room. name, if set, renames
// the client on join.
func (c *Client) Join(room domain.RoomName, name string) error {
	log.Info().Str("module", "signal").Str("room", string(room)).Msg("join")
	return c.sendJSON(struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name,omitempty"`
	}{
		Type: "join",
		Room: string(room),
		Name: name,
	})
}

// Leave exits the current room; the socket stays open.
func (c *Client) Leave() error {
	log.Info().Str("module", "signal").Msg("leave")
	return c.sendJSON(map[string]any{
		"type": "leave",
	})
}

func (c *Client) handleRoomState(data []byte) {
	type roomStatePayload struct {
		Type     string   `json:"type"`
		Room     string   `json:"room"`
		RoomName string   `json:"room_name"`
		Members  []member `json:"members"`
		Count    int      `json:"count"`
	}
	var p roomStatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad room_state payload")
		c.emitError(domain.NewSessionError(domain.CodeSignalingIncomingMessageInvalid, err.Error()))
		return
	}

	log.Info().Str("module", "signal").Str("room", p.Room).Int("count", p.Count).Msg("room state")
	for _, m := range p.Members {
		c.addMember(m)
	}
}

func (c *Client) handleMemberJoined(data []byte) {
	var p struct {
		User member `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad member_joined payload")
		c.emitError(domain.NewSessionError(domain.CodeSignalingIncomingMessageInvalid, err.Error()))
		return
	}
	c.addMember(p.User)
}

func (c *Client) handleMemberLeft(data []byte) {
	var p struct {
		User member `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad member_left payload")
		c.emitError(domain.NewSessionError(domain.CodeSignalingIncomingMessageInvalid, err.Error()))
		return
	}
	if err := c.room.RemoveParticipant(p.User.ID); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("member", p.User.ID).Msg("remove participant")
	}
}

func (c *Client) addMember(m member) {
	p, err := m.participant()
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("member", m.ID).Msg("skipping member")
		return
	}
	if err := c.room.AddParticipant(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("member", m.ID).Msg("add participant")
	}
}
