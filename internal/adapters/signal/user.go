package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

func (c *Client) Rename(name string) error {
	log.Info().Str("module", "signal").Str("name", name).Msg("rename")
	return c.sendJSON(map[string]string{
		"type": "rename",
		"name": name,
	})
}

func (c *Client) WhoAmI() error {
	return c.sendJSON(map[string]string{"type": "whoami"})
}

func (c *Client) handleWhoAmI(data []byte) {
	var p struct {
		Username string `json:"username"`
		Room     string `json:"room,omitempty"`
		RoomName string `json:"room_name,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad whoami payload")
		return
	}
	log.Info().Str("module", "signal").Str("username", p.Username).Str("room", p.Room).Msg("whoami")
}

// Aliases are not tracked after join, so updates are only logged.
func (c *Client) handleMemberUpdated(data []byte) {
	var p struct {
		User member `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad member_updated payload")
		return
	}
	log.Info().Str("module", "signal").Str("member", p.User.ID).Str("username", p.User.Username).Msg("member updated")
}
