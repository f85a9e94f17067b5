package signal

import (
	"encoding/json"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/rs/zerolog/log"
)

// serverErrors maps the server's error strings to session error codes.
var serverErrors = map[string]int{
	"room is not exists": domain.CodeRoomNotFound,
	"you alredy in room": domain.CodeParticipantDuplicateIdentity,
	"bad_payload":        domain.CodeSignalingOutgoingMessageInvalid,
	"empty name":         domain.CodeParticipantIdentityInvalid,
	"invalid_name":       domain.CodeParticipantIdentityInvalid,
	"server busy":        domain.CodeSignalingServerBusy,
}

// ServerError converts an error string sent by the server into a coded
// session error. Unknown strings become CodeRoomConnectFailed.
func ServerError(msg string) *domain.SessionError {
	code, ok := serverErrors[msg]
	if !ok {
		code = domain.CodeRoomConnectFailed
	}
	return domain.NewSessionError(code, msg)
}

func (c *Client) Ping() {
	if err := c.sendJSON(map[string]string{"type": "ping"}); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("ping")
	}
}

func (c *Client) handlePong() {
	log.Debug().Str("module", "signal").Msg("pong")
}

func (c *Client) handleError(data []byte) {
	var p struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		c.emitError(domain.NewSessionError(domain.CodeSignalingIncomingMessageInvalid, err.Error()))
		return
	}
	c.emitError(ServerError(p.Error))
}
