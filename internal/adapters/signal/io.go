package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (c *Client) writePump(ctx context.Context) {
	var ping <-chan time.Time
	if c.cfg.PingPeriod > 0 {
		t := time.NewTicker(c.cfg.PingPeriod)
		defer t.Stop()
		ping = t.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping:
			c.Ping()
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump runs until the socket fails. Unless the client was closed locally,
// the failure ends the room with a signaling cause.
func (c *Client) readPump(ctx context.Context) {
	var cause error
	defer func() {
		log.Info().Str("module", "signal").Msg("readPump closing")
		local := c.IsClosed()
		c.Close()
		if !local && c.room != nil {
			c.room.Disconnect(cause)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("readPump ctx done")
			return
		default:
			c.extendReadDeadline()
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("readPump read error")
				cause = readFailure(err)
				return
			}
			c.handleSignal(data)
		}
	}
}

// Two missed ping periods count as a timeout.
func (c *Client) extendReadDeadline() {
	if c.cfg.PingPeriod <= 0 {
		return
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * c.cfg.PingPeriod))
}

func readFailure(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.NewSessionError(domain.CodeSignalingConnectionTimeout, err.Error())
	}
	return domain.NewSessionError(domain.CodeSignalingConnectionDisconnected, err.Error())
}

func (c *Client) handleSignal(data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		c.emitError(domain.NewSessionError(domain.CodeSignalingIncomingMessageInvalid, err.Error()))
		return
	}

	switch env.Type {
	case "room_state":
		c.handleRoomState(data)
	case "member_joined":
		c.handleMemberJoined(data)
	case "member_left":
		c.handleMemberLeft(data)
	case "member_updated":
		c.handleMemberUpdated(data)
	case "left":
		log.Info().Str("module", "signal").Msg("left room")
	case "pong":
		c.handlePong()
	case "whoami":
		c.handleWhoAmI(data)
	case "answer":
		c.handleAnswer(data)
	case "candidate":
		c.handleCandidate(data)
	case "error":
		c.handleError(data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (c *Client) sendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return domain.NewSessionError(domain.CodeSignalingOutgoingMessageInvalid, err.Error())
	}
	return c.TrySend(b)
}
