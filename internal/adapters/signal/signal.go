// Package signal is a websocket client for the Voice SFU signaling protocol.
package signal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("signal connection closed")
	ErrGroupOnly    = errors.New("SFU signaling supports group rooms only")
)

// CheckTopology rejects rooms the SFU cannot serve. The SFU is a single
// remote peer, so a p2p room would label its one connection with an
// arbitrary member.
func CheckTopology(t domain.Topology) error {
	if t != domain.TopologyGroup {
		return fmt.Errorf("%w: %s", ErrGroupOnly, t)
	}
	return nil
}

// Room receives membership changes and the terminal disconnect.
type Room interface {
	AddParticipant(p *domain.Participant) error
	RemoveParticipant(identity string) error
	Disconnect(cause error)
}

// Media is the peer connection negotiated over this channel.
type Media interface {
	ApplyAnswer(answer webrtc.SessionDescription) error
	AddICECandidate(ci webrtc.ICECandidateInit) error
}

type Config struct {
	URL          string
	PingPeriod   time.Duration
	ReadLimit    int64
	WriteTimeout time.Duration
	SendBuffer   int
}

type Client struct {
	cfg   Config
	conn  *websocket.Conn
	send  chan []byte
	room  Room
	media Media

	mu      sync.RWMutex
	closed  bool
	onError []func(error)
	cancel  context.CancelFunc
}

// Dial opens the signaling socket. Pumps start with Start.
func Dial(ctx context.Context, cfg Config, room Room, media Media) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, domain.NewSessionError(domain.CodeSignalingConnectionError, fmt.Sprintf("dial %s: %v", cfg.URL, err))
	}
	return newClient(cfg, ws, room, media), nil
}

func newClient(cfg Config, ws *websocket.Conn, room Room, media Media) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 32
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.ReadLimit > 0 {
		ws.SetReadLimit(cfg.ReadLimit)
	}
	return &Client{
		cfg:   cfg,
		conn:  ws,
		send:  make(chan []byte, cfg.SendBuffer),
		room:  room,
		media: media,
	}
}

// OnError registers a handler for coded errors received from the server.
func (c *Client) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, fn)
}

func (c *Client) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.writePump(ctx)
	go c.readPump(ctx)
}

func (c *Client) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close shuts the socket without disconnecting the room.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Client) emitError(err error) {
	c.mu.RLock()
	handlers := append([]func(error){}, c.onError...)
	c.mu.RUnlock()

	log.Warn().Err(err).Str("module", "signal").Msg("signaling error")
	for _, fn := range handlers {
		fn(err)
	}
}
