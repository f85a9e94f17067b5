// Package monitor talks to the quality-monitoring collector.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("monitor connection closed")
	ErrUnknownCall  = errors.New("collector rejected call")
	ErrAckTimeout   = errors.New("collector did not ack in time")
)

type Config struct {
	URL          string
	AppID        string
	AppSecret    string
	UserID       string
	Alias        string
	SendBuffer   int
	WriteTimeout time.Duration
	PingPeriod   time.Duration
	AckTimeout   time.Duration
}

// envelope is one message on the collector socket.
type envelope struct {
	Type       string          `json:"type"`
	Seq        uint64          `json:"seq"`
	Fabric     string          `json:"fabric,omitempty"`
	Conference domain.RoomName `json:"conference,omitempty"`
	Payload    any             `json:"payload,omitempty"`
}

type ack struct {
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Status string `json:"status"`
	Msg    string `json:"msg,omitempty"`
}

type initPayload struct {
	AppID     string `json:"appID"`
	AppSecret string `json:"appSecret"`
	UserID    string `json:"userID"`
	Alias     string `json:"aliasName,omitempty"`
}

type fabricPayload struct {
	RemoteUserID string           `json:"remoteUserID"`
	FabricUsage  core.FabricUsage `json:"fabricUsage"`
}

type associatePayload struct {
	UserID string           `json:"userID"`
	SSRC   domain.StreamID  `json:"ssrc"`
	Kind   domain.TrackKind `json:"usageLabel"`
}

type eventPayload struct {
	Event core.FabricEvent `json:"fabricEvent"`
}

type errorPayload struct {
	Function  core.WebRTCFunction `json:"wrtcFuncName"`
	Message   string              `json:"domError"`
	Code      int                 `json:"code,omitempty"`
	LocalSDP  string              `json:"localSDP,omitempty"`
	RemoteSDP string              `json:"remoteSDP,omitempty"`
}

type pendingCall struct {
	cb     core.ResultFunc
	queued time.Time
}

// Client is a fire-and-forget core.Monitor over a websocket. Calls are queued
// on a bounded channel; a full queue fails the call instead of blocking.
type Client struct {
	cfg  Config
	conn *websocket.Conn
	send chan []byte
	seq  atomic.Uint64

	mu      sync.Mutex
	closed  bool
	fabrics map[core.NativeHandle]string
	pending map[uint64]pendingCall

	finishOnce sync.Once
	done       chan struct{}
}

// Dial connects to the collector and sends the initialize message.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	header := http.Header{}
	header.Set("X-App-ID", cfg.AppID)
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("dial collector %s: %w", cfg.URL, err)
	}

	c := newClient(cfg, ws)
	go c.writePump()
	go c.readPump()

	c.enqueue("initialize", "", "", initPayload{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		UserID:    cfg.UserID,
		Alias:     cfg.Alias,
	}, func(err error) {
		if err != nil {
			log.Warn().Err(err).Str("module", "monitor").Msg("initialize failed")
			return
		}
		log.Info().Str("module", "monitor").Str("user", cfg.UserID).Msg("initialize success")
	})
	return c, nil
}

func newClient(cfg Config, ws *websocket.Conn) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = 10 * time.Second
	}
	return &Client{
		cfg:     cfg,
		conn:    ws,
		send:    make(chan []byte, cfg.SendBuffer),
		fabrics: make(map[core.NativeHandle]string),
		pending: make(map[uint64]pendingCall),
		done:    make(chan struct{}),
	}
}

func (c *Client) AddNewFabric(h core.NativeHandle, remoteLabel string, usage core.FabricUsage, conference domain.RoomName, cb core.ResultFunc) {
	fabric := uuid.NewString()
	c.mu.Lock()
	if existing, ok := c.fabrics[h]; ok {
		fabric = existing
	} else {
		c.fabrics[h] = fabric
	}
	c.mu.Unlock()

	c.enqueue("addNewFabric", fabric, conference, fabricPayload{
		RemoteUserID: remoteLabel,
		FabricUsage:  usage,
	}, cb)
}

func (c *Client) AssociateMstWithUserID(h core.NativeHandle, userID string, conference domain.RoomName, ssrc domain.StreamID, kind domain.TrackKind, _ any) {
	fabric, ok := c.fabricOf(h)
	if !ok {
		log.Warn().Str("module", "monitor").Str("ssrc", string(ssrc)).Msg("associate: no fabric for handle")
		return
	}
	c.enqueue("associateMstWithUserID", fabric, conference, associatePayload{
		UserID: userID,
		SSRC:   ssrc,
		Kind:   kind,
	}, nil)
}

func (c *Client) SendFabricEvent(h core.NativeHandle, ev core.FabricEvent, conference domain.RoomName) {
	fabric, ok := c.fabricOf(h)
	if !ok {
		log.Warn().Str("module", "monitor").Str("event", string(ev)).Msg("fabric event: no fabric for handle")
		return
	}
	c.enqueue("sendFabricEvent", fabric, conference, eventPayload{Event: ev}, nil)
}

// ReportError is sent even without a fabric; the collector files it under the conference.
func (c *Client) ReportError(h core.NativeHandle, conference domain.RoomName, fn core.WebRTCFunction, err error, localSDP, remoteSDP string) {
	fabric, _ := c.fabricOf(h)
	p := errorPayload{
		Function:  fn,
		LocalSDP:  localSDP,
		RemoteSDP: remoteSDP,
	}
	if err != nil {
		p.Message = err.Error()
		var coded core.CodedError
		if errors.As(err, &coded) {
			p.Code = coded.Code()
		}
	}
	c.enqueue("reportError", fabric, conference, p, nil)
}

func (c *Client) SendUserFeedback(conference domain.RoomName, fb core.Feedback, cb core.ResultFunc) {
	c.enqueue("sendUserFeedback", "", conference, fb, cb)
}

func (c *Client) fabricOf(h core.NativeHandle) (string, bool) {
	if h == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.fabrics[h]
	return f, ok
}

func (c *Client) enqueue(typ, fabric string, conference domain.RoomName, payload any, cb core.ResultFunc) {
	seq := c.seq.Add(1)
	data, err := json.Marshal(envelope{
		Type:       typ,
		Seq:        seq,
		Fabric:     fabric,
		Conference: conference,
		Payload:    payload,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "monitor").Str("type", typ).Msg("marshal")
		resolve(cb, err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		resolve(cb, ErrClosed)
		return
	}
	if cb != nil {
		c.pending[seq] = pendingCall{cb: cb, queued: time.Now()}
	}
	select {
	case c.send <- data:
		c.mu.Unlock()
	default:
		delete(c.pending, seq)
		c.mu.Unlock()
		log.Warn().Str("module", "monitor").Str("type", typ).Msg("send queue full, dropping")
		resolve(cb, ErrBackpressure)
	}
}

func resolve(cb core.ResultFunc, err error) {
	if cb != nil {
		cb(err)
	}
}

// writePump writes queued messages until the queue is closed and drained,
// then says goodbye to the collector.
func (c *Client) writePump() {
	defer c.finish()

	var ping <-chan time.Time
	if c.cfg.PingPeriod > 0 {
		t := time.NewTicker(c.cfg.PingPeriod)
		defer t.Stop()
		ping = t.C
	}
	sweep := time.NewTicker(c.cfg.AckTimeout / 2)
	defer sweep.Stop()

	for {
		select {
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "monitor").Msg("writePump ping")
				return
			}
		case now := <-sweep.C:
			c.expirePending(now)
		case data, ok := <-c.send:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteTimeout))
				log.Info().Str("module", "monitor").Msg("writePump drained")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "monitor").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "monitor").Msg("writePump write error")
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer c.stopAccepting()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Str("module", "monitor").Msg("readPump closing")
			return
		}
		var a ack
		if err := json.Unmarshal(data, &a); err != nil || a.Type != "ack" {
			log.Warn().Str("module", "monitor").Msg("unexpected collector message")
			continue
		}
		c.mu.Lock()
		p, ok := c.pending[a.Seq]
		delete(c.pending, a.Seq)
		c.mu.Unlock()
		if !ok {
			continue
		}
		if a.Status == "success" {
			p.cb(nil)
		} else {
			p.cb(fmt.Errorf("%w: %s %s", ErrUnknownCall, a.Status, a.Msg))
		}
	}
}

// expirePending fails calls that have waited longer than AckTimeout.
func (c *Client) expirePending(now time.Time) {
	var expired []core.ResultFunc
	c.mu.Lock()
	for seq, p := range c.pending {
		if now.Sub(p.queued) >= c.cfg.AckTimeout {
			expired = append(expired, p.cb)
			delete(c.pending, seq)
		}
	}
	c.mu.Unlock()
	if len(expired) > 0 {
		log.Warn().Str("module", "monitor").Int("calls", len(expired)).Msg("ack timeout")
	}
	for _, cb := range expired {
		cb(ErrAckTimeout)
	}
}

// stopAccepting rejects new calls and closes the queue so writePump drains it.
func (c *Client) stopAccepting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// finish closes the socket and fails every call still waiting for an ack.
func (c *Client) finish() {
	c.finishOnce.Do(func() {
		c.stopAccepting()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.mu.Lock()
		pending := c.pending
		c.pending = make(map[uint64]pendingCall)
		c.mu.Unlock()
		for _, p := range pending {
			p.cb(ErrClosed)
		}
		close(c.done)
	})
}

// Close stops accepting calls and waits up to WriteTimeout for the queued
// messages to reach the collector before closing the socket.
func (c *Client) Close() {
	c.stopAccepting()
	t := time.NewTimer(c.cfg.WriteTimeout)
	defer t.Stop()
	select {
	case <-c.done:
	case <-t.C:
		log.Warn().Str("module", "monitor").Int("queued", len(c.send)).Msg("close: drain timed out")
		c.finish()
	}
}

// Done is closed once the client has shut down.
func (c *Client) Done() <-chan struct{} { return c.done }
