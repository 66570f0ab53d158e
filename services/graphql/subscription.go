package graphql

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/websocket"
)

const wsSubprotocol = "graphql-transport-ws"

// graphql-transport-ws frame types
const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is one subscription delivery.
type Event struct {
	Data json.RawMessage
	Err  error
}

func (ev Event) Decode(out interface{}) error {
	if ev.Err != nil {
		return ev.Err
	}
	return json.Unmarshal(ev.Data, out)
}

// Subscription is a cancellable stream of server events. It holds one socket
// and one reader goroutine; Close releases both and is safe to call more
// than once, including while a logout is in flight.
type Subscription struct {
	conn      *websocket.Conn
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	// frames that arrived while confirming the subscribe; replayed by the
	// read loop before it takes over the socket
	pending []wsMessage
}

// Subscribe opens a subscription. The bearer token is read from the
// credential store as a connection param, so a fresh connect after login or
// token refresh carries the current token.
func (c *Client) Subscribe(ctx context.Context, query, opName string, vars map[string]interface{}) (*Subscription, error) {
	cfg, err := websocket.NewConfig(c.subURL, wsOrigin(c.subURL))
	if err != nil {
		return nil, errors.Wrap(err, "configuring subscription transport")
	}
	cfg.Protocol = []string{wsSubprotocol}

	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connecting subscription transport")
	}

	if err := handshake(ctx, conn, c.connectionParams()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	payload, err := json.Marshal(gqlRequest{Query: query, OperationName: opName, Variables: vars})
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "marshalling subscribe payload")
	}
	if err := websocket.JSON.Send(conn, wsMessage{ID: "1", Type: msgSubscribe, Payload: payload}); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "sending subscribe")
	}

	sub := &Subscription{
		conn:   conn,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	if err := sub.confirm(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	go sub.readLoop()
	return sub, nil
}

// confirm round-trips a ping after the subscribe frame. The server answers
// frames in order, so the pong guarantees the subscription is registered and
// no event published after Subscribe returns can be missed. Frames arriving
// before the pong are kept for the read loop.
func (s *Subscription) confirm(ctx context.Context) error {
	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := s.conn.SetDeadline(deadline); err != nil {
		return errors.Wrap(err, "setting confirm deadline")
	}
	defer s.conn.SetDeadline(time.Time{}) //nolint:errcheck

	if err := websocket.JSON.Send(s.conn, wsMessage{Type: msgPing}); err != nil {
		return errors.Wrap(err, "sending ping")
	}
	for {
		var msg wsMessage
		if err := websocket.JSON.Receive(s.conn, &msg); err != nil {
			return errors.Wrap(err, "awaiting pong")
		}
		if msg.Type == msgPong {
			return nil
		}
		s.pending = append(s.pending, msg)
	}
}

func handshake(ctx context.Context, conn *websocket.Conn, params map[string]string) error {
	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return errors.Wrap(err, "setting handshake deadline")
	}
	defer conn.SetDeadline(time.Time{}) //nolint:errcheck

	payload, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "marshalling connection params")
	}
	if err := websocket.JSON.Send(conn, wsMessage{Type: msgConnectionInit, Payload: payload}); err != nil {
		return errors.Wrap(err, "sending connection_init")
	}

	for {
		var msg wsMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			return errors.Wrap(err, "awaiting connection_ack")
		}
		switch msg.Type {
		case msgConnectionAck:
			return nil
		case msgPing:
			if err := websocket.JSON.Send(conn, wsMessage{Type: msgPong}); err != nil {
				return errors.Wrap(err, "sending pong")
			}
		default:
			return errors.Errorf("unexpected %q frame before connection_ack", msg.Type)
		}
	}
}

// Events is the delivery channel; it is closed after Close or when the
// server completes the stream.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close tears the subscription down: the socket is released and the reader
// goroutine exits. Idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = websocket.JSON.Send(s.conn, wsMessage{ID: "1", Type: msgComplete})
		_ = s.conn.Close()
	})
}

func (s *Subscription) readLoop() {
	defer close(s.events)
	for _, msg := range s.pending {
		if !s.handle(msg) {
			return
		}
	}
	s.pending = nil

	for {
		var msg wsMessage
		if err := websocket.JSON.Receive(s.conn, &msg); err != nil {
			select {
			case <-s.done: // torn down by the caller; not an error
			default:
				s.deliver(Event{Err: errors.Wrap(err, "subscription transport")})
			}
			return
		}
		if !s.handle(msg) {
			return
		}
	}
}

// handle dispatches one frame, reporting false when the stream is over.
func (s *Subscription) handle(msg wsMessage) bool {
	switch msg.Type {
	case msgNext:
		var payload struct {
			Data   json.RawMessage `json:"data"`
			Errors []RespError     `json:"errors"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.deliver(Event{Err: errors.Wrap(err, "decoding next frame")})
			return true
		}
		if len(payload.Errors) > 0 {
			msgs := make([]string, 0, len(payload.Errors))
			for _, e := range payload.Errors {
				msgs = append(msgs, e.Message)
			}
			s.deliver(Event{Err: &APIError{Messages: msgs}})
			return true
		}
		s.deliver(Event{Data: payload.Data})
	case msgError:
		var respErrs []RespError
		_ = json.Unmarshal(msg.Payload, &respErrs)
		msgs := make([]string, 0, len(respErrs))
		for _, e := range respErrs {
			msgs = append(msgs, e.Message)
		}
		s.deliver(Event{Err: &APIError{Messages: msgs}})
	case msgComplete:
		return false
	case msgPing:
		_ = websocket.JSON.Send(s.conn, wsMessage{Type: msgPong})
	}
	return true
}

func (s *Subscription) deliver(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func wsOrigin(wsURL string) string {
	switch {
	case strings.HasPrefix(wsURL, "wss://"):
		return "https://" + strings.TrimPrefix(wsURL, "wss://")
	case strings.HasPrefix(wsURL, "ws://"):
		return "http://" + strings.TrimPrefix(wsURL, "ws://")
	}
	return wsURL
}
