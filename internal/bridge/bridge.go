// Package bridge maintains the websocket link to the playback daemon. It
// multiplexes correlated command/reply frames and fans out event frames to
// channel subscribers.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	logging "github.com/ipfs/go-log/v2"

	"tidewave/internal/proto"
)

var log = logging.Logger("bridge")

// ErrNotConnected is returned by Call when no daemon link is up. Event
// subscriptions stay silent instead of erroring in that state.
var ErrNotConnected = errors.New("bridge: not connected")

// ErrClosed is returned to pending calls when the link goes down before
// their reply arrives.
var ErrClosed = errors.New("bridge: connection closed")

// CommandError is an explicit rejection from the daemon, carried verbatim
// from the reply frame. Transport failures are ordinary errors, not
// CommandErrors.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string { return e.Message }

// Handler receives raw event payloads for one channel, in arrival order.
type Handler func(payload json.RawMessage)

// Bridge owns one daemon connection. The zero value is unusable; use New.
type Bridge struct {
	connMu  sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan proto.Frame

	subMu  sync.Mutex
	subSeq int
	subs   map[string]map[int]Handler
}

// New creates a disconnected bridge. Subscribe works immediately; handlers
// only fire once Dial has succeeded and frames arrive.
func New() *Bridge {
	return &Bridge{
		pending: make(map[string]chan proto.Frame),
		subs:    make(map[string]map[int]Handler),
	}
}

// Dial connects to the daemon and starts the read loop. It does not retry;
// a failed dial leaves the bridge in its silent degraded state.
func (b *Bridge) Dial(ctx context.Context, url string, timeout time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return fmt.Errorf("bridge: dial %s: %w", url, err)
	}

	b.connMu.Lock()
	if b.conn != nil {
		b.connMu.Unlock()
		conn.Close()
		return errors.New("bridge: already connected")
	}
	b.conn = conn
	b.connMu.Unlock()

	log.Infof("connected to %s", url)
	go b.readLoop(conn)
	return nil
}

// Close tears down the connection. Pending calls fail with ErrClosed.
func (b *Bridge) Close() error {
	b.connMu.Lock()
	conn := b.conn
	b.conn = nil
	b.connMu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Subscribe registers fn for every payload delivered on channel and returns
// a disposer. The disposer is idempotent: the second and later calls are
// no-ops, and no invocation happens after the first disposal.
func (b *Bridge) Subscribe(channel string, fn Handler) func() {
	b.subMu.Lock()
	b.subSeq++
	id := b.subSeq
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]Handler)
	}
	b.subs[channel][id] = fn
	b.subMu.Unlock()

	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		if m := b.subs[channel]; m != nil {
			delete(m, id)
		}
	}
}

// PublishLocal injects an event frame directly into subscriber handlers
// without touching the transport. Use it to push locally-originated state
// changes through the same delivery path daemon events take.
func (b *Bridge) PublishLocal(channel string, payload json.RawMessage) {
	b.dispatch(proto.Frame{Type: proto.FrameEvent, Channel: channel, Payload: payload})
}

// Call sends a command frame and blocks until the correlated reply, ctx
// cancellation, or connection loss. A daemon rejection comes back as a
// *CommandError; the layer imposes no timeout of its own.
func (b *Bridge) Call(ctx context.Context, name string, args any) (json.RawMessage, error) {
	b.connMu.RLock()
	conn := b.conn
	b.connMu.RUnlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	var rawArgs json.RawMessage
	if args != nil {
		enc, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("bridge: encode args for %s: %w", name, err)
		}
		rawArgs = enc
	}

	id := uuid.NewString()
	frame := proto.Frame{
		Type: proto.FrameCmd,
		ID:   id,
		Name: name,
		Args: rawArgs,
	}

	// Register the reply channel before writing so a fast reply is never missed.
	replyCh := make(chan proto.Frame, 1)
	b.pendingMu.Lock()
	b.pending[id] = replyCh
	b.pendingMu.Unlock()
	defer func() {
		b.pendingMu.Lock()
		delete(b.pending, id)
		b.pendingMu.Unlock()
	}()

	if err := b.writeFrame(conn, frame); err != nil {
		return nil, fmt.Errorf("bridge: send %s: %w", name, err)
	}
	log.Debugf("sent cmd %s (%s)", name, id[:8])

	select {
	case reply, ok := <-replyCh:
		if !ok {
			return nil, ErrClosed
		}
		if reply.Status == proto.StatusError {
			return nil, &CommandError{Message: reply.Error}
		}
		return reply.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Bridge) writeFrame(conn *websocket.Conn, f proto.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop is the single reader. Handlers run synchronously here, which is
// what serializes store writes and preserves per-channel ordering.
func (b *Bridge) readLoop(conn *websocket.Conn) {
	defer b.failPending()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			b.connMu.Lock()
			if b.conn == conn {
				b.conn = nil
				log.Warnf("connection lost: %v", err)
			}
			b.connMu.Unlock()
			return
		}

		var frame proto.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Warnf("bad frame: %v", err)
			continue
		}
		b.dispatch(frame)
	}
}

// dispatch routes one inbound frame. Split from readLoop so the routing
// rules are testable without a socket.
func (b *Bridge) dispatch(frame proto.Frame) {
	switch frame.Type {
	case proto.FrameReply:
		b.pendingMu.Lock()
		ch, ok := b.pending[frame.ID]
		if ok {
			delete(b.pending, frame.ID)
		}
		b.pendingMu.Unlock()
		if !ok {
			log.Debugf("dropping reply for unknown id %s", frame.ID)
			return
		}
		ch <- frame

	case proto.FrameEvent:
		b.subMu.Lock()
		handlers := make([]Handler, 0, len(b.subs[frame.Channel]))
		for _, fn := range b.subs[frame.Channel] {
			handlers = append(handlers, fn)
		}
		b.subMu.Unlock()
		for _, fn := range handlers {
			fn(frame.Payload)
		}

	default:
		log.Debugf("dropping frame of type %q", frame.Type)
	}
}

// failPending wakes every in-flight Call after the connection dies.
func (b *Bridge) failPending() {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	for id, ch := range b.pending {
		close(ch)
		delete(b.pending, id)
	}
}
