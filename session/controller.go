// Package session owns the lifecycle of one room connection: it wires
// transport events into the timeline and the roster, exposes the send
// surface, and arbitrates inline assistant invocations.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"parlor/assist"
	"parlor/domain"
	"parlor/projection"
	"parlor/transport"
)

// State is the connection state of one session. The machine only moves
// forward: Connecting, Connected, Disconnected. A disconnected session
// is terminal; rejoining a room means a new session.
type State int32

const (
	Connecting State = iota
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

const defaultCompletionTimeout = 30 * time.Second

// Config carries everything a session needs to join a room.
type Config struct {
	Token    string
	Room     string
	Identity string

	Dialer    transport.Dialer
	Completer assist.Completer

	// CompletionTimeout bounds each assistant call; expiry is treated
	// as a completion failure. Defaults to 30s.
	CompletionTimeout time.Duration

	Log *slog.Logger
}

// Controller is the session controller. It is the only writer of its
// timeline and directory; transport callbacks arrive on one goroutine
// and completion results re-enter through the same mutex, so no handler
// ever observes a half-applied transition.
type Controller struct {
	log       *slog.Logger
	room      string
	identity  string
	completer assist.Completer
	timeout   time.Duration

	timeline  *projection.Timeline
	directory *domain.Directory

	mu     sync.Mutex
	conn   transport.Conn
	state  State
	typing int
	closed bool
}

// Connect establishes the transport connection and returns a live
// session. A rejected token or failed network setup is returned as-is;
// retrying is the caller's decision, never the session's.
func Connect(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = defaultCompletionTimeout
	}

	c := &Controller{
		log:       cfg.Log,
		room:      cfg.Room,
		identity:  cfg.Identity,
		completer: cfg.Completer,
		timeout:   cfg.CompletionTimeout,
		timeline:  projection.NewTimeline(),
		directory: domain.NewDirectory(),
		state:     Connecting,
	}

	conn, err := cfg.Dialer.Dial(ctx, cfg.Room, cfg.Token, transport.Events{
		Data:   c.handleData,
		Roster: c.handleRoster,
	})
	if err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return nil, fmt.Errorf("connect room %q: %w", cfg.Room, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = Connected
	c.mu.Unlock()

	// Seed the roster; later changes arrive as roster events.
	if members, err := conn.Members(ctx); err == nil {
		c.handleRoster(members)
	} else {
		c.log.Warn("initial roster fetch failed", "room", cfg.Room, "error", err)
		c.directory.Rebuild(cfg.Identity, nil)
	}

	return c, nil
}

// LoadHistory seeds the timeline with persisted entries. A missing or
// failed history simply leaves the timeline empty; callers pass nothing.
func (c *Controller) LoadHistory(entries []domain.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.timeline.LoadHistory(entries)
}

// SendMessage appends the optimistic local echo, broadcasts the chat
// envelope, and hands the entry to the invocation arbiter, in that
// order. Blank text or a session that is not connected is a silent
// no-op, mirroring a disabled input rather than an error.
func (c *Controller) SendMessage(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if c.closed || c.state != Connected {
		c.mu.Unlock()
		return
	}
	entry := domain.Entry{
		ID:     uuid.New(),
		Sender: c.identity,
		Text:   text,
		At:     time.Now().UTC(),
	}
	c.timeline.Append(entry)
	conn := c.conn
	c.mu.Unlock()

	payload, err := domain.EncodeEnvelope(domain.Envelope{
		Type:    domain.EnvelopeChat,
		Message: text,
		Sender:  c.identity,
	})
	if err != nil {
		c.log.Error("encode chat envelope", "error", err)
		return
	}
	if err := conn.Publish(ctx, payload, true); err != nil {
		// The local echo stays; the send surface never throws.
		c.log.Warn("broadcast failed", "room", c.room, "error", err)
	}

	if req, ok := assist.Evaluate(entry, c.identity); ok {
		c.invokeAssistant(req)
	}
}

// handleData is the data-received transport event. The display identity
// is the transport-supplied sender; the envelope's embedded sender is
// never trusted for display.
func (c *Controller) handleData(sender string, payload []byte) {
	env, err := domain.DecodeEnvelope(payload)
	if err != nil {
		c.log.Debug("dropping malformed envelope", "room", c.room, "error", err)
		return
	}
	if env.Type != domain.EnvelopeChat {
		return
	}

	entry := domain.Entry{
		ID:          uuid.New(),
		Sender:      sender,
		Text:        env.Message,
		IsAssistant: env.IsAI,
		At:          time.Now().UTC(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timeline.Append(entry)
	c.mu.Unlock()

	// The election is author-side and already ran in the send path. A
	// transport that echoed the author's own frame back would otherwise
	// invoke a second completion for the same mention.
}

// handleRoster is the roster-changed transport event: rebuild from the
// authoritative list, never diff. The rebuild happens under the same
// lock as the closed check, so an event racing Leave either commits
// entirely before it or not at all.
func (c *Controller) handleRoster(identities []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.directory.Rebuild(c.identity, identities)
}

// invokeAssistant runs one completion call for one won election. Two
// mentions in quick succession run as two independent calls. Results
// arriving after Leave are discarded, not queued.
func (c *Controller) invokeAssistant(req assist.Request) {
	c.mu.Lock()
	if c.closed || c.completer == nil {
		c.mu.Unlock()
		return
	}
	c.typing++
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.typing--
			c.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		reply, err := c.completer.Complete(ctx, c.identity, c.room, req.Prompt)

		if err != nil {
			c.log.Warn("completion failed", "room", c.room, "error", err)
			c.appendAssistant(assist.FallbackReply)
			return
		}

		conn := c.appendAssistant(reply)
		if conn == nil {
			return
		}

		payload, err := domain.EncodeEnvelope(domain.Envelope{
			Type:    domain.EnvelopeChat,
			Message: reply,
			IsAI:    true,
		})
		if err != nil {
			c.log.Error("encode assistant envelope", "error", err)
			return
		}
		pubCtx, pubCancel := context.WithTimeout(context.Background(), c.timeout)
		defer pubCancel()
		if err := conn.Publish(pubCtx, payload, true); err != nil {
			c.log.Warn("assistant broadcast failed", "room", c.room, "error", err)
		}
	}()
}

// appendAssistant appends an assistant-authored entry unless the session
// is torn down. It returns the connection when broadcasting is still
// allowed, nil otherwise.
func (c *Controller) appendAssistant(text string) transport.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.timeline.Append(domain.Entry{
		ID:          uuid.New(),
		Sender:      assist.Identity,
		Text:        text,
		IsAssistant: true,
		At:          time.Now().UTC(),
	})
	return c.conn
}

// Leave tears the session down. Idempotent; every event delivered after
// the first call is discarded.
func (c *Controller) Leave() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.state = Disconnected
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			c.log.Warn("disconnect failed", "room", c.room, "error", err)
		}
	}
}

// State reports the connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AssistantTyping reports whether any completion call is in flight.
func (c *Controller) AssistantTyping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing > 0
}

// Timeline returns a rendering snapshot in insertion order.
func (c *Controller) Timeline() []domain.Entry {
	return c.timeline.Snapshot()
}

// Participants returns a rendering snapshot, local participant first.
func (c *Controller) Participants() []domain.Participant {
	return c.directory.Snapshot()
}

func (c *Controller) Room() string { return c.room }

func (c *Controller) Identity() string { return c.identity }
