// Package execclient drives remote graph execution over a persistent duplex
// websocket connection: session handshake, document submission, streamed
// status dispatch, cooperative cancellation, and reconnection with
// exponential backoff.
package execclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nodeflow/services/graph"
	"nodeflow/services/protocol"
)

// ErrBusy is returned by Execute while a previous execution is still in
// flight. The client does not queue concurrent job submissions.
var ErrBusy = errors.New("execution already in flight")

// State is the client session state.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateExecuting    State = "executing"
	StateStopping     State = "stopping"
	StateReconnecting State = "reconnecting"
)

// TokenStore persists the session token across client restarts so the
// executor can recognize a returning client. Implemented by localstate.
type TokenStore interface {
	SessionToken() (string, error)
	SetSessionToken(token string) error
}

// Observer is the single notification channel for everything the client
// surfaces: job transitions, streamed results, per-node progress, and
// terminal failures. All callbacks run on the client's dispatch goroutine in
// message arrival order.
type Observer interface {
	JobStatus(jobID int, state protocol.JobState, message string)
	JobData(results map[string]any)
	NodeProgress(nodeID string, progress *float64, text string, state protocol.JobState, meta map[string]string)
	QueuePosition(position int)
	Stopped(message string)
	Failure(message string)
}

// Config holds the transport policy knobs.
type Config struct {
	URL                  string
	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
}

// Client is a session-oriented execution protocol client. At most one
// execution is in flight per instance.
type Client struct {
	cfg      Config
	tokens   TokenStore
	observer Observer
	dialer   *websocket.Dialer

	mu           sync.Mutex
	state        State
	conn         *websocket.Conn
	gen          int // connection generation; stale read loops are ignored
	doc          *graph.Document
	pendingGraph bool
	attempts     int
	stopWait     chan struct{}
}

// New creates an idle client. tokens and observer must be non-nil.
func New(cfg Config, tokens TokenStore, observer Observer) *Client {
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.ReconnectBaseDelay == 0 {
		cfg.ReconnectBaseDelay = time.Second
	}
	return &Client{
		cfg:      cfg,
		tokens:   tokens,
		observer: observer,
		dialer:   websocket.DefaultDialer,
		state:    StateIdle,
	}
}

// State returns the current session state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute submits a serialized document for remote execution. If no
// connection exists one is opened and the connect/session handshake runs
// first; an already-open connection sends the graph message directly,
// reusing the established session. A second call while busy returns ErrBusy.
func (c *Client) Execute(ctx context.Context, doc *graph.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return ErrBusy
	}
	c.doc = doc
	c.attempts = 0

	if c.conn != nil {
		if err := c.conn.WriteJSON(protocol.Message{Type: protocol.TypeGraph, GraphData: doc}); err != nil {
			// Send failure on a supposedly live connection is a transport
			// error; fall through to a fresh dial.
			slog.Warn("Graph send failed on open connection, redialing", "error", err)
			c.closeConnLocked()
		} else {
			c.state = StateExecuting
			return nil
		}
	}

	c.state = StateConnecting
	c.pendingGraph = true
	if err := c.dialLocked(ctx); err != nil {
		c.state = StateIdle
		c.pendingGraph = false
		return fmt.Errorf("connect to executor: %w", err)
	}
	return nil
}

// Stop requests cooperative cancellation. It is idempotent: while already
// idle or stopping the call is a no-op (returning the same pending channel
// when stopping). The returned channel closes when the executor confirms via
// a stopped message, or immediately with forced local cleanup when there is
// no connection to send to.
func (c *Client) Stop(ctx context.Context) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return closedChan()
	case StateStopping:
		return c.stopWait
	}

	if c.conn == nil {
		// Mid-reconnect with nothing to send to: force local cleanup.
		c.resetLocked()
		return closedChan()
	}

	c.state = StateStopping
	c.stopWait = make(chan struct{})
	if err := c.conn.WriteJSON(protocol.Message{Type: protocol.TypeStop}); err != nil {
		slog.Warn("Stop send failed, forcing local cleanup", "error", err)
		wait := c.stopWait
		c.resetLocked()
		close(wait)
		return wait
	}
	return c.stopWait
}

// dialLocked opens the websocket, sends the connect handshake with any
// stored session token, and starts the read loop. Callers hold c.mu.
func (c *Client) dialLocked(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}

	token, err := c.tokens.SessionToken()
	if err != nil {
		slog.Warn("Could not read stored session token, requesting a new session", "error", err)
		token = ""
	}

	if err := conn.WriteJSON(protocol.Message{Type: protocol.TypeConnect, SessionID: token}); err != nil {
		conn.Close()
		return fmt.Errorf("send connect: %w", err)
	}

	c.conn = conn
	c.gen++
	go c.readLoop(conn, c.gen)
	return nil
}

// readLoop processes inbound frames strictly in arrival order until the
// connection drops, then decides between cleanup and reconnection.
func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			c.handleClose(gen, err)
			return
		}
		if !c.handleMessage(gen, msg) {
			return
		}
	}
}

// handleMessage dispatches one inbound frame. Returns false when the read
// loop should exit because the connection was retired.
func (c *Client) handleMessage(gen int, msg protocol.Message) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}

	switch msg.Type {
	case protocol.TypeSession:
		if err := c.tokens.SetSessionToken(msg.SessionID); err != nil {
			slog.Warn("Could not persist session token", "error", err)
		}
		if c.pendingGraph && c.doc != nil {
			if err := c.conn.WriteJSON(protocol.Message{Type: protocol.TypeGraph, GraphData: c.doc}); err != nil {
				c.mu.Unlock()
				slog.Warn("Graph send failed after session handshake", "error", err)
				return true // read loop observes the broken connection next
			}
			c.pendingGraph = false
			c.state = StateExecuting
			c.attempts = 0
		}
		c.mu.Unlock()
		return true

	case protocol.TypeError:
		// Remote execution errors are terminal for the current job: close
		// the connection and force-clean local state.
		c.closeConnLocked()
		c.resetLocked()
		c.mu.Unlock()
		c.observer.Failure(msg.Message)
		return false

	case protocol.TypeStatus:
		var wait chan struct{}
		if msg.State.Terminal() {
			// A stop may resolve through a terminal status instead of a
			// stopped frame; the waiter is released either way.
			wait = c.stopWait
			c.resetLocked()
		}
		c.mu.Unlock()
		c.observer.JobStatus(msg.JobID, msg.State, msg.Message)
		if wait != nil {
			close(wait)
		}
		return true

	case protocol.TypeStopped:
		wait := c.stopWait
		c.resetLocked()
		c.mu.Unlock()
		c.observer.Stopped(msg.Message)
		if wait != nil {
			close(wait)
		}
		return true

	case protocol.TypeData:
		c.mu.Unlock()
		// An empty result set is a liveness signal; observers see it either way.
		c.observer.JobData(msg.Results)
		return true

	case protocol.TypeProgress:
		c.mu.Unlock()
		c.observer.NodeProgress(msg.NodeID, msg.Progress, msg.Text, msg.State, msg.Meta)
		return true

	case protocol.TypeQueuePosition:
		c.mu.Unlock()
		c.observer.QueuePosition(msg.Position)
		return true

	default:
		c.mu.Unlock()
		slog.Warn("Ignoring unknown message type", "type", msg.Type)
		return true
	}
}

// handleClose runs when the read loop's connection drops. Normal closure, an
// idle session, or a stop in flight all clean up locally; abnormal closure
// while a job is active triggers the reconnection policy.
func (c *Client) handleClose(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}

	c.conn = nil

	if c.state == StateStopping {
		// The user already cancelled; reconnecting would restart the very
		// job they stopped. Forced local cleanup resolves the stop waiter.
		wait := c.stopWait
		c.resetLocked()
		c.mu.Unlock()
		if wait != nil {
			close(wait)
		}
		return
	}

	jobActive := c.state == StateConnecting || c.state == StateExecuting ||
		c.state == StateReconnecting

	if websocket.IsCloseError(err, websocket.CloseNormalClosure) || !jobActive {
		c.resetLocked()
		c.mu.Unlock()
		return
	}

	slog.Warn("Connection lost while job active, reconnecting", "error", err)
	c.state = StateReconnecting
	c.pendingGraph = c.doc != nil
	c.mu.Unlock()

	go c.reconnect(gen)
}

// reconnect retries the connection with exponential backoff, resending the
// same serialized document once the handshake completes. The server is
// assumed to resume or idempotently restart the job; the client cannot
// verify that. Exceeding the attempt ceiling forces the session to idle and
// surfaces a terminal failure.
func (c *Client) reconnect(gen int) {
	for {
		c.mu.Lock()
		if gen != c.gen || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}
		if c.attempts >= c.cfg.MaxReconnectAttempts {
			wait := c.stopWait
			c.resetLocked()
			c.mu.Unlock()
			if wait != nil {
				close(wait)
			}
			c.observer.Failure(fmt.Sprintf("connection lost: gave up after %d reconnect attempts", c.cfg.MaxReconnectAttempts))
			return
		}
		delay := c.cfg.ReconnectBaseDelay << c.attempts
		c.attempts++
		attempt := c.attempts
		c.mu.Unlock()

		slog.Info("Reconnecting to executor", "attempt", attempt, "delay", delay)
		time.Sleep(delay)

		c.mu.Lock()
		if gen != c.gen || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.dialLocked(ctx)
		cancel()
		if err == nil {
			gen = c.gen
			c.state = StateConnecting
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		slog.Warn("Reconnect attempt failed", "attempt", attempt, "error", err)
	}
}

// closeConnLocked closes and retires the current connection. Callers hold c.mu.
func (c *Client) closeConnLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.gen++
}

// resetLocked returns the session to idle, dropping any pending work. The
// connection, if still open, is preserved for the next execution; forced
// teardown goes through closeConnLocked first. Callers hold c.mu.
func (c *Client) resetLocked() {
	c.state = StateIdle
	c.doc = nil
	c.pendingGraph = false
	c.attempts = 0
	c.stopWait = nil
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
