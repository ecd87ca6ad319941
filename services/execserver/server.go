// Package execserver implements the server half of the execution wire
// protocol: a websocket endpoint that assigns sessions, runs submitted
// graphs through the Engine, and streams results back. It exists so the
// editor runs end-to-end without a production executor.
package execserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"nodeflow/services/graph"
	"nodeflow/services/protocol"
)

// Service accepts executor websocket connections.
type Service struct {
	engine   *Engine
	upgrader websocket.Upgrader

	mu     sync.Mutex
	nextID int
}

// NewService creates an executor service with the given simulated step delay.
func NewService(stepDelay time.Duration) *Service {
	return &Service{
		engine: &Engine{StepDelay: stepDelay},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// LoadRoutes registers the executor websocket endpoint on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	parentRouter.HandleFunc("/execute", s.HandleExecute).Methods("GET")
}

// nextJobID hands out incrementing integer job ids across all sessions.
func (s *Service) nextJobID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// session is the per-connection state: an identified client, at most one
// running job, and a queue of submitted documents waiting behind it.
type session struct {
	id      string
	out     chan protocol.Message
	cancel  context.CancelFunc // cancels the running job, nil when idle
	queue   []*graph.Document
	stopped bool // a stop arrived for the running job
	closed  bool // the connection is gone; no more frames may be queued
	mu      sync.Mutex
}

// HandleExecute upgrades the connection and processes protocol frames until
// the client disconnects.
func (s *Service) HandleExecute(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess := &session{out: make(chan protocol.Message, 64)}

	// Single writer goroutine; gorilla connections allow one concurrent writer.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range sess.out {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("Write to client failed", "error", err)
				return
			}
		}
	}()
	defer func() {
		sess.mu.Lock()
		if sess.cancel != nil {
			sess.cancel()
		}
		sess.closed = true
		sess.mu.Unlock()
		close(sess.out)
		<-writerDone
	}()

	for {
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Client connection closed", "error", err)
			}
			return
		}
		s.dispatch(sess, msg)
	}
}

func (s *Service) dispatch(sess *session, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeConnect:
		sess.mu.Lock()
		if msg.SessionID != "" {
			sess.id = msg.SessionID
		} else {
			sess.id = uuid.New().String()
		}
		id := sess.id
		sess.mu.Unlock()
		slog.Info("Client session established", "session", id)
		sess.send(protocol.Message{Type: protocol.TypeSession, SessionID: id})

	case protocol.TypeGraph:
		if msg.GraphData == nil {
			sess.send(protocol.Message{Type: protocol.TypeError, Message: "graph message without graph_data", Code: "bad_request"})
			return
		}
		sess.mu.Lock()
		if sess.cancel != nil {
			sess.queue = append(sess.queue, msg.GraphData)
			position := len(sess.queue)
			sess.mu.Unlock()
			sess.send(protocol.Message{Type: protocol.TypeQueuePosition, Position: position})
			return
		}
		sess.mu.Unlock()
		s.startJob(sess, msg.GraphData)

	case protocol.TypeStop:
		sess.mu.Lock()
		cancel := sess.cancel
		if cancel != nil {
			sess.stopped = true
		}
		sess.queue = nil
		sess.mu.Unlock()
		if cancel != nil {
			cancel()
		} else {
			sess.send(protocol.Message{Type: protocol.TypeStopped, Message: "no job running"})
		}

	default:
		slog.Warn("Ignoring unknown client message", "type", msg.Type)
	}
}

// startJob runs one document through the engine on its own goroutine and
// chains to the next queued document when it finishes.
func (s *Service) startJob(sess *session, doc *graph.Document) {
	ctx, cancel := context.WithCancel(context.Background())
	sess.mu.Lock()
	sess.cancel = cancel
	sess.stopped = false
	sess.mu.Unlock()

	jobID := s.nextJobID()
	slog.Info("Starting job", "job", jobID, "nodes", len(doc.Nodes))

	go func() {
		s.engine.Run(ctx, jobID, doc, sess.send)
		cancel()

		sess.mu.Lock()
		wasStopped := sess.stopped
		sess.stopped = false
		sess.cancel = nil
		var next *graph.Document
		if !wasStopped && len(sess.queue) > 0 {
			next = sess.queue[0]
			sess.queue = sess.queue[1:]
		}
		sess.mu.Unlock()

		if wasStopped {
			sess.send(protocol.Message{Type: protocol.TypeStopped, Message: "job cancelled"})
		}
		if next != nil {
			s.startJob(sess, next)
		}
	}()
}

// send enqueues a frame for the writer, dropping it if the client has
// disconnected or cannot keep up.
func (sess *session) send(msg protocol.Message) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	select {
	case sess.out <- msg:
	default:
		slog.Debug("Dropping frame for slow client", "type", msg.Type)
	}
}
