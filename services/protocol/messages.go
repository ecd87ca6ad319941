// Package protocol defines the duplex JSON wire messages exchanged between
// the editor and the remote executor. Both the client and the development
// server decode into the same envelope.
package protocol

import "nodeflow/services/graph"

// Message type discriminators.
const (
	// Client to server.
	TypeConnect = "connect"
	TypeGraph   = "graph"
	TypeStop    = "stop"

	// Server to client.
	TypeSession       = "session"
	TypeStatus        = "status"
	TypeData          = "data"
	TypeProgress      = "progress"
	TypeQueuePosition = "queue_position"
	TypeStopped       = "stopped"
	TypeError         = "error"
)

// JobState is the remote execution job lifecycle.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobFinished  JobState = "finished"
	JobCancelled JobState = "cancelled"
	JobError     JobState = "error"
)

// Terminal reports whether the state ends the job.
func (s JobState) Terminal() bool {
	return s == JobFinished || s == JobCancelled || s == JobError
}

// Message is the single wire envelope. Only the fields relevant to the Type
// discriminator are populated.
type Message struct {
	Type string `json:"type"`

	// connect / session
	SessionID string `json:"session_id,omitempty"`

	// graph
	GraphData *graph.Document `json:"graph_data,omitempty"`

	// status
	JobID int      `json:"job_id,omitempty"`
	State JobState `json:"state,omitempty"`

	// status / stopped / error
	Message string `json:"message,omitempty"`

	// error
	Code string `json:"code,omitempty"`

	// data: partial or final result payloads keyed by node id. An empty
	// (non-nil) map is a liveness signal, not "no results", so the field
	// must not be elided when empty.
	Results map[string]any `json:"results"`

	// progress
	NodeID   string            `json:"node_id,omitempty"`
	Progress *float64          `json:"progress,omitempty"`
	Text     string            `json:"text,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`

	// queue_position
	Position int `json:"position,omitempty"`
}
