package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checks via errors.Is().
var (
	// ErrMalformedEndpoint indicates an edge endpoint string without a
	// "<nodeId>.<portName>" separator.
	ErrMalformedEndpoint = errors.New("malformed endpoint")

	// ErrIncompatible indicates two socket keys that may not be connected.
	ErrIncompatible = errors.New("incompatible socket types")

	// ErrPortOccupied indicates a single-input port that already has an
	// incoming edge.
	ErrPortOccupied = errors.New("input port already connected")

	// ErrDuplicateEdge indicates an edge with the same (from, to) pair
	// already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrUnknownNode indicates an endpoint referencing a node that does not
	// exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownPort indicates an endpoint referencing a port not declared
	// by the node's type metadata.
	ErrUnknownPort = errors.New("unknown port")
)

// MalformedEndpointError reports an endpoint string that could not be split
// into node id and port name.
type MalformedEndpointError struct {
	Endpoint string
}

func (e *MalformedEndpointError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMalformedEndpoint.Error(), e.Endpoint)
}

func (e *MalformedEndpointError) Unwrap() error { return ErrMalformedEndpoint }

// ConnectionError reports a rejected connection attempt between two ports.
type ConnectionError struct {
	From string
	To   string
	Err  error // One of ErrIncompatible, ErrPortOccupied, ErrDuplicateEdge.
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect %s -> %s: %s", e.From, e.To, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StructuralError reports a document-level structural violation such as a
// dangling edge or duplicate edge.
type StructuralError struct {
	Kind string // "dangling_edge", "duplicate_edge", "unknown_port"
	Msg  string
	Err  error
}

func (e *StructuralError) Error() string {
	if e.Msg == "" {
		return "structural error"
	}
	return "structural error: " + e.Msg
}

func (e *StructuralError) Unwrap() error { return e.Err }
