package graph

import "github.com/google/uuid"

// SchemaVersion is the current graph document schema version.
const SchemaVersion = 2

// Document is the canonical serializable snapshot of a graph: nodes keyed by
// stable id, an ordered edge list, and canvas positions.
type Document struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Version int             `json:"version"`
	Nodes   map[string]Node `json:"nodes"`
	Edges   []Edge          `json:"edges"`
}

// Node is a single typed node in a document. Title is omitted when it equals
// the type name; Params holds per-node parameter values.
type Node struct {
	Type     string         `json:"type"`
	Params   map[string]any `json:"params,omitempty"`
	Title    string         `json:"title,omitempty"`
	Position [2]float64     `json:"position"`
}

// Edge is a directed connection between two node ports. Endpoints are
// "<nodeId>.<portName>" strings; edge identity is the (From, To) pair.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewDocument returns an empty document with a fresh id and the current
// schema version.
func NewDocument() *Document {
	return &Document{
		ID:      uuid.New().String(),
		Version: SchemaVersion,
		Nodes:   make(map[string]Node),
		Edges:   []Edge{},
	}
}

// HasEdge reports whether the document already contains an edge with the
// same (from, to) pair.
func (d *Document) HasEdge(from, to string) bool {
	for _, e := range d.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// AddEdge appends an edge, rejecting duplicates by (from, to) identity.
func (d *Document) AddEdge(from, to string) error {
	if d.HasEdge(from, to) {
		return &StructuralError{Kind: "duplicate_edge", Msg: "duplicate edge " + from + " -> " + to, Err: ErrDuplicateEdge}
	}
	d.Edges = append(d.Edges, Edge{From: from, To: to})
	return nil
}
