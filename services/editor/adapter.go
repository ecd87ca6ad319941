package editor

import (
	"log/slog"
	"maps"
	"sort"
	"sync"

	"nodeflow/services/graph"
	"nodeflow/services/meta"
)

// Adapter keeps the live editor graph consistent with the graph document. It
// is the only component allowed to translate between the two: user gestures
// become document mutations here, with connection-time validation, cascade
// deletes, and dirty tracking for autosave.
type Adapter struct {
	mu       sync.Mutex
	registry *meta.Registry
	live     *LiveGraph
	bus      *Bus
	loading  bool
	dirty    bool
}

// NewAdapter creates an adapter over an empty live graph. The registry is
// injected per session; events publish on the given bus (nil for none).
func NewAdapter(registry *meta.Registry, bus *Bus) *Adapter {
	if bus == nil {
		bus = NewBus()
	}
	return &Adapter{registry: registry, live: NewLiveGraph(), bus: bus}
}

// Bus returns the adapter's event bus for subscribers.
func (a *Adapter) Bus() *Bus { return a.bus }

// Dirty reports whether the live graph has unsaved changes.
func (a *Adapter) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// ClearDirty resets the dirty flag, typically after a successful autosave.
func (a *Adapter) ClearDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dirty = false
}

// markDirty sets the dirty flag unless a document load is in progress.
// Callers hold a.mu.
func (a *Adapter) markDirty() {
	if !a.loading {
		a.dirty = true
	}
}

// publish raises an event unless a document load is in progress, so
// observers never mistake a load for a user edit. Callers hold a.mu.
func (a *Adapter) publish(event Event) {
	if !a.loading {
		a.bus.Publish(event)
	}
}

// LoadDocument atomically clears the live graph and rebuilds it from the
// document, nodes first then edges. Load is best-effort: an edge whose
// endpoints cannot be resolved is logged and skipped, never aborting the
// load. The dirty flag is left untouched.
func (a *Adapter) LoadDocument(doc *graph.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.loading = true
	a.live.clear()

	for _, id := range sortedNodeIDs(doc.Nodes) {
		node := doc.Nodes[id]
		if err := a.addNodeLocked(id, node); err != nil {
			slog.Warn("Skipping node during load", "id", id, "error", err)
		}
	}
	for _, e := range doc.Edges {
		if err := a.addEdgeLocked(e.From, e.To); err != nil {
			slog.Warn("Skipping edge during load", "from", e.From, "to", e.To, "error", err)
		}
	}

	a.loading = false
	a.bus.Publish(Event{Type: EventDocumentLoaded})
}

// AddNode adds a node to the live graph under the given stable id.
func (a *Adapter) AddNode(id string, node graph.Node) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.addNodeLocked(id, node); err != nil {
		return err
	}
	a.markDirty()
	a.publish(Event{Type: EventNodeAdded, NodeID: id})
	return nil
}

func (a *Adapter) addNodeLocked(id string, node graph.Node) error {
	if _, exists := a.live.Node(id); exists {
		slog.Warn("Node already exists, ignoring add", "id", id)
		return nil
	}
	nodeType, ok := a.registry.Lookup(node.Type)
	if !ok {
		return &graph.StructuralError{Kind: "unknown_type", Msg: "unknown node type " + node.Type, Err: graph.ErrUnknownNode}
	}

	params := node.Params
	if params == nil {
		params = nodeType.DefaultParams()
	}
	title := node.Title
	if title == "" {
		title = node.Type
	}

	a.live.addNode(&LiveNode{
		ID:       id,
		Type:     node.Type,
		Title:    title,
		Params:   params,
		Position: node.Position,
		Inputs:   nodeType.Inputs,
		Outputs:  nodeType.Outputs,
	})
	return nil
}

// RemoveNode removes a node and cascade-deletes every edge touching it in
// either direction, so no dangling references survive. Removing an unknown
// node is a logged no-op.
func (a *Adapter) RemoveNode(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.live.Node(id); !ok {
		slog.Warn("Cannot remove unknown node", "id", id)
		return
	}

	// Edges first, so observers never see a dangling edge.
	kept := a.live.edges[:0]
	for _, e := range a.live.edges {
		fromNode, _, _ := graph.ParseEndpoint(e.From)
		toNode, _, _ := graph.ParseEndpoint(e.To)
		if fromNode == id || toNode == id {
			a.publish(Event{Type: EventEdgeRemoved, From: e.From, To: e.To})
			continue
		}
		kept = append(kept, e)
	}
	a.live.edges = kept

	a.live.removeNode(id)
	a.markDirty()
	a.publish(Event{Type: EventNodeRemoved, NodeID: id})
}

// ValidateConnection checks a prospective edge against the live graph
// without committing it: endpoints must parse, reference live nodes and
// declared ports, carry compatible socket keys, and respect single-input
// multiplicity. Checks run against live state so concurrent edits stay
// consistent with what is currently drawn.
func (a *Adapter) ValidateConnection(from, to string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validateConnectionLocked(from, to)
}

func (a *Adapter) validateConnectionLocked(from, to string) error {
	fromID, fromPort, err := graph.ParseEndpoint(from)
	if err != nil {
		return err
	}
	toID, toPort, err := graph.ParseEndpoint(to)
	if err != nil {
		return err
	}

	src, ok := a.live.Node(fromID)
	if !ok {
		return &graph.ConnectionError{From: from, To: to, Err: graph.ErrUnknownNode}
	}
	dst, ok := a.live.Node(toID)
	if !ok {
		return &graph.ConnectionError{From: from, To: to, Err: graph.ErrUnknownNode}
	}

	srcType, _ := a.registry.Lookup(src.Type)
	out, ok := srcType.Output(fromPort)
	if !ok {
		return &graph.ConnectionError{From: from, To: to, Err: graph.ErrUnknownPort}
	}
	dstType, _ := a.registry.Lookup(dst.Type)
	in, ok := dstType.Input(toPort)
	if !ok {
		return &graph.ConnectionError{From: from, To: to, Err: graph.ErrUnknownPort}
	}

	if !graph.Compatible(out.Type.Key(), in.Type.Key()) {
		return &graph.ConnectionError{From: from, To: to, Err: graph.ErrIncompatible}
	}
	if a.live.hasEdge(from, to) {
		return &graph.ConnectionError{From: from, To: to, Err: graph.ErrDuplicateEdge}
	}
	if !in.Multi && a.live.incomingCount(to) > 0 {
		return &graph.ConnectionError{From: from, To: to, Err: graph.ErrPortOccupied}
	}
	return nil
}

// AddEdge validates and commits a connection. Rejections are returned as
// typed errors and nothing is partially applied.
func (a *Adapter) AddEdge(from, to string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.addEdgeLocked(from, to); err != nil {
		return err
	}
	a.markDirty()
	a.publish(Event{Type: EventEdgeAdded, From: from, To: to})
	return nil
}

func (a *Adapter) addEdgeLocked(from, to string) error {
	if err := a.validateConnectionLocked(from, to); err != nil {
		return err
	}
	a.live.edges = append(a.live.edges, LiveEdge{From: from, To: to})
	return nil
}

// RemoveEdge removes a single edge by endpoint match. Removing an unknown
// edge is a logged no-op.
func (a *Adapter) RemoveEdge(from, to string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, e := range a.live.edges {
		if e.From == from && e.To == to {
			a.live.edges = append(a.live.edges[:i], a.live.edges[i+1:]...)
			a.markDirty()
			a.publish(Event{Type: EventEdgeRemoved, From: from, To: to})
			return
		}
	}
	slog.Warn("Cannot remove unknown edge", "from", from, "to", to)
}

// UpdateNodePosition relocates a node on the live surface. Unknown ids are a
// logged no-op because the surface may have diverged under concurrent user
// action.
func (a *Adapter) UpdateNodePosition(id string, pos [2]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.live.Node(id)
	if !ok {
		slog.Warn("Cannot move unknown node", "id", id)
		return
	}
	n.Position = pos
	a.markDirty()
	a.publish(Event{Type: EventNodeMoved, NodeID: id})
}

// UpdateNodeSize records a node's rendered extent, used by auto-layout.
func (a *Adapter) UpdateNodeSize(id string, size [2]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.live.Node(id)
	if !ok {
		slog.Warn("Cannot resize unknown node", "id", id)
		return
	}
	n.Size = size
}

// Serialize walks the live graph and produces a document snapshot. Titles
// equal to the type name are omitted to keep diffs small; positions are read
// from the live surface's current transform.
func (a *Adapter) Serialize(name, id string) *graph.Document {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := &graph.Document{
		ID:      id,
		Name:    name,
		Version: graph.SchemaVersion,
		Nodes:   make(map[string]graph.Node, len(a.live.nodes)),
		Edges:   make([]graph.Edge, 0, len(a.live.edges)),
	}

	for _, nodeID := range a.live.order {
		n := a.live.nodes[nodeID]
		title := n.Title
		if title == n.Type {
			title = ""
		}
		// Copied so the snapshot never aliases the live parameter map.
		doc.Nodes[nodeID] = graph.Node{
			Type:     n.Type,
			Params:   maps.Clone(n.Params),
			Title:    title,
			Position: n.Position,
		}
	}
	for _, e := range a.live.edges {
		doc.Edges = append(doc.Edges, graph.Edge{From: e.From, To: e.To})
	}
	return doc
}

// Live exposes a read-only view of the live graph for snapshot consumers
// such as auto-layout.
func (a *Adapter) Live() *LiveGraph {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// sortedNodeIDs returns document node ids in a stable order so loads are
// deterministic despite map iteration.
func sortedNodeIDs(nodes map[string]graph.Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
