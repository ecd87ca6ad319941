package execserver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nodeflow/services/graph"
	"nodeflow/services/protocol"
)

// Emitter receives the protocol frames a job produces, in order.
type Emitter func(protocol.Message)

// Engine walks a submitted document in dependency order and streams
// progress, data, and status frames for each node. It simulates node work;
// real deployments swap in an executor behind the same message stream.
type Engine struct {
	StepDelay time.Duration // simulated per-node work, 0 in tests
}

// Run executes one job. It emits status queued -> running, per-node progress
// and data frames, and a final terminal status. A cancelled context stops
// the walk without emitting a terminal status; the caller owns the stopped
// reply.
func (e *Engine) Run(ctx context.Context, jobID int, doc *graph.Document, emit Emitter) {
	emit(protocol.Message{Type: protocol.TypeStatus, JobID: jobID, State: protocol.JobQueued, Message: "job accepted"})
	emit(protocol.Message{Type: protocol.TypeStatus, JobID: jobID, State: protocol.JobRunning, Message: "executing graph"})

	order, err := topoOrder(doc)
	if err != nil {
		emit(protocol.Message{Type: protocol.TypeError, Message: err.Error(), Code: "invalid_graph"})
		return
	}

	results := make(map[string]any, len(order))
	for i, nodeID := range order {
		if ctx.Err() != nil {
			return
		}

		node := doc.Nodes[nodeID]
		running := 0.0
		emit(protocol.Message{
			Type: protocol.TypeProgress, NodeID: nodeID, Progress: &running,
			State: protocol.JobRunning, Text: "running",
			Meta: map[string]string{"type": node.Type},
		})

		if e.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.StepDelay):
			}
		}

		results[nodeID] = map[string]any{"type": node.Type, "step": i + 1}
		done := 1.0
		emit(protocol.Message{
			Type: protocol.TypeProgress, NodeID: nodeID, Progress: &done,
			State: protocol.JobFinished, Text: "done",
		})
	}

	if ctx.Err() != nil {
		return
	}
	emit(protocol.Message{Type: protocol.TypeData, Results: results})
	emit(protocol.Message{Type: protocol.TypeStatus, JobID: jobID, State: protocol.JobFinished, Message: "graph executed"})
}

// topoOrder produces a deterministic dependency order over the document's
// nodes via a Kahn sweep on node-level edges. Cyclic documents are rejected.
func topoOrder(doc *graph.Document) ([]string, error) {
	ids := make([]string, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	succ := make(map[string][]string)
	indeg := make(map[string]int, len(ids))
	for _, e := range doc.Edges {
		from, _, err := graph.ParseEndpoint(e.From)
		if err != nil {
			return nil, err
		}
		to, _, err := graph.ParseEndpoint(e.To)
		if err != nil {
			return nil, err
		}
		if _, ok := doc.Nodes[from]; !ok {
			return nil, fmt.Errorf("edge references unknown node %q", from)
		}
		if _, ok := doc.Nodes[to]; !ok {
			return nil, fmt.Errorf("edge references unknown node %q", to)
		}
		succ[from] = append(succ[from], to)
		indeg[to]++
	}

	var queue []string
	for _, id := range ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		next := succ[id]
		sort.Strings(next)
		for _, n := range next {
			indeg[n]--
			if indeg[n] == 0 {
				queue = append(queue, n)
			}
		}
	}

	if len(order) != len(ids) {
		return nil, fmt.Errorf("graph contains a cycle")
	}
	return order, nil
}
