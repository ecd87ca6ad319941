package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeflow/services/graph"
	"nodeflow/services/meta"
)

func testRegistry(t *testing.T) *meta.Registry {
	t.Helper()

	registry, err := meta.NewRegistry([]meta.NodeType{
		{
			Name:    "source",
			Outputs: []meta.PortSpec{{Name: "out", Type: graph.Simple("str")}},
		},
		{
			Name:    "sink",
			Inputs:  []meta.PortSpec{{Name: "in", Type: graph.Simple("str")}},
			Outputs: []meta.PortSpec{{Name: "passed", Type: graph.Simple("str")}},
		},
		{
			Name:   "multi-sink",
			Inputs: []meta.PortSpec{{Name: "in", Type: graph.Simple("str"), Multi: true}},
		},
		{
			Name:    "number",
			Outputs: []meta.PortSpec{{Name: "out", Type: graph.Simple("int")}},
		},
	})
	require.NoError(t, err)
	return registry
}

func TestAdapter_AddNode_And_Connect(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink"}))

	require.NoError(t, a.AddEdge("a.out", "b.in"))
	assert.Len(t, a.Live().Edges(), 1)
	assert.True(t, a.Dirty())
}

func TestAdapter_Connect_IncompatibleTypes(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("n", graph.Node{Type: "number"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink"}))

	err := a.AddEdge("n.out", "b.in")
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrIncompatible)
	assert.Empty(t, a.Live().Edges())
}

func TestAdapter_Connect_SingleInputOccupied(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a1", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("a2", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink"}))

	require.NoError(t, a.AddEdge("a1.out", "b.in"))

	err := a.AddEdge("a2.out", "b.in")
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrPortOccupied)
}

func TestAdapter_Connect_MultiInputAllowsSeveral(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a1", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("a2", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("m", graph.Node{Type: "multi-sink"}))

	require.NoError(t, a.AddEdge("a1.out", "m.in"))
	require.NoError(t, a.AddEdge("a2.out", "m.in"))
	assert.Len(t, a.Live().Edges(), 2)
}

func TestAdapter_RemoveNode_CascadesEdges(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink"}))
	require.NoError(t, a.AddNode("c", graph.Node{Type: "sink"}))
	require.NoError(t, a.AddEdge("a.out", "b.in"))
	require.NoError(t, a.AddEdge("b.passed", "c.in"))

	a.RemoveNode("b")

	_, exists := a.Live().Node("b")
	assert.False(t, exists)
	for _, e := range a.Live().Edges() {
		from, _, _ := graph.ParseEndpoint(e.From)
		to, _, _ := graph.ParseEndpoint(e.To)
		assert.NotEqual(t, "b", from)
		assert.NotEqual(t, "b", to)
	}
	assert.Empty(t, a.Live().Edges())
}

func TestAdapter_RemoveUnknown_IsNoOp(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	// None of these should panic or error; the surface may have diverged.
	a.RemoveNode("ghost")
	a.RemoveEdge("ghost.out", "ghost.in")
	a.UpdateNodePosition("ghost", [2]float64{1, 2})
	assert.False(t, a.Dirty())
}

func TestAdapter_Serialize_RoundTrip(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a", graph.Node{Type: "source", Position: [2]float64{10, 20}}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink", Title: "My Sink", Position: [2]float64{300, 40}}))
	require.NoError(t, a.AddEdge("a.out", "b.in"))
	a.UpdateNodePosition("a", [2]float64{15.5, 25.25})

	doc := a.Serialize("test", "doc-1")

	b := NewAdapter(testRegistry(t), nil)
	b.LoadDocument(doc)
	got := b.Serialize("test", "doc-1")

	require.Len(t, got.Nodes, 2)
	assert.ElementsMatch(t, doc.Edges, got.Edges)
	for id, want := range doc.Nodes {
		gotNode, ok := got.Nodes[id]
		require.True(t, ok, "node %s survived round trip", id)
		assert.Equal(t, want.Type, gotNode.Type)
		assert.InDelta(t, want.Position[0], gotNode.Position[0], 1e-6)
		assert.InDelta(t, want.Position[1], gotNode.Position[1], 1e-6)
	}
}

func TestAdapter_Serialize_SnapshotDoesNotAliasLiveParams(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a", graph.Node{
		Type:   "source",
		Params: map[string]any{"value": "original"},
	}))

	doc := a.Serialize("test", "doc-1")
	doc.Nodes["a"].Params["value"] = "mutated"

	live, ok := a.Live().Node("a")
	require.True(t, ok)
	assert.Equal(t, "original", live.Params["value"], "mutating a snapshot must not touch the live graph")
}

func TestAdapter_Serialize_OmitsTitleEqualToType(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink", Title: "Renamed"}))

	doc := a.Serialize("test", "doc-1")
	assert.Empty(t, doc.Nodes["a"].Title)
	assert.Equal(t, "Renamed", doc.Nodes["b"].Title)
}

func TestAdapter_Load_DoesNotMarkDirty(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)
	require.NoError(t, a.AddNode("a", graph.Node{Type: "source"}))
	doc := a.Serialize("test", "doc-1")

	b := NewAdapter(testRegistry(t), nil)
	b.LoadDocument(doc)
	assert.False(t, b.Dirty())
}

func TestAdapter_Load_SkipsBadEdges(t *testing.T) {
	doc := graph.NewDocument()
	doc.Nodes["a"] = graph.Node{Type: "source"}
	doc.Nodes["b"] = graph.Node{Type: "sink"}
	doc.Edges = []graph.Edge{
		{From: "a.out", To: "b.in"},
		{From: "ghost.out", To: "b.in"}, // stale node reference
		{From: "a.bogus", To: "b.in"},   // unknown port
		{From: "malformed", To: "b.in"}, // no endpoint separator
	}

	a := NewAdapter(testRegistry(t), nil)
	a.LoadDocument(doc)

	// Load is best-effort: the one good edge survives.
	assert.Len(t, a.Live().Edges(), 1)
}

func TestAdapter_Load_SuppressesStructuralEvents(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)
	require.NoError(t, a.AddNode("a", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink"}))
	require.NoError(t, a.AddEdge("a.out", "b.in"))
	doc := a.Serialize("test", "doc-1")

	b := NewAdapter(testRegistry(t), nil)
	events := make(chan Event, 64)
	b.Bus().Subscribe(events)

	b.LoadDocument(doc)

	// A full load is observed as the single DocumentLoaded transition.
	require.Len(t, events, 1)
	assert.Equal(t, EventDocumentLoaded, (<-events).Type)
}

func TestAdapter_Events_OnUserEdits(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)
	events := make(chan Event, 64)
	a.Bus().Subscribe(events)

	require.NoError(t, a.AddNode("a", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink"}))
	require.NoError(t, a.AddEdge("a.out", "b.in"))
	a.UpdateNodePosition("a", [2]float64{5, 5})
	a.RemoveNode("a")

	var types []EventType
	for len(events) > 0 {
		types = append(types, (<-events).Type)
	}
	assert.Equal(t, []EventType{
		EventNodeAdded, EventNodeAdded, EventEdgeAdded,
		EventNodeMoved, EventEdgeRemoved, EventNodeRemoved,
	}, types)
}

func TestAdapter_DefaultParamsApplied(t *testing.T) {
	registry, err := meta.NewRegistry([]meta.NodeType{
		{
			Name:    "param-node",
			Outputs: []meta.PortSpec{{Name: "out", Type: graph.Simple("str")}},
			Params:  []meta.ParamSpec{{Name: "value", Kind: meta.ParamString, Default: "hello"}},
		},
	})
	require.NoError(t, err)

	a := NewAdapter(registry, nil)
	require.NoError(t, a.AddNode("p", graph.Node{Type: "param-node"}))

	n, ok := a.Live().Node("p")
	require.True(t, ok)
	assert.Equal(t, "hello", n.Params["value"])
}

// End-to-end scenario: build, reject an over-connection, serialize.
func TestAdapter_EndToEnd_SingleEdgeSurvives(t *testing.T) {
	a := NewAdapter(testRegistry(t), nil)

	require.NoError(t, a.AddNode("a", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("a2", graph.Node{Type: "source"}))
	require.NoError(t, a.AddNode("b", graph.Node{Type: "sink"}))

	require.NoError(t, a.AddEdge("a.out", "b.in"))
	require.Error(t, a.AddEdge("a2.out", "b.in")) // single-input port occupied

	doc := a.Serialize("scenario", "doc-e2e")
	require.Len(t, doc.Edges, 1)
	assert.Equal(t, graph.Edge{From: "a.out", To: "b.in"}, doc.Edges[0])
}
