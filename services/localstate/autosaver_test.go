package localstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeflow/services/editor"
	"nodeflow/services/graph"
	"nodeflow/services/meta"
)

func testAdapter(t *testing.T) *editor.Adapter {
	t.Helper()
	registry, err := meta.NewRegistry(meta.BuiltinTypes())
	require.NoError(t, err)
	return editor.NewAdapter(registry, editor.NewBus())
}

func TestTick_SkipsWhenClean(t *testing.T) {
	store := openTestStore(t)
	adapter := testAdapter(t)

	saver := NewAutosaver(adapter, store, time.Minute, func() (string, string) {
		return "untitled", "doc-1"
	}, nil)
	saver.Tick()

	doc, _, err := store.LoadAutosave()
	require.NoError(t, err)
	assert.Nil(t, doc, "a clean adapter must not produce an autosave")
}

func TestTick_PersistsDirtyGraphAndClearsFlag(t *testing.T) {
	store := openTestStore(t)
	adapter := testAdapter(t)

	require.NoError(t, adapter.AddNode("in", graph.Node{Type: "input"}))
	require.True(t, adapter.Dirty())

	saver := NewAutosaver(adapter, store, time.Minute, func() (string, string) {
		return "my graph", "doc-1"
	}, nil)
	saver.Tick()

	doc, name, err := store.LoadAutosave()
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "my graph", name)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Contains(t, doc.Nodes, "in")

	assert.False(t, adapter.Dirty(), "a successful autosave clears the dirty flag")
}

func TestTick_FailureKeepsDirtyFlag(t *testing.T) {
	store := openTestStore(t)
	adapter := testAdapter(t)

	require.NoError(t, adapter.AddNode("in", graph.Node{Type: "input"}))

	var reported error
	saver := NewAutosaver(adapter, store, time.Minute, func() (string, string) {
		return "untitled", "doc-1"
	}, func(err error) { reported = err })

	// A closed store makes every write fail.
	require.NoError(t, store.Close())
	saver.Tick()

	assert.Error(t, reported)
	assert.True(t, adapter.Dirty(), "a failed autosave must not clear the dirty flag")
}
