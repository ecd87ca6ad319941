package localstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeflow/services/graph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionToken_EmptyWhenUnset(t *testing.T) {
	store := openTestStore(t)

	token, err := store.SessionToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetSessionToken("tok-1"))
	token, err := store.SessionToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Tokens replace each other wholesale.
	require.NoError(t, store.SetSessionToken("tok-2"))
	token, err = store.SessionToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestLoadAutosave_NilWhenAbsent(t *testing.T) {
	store := openTestStore(t)

	doc, name, err := store.LoadAutosave()
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Empty(t, name)
}

func TestAutosave_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	doc := graph.NewDocument()
	doc.Name = "pipeline"
	doc.Nodes["in"] = graph.Node{Type: "input", Position: [2]float64{10, 20}}
	doc.Nodes["out"] = graph.Node{Type: "output"}
	doc.Edges = append(doc.Edges, graph.Edge{From: "in.value", To: "out.value"})

	require.NoError(t, store.SaveAutosave(doc, "pipeline"))

	loaded, name, err := store.LoadAutosave()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "pipeline", name)
	assert.Equal(t, doc.ID, loaded.ID)
	assert.Len(t, loaded.Nodes, 2)
	assert.Equal(t, [2]float64{10, 20}, loaded.Nodes["in"].Position)
	require.Len(t, loaded.Edges, 1)
	assert.Equal(t, "in.value", loaded.Edges[0].From)
}

func TestAutosave_ReplacesPrevious(t *testing.T) {
	store := openTestStore(t)

	first := graph.NewDocument()
	first.Nodes["a"] = graph.Node{Type: "input"}
	require.NoError(t, store.SaveAutosave(first, "first"))

	second := graph.NewDocument()
	second.Nodes["b"] = graph.Node{Type: "output"}
	require.NoError(t, store.SaveAutosave(second, "second"))

	loaded, name, err := store.LoadAutosave()
	require.NoError(t, err)
	assert.Equal(t, "second", name)
	assert.Contains(t, loaded.Nodes, "b")
	assert.NotContains(t, loaded.Nodes, "a")
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SetSessionToken("persisted"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	token, err := reopened.SessionToken()
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}
