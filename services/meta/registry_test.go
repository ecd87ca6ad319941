package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeflow/services/graph"
)

func TestParamSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    ParamSpec
		value   any
		wantErr bool
	}{
		{"string ok", ParamSpec{Name: "label", Kind: ParamString}, "hello", false},
		{"string wrong type", ParamSpec{Name: "label", Kind: ParamString}, 42, true},
		{"int ok", ParamSpec{Name: "count", Kind: ParamInt}, 3, false},
		{"int from json number", ParamSpec{Name: "count", Kind: ParamInt}, float64(3), false},
		{"int fractional", ParamSpec{Name: "count", Kind: ParamInt}, 3.5, true},
		{"float ok", ParamSpec{Name: "ratio", Kind: ParamFloat}, 0.25, false},
		{"float accepts int", ParamSpec{Name: "ratio", Kind: ParamFloat}, 2, false},
		{"float wrong type", ParamSpec{Name: "ratio", Kind: ParamFloat}, "fast", true},
		{"bool ok", ParamSpec{Name: "enabled", Kind: ParamBool}, true, false},
		{"bool wrong type", ParamSpec{Name: "enabled", Kind: ParamBool}, "true", true},
		{"str list ok", ParamSpec{Name: "tags", Kind: ParamStrList}, []string{"a", "b"}, false},
		{"str list from json", ParamSpec{Name: "tags", Kind: ParamStrList}, []any{"a", "b"}, false},
		{"str list mixed", ParamSpec{Name: "tags", Kind: ParamStrList}, []any{"a", 1}, true},
		{"choice ok", ParamSpec{Name: "op", Kind: ParamChoice, Options: []string{"eq", "lt"}}, "eq", false},
		{"choice unknown option", ParamSpec{Name: "op", Kind: ParamChoice, Options: []string{"eq", "lt"}}, "gt", true},
		{"choice wrong type", ParamSpec{Name: "op", Kind: ParamChoice, Options: []string{"eq"}}, 1, true},
		{"unknown kind", ParamSpec{Name: "x", Kind: "mystery"}, "v", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNodeTypeDefaultParams(t *testing.T) {
	nt := NodeType{
		Name: "compare",
		Params: []ParamSpec{
			{Name: "op", Kind: ParamChoice, Default: "eq", Options: []string{"eq", "lt"}},
			{Name: "label", Kind: ParamString},
		},
	}

	params := nt.DefaultParams()
	assert.Equal(t, map[string]any{"op": "eq"}, params)

	assert.Nil(t, NodeType{Name: "bare"}.DefaultParams())
}

func TestNodeTypePortLookup(t *testing.T) {
	nt := NodeType{
		Name:    "mix",
		Inputs:  []PortSpec{{Name: "left", Type: graph.Simple("int")}, {Name: "right", Type: graph.Simple("int")}},
		Outputs: []PortSpec{{Name: "result", Type: graph.Simple("int")}},
	}

	in, ok := nt.Input("right")
	require.True(t, ok)
	assert.Equal(t, "right", in.Name)

	_, ok = nt.Input("result")
	assert.False(t, ok, "output ports are not visible through Input")

	out, ok := nt.Output("result")
	require.True(t, ok)
	assert.Equal(t, "result", out.Name)
}

func TestNewRegistry_ValidatesAtBoundary(t *testing.T) {
	valid := NodeType{Name: "a", Outputs: []PortSpec{{Name: "out", Type: graph.Simple("int")}}}

	t.Run("duplicate name", func(t *testing.T) {
		_, err := NewRegistry([]NodeType{valid, valid})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewRegistry([]NodeType{{Name: ""}})
		assert.Error(t, err)
	})

	t.Run("bad default", func(t *testing.T) {
		bad := NodeType{Name: "b", Params: []ParamSpec{{Name: "n", Kind: ParamInt, Default: "three"}}}
		_, err := NewRegistry([]NodeType{bad})
		assert.Error(t, err)
	})

	t.Run("empty port name", func(t *testing.T) {
		bad := NodeType{Name: "c", Inputs: []PortSpec{{Name: ""}}}
		_, err := NewRegistry([]NodeType{bad})
		assert.Error(t, err)
	})
}

func TestRegistry_PreservesDeclarationOrder(t *testing.T) {
	registry, err := NewRegistry([]NodeType{{Name: "z"}, {Name: "a"}, {Name: "m"}})
	require.NoError(t, err)

	var names []string
	for _, nt := range registry.Types() {
		names = append(names, nt.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestRegistry_PortCatalog(t *testing.T) {
	registry, err := NewRegistry(BuiltinTypes())
	require.NoError(t, err)

	assert.True(t, registry.HasOutput("input", "value"))
	assert.True(t, registry.HasInput("output", "value"))
	assert.False(t, registry.HasInput("input", "value"), "input node has no input ports")
	assert.False(t, registry.HasOutput("nope", "value"))
}

func TestBuiltinTypes_AllValid(t *testing.T) {
	registry, err := NewRegistry(BuiltinTypes())
	require.NoError(t, err)
	assert.NotEmpty(t, registry.Types())
}
