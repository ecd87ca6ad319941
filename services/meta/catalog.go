package meta

import "nodeflow/services/graph"

// BuiltinTypes is the node-type catalog served by the development server.
// Real deployments replace this with their own catalog; the shapes below
// cover every socket descriptor form (simple, list, dict, union, wildcard,
// exec) so the editor can be exercised without a backend.
func BuiltinTypes() []NodeType {
	str := graph.Simple("str")
	integer := graph.Simple("int")
	float := graph.Simple("float")

	return []NodeType{
		{
			Name:     "input",
			Category: "source",
			Outputs: []PortSpec{
				{Name: "value", Type: str},
				{Name: "done", Type: graph.Exec()},
			},
			Params: []ParamSpec{
				{Name: "value", Kind: ParamString, Default: ""},
			},
		},
		{
			Name:     "constant",
			Category: "source",
			Outputs:  []PortSpec{{Name: "out", Type: graph.UnionOf(integer, float)}},
			Params: []ParamSpec{
				{Name: "value", Kind: ParamFloat, Default: 0.0},
			},
		},
		{
			Name:     "collect",
			Category: "transform",
			Inputs:   []PortSpec{{Name: "items", Type: str, Multi: true}},
			Outputs:  []PortSpec{{Name: "list", Type: graph.List(str)}},
		},
		{
			Name:     "map",
			Category: "transform",
			Inputs: []PortSpec{
				{Name: "keys", Type: graph.List(str)},
				{Name: "values", Type: graph.List(float)},
			},
			Outputs: []PortSpec{{Name: "dict", Type: graph.Dict(str, float)}},
		},
		{
			Name:     "passthrough",
			Category: "transform",
			Inputs:   []PortSpec{{Name: "in", Type: graph.Wildcard()}},
			Outputs:  []PortSpec{{Name: "out", Type: graph.Wildcard()}},
		},
		{
			Name:     "compare",
			Category: "logic",
			Inputs: []PortSpec{
				{Name: "left", Type: graph.UnionOf(integer, float)},
				{Name: "right", Type: graph.UnionOf(integer, float)},
			},
			Outputs: []PortSpec{{Name: "result", Type: graph.Simple("bool")}},
			Params: []ParamSpec{
				{Name: "operator", Kind: ParamChoice, Default: "gt", Options: []string{"gt", "lt", "eq", "gte", "lte"}},
			},
		},
		{
			Name:     "output",
			Category: "sink",
			Inputs: []PortSpec{
				{Name: "value", Type: graph.Wildcard()},
				{Name: "trigger", Type: graph.Exec()},
			},
			Params: []ParamSpec{
				{Name: "labels", Kind: ParamStrList, Default: []string{}},
			},
		},
	}
}
