package meta

import "fmt"

// Registry holds the node-type metadata for one editor session. It is passed
// explicitly into every component that needs it; there is no package-level
// current-registry pointer.
type Registry struct {
	types map[string]NodeType
	order []string
}

// NewRegistry builds a registry from the given types, validating each at the
// boundary. Declaration order is preserved for listing.
func NewRegistry(types []NodeType) (*Registry, error) {
	r := &Registry{types: make(map[string]NodeType, len(types))}
	for _, t := range types {
		if t.Name == "" {
			return nil, fmt.Errorf("node type with empty name")
		}
		if _, ok := r.types[t.Name]; ok {
			return nil, fmt.Errorf("duplicate node type %q", t.Name)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		r.types[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

// Lookup returns the metadata for a node type name.
func (r *Registry) Lookup(name string) (NodeType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Types returns all node types in declaration order.
func (r *Registry) Types() []NodeType {
	out := make([]NodeType, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.types[name])
	}
	return out
}

// HasInput reports whether the node type declares the named input port.
// Satisfies graph.PortCatalog.
func (r *Registry) HasInput(nodeType, port string) bool {
	t, ok := r.types[nodeType]
	if !ok {
		return false
	}
	_, ok = t.Input(port)
	return ok
}

// HasOutput reports whether the node type declares the named output port.
// Satisfies graph.PortCatalog.
func (r *Registry) HasOutput(nodeType, port string) bool {
	t, ok := r.types[nodeType]
	if !ok {
		return false
	}
	_, ok = t.Output(port)
	return ok
}
