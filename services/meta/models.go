package meta

import (
	"fmt"

	"nodeflow/services/graph"
)

// PortSpec declares one named, typed connection point on a node type. Multi
// is only meaningful on input ports: it allows more than one incoming edge.
type PortSpec struct {
	Name  string           `json:"name"`
	Type  graph.SocketType `json:"type"`
	Multi bool             `json:"multi,omitempty"`
}

// ParamKind is the tagged variant discriminator for node parameters.
type ParamKind string

const (
	ParamString  ParamKind = "string"
	ParamInt     ParamKind = "int"
	ParamFloat   ParamKind = "float"
	ParamBool    ParamKind = "bool"
	ParamStrList ParamKind = "str_list"
	ParamChoice  ParamKind = "choice"
)

// ParamSpec declares one node parameter: its kind, its default value, and
// for choice parameters the allowed options. Values are validated against
// the kind when metadata is ingested, so downstream code can match on Kind
// instead of probing untyped bags.
type ParamSpec struct {
	Name    string    `json:"name"`
	Kind    ParamKind `json:"kind"`
	Default any       `json:"default,omitempty"`
	Options []string  `json:"options,omitempty"`
}

// Validate checks a supplied value against the parameter's kind.
func (p ParamSpec) Validate(value any) error {
	switch p.Kind {
	case ParamString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("param %q: expected string, got %T", p.Name, value)
		}
	case ParamInt:
		switch v := value.(type) {
		case int:
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("param %q: expected integer, got %v", p.Name, v)
			}
		default:
			return fmt.Errorf("param %q: expected integer, got %T", p.Name, value)
		}
	case ParamFloat:
		switch value.(type) {
		case float64, int:
		default:
			return fmt.Errorf("param %q: expected number, got %T", p.Name, value)
		}
	case ParamBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("param %q: expected bool, got %T", p.Name, value)
		}
	case ParamStrList:
		switch v := value.(type) {
		case []string:
		case []any:
			for _, item := range v {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("param %q: expected string list, found %T element", p.Name, item)
				}
			}
		default:
			return fmt.Errorf("param %q: expected string list, got %T", p.Name, value)
		}
	case ParamChoice:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("param %q: expected choice string, got %T", p.Name, value)
		}
		for _, opt := range p.Options {
			if opt == s {
				return nil
			}
		}
		return fmt.Errorf("param %q: %q is not one of %v", p.Name, s, p.Options)
	default:
		return fmt.Errorf("param %q: unknown kind %q", p.Name, p.Kind)
	}
	return nil
}

// NodeType is the metadata for one node type: ordered input and output port
// lists and the declared parameter schema.
type NodeType struct {
	Name     string      `json:"name"`
	Category string      `json:"category,omitempty"`
	Inputs   []PortSpec  `json:"inputs"`
	Outputs  []PortSpec  `json:"outputs"`
	Params   []ParamSpec `json:"params,omitempty"`
}

// Input returns the named input port spec.
func (t NodeType) Input(name string) (PortSpec, bool) {
	for _, p := range t.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// Output returns the named output port spec.
func (t NodeType) Output(name string) (PortSpec, bool) {
	for _, p := range t.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// DefaultParams materializes the default parameter bag for a new node of
// this type.
func (t NodeType) DefaultParams() map[string]any {
	if len(t.Params) == 0 {
		return nil
	}
	params := make(map[string]any, len(t.Params))
	for _, p := range t.Params {
		if p.Default != nil {
			params[p.Name] = p.Default
		}
	}
	return params
}

// Validate checks the declared defaults against their own kinds. Called when
// metadata is ingested so a bad catalog fails at the boundary.
func (t NodeType) Validate() error {
	for _, p := range t.Params {
		if p.Default == nil {
			continue
		}
		if err := p.Validate(p.Default); err != nil {
			return fmt.Errorf("node type %q: invalid default: %w", t.Name, err)
		}
	}
	for _, p := range t.Inputs {
		if p.Name == "" {
			return fmt.Errorf("node type %q: input port with empty name", t.Name)
		}
	}
	for _, p := range t.Outputs {
		if p.Name == "" {
			return fmt.Errorf("node type %q: output port with empty name", t.Name)
		}
	}
	return nil
}
