package graph

import "fmt"

// PortCatalog is the subset of node-type metadata the document model needs
// for structural validation. Implemented by meta.Registry.
type PortCatalog interface {
	HasInput(nodeType, port string) bool
	HasOutput(nodeType, port string) bool
}

// Validate checks that every edge endpoint references an existing node and a
// port declared by that node's type metadata. The first violation is
// returned as a StructuralError.
func Validate(d *Document, catalog PortCatalog) error {
	for _, e := range d.Edges {
		fromNode, fromPort, err := ParseEndpoint(e.From)
		if err != nil {
			return err
		}
		toNode, toPort, err := ParseEndpoint(e.To)
		if err != nil {
			return err
		}

		src, ok := d.Nodes[fromNode]
		if !ok {
			return &StructuralError{Kind: "dangling_edge", Msg: fmt.Sprintf("edge references unknown node %q", fromNode), Err: ErrUnknownNode}
		}
		dst, ok := d.Nodes[toNode]
		if !ok {
			return &StructuralError{Kind: "dangling_edge", Msg: fmt.Sprintf("edge references unknown node %q", toNode), Err: ErrUnknownNode}
		}

		if !catalog.HasOutput(src.Type, fromPort) {
			return &StructuralError{Kind: "unknown_port", Msg: fmt.Sprintf("node %q (%s) has no output port %q", fromNode, src.Type, fromPort), Err: ErrUnknownPort}
		}
		if !catalog.HasInput(dst.Type, toPort) {
			return &StructuralError{Kind: "unknown_port", Msg: fmt.Sprintf("node %q (%s) has no input port %q", toNode, dst.Type, toPort), Err: ErrUnknownPort}
		}
	}
	return nil
}
