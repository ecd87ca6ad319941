package graph

import "strings"

// Reserved socket type names.
const (
	// WildcardKey is the sentinel key for the "any" socket type, compatible
	// with everything.
	WildcardKey = "*"

	// ExecKey is the control-flow socket key. Rendered distinctly by the UI
	// but follows the ordinary compatibility rule.
	ExecKey = "exec"

	wildcardName = "any"
)

// SocketType is a recursive socket descriptor: a base name, optionally a
// single generic subtype (list<T>), a key/value pair (dict<K,V>), or a union
// of alternatives.
type SocketType struct {
	Name  string       `json:"name"`
	Sub   *SocketType  `json:"sub,omitempty"`
	MapK  *SocketType  `json:"key,omitempty"`
	MapV  *SocketType  `json:"value,omitempty"`
	Union []SocketType `json:"union,omitempty"`
}

// Simple returns a descriptor with just a base name.
func Simple(name string) SocketType { return SocketType{Name: name} }

// List returns a list<elem> descriptor.
func List(elem SocketType) SocketType { return SocketType{Name: "list", Sub: &elem} }

// Dict returns a dict<key, value> descriptor.
func Dict(key, value SocketType) SocketType {
	return SocketType{Name: "dict", MapK: &key, MapV: &value}
}

// UnionOf returns a union descriptor over the given alternatives. Component
// order is declaration order and is preserved in the derived key.
func UnionOf(alts ...SocketType) SocketType { return SocketType{Union: alts} }

// Wildcard returns the "any" descriptor, compatible with every socket.
func Wildcard() SocketType { return SocketType{Name: wildcardName} }

// Exec returns the control-flow descriptor.
func Exec() SocketType { return SocketType{Name: ExecKey} }

// Key derives the canonical string key for a descriptor. Unions join their
// component keys with commas in declaration order; the wildcard type yields
// the sentinel key. Every compatibility and coloring decision must be made
// on this key, never on the descriptor directly.
func (t SocketType) Key() string {
	if len(t.Union) > 0 {
		keys := make([]string, len(t.Union))
		for i, alt := range t.Union {
			keys[i] = alt.Key()
		}
		return strings.Join(keys, ",")
	}
	switch {
	case t.Name == wildcardName:
		return WildcardKey
	case t.Sub != nil:
		return t.Name + "<" + t.Sub.Key() + ">"
	case t.MapK != nil && t.MapV != nil:
		return t.Name + "<" + t.MapK.Key() + "," + t.MapV.Key() + ">"
	default:
		return t.Name
	}
}

// Compatible reports whether an output socket with key outKey may be
// connected to an input socket with key inKey. Either side being the
// wildcard sentinel, identical keys, or union membership of the non-union
// side all qualify. This is the single implementation of connection policy.
func Compatible(outKey, inKey string) bool {
	if outKey == WildcardKey || inKey == WildcardKey {
		return true
	}
	if outKey == inKey {
		return true
	}
	if unionContains(outKey, inKey) || unionContains(inKey, outKey) {
		return true
	}
	return false
}

// unionContains reports whether unionKey is a union key containing member.
// Generic keys like dict<str,int> contain commas inside angle brackets, so
// splitting honors bracket depth.
func unionContains(unionKey, member string) bool {
	depth := 0
	start := 0
	found := false
	for i := 0; i < len(unionKey); i++ {
		switch unionKey[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				if unionKey[start:i] == member {
					return true
				}
				start = i + 1
				found = true
			}
		}
	}
	if found && unionKey[start:] == member {
		return true
	}
	return false
}
