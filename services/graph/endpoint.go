package graph

import "strings"

// ParseEndpoint splits an edge endpoint string of the form
// "<nodeId>.<portName>" on its last dot. Node ids may themselves contain
// dots, so only the final separator is significant.
func ParseEndpoint(s string) (nodeID, portName string, err error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", &MalformedEndpointError{Endpoint: s}
	}
	return s[:i], s[i+1:], nil
}

// Endpoint joins a node id and port name into the canonical endpoint string.
func Endpoint(nodeID, portName string) string {
	return nodeID + "." + portName
}
