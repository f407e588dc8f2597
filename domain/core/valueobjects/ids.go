package valueobjects

import "github.com/google/uuid"

// ID prefixes by entity. Ids are opaque; prefixes only aid debugging.
const (
	contentIDPrefix = "node-"
	labelIDPrefix   = "lbl-"
	groupIDPrefix   = "group-"
	edgeIDPrefix    = "e-"
)

// NewNodeID creates a fresh id for a node of the given kind
func NewNodeID(kind NodeKind) string {
	switch kind {
	case KindLabel:
		return labelIDPrefix + uuid.New().String()
	case KindGroup:
		return groupIDPrefix + uuid.New().String()
	default:
		return contentIDPrefix + uuid.New().String()
	}
}

// NewEdgeID creates a fresh edge id
func NewEdgeID() string {
	return edgeIDPrefix + uuid.New().String()
}
