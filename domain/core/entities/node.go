package entities

import (
	"encoding/json"
	"maps"

	"flowboard/domain/core/valueobjects"
)

// Node is a vertex on the board. Its persisted shape is written by
// MarshalJSON in node_json.go.
type Node struct {
	ID       string
	Kind     valueobjects.NodeKind
	Position valueobjects.Position
	Size     valueobjects.Size // zero until measured or resized
	Data     NodeData
	ParentID string

	// Set on members of a collapsed group
	Hidden    bool
	Draggable *bool

	// Selectable and Style are carried through a load/save round trip untouched.
	// Style holds every style key other than width and height.
	Selectable *bool
	Style      map[string]json.RawMessage
}

// NewNode creates a node of the given kind with a fresh id
func NewNode(kind valueobjects.NodeKind, position valueobjects.Position, data NodeData) *Node {
	return &Node{
		ID:       valueobjects.NewNodeID(kind),
		Kind:     kind,
		Position: position,
		Data:     data,
	}
}

// IsGroup reports whether the node is a group container
func (n *Node) IsGroup() bool {
	return n.Kind == valueobjects.KindGroup
}

// IsDraggable reports whether the renderer may drag the node. Unset means draggable.
func (n *Node) IsDraggable() bool {
	return n.Draggable == nil || *n.Draggable
}

// SetDraggable records an explicit draggable flag
func (n *Node) SetDraggable(draggable bool) {
	if draggable {
		n.Draggable = nil
		return
	}
	v := false
	n.Draggable = &v
}

// Bounds returns the node's box, using fallback for any unset dimension
func (n *Node) Bounds(fallback valueobjects.Size) valueobjects.Rect {
	return valueobjects.RectFrom(n.Position, n.Size.Or(fallback))
}

// Clone returns a deep copy
func (n *Node) Clone() *Node {
	c := *n
	if n.Draggable != nil {
		v := *n.Draggable
		c.Draggable = &v
	}
	if n.Selectable != nil {
		v := *n.Selectable
		c.Selectable = &v
	}
	c.Style = maps.Clone(n.Style)
	return &c
}
