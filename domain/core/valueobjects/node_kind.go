package valueobjects

import "fmt"

// NodeKind selects a node's payload and behavior
type NodeKind string

const (
	KindContent NodeKind = "content"
	KindLabel   NodeKind = "label"
	KindGroup   NodeKind = "group"

	// legacyContentKind is the renderer type older boards stored for content nodes
	legacyContentKind = "glass"
)

// IsValid checks the kind is one of the known kinds
func (k NodeKind) IsValid() bool {
	switch k {
	case KindContent, KindLabel, KindGroup:
		return true
	}
	return false
}

// CanConnect reports whether nodes of this kind may be edge endpoints
func (k NodeKind) CanConnect() bool {
	return k == KindContent || k == KindLabel
}

// String returns the string representation
func (k NodeKind) String() string {
	return string(k)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *NodeKind) UnmarshalText(text []byte) error {
	s := string(text)
	if s == legacyContentKind {
		*k = KindContent
		return nil
	}
	kind := NodeKind(s)
	if !kind.IsValid() {
		return fmt.Errorf("unknown node kind %q", s)
	}
	*k = kind
	return nil
}
