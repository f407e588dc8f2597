package entities

import "flowboard/domain/core/valueobjects"

// EdgeTypeSmoothStep is the connector shape every board edge uses
const EdgeTypeSmoothStep = "smoothstep"

// EdgeStyle is a rendering hint only
type EdgeStyle struct {
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// Stock styles
var (
	ConnectEdgeStyle = EdgeStyle{Stroke: "rgba(255,255,255,0.6)", StrokeWidth: 0.6}
	LabelEdgeStyle   = EdgeStyle{Stroke: "rgba(255,255,255,0.6)", StrokeWidth: 1.2}
	SeedEdgeStyle    = EdgeStyle{Stroke: "white", Opacity: 0.4}
)

// Edge is a directed connector between two nodes
type Edge struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Type     string    `json:"type,omitempty"`
	Animated bool      `json:"animated"`
	Style    EdgeStyle `json:"style"`
}

// NewEdge creates an edge with a fresh id
func NewEdge(source, target string, style EdgeStyle) *Edge {
	return &Edge{
		ID:     valueobjects.NewEdgeID(),
		Source: source,
		Target: target,
		Type:   EdgeTypeSmoothStep,
		Style:  style,
	}
}

// Touches reports whether the edge has id as either endpoint
func (e *Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// Joins reports whether the edge directly links a and b in either direction
func (e *Edge) Joins(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Clone returns a copy
func (e *Edge) Clone() *Edge {
	c := *e
	return &c
}
