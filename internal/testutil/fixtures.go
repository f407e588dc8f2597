// Package testutil holds builders, fakes and mocks shared by package tests.
package testutil

import (
	"strings"
	"unicode/utf8"

	"flowboard/domain/config"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
)

// GridMeasurer treats every rune as 10px wide and wraps at the font's WrapWidth
type GridMeasurer struct{}

func (GridMeasurer) MeasureText(text string, font config.FontSpec) (valueobjects.Size, error) {
	lines := 0
	widest := 0.0
	for _, line := range strings.Split(text, "\n") {
		w := float64(utf8.RuneCountInString(line)) * 10
		n := 1
		if font.WrapWidth > 0 && w > font.WrapWidth {
			n = int((w + font.WrapWidth - 1) / font.WrapWidth)
			w = font.WrapWidth
		}
		lines += n
		if w > widest {
			widest = w
		}
	}
	return valueobjects.Size{Width: widest, Height: float64(lines) * font.LineHeight}, nil
}

// DocumentBuilder helps create test documents
type DocumentBuilder struct {
	id    string
	state aggregates.DocumentState
}

func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{
		id:    "test-board",
		state: aggregates.DocumentState{Viewport: valueobjects.DefaultViewport()},
	}
}

func (b *DocumentBuilder) WithID(id string) *DocumentBuilder {
	b.id = id
	return b
}

func (b *DocumentBuilder) WithContent(id string, x, y float64, title string) *DocumentBuilder {
	b.state.Nodes = append(b.state.Nodes, &entities.Node{
		ID:       id,
		Kind:     valueobjects.KindContent,
		Position: valueobjects.Position{X: x, Y: y},
		Data:     entities.ContentData(title, "..."),
	})
	return b
}

func (b *DocumentBuilder) WithLabel(id string, x, y float64, text string) *DocumentBuilder {
	b.state.Nodes = append(b.state.Nodes, &entities.Node{
		ID:       id,
		Kind:     valueobjects.KindLabel,
		Position: valueobjects.Position{X: x, Y: y},
		Data:     entities.LabelData(text),
	})
	return b
}

// WithGroup adds a group and makes members its children
func (b *DocumentBuilder) WithGroup(id string, members ...string) *DocumentBuilder {
	b.state.Nodes = append([]*entities.Node{{
		ID:   id,
		Kind: valueobjects.KindGroup,
		Data: entities.GroupData("Group", valueobjects.ColorPurple),
	}}, b.state.Nodes...)
	for _, n := range b.state.Nodes {
		for _, m := range members {
			if n.ID == m {
				n.ParentID = id
			}
		}
	}
	return b
}

// WithSize sets an explicit box on an already added node
func (b *DocumentBuilder) WithSize(id string, w, h float64) *DocumentBuilder {
	for _, n := range b.state.Nodes {
		if n.ID == id {
			n.Size = valueobjects.Size{Width: w, Height: h}
		}
	}
	return b
}

func (b *DocumentBuilder) WithEdge(id, source, target string) *DocumentBuilder {
	b.state.Edges = append(b.state.Edges, &entities.Edge{
		ID:     id,
		Source: source,
		Target: target,
		Type:   entities.EdgeTypeSmoothStep,
		Style:  entities.ConnectEdgeStyle,
	})
	return b
}

func (b *DocumentBuilder) WithViewport(vp valueobjects.Viewport) *DocumentBuilder {
	b.state.Viewport = vp
	return b
}

// State returns a deep copy of the built state
func (b *DocumentBuilder) State() aggregates.DocumentState {
	g := aggregates.GraphState{Nodes: b.state.Nodes, Edges: b.state.Edges}.Clone()
	return aggregates.DocumentState{Nodes: g.Nodes, Edges: g.Edges, Viewport: b.state.Viewport}
}

func (b *DocumentBuilder) Build() (*aggregates.Document, error) {
	return aggregates.ReconstructDocument(b.id, b.State())
}

func (b *DocumentBuilder) MustBuild() *aggregates.Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}
