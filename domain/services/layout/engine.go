// Package layout derives node geometry from content: text-driven sizing for
// content and label nodes, and bounding boxes for groups.
package layout

import (
	"math"
	"strings"

	"flowboard/domain/config"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
)

// TextMeasurer reports the rendered box of a text block
type TextMeasurer interface {
	MeasureText(text string, font config.FontSpec) (valueobjects.Size, error)
}

// Engine computes derived geometry. It never fails: without a measurer, or
// when measuring fails, text counts as empty and nodes get the padding-only size.
type Engine struct {
	cfg      config.LayoutConfig
	measurer TextMeasurer
}

// NewEngine creates a layout engine; measurer may be nil
func NewEngine(cfg config.LayoutConfig, measurer TextMeasurer) *Engine {
	return &Engine{cfg: cfg, measurer: measurer}
}

// Config returns the sizing constants in use
func (e *Engine) Config() config.LayoutConfig {
	return e.cfg
}

// ContentSize sizes a content node. The result never shrinks below previous.
func (e *Engine) ContentSize(data entities.NodeData, previous valueobjects.Size) valueobjects.Size {
	title := e.measure(strings.TrimSpace(data.Title), e.cfg.ContentTitleFont)
	desc := e.measure(strings.TrimSpace(data.Description), e.cfg.ContentDescriptionFont)

	computed := valueobjects.Size{
		Width:  math.Max(math.Max(title.Width, desc.Width)+e.cfg.ContentPadding, e.cfg.ContentMinWidth),
		Height: title.Height + desc.Height + e.cfg.ContentPadding,
	}
	return computed.Max(previous)
}

// LabelSize sizes a label node: fixed width, height from wrapped text. Never shrinks below previous.
func (e *Engine) LabelSize(data entities.NodeData, previous valueobjects.Size) valueobjects.Size {
	text := e.measure(strings.TrimSpace(data.Text), e.cfg.LabelFont)
	computed := valueobjects.Size{
		Width:  e.cfg.LabelWidth,
		Height: text.Height + e.cfg.LabelPadding,
	}
	return computed.Max(previous)
}

// NodeSize sizes any text-bearing node. Groups report ok=false.
func (e *Engine) NodeSize(n *entities.Node, previous valueobjects.Size) (size valueobjects.Size, ok bool) {
	switch n.Kind {
	case valueobjects.KindContent:
		return e.ContentSize(n.Data, previous), true
	case valueobjects.KindLabel:
		return e.LabelSize(n.Data, previous), true
	default:
		return previous, false
	}
}

// MemberBounds returns the union of the members' boxes
func (e *Engine) MemberBounds(members []*entities.Node) (valueobjects.Rect, bool) {
	if len(members) == 0 {
		return valueobjects.Rect{}, false
	}
	fallback := e.memberFallback()
	bounds := members[0].Bounds(fallback)
	for _, m := range members[1:] {
		bounds = bounds.Union(m.Bounds(fallback))
	}
	return bounds, true
}

// GroupFrame returns the box a group needs to enclose members: their bounds plus
// padding on every side and the header allowance on top.
func (e *Engine) GroupFrame(members []*entities.Node) (valueobjects.Rect, bool) {
	bounds, ok := e.MemberBounds(members)
	if !ok {
		return valueobjects.Rect{}, false
	}
	frame := bounds.Inset(e.cfg.GroupPadding, e.cfg.GroupPadding)
	frame.Y -= e.cfg.GroupHeaderHeight
	frame.Height += e.cfg.GroupHeaderHeight
	return frame, true
}

// FitGroup returns the frame for an expanded group. Collapsed and childless groups report ok=false.
func (e *Engine) FitGroup(group *entities.Node, children []*entities.Node) (valueobjects.Rect, bool) {
	if !group.IsGroup() || group.Data.Collapsed {
		return valueobjects.Rect{}, false
	}
	return e.GroupFrame(children)
}

// CollapsedSize pins a group's height to its header
func (e *Engine) CollapsedSize(group *entities.Node) valueobjects.Size {
	return valueobjects.Size{Width: group.Size.Width, Height: e.cfg.GroupHeaderHeight}
}

// ApplyText writes the text-driven size of node id back onto doc, using its
// persisted size as the floor. Reports whether the size changed.
func (e *Engine) ApplyText(doc *aggregates.Document, id string) bool {
	n, ok := doc.Node(id)
	if !ok {
		return false
	}
	size, ok := e.NodeSize(n, n.Size)
	if !ok {
		return false
	}
	return doc.SetNodeSize(id, size)
}

// ApplyGroups refits every expanded group with children and returns the ids it changed.
func (e *Engine) ApplyGroups(doc *aggregates.Document) []string {
	var changed []string
	for _, g := range doc.Groups() {
		frame, ok := e.FitGroup(g, doc.Children(g.ID))
		if !ok {
			continue
		}
		moved := doc.MoveNode(g.ID, frame.Origin())
		resized := doc.SetNodeSize(g.ID, frame.Size())
		if moved || resized {
			changed = append(changed, g.ID)
		}
	}
	return changed
}

// ApplyAll sizes every text node, then refits groups
func (e *Engine) ApplyAll(doc *aggregates.Document) bool {
	changed := false
	for _, n := range doc.Nodes() {
		if e.ApplyText(doc, n.ID) {
			changed = true
		}
	}
	if len(e.ApplyGroups(doc)) > 0 {
		changed = true
	}
	return changed
}

func (e *Engine) measure(text string, font config.FontSpec) valueobjects.Size {
	if text == "" || e.measurer == nil {
		return valueobjects.Size{}
	}
	size, err := e.measurer.MeasureText(text, font)
	if err != nil || !size.IsValid() {
		return valueobjects.Size{}
	}
	return size
}

func (e *Engine) memberFallback() valueobjects.Size {
	return valueobjects.Size{Width: e.cfg.DefaultMemberWidth, Height: e.cfg.DefaultMemberHeight}
}
