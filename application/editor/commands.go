package editor

import (
	"fmt"

	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	"flowboard/domain/events"
	pkgerrors "flowboard/pkg/errors"

	"go.uber.org/zap"
)

// Click toggles a node in the selection. Unknown ids and members folded
// inside a collapsed group are ignored.
func (s *Session) Click(id string) {
	_ = s.mutate(func() error {
		n, ok := s.doc.Node(id)
		if !ok {
			s.logger.Debug("Click on unknown node ignored", zap.String("node_id", id))
			return nil
		}
		if n.Hidden {
			s.logger.Debug("Click on hidden node ignored", zap.String("node_id", id))
			return nil
		}
		if s.sel.Click(id) {
			s.selectionChangedLocked()
		}
		return nil
	})
}

// SelectAll selects every node, past the click cap
func (s *Session) SelectAll() {
	_ = s.mutate(func() error {
		ids := make([]string, 0, s.doc.NodeCount())
		for _, n := range s.doc.Nodes() {
			ids = append(ids, n.ID)
		}
		if s.sel.Replace(ids) {
			s.selectionChangedLocked()
		}
		return nil
	})
}

// SelectArea selects every visible node lying fully inside area, past the click cap
func (s *Session) SelectArea(area valueobjects.Rect) {
	_ = s.mutate(func() error {
		fallback := s.memberFallback()
		var ids []string
		for _, n := range s.doc.Nodes() {
			if n.Hidden {
				continue
			}
			b := n.Bounds(fallback)
			if area.Contains(b.Origin()) && area.Contains(valueobjects.Position{X: b.MaxX(), Y: b.MaxY()}) {
				ids = append(ids, n.ID)
			}
		}
		if s.sel.Replace(ids) {
			s.selectionChangedLocked()
		}
		return nil
	})
}

// ClearSelection empties the selection
func (s *Session) ClearSelection() {
	_ = s.mutate(func() error {
		if s.sel.Clear() {
			s.selectionChangedLocked()
		}
		return nil
	})
}

// Connect links the two selected nodes, first pick to second pick.
func (s *Session) Connect() (*entities.Edge, error) {
	var edge *entities.Edge
	err := s.mutate(func() error {
		a, b, ok := s.sel.Pair()
		if !ok {
			return s.rejectLocked("connect", pkgerrors.InvalidSelection("select exactly 2 nodes to connect"))
		}
		if err := s.requireConnectableLocked("connect", a, b); err != nil {
			return err
		}
		created, err := s.doc.AddEdge(a, b, entities.ConnectEdgeStyle)
		if err != nil {
			return err
		}
		edge = created
		s.clearSelectionLocked()
		return nil
	})
	return edge, err
}

// ConnectNodes links source to target directly, as a drag between handles does.
// The selection is left alone.
func (s *Session) ConnectNodes(source, target string) (*entities.Edge, error) {
	var edge *entities.Edge
	err := s.mutate(func() error {
		if err := s.requireConnectableLocked("connect", source, target); err != nil {
			return err
		}
		created, err := s.doc.AddEdge(source, target, entities.ConnectEdgeStyle)
		if err != nil {
			return err
		}
		edge = created
		return nil
	})
	return edge, err
}

// InsertLabelBetween puts a label node at the midpoint of the two selected
// nodes and reroutes them through it: first -> label -> second. Any direct
// edge between the two is removed.
func (s *Session) InsertLabelBetween() (*entities.Node, error) {
	var label *entities.Node
	err := s.mutate(func() error {
		a, b, ok := s.sel.Pair()
		if !ok {
			return s.rejectLocked("insert_label", pkgerrors.InvalidSelection("select exactly 2 nodes"))
		}
		nodeA, okA := s.doc.Node(a)
		nodeB, okB := s.doc.Node(b)
		if !okA || !okB {
			return s.rejectLocked("insert_label", pkgerrors.InvalidSelection("selected node no longer exists"))
		}
		if nodeA.Kind == valueobjects.KindLabel || nodeB.Kind == valueobjects.KindLabel {
			return s.rejectLocked("insert_label", pkgerrors.InvalidSelection("cannot add label between label nodes"))
		}
		if nodeA.IsGroup() || nodeB.IsGroup() {
			return s.rejectLocked("insert_label", pkgerrors.InvalidSelection("groups cannot be connected"))
		}

		mid := nodeA.Position.Midpoint(nodeB.Position)
		created := s.doc.AddNode(valueobjects.KindLabel, mid, entities.LabelData(s.cfg.NewLabelText))
		s.engine.ApplyText(s.doc, created.ID)
		s.doc.RemoveEdgesBetween(a, b)
		if _, err := s.doc.AddEdge(a, created.ID, entities.LabelEdgeStyle); err != nil {
			return fmt.Errorf("insert label: %w", err)
		}
		if _, err := s.doc.AddEdge(created.ID, b, entities.LabelEdgeStyle); err != nil {
			return fmt.Errorf("insert label: %w", err)
		}
		label, _ = s.doc.Node(created.ID)
		s.clearSelectionLocked()
		return nil
	})
	return label, err
}

// CreateGroup frames the selected non-group nodes in a new group, drawn
// behind everything, and makes them its members. Members taken out of a
// collapsed group are shown again.
func (s *Session) CreateGroup() (*entities.Node, error) {
	var group *entities.Node
	err := s.mutate(func() error {
		var members []*entities.Node
		for _, id := range s.sel.IDs() {
			if n, ok := s.doc.Node(id); ok && !n.IsGroup() {
				members = append(members, n)
			}
		}
		if len(members) < 2 {
			return s.rejectLocked("create_group", pkgerrors.InsufficientSelection())
		}

		frame, _ := s.engine.GroupFrame(members)
		color := valueobjects.RandomGroupColor(s.rnd)
		created := s.doc.AddNode(valueobjects.KindGroup, frame.Origin(), entities.GroupData(s.cfg.NewGroupTitle, color))
		s.doc.SetNodeSize(created.ID, frame.Size())
		s.doc.SendToBack(created.ID)
		for _, m := range members {
			if err := s.doc.SetParent(m.ID, created.ID); err != nil {
				return fmt.Errorf("create group: %w", err)
			}
			s.doc.SetNodeVisibility(m.ID, false, true)
		}
		group, _ = s.doc.Node(created.ID)
		s.clearSelectionLocked()
		return nil
	})
	return group, err
}

// DeleteSelected removes the selected nodes and their edges. Members of a
// deleted group stay on the board, released from it.
func (s *Session) DeleteSelected() []string {
	var removed []string
	_ = s.mutate(func() error {
		ids := s.sel.IDs()
		if len(ids) == 0 {
			return nil
		}
		removed, _ = s.doc.RemoveNodes(ids)
		s.clearSelectionLocked()
		return nil
	})
	return removed
}

// DeleteEdge removes a single edge. Unknown ids are ignored.
func (s *Session) DeleteEdge(id string) bool {
	var ok bool
	_ = s.mutate(func() error {
		ok = s.doc.RemoveEdge(id)
		if !ok {
			s.logger.Debug("Delete of unknown edge ignored", zap.String("edge_id", id))
		}
		return nil
	})
	return ok
}

// AddNode creates a placeholder content node centered on the visible canvas
func (s *Session) AddNode() *entities.Node {
	var node *entities.Node
	_ = s.mutate(func() error {
		screen := s.surface.ScreenSize()
		center := s.doc.Viewport().ScreenToDocument(valueobjects.Position{X: screen.Width / 2, Y: screen.Height / 2})
		node = s.addContentLocked(center.Translate(-s.cfg.NewNodeOffsetX, -s.cfg.NewNodeOffsetY))
		return nil
	})
	return node
}

// AddNodeAt creates a placeholder content node with its corner at p
func (s *Session) AddNodeAt(p valueobjects.Position) (*entities.Node, error) {
	if !p.IsFinite() {
		return nil, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	var node *entities.Node
	_ = s.mutate(func() error {
		node = s.addContentLocked(p)
		return nil
	})
	return node, nil
}

// MoveNode places a node. Moving a group carries its members by the same
// offset. Unknown and non-draggable nodes are ignored.
func (s *Session) MoveNode(id string, p valueobjects.Position) error {
	if !p.IsFinite() {
		return pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return s.mutate(func() error {
		n, ok := s.doc.Node(id)
		if !ok {
			s.logger.Debug("Move of unknown node ignored", zap.String("node_id", id))
			return nil
		}
		if !n.IsDraggable() {
			s.logger.Debug("Move of locked node ignored", zap.String("node_id", id))
			return nil
		}
		dx, dy := p.Sub(n.Position)
		s.doc.MoveNode(id, p)
		if n.IsGroup() {
			for _, child := range s.doc.Children(id) {
				s.doc.MoveNode(child.ID, child.Position.Translate(dx, dy))
			}
		}
		return nil
	})
}

// ResizeNode sets a node's box as the user drew it. The box becomes the floor
// for later text-driven growth.
func (s *Session) ResizeNode(id string, size valueobjects.Size) error {
	if !size.IsValid() || size.IsZero() {
		return pkgerrors.NewValidationError("size must be positive and finite")
	}
	return s.mutate(func() error {
		n, ok := s.doc.Node(id)
		if !ok {
			s.logger.Debug("Resize of unknown node ignored", zap.String("node_id", id))
			return nil
		}
		if n.IsGroup() && n.Data.Collapsed {
			s.logger.Debug("Resize of collapsed group ignored", zap.String("node_id", id))
			return nil
		}
		s.doc.SetNodeSize(id, size)
		return nil
	})
}

// UpdateNodeData merges patch into a node's payload and re-derives its size.
// A change to a group's collapsed flag folds or unfolds it. Unknown ids are ignored.
func (s *Session) UpdateNodeData(id string, patch entities.DataPatch) {
	_ = s.mutate(func() error {
		n, ok := s.doc.Node(id)
		if !ok {
			s.logger.Debug("Update of unknown node ignored", zap.String("node_id", id))
			return nil
		}
		collapse := patch.Collapsed
		patch.Collapsed = nil
		if !n.IsGroup() {
			collapse = nil
		}
		if s.doc.UpdateNodeData(id, patch) && patch.TouchesText() {
			s.engine.ApplyText(s.doc, id)
		}
		if collapse != nil && *collapse != n.Data.Collapsed {
			s.setCollapsedLocked(id, *collapse)
		}
		return nil
	})
}

// ToggleCollapse folds an expanded group or unfolds a collapsed one
func (s *Session) ToggleCollapse(id string) {
	_ = s.mutate(func() error {
		n, ok := s.doc.Node(id)
		if !ok || !n.IsGroup() {
			s.logger.Debug("Collapse of non-group ignored", zap.String("node_id", id))
			return nil
		}
		s.setCollapsedLocked(id, !n.Data.Collapsed)
		return nil
	})
}

// SetGroupColor retints a group
func (s *Session) SetGroupColor(id string, color valueobjects.ColorToken) {
	_ = s.mutate(func() error {
		n, ok := s.doc.Node(id)
		if !ok || !n.IsGroup() {
			s.logger.Debug("Color change of non-group ignored", zap.String("node_id", id))
			return nil
		}
		s.doc.UpdateNodeData(id, entities.DataPatch{Color: &color})
		return nil
	})
}

// SetViewport stores pan/zoom, clamping zoom. Viewport changes are persisted but not recorded in history.
func (s *Session) SetViewport(vp valueobjects.Viewport) valueobjects.Viewport {
	var applied valueobjects.Viewport
	_ = s.mutate(func() error {
		applied = vp.Clamp(s.cfg.MinZoom, s.cfg.MaxZoom)
		if applied != s.doc.Viewport() {
			s.doc.SetViewport(applied)
			s.persistTimer.Trigger()
		}
		return nil
	})
	return applied
}

// Reset clears every node and edge. The reset itself can be undone.
func (s *Session) Reset() {
	_ = s.mutate(func() error {
		if s.doc.NodeCount() == 0 && s.doc.EdgeCount() == 0 {
			return nil
		}
		if err := s.doc.Replace(aggregates.GraphState{}, "reset"); err != nil {
			return err
		}
		s.clearSelectionLocked()
		return nil
	})
}

// Undo steps back one settled state. At the oldest entry it does nothing.
func (s *Session) Undo() bool {
	return s.replay("undo")
}

// Redo steps forward one settled state. At the newest entry it does nothing.
func (s *Session) Redo() bool {
	return s.replay("redo")
}

func (s *Session) replay(direction string) bool {
	var applied bool
	_ = s.mutate(func() error {
		// an edit still inside its quiet window becomes history first
		s.settleGraphLocked()

		s.replaying = true

		var (
			state aggregates.GraphState
			ok    bool
		)
		if direction == "undo" {
			state, ok = s.hist.Undo()
		} else {
			state, ok = s.hist.Redo()
		}
		if !ok {
			return nil
		}
		if err := s.doc.Replace(state, direction); err != nil {
			s.logger.Error("History entry could not be restored", zap.String("direction", direction), zap.Error(err))
			return err
		}
		applied = true
		s.clearSelectionLocked()
		s.emitLocked(events.NewHistoryReplayed(s.key, direction, s.hist.Index(), s.now()))
		return nil
	})
	return applied
}

func (s *Session) setCollapsedLocked(groupID string, collapsed bool) {
	group, _ := s.doc.Node(groupID)
	s.doc.UpdateNodeData(groupID, entities.DataPatch{Collapsed: &collapsed})

	children := s.doc.Children(groupID)
	memberIDs := make([]string, 0, len(children))
	for _, child := range children {
		s.doc.SetNodeVisibility(child.ID, collapsed, !collapsed)
		memberIDs = append(memberIDs, child.ID)
	}
	if collapsed {
		s.doc.SetNodeSize(groupID, s.engine.CollapsedSize(group))
		if s.sel.Prune(func(id string) bool { n, ok := s.doc.Node(id); return ok && !n.Hidden }) {
			s.selectionChangedLocked()
		}
	}
	s.emitLocked(events.NewGroupCollapsed(s.key, groupID, collapsed, memberIDs, s.doc.Version(), s.now()))
}

func (s *Session) addContentLocked(p valueobjects.Position) *entities.Node {
	created := s.doc.AddNode(valueobjects.KindContent, p, entities.ContentData(s.cfg.NewNodeTitle, s.cfg.NewNodeDescription))
	s.engine.ApplyText(s.doc, created.ID)
	node, _ := s.doc.Node(created.ID)
	return node
}

func (s *Session) requireConnectableLocked(command, a, b string) error {
	for _, id := range []string{a, b} {
		n, ok := s.doc.Node(id)
		if !ok {
			return s.rejectLocked(command, pkgerrors.InvalidSelection("node no longer exists").WithDetail("node_id", id))
		}
		if !n.Kind.CanConnect() {
			return s.rejectLocked(command, pkgerrors.InvalidSelection("groups cannot be connected").WithDetail("node_id", id))
		}
	}
	return nil
}

// rejectLocked raises a non-blocking notice for a command that was refused
func (s *Session) rejectLocked(command string, err *pkgerrors.DomainError) error {
	s.logger.Debug("Command rejected",
		zap.String("command", command),
		zap.String("code", err.Code),
		zap.String("reason", err.Message),
	)
	s.emitLocked(events.NewNoticeRaised(s.key, command, err.Code, err.Message, s.now()))
	return err
}

func (s *Session) clearSelectionLocked() {
	if s.sel.Clear() {
		s.selectionChangedLocked()
	}
}

func (s *Session) selectionChangedLocked() {
	s.emitLocked(events.NewSelectionChanged(s.key, s.sel.IDs(), s.now()))
}

func (s *Session) memberFallback() valueobjects.Size {
	cfg := s.engine.Config()
	return valueobjects.Size{Width: cfg.DefaultMemberWidth, Height: cfg.DefaultMemberHeight}
}
