package commands

import (
	"context"
	"fmt"

	"flowboard/application/commands/bus"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
)

// Editor is the session surface the handlers drive
type Editor interface {
	Click(id string)
	SelectAll()
	SelectArea(area valueobjects.Rect)
	ClearSelection()
	Connect() (*entities.Edge, error)
	ConnectNodes(source, target string) (*entities.Edge, error)
	InsertLabelBetween() (*entities.Node, error)
	CreateGroup() (*entities.Node, error)
	DeleteSelected() []string
	DeleteEdge(id string) bool
	AddNode() *entities.Node
	AddNodeAt(p valueobjects.Position) (*entities.Node, error)
	MoveNode(id string, p valueobjects.Position) error
	ResizeNode(id string, size valueobjects.Size) error
	UpdateNodeData(id string, patch entities.DataPatch)
	ToggleCollapse(id string)
	SetGroupColor(id string, color valueobjects.ColorToken)
	SetViewport(vp valueobjects.Viewport) valueobjects.Viewport
	Reset()
	Undo() bool
	Redo() bool
	Selection() []string
}

// Handlers binds every board command to an editor
type Handlers struct {
	editor Editor
}

// NewHandlers creates the handler set
func NewHandlers(editor Editor) *Handlers {
	return &Handlers{editor: editor}
}

// Register installs a handler for every board command on b
func (h *Handlers) Register(b *bus.CommandBus) error {
	routes := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{ClickNode{}, h.click},
		{SelectAll{}, h.selectAll},
		{SelectArea{}, h.selectArea},
		{ClearSelection{}, h.clearSelection},
		{Connect{}, h.connect},
		{ConnectNodes{}, h.connectNodes},
		{InsertLabel{}, h.insertLabel},
		{CreateGroup{}, h.createGroup},
		{DeleteSelected{}, h.deleteSelected},
		{DeleteEdge{}, h.deleteEdge},
		{AddNode{}, h.addNode},
		{MoveNode{}, h.moveNode},
		{ResizeNode{}, h.resizeNode},
		{UpdateNodeData{}, h.updateNodeData},
		{ToggleCollapse{}, h.toggleCollapse},
		{SetGroupColor{}, h.setGroupColor},
		{SetViewport{}, h.setViewport},
		{ResetBoard{}, h.reset},
		{Undo{}, h.undo},
		{Redo{}, h.redo},
	}
	for _, r := range routes {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) selection() bus.CommandResult {
	return bus.CommandResult{Data: h.editor.Selection()}
}

func (h *Handlers) click(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(ClickNode)
	h.editor.Click(c.NodeID)
	return h.selection(), nil
}

func (h *Handlers) selectAll(context.Context, bus.Command) (bus.CommandResult, error) {
	h.editor.SelectAll()
	return h.selection(), nil
}

func (h *Handlers) selectArea(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(SelectArea)
	h.editor.SelectArea(valueobjects.RectBetween(c.From, c.To))
	return h.selection(), nil
}

func (h *Handlers) clearSelection(context.Context, bus.Command) (bus.CommandResult, error) {
	h.editor.ClearSelection()
	return h.selection(), nil
}

func (h *Handlers) connect(context.Context, bus.Command) (bus.CommandResult, error) {
	edge, err := h.editor.Connect()
	if err != nil {
		return bus.CommandResult{}, err
	}
	return bus.CommandResult{Data: edge}, nil
}

func (h *Handlers) connectNodes(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(ConnectNodes)
	edge, err := h.editor.ConnectNodes(c.Source, c.Target)
	if err != nil {
		return bus.CommandResult{}, err
	}
	return bus.CommandResult{Data: edge}, nil
}

func (h *Handlers) insertLabel(context.Context, bus.Command) (bus.CommandResult, error) {
	label, err := h.editor.InsertLabelBetween()
	if err != nil {
		return bus.CommandResult{}, err
	}
	return bus.CommandResult{Data: label}, nil
}

func (h *Handlers) createGroup(context.Context, bus.Command) (bus.CommandResult, error) {
	group, err := h.editor.CreateGroup()
	if err != nil {
		return bus.CommandResult{}, err
	}
	return bus.CommandResult{Data: group}, nil
}

func (h *Handlers) deleteSelected(context.Context, bus.Command) (bus.CommandResult, error) {
	return bus.CommandResult{Data: h.editor.DeleteSelected()}, nil
}

func (h *Handlers) deleteEdge(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(DeleteEdge)
	return bus.CommandResult{Data: h.editor.DeleteEdge(c.EdgeID)}, nil
}

func (h *Handlers) addNode(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(AddNode)
	if c.At == nil {
		return bus.CommandResult{Data: h.editor.AddNode()}, nil
	}
	node, err := h.editor.AddNodeAt(*c.At)
	if err != nil {
		return bus.CommandResult{}, err
	}
	return bus.CommandResult{Data: node}, nil
}

func (h *Handlers) moveNode(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(MoveNode)
	return bus.CommandResult{}, h.editor.MoveNode(c.NodeID, c.Position)
}

func (h *Handlers) resizeNode(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(ResizeNode)
	return bus.CommandResult{}, h.editor.ResizeNode(c.NodeID, valueobjects.Size{Width: c.Width, Height: c.Height})
}

func (h *Handlers) updateNodeData(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(UpdateNodeData)
	patch := c.Patch
	if patch.Color != nil {
		color, err := valueobjects.ParseColorToken(string(*patch.Color))
		if err != nil {
			return bus.CommandResult{}, fmt.Errorf("update node: %w", err)
		}
		patch.Color = &color
	}
	h.editor.UpdateNodeData(c.NodeID, patch)
	return bus.CommandResult{}, nil
}

func (h *Handlers) toggleCollapse(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(ToggleCollapse)
	h.editor.ToggleCollapse(c.GroupID)
	return bus.CommandResult{}, nil
}

func (h *Handlers) setGroupColor(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(SetGroupColor)
	color, err := valueobjects.ParseColorToken(string(c.Color))
	if err != nil {
		return bus.CommandResult{}, fmt.Errorf("set group color: %w", err)
	}
	h.editor.SetGroupColor(c.GroupID, color)
	return bus.CommandResult{}, nil
}

func (h *Handlers) setViewport(_ context.Context, cmd bus.Command) (bus.CommandResult, error) {
	c := cmd.(SetViewport)
	return bus.CommandResult{Data: h.editor.SetViewport(c.Viewport)}, nil
}

func (h *Handlers) reset(context.Context, bus.Command) (bus.CommandResult, error) {
	h.editor.Reset()
	return bus.CommandResult{}, nil
}

func (h *Handlers) undo(context.Context, bus.Command) (bus.CommandResult, error) {
	return bus.CommandResult{Data: h.editor.Undo()}, nil
}

func (h *Handlers) redo(context.Context, bus.Command) (bus.CommandResult, error) {
	return bus.CommandResult{Data: h.editor.Redo()}, nil
}

// Simple maps the argument-free command names to their commands
func Simple(name string) (bus.Command, bool) {
	switch name {
	case "select-all":
		return SelectAll{}, true
	case "clear-selection":
		return ClearSelection{}, true
	case "connect":
		return Connect{}, true
	case "insert-label":
		return InsertLabel{}, true
	case "create-group":
		return CreateGroup{}, true
	case "delete-selected":
		return DeleteSelected{}, true
	case "add-node":
		return AddNode{}, true
	case "reset":
		return ResetBoard{}, true
	case "undo":
		return Undo{}, true
	case "redo":
		return Redo{}, true
	}
	return nil, false
}
