// Package commands defines the editor's typed commands and the handlers that
// apply them to a live session.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	pkgerrors "flowboard/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct-tag validation and converts failures into a validation DomainError
func check(cmd interface{}) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.NewValidationError(err.Error())
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return pkgerrors.NewValidationError(strings.Join(parts, "; "))
}

// ClickNode toggles a node in the selection
type ClickNode struct {
	NodeID string `json:"node_id" validate:"required"`
}

func (c ClickNode) Validate() error { return check(c) }
func (ClickNode) CommandName() string { return "click" }

// SelectAll selects every node
type SelectAll struct{}

func (SelectAll) Validate() error { return nil }
func (SelectAll) CommandName() string { return "select-all" }

// SelectArea selects the visible nodes inside the rectangle spanned by two corners
type SelectArea struct {
	From valueobjects.Position `json:"from"`
	To   valueobjects.Position `json:"to"`
}

func (c SelectArea) Validate() error {
	if !c.From.IsFinite() || !c.To.IsFinite() {
		return pkgerrors.NewValidationError("area corners must be finite")
	}
	return nil
}
func (SelectArea) CommandName() string { return "select-area" }

// ClearSelection empties the selection
type ClearSelection struct{}

func (ClearSelection) Validate() error { return nil }
func (ClearSelection) CommandName() string { return "clear-selection" }

// Connect links the two selected nodes
type Connect struct{}

func (Connect) Validate() error { return nil }
func (Connect) CommandName() string { return "connect" }

// ConnectNodes links source to target without touching the selection
type ConnectNodes struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

func (c ConnectNodes) Validate() error { return check(c) }
func (ConnectNodes) CommandName() string { return "connect-nodes" }

// InsertLabel routes the two selected nodes through a new label
type InsertLabel struct{}

func (InsertLabel) Validate() error { return nil }
func (InsertLabel) CommandName() string { return "insert-label" }

// CreateGroup frames the selected nodes in a new group
type CreateGroup struct{}

func (CreateGroup) Validate() error { return nil }
func (CreateGroup) CommandName() string { return "create-group" }

// DeleteSelected removes the selected nodes
type DeleteSelected struct{}

func (DeleteSelected) Validate() error { return nil }
func (DeleteSelected) CommandName() string { return "delete-selected" }

// DeleteEdge removes one edge
type DeleteEdge struct {
	EdgeID string `json:"edge_id" validate:"required"`
}

func (c DeleteEdge) Validate() error { return check(c) }
func (DeleteEdge) CommandName() string { return "delete-edge" }

// AddNode creates a placeholder content node, at At when set and otherwise at the viewport center
type AddNode struct {
	At *valueobjects.Position `json:"at,omitempty"`
}

func (c AddNode) Validate() error {
	if c.At != nil && !c.At.IsFinite() {
		return pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return nil
}
func (AddNode) CommandName() string { return "add-node" }

// MoveNode places a node
type MoveNode struct {
	NodeID   string                `json:"node_id" validate:"required"`
	Position valueobjects.Position `json:"position"`
}

func (c MoveNode) Validate() error {
	if err := check(c); err != nil {
		return err
	}
	if !c.Position.IsFinite() {
		return pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return nil
}
func (MoveNode) CommandName() string { return "move-node" }

// ResizeNode sets a node's box
type ResizeNode struct {
	NodeID string  `json:"node_id" validate:"required"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

func (c ResizeNode) Validate() error { return check(c) }
func (ResizeNode) CommandName() string { return "resize-node" }

// UpdateNodeData merges a partial payload into a node
type UpdateNodeData struct {
	NodeID string             `json:"node_id" validate:"required"`
	Patch  entities.DataPatch `json:"patch"`
}

func (c UpdateNodeData) Validate() error {
	if err := check(c); err != nil {
		return err
	}
	if c.Patch.IsEmpty() {
		return pkgerrors.NewValidationError("patch has no fields")
	}
	if c.Patch.Color != nil {
		if _, err := valueobjects.ParseColorToken(string(*c.Patch.Color)); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
	}
	return nil
}
func (UpdateNodeData) CommandName() string { return "update-node" }

// ToggleCollapse folds or unfolds a group
type ToggleCollapse struct {
	GroupID string `json:"group_id" validate:"required"`
}

func (c ToggleCollapse) Validate() error { return check(c) }
func (ToggleCollapse) CommandName() string { return "toggle-collapse" }

// SetGroupColor retints a group
type SetGroupColor struct {
	GroupID string                  `json:"group_id" validate:"required"`
	Color   valueobjects.ColorToken `json:"color" validate:"required"`
}

func (c SetGroupColor) Validate() error {
	if err := check(c); err != nil {
		return err
	}
	if _, err := valueobjects.ParseColorToken(string(c.Color)); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}
func (SetGroupColor) CommandName() string { return "set-group-color" }

// SetViewport stores pan and zoom
type SetViewport struct {
	Viewport valueobjects.Viewport `json:"viewport"`
}

func (SetViewport) Validate() error { return nil }
func (SetViewport) CommandName() string { return "set-viewport" }

// ResetBoard clears every node and edge
type ResetBoard struct{}

func (ResetBoard) Validate() error { return nil }
func (ResetBoard) CommandName() string { return "reset" }

// Undo steps back one history entry
type Undo struct{}

func (Undo) Validate() error { return nil }
func (Undo) CommandName() string { return "undo" }

// Redo steps forward one history entry
type Redo struct{}

func (Redo) Validate() error { return nil }
func (Redo) CommandName() string { return "redo" }
