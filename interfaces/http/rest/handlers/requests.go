package handlers

import (
	"errors"
	"fmt"
	"strings"

	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	pkgerrors "flowboard/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Error codes specific to the REST surface
const (
	CodeUnknownCommand = "UNKNOWN_COMMAND"
	CodeExportDisabled = "EXPORT_DISABLED"
	CodeExportFailed   = "EXPORT_FAILED"
)

// Selection modes
const (
	SelectClick = "click"
	SelectAll   = "all"
	SelectArea  = "area"
	SelectClear = "clear"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs tag validation and reports failures as a validation error
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
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

// AddNodeRequest represents the request body for adding a node. Without a
// position the node lands at the viewport center.
type AddNodeRequest struct {
	Position *valueobjects.Position `json:"position,omitempty"`
}

// ConnectRequest represents the request body for linking two nodes
type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// SelectionRequest represents a selection change
type SelectionRequest struct {
	Mode   string                 `json:"mode" validate:"required,oneof=click all area clear"`
	NodeID string                 `json:"node_id,omitempty" validate:"required_if=Mode click"`
	From   *valueobjects.Position `json:"from,omitempty" validate:"required_if=Mode area"`
	To     *valueobjects.Position `json:"to,omitempty" validate:"required_if=Mode area"`
}

// UpdateNodeRequest represents a partial node update
type UpdateNodeRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"desc,omitempty"`
	Text        *string                `json:"text,omitempty"`
	Color       *string                `json:"color,omitempty"`
	Collapsed   *bool                  `json:"collapsed,omitempty"`
	Position    *valueobjects.Position `json:"position,omitempty"`
	Width       *float64               `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height      *float64               `json:"height,omitempty" validate:"omitempty,gt=0"`
}

// Validate checks the cross-field rules tags cannot express
func (r UpdateNodeRequest) Validate() error {
	if (r.Width == nil) != (r.Height == nil) {
		return pkgerrors.NewValidationError("width and height must be given together")
	}
	if r.patch().IsEmpty() && r.Position == nil && r.Width == nil {
		return pkgerrors.NewValidationError("update has no fields")
	}
	return nil
}

func (r UpdateNodeRequest) patch() entities.DataPatch {
	patch := entities.DataPatch{
		Title:       r.Title,
		Description: r.Description,
		Text:        r.Text,
		Collapsed:   r.Collapsed,
	}
	if r.Color != nil {
		color := valueobjects.ColorToken(*r.Color)
		patch.Color = &color
	}
	return patch
}

// ViewportRequest represents a pan/zoom update
type ViewportRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom" validate:"gt=0"`
}
