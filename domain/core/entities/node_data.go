package entities

import "flowboard/domain/core/valueobjects"

// NodeData is the kind-specific payload. Content nodes use Title and
// Description, labels use Text, groups use Title, Color and Collapsed.
type NodeData struct {
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"desc,omitempty"`
	Text        string                  `json:"text,omitempty"`
	Color       valueobjects.ColorToken `json:"color,omitempty"`
	Collapsed   bool                    `json:"collapsed,omitempty"`
}

// ContentData builds a content payload
func ContentData(title, description string) NodeData {
	return NodeData{Title: title, Description: description}
}

// LabelData builds a label payload
func LabelData(text string) NodeData {
	return NodeData{Text: text}
}

// GroupData builds a group payload
func GroupData(title string, color valueobjects.ColorToken) NodeData {
	return NodeData{Title: title, Color: color}
}

// DataPatch is a partial update merged into NodeData. Nil fields are left untouched.
type DataPatch struct {
	Title       *string                  `json:"title,omitempty"`
	Description *string                  `json:"desc,omitempty"`
	Text        *string                  `json:"text,omitempty"`
	Color       *valueobjects.ColorToken `json:"color,omitempty"`
	Collapsed   *bool                    `json:"collapsed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p DataPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Text == nil && p.Color == nil && p.Collapsed == nil
}

// TouchesText reports whether the patch edits text that drives auto-sizing
func (p DataPatch) TouchesText() bool {
	return p.Title != nil || p.Description != nil || p.Text != nil
}

// Apply merges the patch into d
func (p DataPatch) Apply(d NodeData) NodeData {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Text != nil {
		d.Text = *p.Text
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	if p.Collapsed != nil {
		d.Collapsed = *p.Collapsed
	}
	return d
}
