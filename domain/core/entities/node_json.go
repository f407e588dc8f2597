package entities

import (
	"bytes"
	"encoding/json"
	"fmt"

	"flowboard/domain/core/valueobjects"
)

type nodeRecord struct {
	ID         string                     `json:"id"`
	Kind       valueobjects.NodeKind      `json:"type"`
	Position   valueobjects.Position      `json:"position"`
	Style      map[string]json.RawMessage `json:"style"`
	Data       json.RawMessage            `json:"data"`
	ParentID   string                     `json:"parentId,omitempty"`
	Hidden     bool                       `json:"hidden,omitempty"`
	Draggable  *bool                      `json:"draggable,omitempty"`
	Selectable *bool                      `json:"selectable,omitempty"`
}

// groupDataRecord is NodeData with collapsed always written
type groupDataRecord struct {
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"desc,omitempty"`
	Text        string                  `json:"text,omitempty"`
	Color       valueobjects.ColorToken `json:"color,omitempty"`
	Collapsed   bool                    `json:"collapsed"`
}

// MarshalJSON writes the node in the persisted board shape. The size lives
// under style next to any carried style keys.
func (n Node) MarshalJSON() ([]byte, error) {
	style := make(map[string]json.RawMessage, len(n.Style)+2)
	for k, v := range n.Style {
		style[k] = v
	}
	for key, v := range map[string]float64{"width": n.Size.Width, "height": n.Size.Height} {
		if v == 0 {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("node %s style %s: %w", n.ID, key, err)
		}
		style[key] = raw
	}

	var payload any = n.Data
	if n.IsGroup() {
		payload = groupDataRecord(n.Data)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("node %s data: %w", n.ID, err)
	}

	return json.Marshal(nodeRecord{
		ID:         n.ID,
		Kind:       n.Kind,
		Position:   n.Position,
		Style:      style,
		Data:       data,
		ParentID:   n.ParentID,
		Hidden:     n.Hidden,
		Draggable:  n.Draggable,
		Selectable: n.Selectable,
	})
}

// UnmarshalJSON reads the persisted board shape
func (n *Node) UnmarshalJSON(raw []byte) error {
	var rec nodeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}

	var size valueobjects.Size
	var extra map[string]json.RawMessage
	for key, v := range rec.Style {
		switch key {
		case "width":
			if err := json.Unmarshal(v, &size.Width); err != nil {
				return fmt.Errorf("node %s style width: %w", rec.ID, err)
			}
		case "height":
			if err := json.Unmarshal(v, &size.Height); err != nil {
				return fmt.Errorf("node %s style height: %w", rec.ID, err)
			}
		default:
			if extra == nil {
				extra = make(map[string]json.RawMessage)
			}
			extra[key] = v
		}
	}

	var data NodeData
	if len(rec.Data) > 0 && !bytes.Equal(rec.Data, []byte("null")) {
		if err := json.Unmarshal(rec.Data, &data); err != nil {
			return fmt.Errorf("node %s data: %w", rec.ID, err)
		}
	}

	*n = Node{
		ID:         rec.ID,
		Kind:       rec.Kind,
		Position:   rec.Position,
		Size:       size,
		Data:       data,
		ParentID:   rec.ParentID,
		Hidden:     rec.Hidden,
		Draggable:  rec.Draggable,
		Selectable: rec.Selectable,
		Style:      extra,
	}
	return nil
}
