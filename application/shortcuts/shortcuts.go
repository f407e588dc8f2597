// Package shortcuts maps keyboard chords to board actions.
package shortcuts

import (
	"strings"

	"flowboard/application/commands"
	"flowboard/application/commands/bus"
)

// Action is a board action reachable from the keyboard
type Action string

const (
	ActionNone           Action = ""
	ActionSelectAll      Action = "select-all"
	ActionUndo           Action = "undo"
	ActionRedo           Action = "redo"
	ActionDeleteSelected Action = "delete-selected"
)

// Chord is one key press with its modifiers. Key is the lower-cased key name
// ("a", "z", "delete", "backspace").
type Chord struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

// primary reports whether the platform command modifier is held
func (c Chord) primary() bool {
	return c.Ctrl || c.Meta
}

// Parse reads chords like "ctrl+shift+z" or "cmd+a"
func Parse(s string) Chord {
	var c Chord
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		if i == len(parts)-1 {
			c.Key = p
			break
		}
		switch p {
		case "ctrl", "control":
			c.Ctrl = true
		case "cmd", "meta", "super":
			c.Meta = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		}
	}
	return c
}

// Resolve returns the action bound to chord. Every binding is suppressed while
// focus is inside a text-editing control.
func Resolve(c Chord, editing bool) Action {
	if editing || c.Alt {
		return ActionNone
	}
	key := strings.ToLower(c.Key)
	switch {
	case c.primary() && key == "a" && !c.Shift:
		return ActionSelectAll
	case c.primary() && key == "z" && c.Shift:
		return ActionRedo
	case c.primary() && key == "z":
		return ActionUndo
	case c.primary() && key == "y":
		return ActionRedo
	case !c.primary() && (key == "delete" || key == "backspace"):
		return ActionDeleteSelected
	}
	return ActionNone
}

// Command returns the bus command for an action
func Command(a Action) (bus.Command, bool) {
	switch a {
	case ActionSelectAll:
		return commands.SelectAll{}, true
	case ActionUndo:
		return commands.Undo{}, true
	case ActionRedo:
		return commands.Redo{}, true
	case ActionDeleteSelected:
		return commands.DeleteSelected{}, true
	}
	return nil, false
}
