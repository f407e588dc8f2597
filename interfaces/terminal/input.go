package terminal

import (
	"strings"
	"unicode"

	"flowboard/application/commands"
	"flowboard/application/shortcuts"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"

	"github.com/gdamore/tcell/v2"
)

// panStep is how far the arrow keys pan, in cells
const panStep = 4

// drag tracks a held primary button. Pressing on a node drags it; pressing on
// empty canvas draws a selection rectangle.
type drag struct {
	nodeID         string
	origin         valueobjects.Position
	area           bool
	startX, startY int
	lastX, lastY   int
	moved          bool
}

// handleKey runs the command bound to a key and reports whether to quit
func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
		return true
	}
	if action := shortcuts.Resolve(chordOf(ev), false); action != shortcuts.ActionNone {
		if cmd, ok := shortcuts.Command(action); ok {
			a.send(cmd)
		}
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		a.send(commands.ClearSelection{})
	case tcell.KeyLeft:
		a.pan(panStep, 0)
	case tcell.KeyRight:
		a.pan(-panStep, 0)
	case tcell.KeyUp:
		a.pan(0, panStep)
	case tcell.KeyDown:
		a.pan(0, -panStep)
	case tcell.KeyRune:
		a.handleRune(ev.Rune())
	}
	return false
}

func (a *App) handleRune(r rune) {
	switch r {
	case 'a':
		a.send(commands.AddNode{})
	case 'c':
		a.send(commands.Connect{})
	case 'l':
		a.send(commands.InsertLabel{})
	case 'g':
		a.send(commands.CreateGroup{})
	case ' ':
		a.toggleSelectedGroups()
	case '+', '=':
		a.zoom(1.25)
	case '-':
		a.zoom(0.8)
	}
}

// toggleSelectedGroups folds or unfolds every selected group
func (a *App) toggleSelectedGroups() {
	state := a.session.Snapshot()
	kinds := make(map[string]valueobjects.NodeKind, len(state.Nodes))
	for _, n := range state.Nodes {
		kinds[n.ID] = n.Kind
	}
	toggled := 0
	for _, id := range a.session.Selection() {
		if kinds[id] == valueobjects.KindGroup {
			a.send(commands.ToggleCollapse{GroupID: id})
			toggled++
		}
	}
	if toggled == 0 {
		a.setStatus("select a group to collapse")
	}
}

func (a *App) pan(cols, rows int) {
	vp := a.session.Snapshot().Viewport
	vp.X += float64(cols) * a.opts.CellWidth
	vp.Y += float64(rows) * a.opts.CellHeight
	a.send(commands.SetViewport{Viewport: vp})
}

// zoom scales around the canvas center
func (a *App) zoom(factor float64) {
	vp := a.session.Snapshot().Viewport
	size := a.ScreenSize()
	center := valueobjects.Position{X: size.Width / 2, Y: size.Height / 2}
	anchor := vp.ScreenToDocument(center)
	vp.Zoom *= factor
	vp.X = center.X - anchor.X*vp.Zoom
	vp.Y = center.Y - anchor.Y*vp.Zoom
	a.send(commands.SetViewport{Viewport: vp})
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	held := ev.Buttons()&tcell.Button1 != 0

	switch {
	case held && a.drag == nil:
		a.press(x, y)
	case held:
		a.dragTo(x, y)
	case a.drag != nil:
		a.release(x, y)
	}
}

func (a *App) press(x, y int) {
	d := &drag{startX: x, startY: y, lastX: x, lastY: y}
	if n := a.nodeAt(x, y); n != nil {
		d.nodeID = n.ID
		d.origin = n.Position
	} else {
		d.area = true
	}
	a.drag = d
}

func (a *App) dragTo(x, y int) {
	d := a.drag
	if x == d.lastX && y == d.lastY {
		return
	}
	d.lastX, d.lastY = x, y
	d.moved = true
	if d.area {
		return
	}
	zoom := a.session.Snapshot().Viewport.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	to := d.origin.Translate(
		float64(x-d.startX)*a.opts.CellWidth/zoom,
		float64(y-d.startY)*a.opts.CellHeight/zoom,
	)
	a.send(commands.MoveNode{NodeID: d.nodeID, Position: to})
}

func (a *App) release(x, y int) {
	d := a.drag
	a.drag = nil
	if d.moved && d.area {
		a.send(commands.SelectArea{From: a.cellToDocument(d.startX, d.startY), To: a.cellToDocument(x, y)})
		return
	}
	if d.moved {
		return
	}
	if d.area {
		a.send(commands.ClearSelection{})
		return
	}
	a.send(commands.ClickNode{NodeID: d.nodeID})
}

// nodeAt returns the topmost visible node under a cell
func (a *App) nodeAt(x, y int) *entities.Node {
	state := a.session.Snapshot()
	for i := len(state.Nodes) - 1; i >= 0; i-- {
		n := state.Nodes[i]
		if n.Hidden {
			continue
		}
		r := a.cellBox(n, state.Viewport)
		if x >= r.x0 && x <= r.x1 && y >= r.y0 && y <= r.y1 {
			return n
		}
	}
	return nil
}

// cellToDocument maps a cell's center into document space
func (a *App) cellToDocument(x, y int) valueobjects.Position {
	vp := a.session.Snapshot().Viewport
	return vp.ScreenToDocument(valueobjects.Position{
		X: (float64(x) + 0.5) * a.opts.CellWidth,
		Y: (float64(y) + 0.5) * a.opts.CellHeight,
	})
}

// chordOf converts a key event into a shortcut chord
func chordOf(ev *tcell.EventKey) shortcuts.Chord {
	mods := ev.Modifiers()
	c := shortcuts.Chord{
		Ctrl:  mods&tcell.ModCtrl != 0,
		Meta:  mods&tcell.ModMeta != 0,
		Alt:   mods&tcell.ModAlt != 0,
		Shift: mods&tcell.ModShift != 0,
	}
	switch k := ev.Key(); {
	case k == tcell.KeyDelete:
		c.Key = "delete"
	case k == tcell.KeyBackspace || k == tcell.KeyBackspace2:
		c.Key = "backspace"
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		c.Ctrl = true
		c.Key = string(rune('a' + int(k-tcell.KeyCtrlA)))
	case k == tcell.KeyRune:
		r := ev.Rune()
		if unicode.IsUpper(r) {
			c.Shift = true
		}
		c.Key = strings.ToLower(string(r))
	}
	return c
}
