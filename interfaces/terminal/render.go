package terminal

import (
	"fmt"
	"math"
	"strings"

	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var (
	styleCanvas   = tcell.StyleDefault
	styleCard     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleEdge     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus   = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleRubber   = tcell.StyleDefault.Foreground(tcell.ColorAqua)

	groupColors = map[string]tcell.Color{
		"purple": tcell.ColorPurple,
		"blue":   tcell.ColorBlue,
		"green":  tcell.ColorGreen,
		"orange": tcell.ColorOrange,
		"pink":   tcell.ColorPink,
	}
)

type border struct {
	h, v, tl, tr, bl, br rune
}

var (
	squareBorder  = border{'─', '│', '┌', '┐', '└', '┘'}
	roundedBorder = border{'─', '│', '╭', '╮', '╰', '╯'}
	dashedBorder  = border{'╌', '╎', '┌', '┐', '└', '┘'}
)

// cellRect is a box on the character grid, inclusive of its border
type cellRect struct {
	x0, y0, x1, y1 int
}

// Draw paints the board and the status line
func (a *App) Draw() {
	a.screen.Clear()
	state := a.session.Snapshot()
	selected := make(map[string]bool)
	for _, id := range a.session.Selection() {
		selected[id] = true
	}

	boxes := make(map[string]cellRect, len(state.Nodes))
	for _, n := range state.Nodes {
		if !n.Hidden {
			boxes[n.ID] = a.cellBox(n, state.Viewport)
		}
	}

	for _, n := range state.Nodes {
		if n.IsGroup() && !n.Hidden {
			a.drawGroup(n, boxes[n.ID], selected[n.ID])
		}
	}
	for _, e := range state.Edges {
		src, okS := boxes[e.Source]
		tgt, okT := boxes[e.Target]
		if okS && okT {
			a.drawEdge(src, tgt)
		}
	}
	for _, n := range state.Nodes {
		if n.IsGroup() || n.Hidden {
			continue
		}
		switch n.Kind {
		case valueobjects.KindLabel:
			a.drawLabel(n, boxes[n.ID], selected[n.ID])
		default:
			a.drawContent(n, boxes[n.ID], selected[n.ID])
		}
	}
	if a.drag != nil && a.drag.area {
		a.drawBox(rectBetween(a.drag.startX, a.drag.startY, a.drag.lastX, a.drag.lastY), dashedBorder, styleRubber)
	}
	a.drawStatus(state)
	a.screen.Show()
}

func (a *App) cellBox(n *entities.Node, vp valueobjects.Viewport) cellRect {
	box := n.Bounds(a.opts.Fallback)
	tl := vp.DocumentToScreen(box.Origin())
	br := vp.DocumentToScreen(valueobjects.Position{X: box.MaxX(), Y: box.MaxY()})
	r := cellRect{
		x0: int(math.Floor(tl.X / a.opts.CellWidth)),
		y0: int(math.Floor(tl.Y / a.opts.CellHeight)),
		x1: int(math.Ceil(br.X/a.opts.CellWidth)) - 1,
		y1: int(math.Ceil(br.Y/a.opts.CellHeight)) - 1,
	}
	// a box needs room for its border
	if r.x1 < r.x0+2 {
		r.x1 = r.x0 + 2
	}
	if r.y1 < r.y0+2 {
		r.y1 = r.y0 + 2
	}
	return r
}

func (a *App) drawGroup(n *entities.Node, r cellRect, selected bool) {
	style := styleCard
	if c, ok := groupColors[n.Data.Color.Name()]; ok {
		style = style.Foreground(c)
	}
	if selected {
		style = styleSelected
	}
	a.drawBox(r, dashedBorder, style)
	title := n.Data.Title
	if n.Data.Collapsed {
		title += " [+]"
	}
	a.putText(r.x0+2, r.y0, r.x1-1, " "+title+" ", style)
}

func (a *App) drawContent(n *entities.Node, r cellRect, selected bool) {
	style := styleCard
	if selected {
		style = styleSelected
	}
	a.fill(r, styleCanvas)
	a.drawBox(r, squareBorder, style)
	a.putText(r.x0+2, r.y0+1, r.x1-1, n.Data.Title, style.Bold(true))
	if r.y1-r.y0 > 2 && n.Data.Description != "" {
		a.putText(r.x0+2, r.y0+2, r.x1-1, n.Data.Description, styleLabel)
	}
}

func (a *App) drawLabel(n *entities.Node, r cellRect, selected bool) {
	style := styleLabel
	if selected {
		style = styleSelected
	}
	a.fill(r, styleCanvas)
	a.drawBox(r, roundedBorder, style)
	text := n.Data.Text
	inner := r.x1 - r.x0 - 1
	pad := (inner - runewidth.StringWidth(text)) / 2
	if pad < 0 {
		pad = 0
	}
	a.putText(r.x0+1+pad, r.y0+(r.y1-r.y0)/2, r.x1-1, text, style)
}

// drawEdge routes a smooth step from the source's bottom to the target's top
func (a *App) drawEdge(src, tgt cellRect) {
	sx, sy := (src.x0+src.x1)/2, src.y1+1
	tx, ty := (tgt.x0+tgt.x1)/2, tgt.y0-1
	if ty < sy {
		// target above source: leave from the top instead
		sy, ty = src.y0-1, tgt.y1+1
	}
	mid := (sy + ty) / 2
	a.vline(sx, sy, mid)
	a.hline(mid, sx, tx)
	a.vline(tx, mid, ty)

	switch {
	case sx < tx:
		a.screen.SetContent(sx, mid, corner(sy <= mid, true), nil, styleEdge)
		a.screen.SetContent(tx, mid, corner(mid > ty, false), nil, styleEdge)
	case sx > tx:
		a.screen.SetContent(sx, mid, corner(sy <= mid, false), nil, styleEdge)
		a.screen.SetContent(tx, mid, corner(mid > ty, true), nil, styleEdge)
	}
	arrow := '▼'
	if ty < sy {
		arrow = '▲'
	}
	a.screen.SetContent(tx, ty, arrow, nil, styleEdge)
}

// corner picks the turn glyph at a bend. down is whether the vertical run
// arrives from above; right is whether the horizontal run leaves rightward.
func corner(down, right bool) rune {
	switch {
	case down && right:
		return '└'
	case down:
		return '┘'
	case right:
		return '┌'
	default:
		return '┐'
	}
}

func (a *App) vline(x, y0, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		a.screen.SetContent(x, y, '│', nil, styleEdge)
	}
}

func (a *App) hline(y, x0, x1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		a.screen.SetContent(x, y, '─', nil, styleEdge)
	}
}

func (a *App) drawBox(r cellRect, b border, style tcell.Style) {
	for x := r.x0 + 1; x < r.x1; x++ {
		a.screen.SetContent(x, r.y0, b.h, nil, style)
		a.screen.SetContent(x, r.y1, b.h, nil, style)
	}
	for y := r.y0 + 1; y < r.y1; y++ {
		a.screen.SetContent(r.x0, y, b.v, nil, style)
		a.screen.SetContent(r.x1, y, b.v, nil, style)
	}
	a.screen.SetContent(r.x0, r.y0, b.tl, nil, style)
	a.screen.SetContent(r.x1, r.y0, b.tr, nil, style)
	a.screen.SetContent(r.x0, r.y1, b.bl, nil, style)
	a.screen.SetContent(r.x1, r.y1, b.br, nil, style)
}

func (a *App) fill(r cellRect, style tcell.Style) {
	for y := r.y0 + 1; y < r.y1; y++ {
		for x := r.x0 + 1; x < r.x1; x++ {
			a.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// putText writes s from x, clipped so it never passes maxX
func (a *App) putText(x, y, maxX int, s string, style tcell.Style) {
	if maxX < x {
		return
	}
	s = runewidth.Truncate(s, maxX-x+1, "…")
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func (a *App) drawStatus(state aggregates.DocumentState) {
	w, h := a.screen.Size()
	if h == 0 {
		return
	}
	y := h - 1
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	current, total := a.session.HistoryStats()
	line := fmt.Sprintf(" %s  nodes %d  edges %d  history %d/%d  zoom %.1f",
		a.session.Key(), len(state.Nodes), len(state.Edges), current, total, state.Viewport.Zoom)
	if sel := a.session.Selection(); len(sel) > 0 {
		line += "  selected " + strings.Join(sel, ",")
	}
	if msg := a.Status(); msg != "" {
		line += "  | " + msg
	}
	a.putText(0, y, w-1, line, styleStatus)
}

func rectBetween(x0, y0, x1, y1 int) cellRect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return cellRect{x0: x0, y0: y0, x1: x1, y1: y1}
}
