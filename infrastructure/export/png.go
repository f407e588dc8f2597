// Package export draws a board to an image.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"flowboard/domain/config"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	"flowboard/infrastructure/textmetrics"

	"github.com/fogleman/gg"
)

// ErrEmptyBoard is returned when there is nothing visible to draw
var ErrEmptyBoard = errors.New("nothing to export")

// Options controls rendering
type Options struct {
	// Margin around the board's bounds, in document units
	Margin float64
	// Scale maps document units to pixels
	Scale  float64
	Layout config.LayoutConfig
}

// DefaultOptions renders at 1:1 with the canvas sizing constants
func DefaultOptions() Options {
	return Options{Margin: 40, Scale: 1, Layout: config.DefaultLayoutConfig()}
}

var (
	background = color.RGBA{R: 0x11, G: 0x11, B: 0x18, A: 0xff}
	cardFill   = color.RGBA{R: 0x1e, G: 0x1e, B: 0x2a, A: 0xff}
	cardStroke = color.RGBA{R: 0x3a, G: 0x3a, B: 0x4a, A: 0xff}
	labelFill  = color.RGBA{R: 0x2a, G: 0x2a, B: 0x38, A: 0xff}
	textColor  = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf7, A: 0xff}
	mutedText  = color.RGBA{R: 0xa0, G: 0xa0, B: 0xb0, A: 0xff}
)

// Renderer draws boards with the Go fonts
type Renderer struct {
	fonts *textmetrics.FontMeasurer
	opts  Options
}

// NewRenderer creates a renderer
func NewRenderer(fonts *textmetrics.FontMeasurer, opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Renderer{fonts: fonts, opts: opts}
}

// Bounds returns the union of visible node boxes
func Bounds(state aggregates.DocumentState, fallback valueobjects.Size) (valueobjects.Rect, bool) {
	var (
		bounds valueobjects.Rect
		found  bool
	)
	for _, n := range state.Nodes {
		if n.Hidden {
			continue
		}
		b := n.Bounds(fallback)
		if !found {
			bounds, found = b, true
			continue
		}
		bounds = bounds.Union(b)
	}
	return bounds, found
}

// Render draws state in z-order: groups, then edges, then the remaining nodes
func (r *Renderer) Render(state aggregates.DocumentState) (image.Image, error) {
	fallback := valueobjects.Size{Width: r.opts.Layout.DefaultMemberWidth, Height: r.opts.Layout.DefaultMemberHeight}
	bounds, ok := Bounds(state, fallback)
	if !ok {
		return nil, ErrEmptyBoard
	}
	bounds = bounds.Inset(-r.opts.Margin, -r.opts.Margin)

	scale := r.opts.Scale
	w := int(math.Ceil(bounds.Width * scale))
	h := int(math.Ceil(bounds.Height * scale))
	dc := gg.NewContext(w, h)
	dc.SetColor(background)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-bounds.X, -bounds.Y)

	boxes := make(map[string]valueobjects.Rect, len(state.Nodes))
	for _, n := range state.Nodes {
		if !n.Hidden {
			boxes[n.ID] = n.Bounds(fallback)
		}
	}

	for _, n := range state.Nodes {
		if n.IsGroup() && !n.Hidden {
			r.drawGroup(dc, n, boxes[n.ID])
		}
	}
	for _, e := range state.Edges {
		src, okS := boxes[e.Source]
		tgt, okT := boxes[e.Target]
		if okS && okT {
			drawEdge(dc, e, src, tgt)
		}
	}
	for _, n := range state.Nodes {
		if n.Hidden || n.IsGroup() {
			continue
		}
		switch n.Kind {
		case valueobjects.KindLabel:
			r.drawLabel(dc, n, boxes[n.ID])
		default:
			r.drawContent(dc, n, boxes[n.ID])
		}
	}
	return dc.Image(), nil
}

// WritePNG renders state and encodes it to w
func (r *Renderer) WritePNG(w io.Writer, state aggregates.DocumentState) error {
	img, err := r.Render(state)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (r *Renderer) drawGroup(dc *gg.Context, n *entities.Node, box valueobjects.Rect) {
	red, green, blue, alpha := n.Data.Color.RGBA()
	dc.SetRGBA255(int(red), int(green), int(blue), int(math.Round(alpha*255)))
	dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, 16)
	dc.Fill()

	dc.SetRGBA255(int(red), int(green), int(blue), 160)
	dc.SetLineWidth(1.5)
	dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, 16)
	dc.Stroke()

	font := r.opts.Layout.ContentTitleFont
	dc.SetFontFace(r.fonts.Face(font))
	dc.SetColor(textColor)
	header := r.opts.Layout.GroupHeaderHeight
	dc.DrawStringAnchored(n.Data.Title, box.X+r.opts.Layout.GroupPadding, box.Y+header/2, 0, 0.35)
}

func (r *Renderer) drawContent(dc *gg.Context, n *entities.Node, box valueobjects.Rect) {
	dc.SetColor(cardFill)
	dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, 12)
	dc.Fill()
	dc.SetColor(cardStroke)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, 12)
	dc.Stroke()

	pad := r.opts.Layout.ContentPadding / 2
	y := box.Y + pad
	y = r.drawLines(dc, n.Data.Title, r.opts.Layout.ContentTitleFont, textColor, box.X+pad, y)
	r.drawLines(dc, n.Data.Description, r.opts.Layout.ContentDescriptionFont, mutedText, box.X+pad, y)
}

func (r *Renderer) drawLabel(dc *gg.Context, n *entities.Node, box valueobjects.Rect) {
	dc.SetColor(labelFill)
	dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, box.Height/2)
	dc.Fill()

	font := r.opts.Layout.LabelFont
	lines := r.fonts.Lines(n.Data.Text, font)
	dc.SetFontFace(r.fonts.Face(font))
	dc.SetColor(textColor)
	top := box.Y + (box.Height-float64(len(lines))*font.LineHeight)/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, box.X+box.Width/2, top+(float64(i)+0.5)*font.LineHeight, 0.5, 0.35)
	}
}

// drawLines sets text top-down from y and returns the y below it
func (r *Renderer) drawLines(dc *gg.Context, text string, font config.FontSpec, c color.Color, x, y float64) float64 {
	if text == "" {
		return y
	}
	dc.SetFontFace(r.fonts.Face(font))
	dc.SetColor(c)
	for _, line := range r.fonts.Lines(text, font) {
		dc.DrawStringAnchored(line, x, y+font.LineHeight/2, 0, 0.35)
		y += font.LineHeight
	}
	return y
}

// drawEdge routes a smooth-step connector from the source's right side to the target's left side
func drawEdge(dc *gg.Context, e *entities.Edge, src, tgt valueobjects.Rect) {
	sx, sy := src.MaxX(), src.Y+src.Height/2
	tx, ty := tgt.X, tgt.Y+tgt.Height/2
	midX := (sx + tx) / 2

	width := e.Style.StrokeWidth
	if width <= 0 {
		width = 1
	}
	alpha := 0.6
	if e.Style.Opacity > 0 {
		alpha = e.Style.Opacity
	}
	dc.SetRGBA(1, 1, 1, alpha)
	dc.SetLineWidth(math.Max(width, 1))
	if e.Animated {
		dc.SetDash(6, 4)
	}
	dc.MoveTo(sx, sy)
	dc.LineTo(midX, sy)
	dc.LineTo(midX, ty)
	dc.LineTo(tx, ty)
	dc.Stroke()
	dc.SetDash()

	// arrowhead pointing into the target
	dir := 1.0
	if tx < midX {
		dir = -1
	}
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-8*dir, ty-4)
	dc.LineTo(tx-8*dir, ty+4)
	dc.ClosePath()
	dc.Fill()
}
