package valueobjects

import "math"

// Viewport is the pan/zoom transform between screen space and document space.
// A screen point s maps to document point (s - (X, Y)) / Zoom.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the identity transform
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ScreenToDocument maps a screen point into document space
func (v Viewport) ScreenToDocument(p Position) Position {
	zoom := v.zoom()
	return Position{X: (p.X - v.X) / zoom, Y: (p.Y - v.Y) / zoom}
}

// DocumentToScreen maps a document point into screen space
func (v Viewport) DocumentToScreen(p Position) Position {
	zoom := v.zoom()
	return Position{X: p.X*zoom + v.X, Y: p.Y*zoom + v.Y}
}

// Clamp limits zoom to [minZoom, maxZoom] and repairs non-finite components
func (v Viewport) Clamp(minZoom, maxZoom float64) Viewport {
	if !isValidCoordinate(v.X) {
		v.X = 0
	}
	if !isValidCoordinate(v.Y) {
		v.Y = 0
	}
	if !isValidCoordinate(v.Zoom) || v.Zoom <= 0 {
		v.Zoom = 1
	}
	v.Zoom = math.Min(math.Max(v.Zoom, minZoom), maxZoom)
	return v
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 || !isValidCoordinate(v.Zoom) {
		return 1
	}
	return v.Zoom
}
