// Package textmetrics measures node text for the layout engine.
package textmetrics

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"flowboard/domain/config"
	"flowboard/domain/core/valueobjects"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// BoldWeight is the lowest CSS weight set in the bold face
const BoldWeight = 600

type faceKey struct {
	bold bool
	size float64
}

// FontMeasurer sets text in the Go fonts. The specified family is not
// available offline, so every family maps to Go Regular or Go Bold by weight.
type FontMeasurer struct {
	mu      sync.Mutex
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
	dc      *gg.Context
}

// NewFontMeasurer parses the embedded fonts
func NewFontMeasurer() (*FontMeasurer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &FontMeasurer{
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
		dc:      gg.NewContext(1, 1),
	}, nil
}

// Face returns the cached face for spec
func (m *FontMeasurer) Face(spec config.FontSpec) font.Face {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.faceLocked(spec)
}

func (m *FontMeasurer) faceLocked(spec config.FontSpec) font.Face {
	key := faceKey{bold: spec.Weight >= BoldWeight, size: spec.Size}
	if f, ok := m.faces[key]; ok {
		return f
	}
	ttf := m.regular
	if key.bold {
		ttf = m.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    spec.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	m.faces[key] = f
	return f
}

// Lines splits text into the lines it renders as under spec
func (m *FontMeasurer) Lines(text string, spec config.FontSpec) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linesLocked(text, spec)
}

func (m *FontMeasurer) linesLocked(text string, spec config.FontSpec) []string {
	m.dc.SetFontFace(m.faceLocked(spec))
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if spec.WrapWidth <= 0 || para == "" {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, m.dc.WordWrap(para, spec.WrapWidth)...)
	}
	return lines
}

// MeasureText implements layout.TextMeasurer. Heights are whole line boxes.
func (m *FontMeasurer) MeasureText(text string, spec config.FontSpec) (valueobjects.Size, error) {
	if spec.Size <= 0 {
		return valueobjects.Size{}, fmt.Errorf("invalid font size %v", spec.Size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := m.linesLocked(text, spec)
	widest := 0.0
	for _, line := range lines {
		w, _ := m.dc.MeasureString(line)
		widest = math.Max(widest, w)
	}
	if spec.WrapWidth > 0 {
		widest = math.Min(widest, spec.WrapWidth)
	}
	return valueobjects.Size{
		Width:  math.Ceil(widest),
		Height: float64(len(lines)) * lineHeight(spec),
	}, nil
}

func lineHeight(spec config.FontSpec) float64 {
	if spec.LineHeight > 0 {
		return spec.LineHeight
	}
	return math.Ceil(spec.Size * 1.25)
}
