package textmetrics

import (
	"math"
	"strings"

	"flowboard/domain/config"
	"flowboard/domain/core/valueobjects"

	"github.com/mattn/go-runewidth"
)

// CellMeasurer measures text as a grid of terminal cells, each CellWidth
// by one line box. Wide runes take two cells.
type CellMeasurer struct {
	CellWidth float64
}

// NewCellMeasurer creates a measurer with the given cell width in document units
func NewCellMeasurer(cellWidth float64) *CellMeasurer {
	if cellWidth <= 0 {
		cellWidth = 10
	}
	return &CellMeasurer{CellWidth: cellWidth}
}

// MeasureText implements layout.TextMeasurer
func (m *CellMeasurer) MeasureText(text string, spec config.FontSpec) (valueobjects.Size, error) {
	lines := m.Lines(text, spec)
	widest := 0
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > widest {
			widest = w
		}
	}
	return valueobjects.Size{
		Width:  float64(widest) * m.CellWidth,
		Height: float64(len(lines)) * lineHeight(spec),
	}, nil
}

// Lines word-wraps text to the spec's wrap width. Words wider than a line are broken.
func (m *CellMeasurer) Lines(text string, spec config.FontSpec) []string {
	maxCells := 0
	if spec.WrapWidth > 0 {
		maxCells = int(math.Max(1, math.Floor(spec.WrapWidth/m.CellWidth)))
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if maxCells == 0 {
			out = append(out, para)
			continue
		}
		out = append(out, WrapCells(para, maxCells)...)
	}
	return out
}

// WrapCells greedily wraps s into lines of at most width cells
func WrapCells(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		lines []string
		cur   strings.Builder
		used  int
	)
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		used = 0
	}
	for _, word := range words {
		ww := runewidth.StringWidth(word)
		if used > 0 && used+1+ww <= width {
			cur.WriteByte(' ')
			cur.WriteString(word)
			used += 1 + ww
			continue
		}
		if used > 0 {
			flush()
		}
		for ww > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				// a single rune wider than the line
				r := []rune(word)
				head = string(r[0])
			}
			lines = append(lines, head)
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		cur.WriteString(word)
		used = ww
	}
	if used > 0 || cur.Len() > 0 {
		flush()
	}
	return lines
}
