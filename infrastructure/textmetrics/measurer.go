package textmetrics

import (
	"fmt"

	"flowboard/domain/services/layout"
)

// Measurer kinds accepted by New
const (
	KindFont = "font"
	KindCell = "cell"
	KindNone = "none"
)

// New returns the measurer named by kind. "none" yields a nil measurer,
// which the layout engine treats as empty text.
func New(kind string) (layout.TextMeasurer, error) {
	switch kind {
	case KindFont, "":
		m, err := NewFontMeasurer()
		if err != nil {
			return nil, err
		}
		return m, nil
	case KindCell:
		return NewCellMeasurer(10), nil
	case KindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown text measurer %q", kind)
	}
}
