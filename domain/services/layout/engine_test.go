package layout

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"flowboard/domain/config"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridMeasurer treats every rune as 10px wide and wraps at WrapWidth
type gridMeasurer struct{}

func (gridMeasurer) MeasureText(text string, font config.FontSpec) (valueobjects.Size, error) {
	lines := 0
	widest := 0.0
	for _, line := range strings.Split(text, "\n") {
		w := float64(utf8.RuneCountInString(line)) * 10
		n := 1
		if font.WrapWidth > 0 && w > font.WrapWidth {
			n = int((w + font.WrapWidth - 1) / font.WrapWidth)
			w = font.WrapWidth
		}
		lines += n
		if w > widest {
			widest = w
		}
	}
	return valueobjects.Size{Width: widest, Height: float64(lines) * font.LineHeight}, nil
}

type failingMeasurer struct{}

func (failingMeasurer) MeasureText(string, config.FontSpec) (valueobjects.Size, error) {
	return valueobjects.Size{}, errors.New("no canvas")
}

func newEngine() *Engine {
	return NewEngine(config.DefaultLayoutConfig(), gridMeasurer{})
}

func TestContentSize(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name     string
		data     entities.NodeData
		previous valueobjects.Size
		want     valueobjects.Size
	}{
		{
			name: "short text clamps to min width",
			data: entities.ContentData("Start", "..."),
			want: valueobjects.Size{Width: 230, Height: 32 + 26 + 80},
		},
		{
			name: "long title widens",
			data: entities.ContentData(strings.Repeat("x", 30), "..."),
			want: valueobjects.Size{Width: 300 + 80, Height: 138},
		},
		{
			name: "multi-line description grows height",
			data: entities.ContentData("T", "a\nb\nc"),
			want: valueobjects.Size{Width: 230, Height: 32 + 3*26 + 80},
		},
		{
			name:     "persisted size wins when larger",
			data:     entities.ContentData("Start", "..."),
			previous: valueobjects.Size{Width: 500, Height: 90},
			want:     valueobjects.Size{Width: 500, Height: 138},
		},
		{
			name: "title is trimmed",
			data: entities.ContentData("   ab   ", ""),
			want: valueobjects.Size{Width: 230, Height: 32 + 80},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ContentSize(tt.data, tt.previous))
		})
	}
}

func TestContentSize_Idempotent(t *testing.T) {
	e := newEngine()
	data := entities.ContentData("Upsell Agent", "qualifies leads\nand routes them")

	first := e.ContentSize(data, valueobjects.Size{})
	second := e.ContentSize(data, first)
	assert.Equal(t, first, second)
}

func TestContentSize_Monotonic(t *testing.T) {
	e := newEngine()
	manual := valueobjects.Size{Width: 640, Height: 400}

	shrunk := e.ContentSize(entities.ContentData("a", ""), manual)
	assert.GreaterOrEqual(t, shrunk.Width, manual.Width)
	assert.GreaterOrEqual(t, shrunk.Height, manual.Height)
}

func TestLabelSize(t *testing.T) {
	e := newEngine()

	assert.Equal(t, valueobjects.Size{Width: 190, Height: 24 + 30}, e.LabelSize(entities.LabelData("Label..."), valueobjects.Size{}))

	// 40 runes = 400px at a 170px wrap -> 3 lines
	long := e.LabelSize(entities.LabelData(strings.Repeat("w", 40)), valueobjects.Size{})
	assert.Equal(t, valueobjects.Size{Width: 190, Height: 3*24 + 30}, long)

	kept := e.LabelSize(entities.LabelData("x"), long)
	assert.Equal(t, long, kept)
}

func TestMeasureFallback(t *testing.T) {
	for name, m := range map[string]TextMeasurer{"nil": nil, "failing": failingMeasurer{}} {
		t.Run(name, func(t *testing.T) {
			e := NewEngine(config.DefaultLayoutConfig(), m)
			assert.Equal(t, valueobjects.Size{Width: 230, Height: 80}, e.ContentSize(entities.ContentData("Title", "Body"), valueobjects.Size{}))
			assert.Equal(t, valueobjects.Size{Width: 190, Height: 30}, e.LabelSize(entities.LabelData("hi"), valueobjects.Size{}))
		})
	}
}

func TestGroupFrame(t *testing.T) {
	e := newEngine()
	members := []*entities.Node{
		{Position: valueobjects.Position{X: 100, Y: 100}, Size: valueobjects.Size{Width: 230, Height: 138}},
		{Position: valueobjects.Position{X: 400, Y: 300}},
	}

	frame, ok := e.GroupFrame(members)
	require.True(t, ok)
	// bounds: x 100..600 (second member falls back to 200x100), y 100..400
	assert.Equal(t, valueobjects.Rect{X: 76, Y: 100 - 24 - 64, Width: 500 + 48, Height: 300 + 48 + 64}, frame)

	_, ok = e.GroupFrame(nil)
	assert.False(t, ok)
}

func TestFitGroup_SkipsCollapsed(t *testing.T) {
	e := newEngine()
	group := &entities.Node{Kind: valueobjects.KindGroup, Data: entities.NodeData{Collapsed: true}}
	child := &entities.Node{Size: valueobjects.Size{Width: 10, Height: 10}}

	_, ok := e.FitGroup(group, []*entities.Node{child})
	assert.False(t, ok)

	group.Data.Collapsed = false
	_, ok = e.FitGroup(group, []*entities.Node{child})
	assert.True(t, ok)

	assert.Equal(t, valueobjects.Size{Width: 300, Height: 64}, e.CollapsedSize(&entities.Node{Size: valueobjects.Size{Width: 300, Height: 500}}))
}

func TestApplyGroups(t *testing.T) {
	e := newEngine()
	doc := aggregates.NewDocument("board")
	g := doc.AddNode(valueobjects.KindGroup, valueobjects.Position{}, entities.GroupData("G", valueobjects.ColorBlue))
	empty := doc.AddNode(valueobjects.KindGroup, valueobjects.Position{X: 5, Y: 5}, entities.GroupData("E", valueobjects.ColorPink))
	doc.SetNodeSize(empty.ID, valueobjects.Size{Width: 50, Height: 50})
	c := doc.AddNode(valueobjects.KindContent, valueobjects.Position{X: 100, Y: 200}, entities.ContentData("A", ""))
	doc.SetNodeSize(c.ID, valueobjects.Size{Width: 230, Height: 112})
	require.NoError(t, doc.SetParent(c.ID, g.ID))

	changed := e.ApplyGroups(doc)
	assert.Equal(t, []string{g.ID}, changed)

	got, _ := doc.Node(g.ID)
	assert.Equal(t, valueobjects.Position{X: 76, Y: 112}, got.Position)
	assert.Equal(t, valueobjects.Size{Width: 278, Height: 224}, got.Size)

	untouched, _ := doc.Node(empty.ID)
	assert.Equal(t, valueobjects.Size{Width: 50, Height: 50}, untouched.Size, "childless groups keep their size")

	assert.Empty(t, e.ApplyGroups(doc), "fitting is idempotent")
}

func TestApplyText(t *testing.T) {
	e := newEngine()
	doc := aggregates.NewDocument("board")
	n := doc.AddNode(valueobjects.KindContent, valueobjects.Position{}, entities.ContentData("Start", "..."))

	assert.True(t, e.ApplyText(doc, n.ID))
	assert.False(t, e.ApplyText(doc, n.ID))
	assert.False(t, e.ApplyText(doc, "missing"))

	got, _ := doc.Node(n.ID)
	assert.Equal(t, valueobjects.Size{Width: 230, Height: 138}, got.Size)
}
