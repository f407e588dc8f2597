package valueobjects

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	p, err := NewPosition(10, 20)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 10, Y: 20}, p)

	_, err = NewPosition(math.NaN(), 0)
	assert.Error(t, err)
	_, err = NewPosition(0, math.Inf(1))
	assert.Error(t, err)
}

func TestPosition_Midpoint(t *testing.T) {
	a := Position{X: 0, Y: 0}
	b := Position{X: 100, Y: 50}
	assert.True(t, a.Midpoint(b).Equals(Position{X: 50, Y: 25}))
}

func TestRect_UnionAndContains(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 20, Y: 5, Width: 10, Height: 20}
	u := a.Union(b)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 30, Height: 25}, u)
	assert.True(t, u.Contains(Position{X: 30, Y: 25}))
	assert.False(t, a.Contains(Position{X: 11, Y: 0}))
	assert.True(t, a.Intersects(Rect{X: 5, Y: 5, Width: 1, Height: 1}))
	assert.False(t, a.Intersects(b))
}

func TestRectBetween_Normalizes(t *testing.T) {
	r := RectBetween(Position{X: 50, Y: 10}, Position{X: 10, Y: 40})
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 40, Height: 30}, r)
}

func TestViewport_RoundTrip(t *testing.T) {
	v := Viewport{X: 120, Y: -40, Zoom: 2}
	doc := v.ScreenToDocument(Position{X: 320, Y: 160})
	assert.Equal(t, Position{X: 100, Y: 100}, doc)
	assert.True(t, v.DocumentToScreen(doc).Equals(Position{X: 320, Y: 160}))
}

func TestViewport_Clamp(t *testing.T) {
	assert.Equal(t, 0.2, Viewport{Zoom: 0.01}.Clamp(0.2, 2).Zoom)
	assert.Equal(t, 2.0, Viewport{Zoom: 9}.Clamp(0.2, 2).Zoom)
	assert.Equal(t, 1.0, Viewport{Zoom: math.NaN()}.Clamp(0.2, 2).Zoom)
}

func TestNodeKind_UnmarshalLegacy(t *testing.T) {
	var kinds []NodeKind
	require.NoError(t, json.Unmarshal([]byte(`["glass","content","label","group"]`), &kinds))
	assert.Equal(t, []NodeKind{KindContent, KindContent, KindLabel, KindGroup}, kinds)

	var k NodeKind
	assert.Error(t, json.Unmarshal([]byte(`"circle"`), &k))
}

func TestNodeKind_CanConnect(t *testing.T) {
	assert.True(t, KindContent.CanConnect())
	assert.True(t, KindLabel.CanConnect())
	assert.False(t, KindGroup.CanConnect())
}

func TestColorToken(t *testing.T) {
	r, g, b, a := ColorBlue.RGBA()
	assert.Equal(t, []uint8{59, 130, 246}, []uint8{r, g, b})
	assert.InDelta(t, 0.15, a, 1e-9)

	c, err := ParseColorToken("green")
	require.NoError(t, err)
	assert.Equal(t, ColorGreen, c)
	_, err = ParseColorToken("mauve")
	assert.Error(t, err)

	rnd := rand.New(rand.NewPCG(1, 2))
	assert.Contains(t, GroupPalette, RandomGroupColor(rnd))
}

func TestIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewNodeID(KindLabel), "lbl-"))
	assert.True(t, strings.HasPrefix(NewNodeID(KindGroup), "group-"))
	assert.True(t, strings.HasPrefix(NewEdgeID(), "e-"))
	assert.NotEqual(t, NewNodeID(KindContent), NewNodeID(KindContent))
}
