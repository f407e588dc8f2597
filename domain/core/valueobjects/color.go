package valueobjects

import (
	"fmt"
	"math/rand/v2"
)

// ColorToken is a group tint, stored as the CSS background value
type ColorToken string

const (
	ColorPurple ColorToken = "rgba(139,92,246,0.15)"
	ColorBlue   ColorToken = "rgba(59,130,246,0.15)"
	ColorGreen  ColorToken = "rgba(16,185,129,0.15)"
	ColorOrange ColorToken = "rgba(251,146,60,0.15)"
	ColorPink   ColorToken = "rgba(236,72,153,0.15)"
)

// GroupPalette is the set createGroup picks from
var GroupPalette = []ColorToken{ColorPurple, ColorBlue, ColorGreen, ColorOrange, ColorPink}

var colorNames = map[ColorToken]string{
	ColorPurple: "purple",
	ColorBlue:   "blue",
	ColorGreen:  "green",
	ColorOrange: "orange",
	ColorPink:   "pink",
}

// RGBA returns the token's components, alpha in [0,1]
func (c ColorToken) RGBA() (r, g, b uint8, a float64) {
	var ri, gi, bi int
	if _, err := fmt.Sscanf(string(c), "rgba(%d,%d,%d,%g)", &ri, &gi, &bi, &a); err != nil {
		return 139, 92, 246, 0.15
	}
	return uint8(ri), uint8(gi), uint8(bi), a
}

// Name returns a human name, or the raw token for custom colors
func (c ColorToken) Name() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return string(c)
}

// ParseColorToken accepts a palette name or a raw token
func ParseColorToken(s string) (ColorToken, error) {
	for token, name := range colorNames {
		if name == s || string(token) == s {
			return token, nil
		}
	}
	return "", fmt.Errorf("unknown color %q", s)
}

// RandomGroupColor draws from GroupPalette using rnd, or the global source when rnd is nil
func RandomGroupColor(rnd *rand.Rand) ColorToken {
	if rnd == nil {
		return GroupPalette[rand.IntN(len(GroupPalette))]
	}
	return GroupPalette[rnd.IntN(len(GroupPalette))]
}
