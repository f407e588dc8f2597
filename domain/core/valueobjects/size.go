package valueobjects

import "math"

// Size is a width/height pair. The zero Size means "not yet measured".
type Size struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// IsZero reports whether neither dimension is set
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Max returns the component-wise maximum of s and other
func (s Size) Max(other Size) Size {
	return Size{
		Width:  math.Max(s.Width, other.Width),
		Height: math.Max(s.Height, other.Height),
	}
}

// Or returns s with any unset dimension replaced from fallback
func (s Size) Or(fallback Size) Size {
	if s.Width <= 0 {
		s.Width = fallback.Width
	}
	if s.Height <= 0 {
		s.Height = fallback.Height
	}
	return s
}

// IsValid rejects negative and non-finite dimensions
func (s Size) IsValid() bool {
	return s.Width >= 0 && s.Height >= 0 && isValidCoordinate(s.Width) && isValidCoordinate(s.Height)
}
