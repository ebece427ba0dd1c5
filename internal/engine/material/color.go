package material

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear-space RGB color, ready for lighting math in shaders.
type Color struct {
	R, G, B float32
}

// White is the neutral multiplier.
var White = Color{1, 1, 1}

// Gray returns a color with all channels set to v.
func Gray(v float32) Color {
	return Color{v, v, v}
}

// ParseColor parses a "#rrggbb" or "#rgb" hex string in sRGB and converts
// it to linear RGB.
func ParseColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.LinearRgb()
	return Color{float32(r), float32(g), float32(b)}, nil
}

// MustColor is ParseColor for compile-time constants. It panics on error.
func MustColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Scale multiplies every channel by s.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Add sums two colors channel by channel.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Array returns the color as a 3-element array for uniform upload.
func (c Color) Array() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%.3f,%.3f,%.3f)", c.R, c.G, c.B)
}

// Distance returns the Euclidean distance between two colors.
func (c Color) Distance(o Color) float32 {
	dr, dg, db := c.R-o.R, c.G-o.G, c.B-o.B
	return float32(math.Sqrt(float64(dr*dr + dg*dg + db*db)))
}
