package render

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RingCount is the number of decorative rings around the cloud.
const RingCount = 4

// ringHueStep is the hue offset between consecutive rings, in degrees.
const ringHueStep = 25.0

// Palette is the colour set published with every frame.
type Palette struct {
	Hue   float64           `json:"hue"`
	Cloud string            `json:"cloud"`
	Rings [RingCount]string `json:"rings"`
}

// HueFromX maps an anchor x pixel onto [0, 360] across the frame width.
// ok is false when x or width is unusable, in which case the caller keeps
// its previous hue.
func HueFromX(x, width float64) (hue float64, ok bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) || !(width > 0) {
		return 0, false
	}
	return math.Max(0, math.Min(360, x/width*360)), true
}

// NewPalette derives the cloud and ring colours from a hue in degrees.
func NewPalette(hue float64) Palette {
	p := Palette{
		Hue:   hue,
		Cloud: colorful.Hsl(hue, 1, 0.5).Clamped().Hex(),
	}
	for i := range p.Rings {
		h := math.Mod(hue+ringHueStep*float64(i), 360)
		p.Rings[i] = colorful.Hsl(h, 0.8, 0.5).Clamped().Hex()
	}
	return p
}
