// Package render composes the per-tick hologram frame from the latest
// detection: morph step, anchor transform, idle motion and colours.
package render

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/hologram/internal/anchor"
	"github.com/ayusman/hologram/internal/gesture"
)

// Frame is one immutable render snapshot. Positions are cloud-local and
// must not be modified by readers.
type Frame struct {
	Seq       uint64           `json:"seq"`
	At        time.Time        `json:"at"`
	Symbol    gesture.Symbol   `json:"symbol"`
	Label     string           `json:"label"`
	Stable    bool             `json:"stable"`
	Transform anchor.Transform `json:"transform"`
	Spin      float64          `json:"spin"`
	Pulse     float64          `json:"pulse"`
	Depth     float64          `json:"depth"` // wrist z, held when not finite
	Palette   Palette          `json:"palette"`
	Accent    string           `json:"accent"`
	Positions []r3.Vec         `json:"-"`
}

// LinkStatus is the text shown for the stable flag.
func (f *Frame) LinkStatus() string {
	if f.Stable {
		return "STABLE"
	}
	return "SEARCHING..."
}

// Flat returns positions as x, y, z triples for compact transport.
func (f *Frame) Flat() []float32 {
	out := make([]float32, 0, 3*len(f.Positions))
	for _, p := range f.Positions {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}
