// Package morph moves the particle cloud toward its target shape.
package morph

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Params tune one morph step.
type Params struct {
	// Gain is the fraction of the remaining distance covered per step, in (0, 1).
	Gain float64
	// Radius is the repulsion interaction radius around the origin.
	Radius float64
	// Strength scales the repulsion push.
	Strength float64
}

// DefaultParams returns the stock morph tuning.
func DefaultParams() Params {
	return Params{Gain: 0.05, Radius: 1.5, Strength: 0.4}
}

// InitialSpread is the edge length of the cube the particles start in.
const InitialSpread = 5.0

// Engine owns the particle positions. It is not safe for concurrent use;
// the render loop is its only writer.
type Engine struct {
	params    Params
	positions []r3.Vec
}

// NewEngine scatters n particles uniformly in a cube of side InitialSpread.
// Invalid parameters take their defaults.
func NewEngine(n int, p Params, rng *rand.Rand) *Engine {
	def := DefaultParams()
	if !(p.Gain > 0 && p.Gain < 1) {
		p.Gain = def.Gain
	}
	if !(p.Radius > 0) || math.IsInf(p.Radius, 0) {
		p.Radius = def.Radius
	}
	if !(p.Strength >= 0) || math.IsInf(p.Strength, 0) {
		p.Strength = def.Strength
	}

	positions := make([]r3.Vec, max(n, 0))
	for i := range positions {
		positions[i] = r3.Vec{
			X: (rng.Float64() - 0.5) * InitialSpread,
			Y: (rng.Float64() - 0.5) * InitialSpread,
			Z: (rng.Float64() - 0.5) * InitialSpread,
		}
	}
	return &Engine{params: p, positions: positions}
}

// Len returns the particle count.
func (e *Engine) Len() int {
	return len(e.positions)
}

// Params returns the effective tuning.
func (e *Engine) Params() Params {
	return e.params
}

// Positions exposes the live buffer. It changes on every Step.
func (e *Engine) Positions() []r3.Vec {
	return e.positions
}

// Snapshot copies the current positions.
func (e *Engine) Snapshot() []r3.Vec {
	return append([]r3.Vec(nil), e.positions...)
}

// Step advances every particle once toward target. A nil origin disables repulsion.
func (e *Engine) Step(target []r3.Vec, origin *r3.Vec) {
	Step(e.positions, target, origin, e.params)
}

// Step applies p += (t - p) * Gain to each position and, when origin is set,
// pushes particles inside Radius away from it by (Radius - d) * Strength.
// Particles without a finite target are left where they are, as are any
// whose update would be non-finite. Extra targets are ignored.
func Step(positions, target []r3.Vec, origin *r3.Vec, p Params) {
	n := min(len(positions), len(target))

	repel := origin != nil && finite(*origin) && p.Strength > 0
	for i := 0; i < n; i++ {
		cur := positions[i]
		t := target[i]
		if !finite(t) {
			continue
		}

		next := r3.Add(cur, r3.Scale(p.Gain, r3.Sub(t, cur)))

		if repel {
			away := r3.Sub(next, *origin)
			d := r3.Norm(away)
			if d < p.Radius && d > 1e-9 {
				push := (p.Radius - d) * p.Strength
				next = r3.Add(next, r3.Scale(push/d, away))
			}
		}

		if finite(next) {
			positions[i] = next
		}
	}
}

func finite(v r3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
