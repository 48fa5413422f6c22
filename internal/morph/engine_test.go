package morph

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(11, 13))
}

func TestNewEngine_InitialCube(t *testing.T) {
	e := NewEngine(1000, DefaultParams(), newRNG())

	require.Equal(t, 1000, e.Len())
	for _, p := range e.Positions() {
		assert.LessOrEqual(t, math.Abs(p.X), InitialSpread/2)
		assert.LessOrEqual(t, math.Abs(p.Y), InitialSpread/2)
		assert.LessOrEqual(t, math.Abs(p.Z), InitialSpread/2)
	}
}

func TestNewEngine_InvalidParams(t *testing.T) {
	e := NewEngine(1, Params{Gain: 1.5, Radius: math.NaN(), Strength: -1}, newRNG())
	assert.Equal(t, DefaultParams(), e.Params())
}

func TestStep_MonotonicConvergence(t *testing.T) {
	for _, gain := range []float64{0.05, 0.25, 0.9} {
		e := NewEngine(200, Params{Gain: gain, Radius: 1.5, Strength: 0.4}, newRNG())
		target := make([]r3.Vec, e.Len())
		rng := rand.New(rand.NewPCG(3, 4))
		for i := range target {
			target[i] = r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
		}

		prev := distances(e.Positions(), target)
		steps := 0
		for ; steps < 2000; steps++ {
			e.Step(target, nil)
			cur := distances(e.Positions(), target)
			for i := range cur {
				if prev[i] > 1e-12 {
					require.Less(t, cur[i], prev[i], "gain %v particle %d step %d", gain, i, steps)
				}
			}
			prev = cur
			if maxOf(cur) < 1e-6 {
				break
			}
		}
		assert.Less(t, steps, 2000, "gain %v did not converge", gain)
	}
}

func TestStep_SingleStepFraction(t *testing.T) {
	positions := []r3.Vec{{X: 0}}
	Step(positions, []r3.Vec{{X: 10}}, nil, DefaultParams())
	assert.InDelta(t, 0.5, positions[0].X, 1e-12)
}

func TestStep_Repulsion(t *testing.T) {
	p := DefaultParams()
	origin := r3.Vec{}

	t.Run("inside radius is pushed out", func(t *testing.T) {
		positions := []r3.Vec{{X: 0.5}}
		Step(positions, []r3.Vec{{X: 0.5}}, &origin, p)
		// d = 0.5, push = (1.5 - 0.5) * 0.4
		assert.InDelta(t, 0.9, positions[0].X, 1e-12)
		assert.InDelta(t, 0, positions[0].Y, 1e-12)
	})

	t.Run("outside radius is untouched", func(t *testing.T) {
		positions := []r3.Vec{{Y: 2}}
		Step(positions, []r3.Vec{{Y: 2}}, &origin, p)
		assert.Equal(t, r3.Vec{Y: 2}, positions[0])
	})

	t.Run("particle at origin is not pushed", func(t *testing.T) {
		positions := []r3.Vec{{}}
		Step(positions, []r3.Vec{{}}, &origin, p)
		assert.Equal(t, r3.Vec{}, positions[0])
	})

	t.Run("non-finite origin disables repulsion", func(t *testing.T) {
		bad := r3.Vec{X: math.NaN()}
		positions := []r3.Vec{{X: 0.5}}
		Step(positions, []r3.Vec{{X: 0.5}}, &bad, p)
		assert.Equal(t, r3.Vec{X: 0.5}, positions[0])
	})
}

func TestStep_NonFinite(t *testing.T) {
	positions := []r3.Vec{{X: 1}, {X: 2}, {X: 3}}
	target := []r3.Vec{{X: math.NaN()}, {Y: math.Inf(1)}, {X: 3}}

	Step(positions, target, nil, DefaultParams())

	assert.Equal(t, r3.Vec{X: 1}, positions[0])
	assert.Equal(t, r3.Vec{X: 2}, positions[1])
	assert.Equal(t, r3.Vec{X: 3}, positions[2])
}

func TestStep_MismatchedLengths(t *testing.T) {
	positions := []r3.Vec{{}, {}, {}}
	Step(positions, []r3.Vec{{X: 1}}, nil, DefaultParams())

	assert.InDelta(t, 0.05, positions[0].X, 1e-12)
	assert.Equal(t, r3.Vec{}, positions[2])
	assert.Len(t, positions, 3)
}

func TestSnapshot_IsCopy(t *testing.T) {
	e := NewEngine(3, DefaultParams(), newRNG())
	snap := e.Snapshot()
	e.Step([]r3.Vec{{}, {}, {}}, nil)
	assert.NotEqual(t, snap[0], e.Positions()[0])
}

func distances(a, b []r3.Vec) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = r3.Norm(r3.Sub(a[i], b[i]))
	}
	return out
}

func maxOf(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}
