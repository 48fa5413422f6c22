package anchor

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/gesture"
)

func TestNewMapper_Identity(t *testing.T) {
	m := NewMapper(DefaultConfig())
	assert.Equal(t, IdentityTransform(), m.Transform())

	m = NewMapper(Config{MinScale: 2, MaxScale: 3})
	assert.Equal(t, 2.0, m.Transform().Scale)
	assert.Equal(t, ScaleSymbol, m.Config().Mode)
}

func TestUpdate_PositionMapping(t *testing.T) {
	m := NewMapper(DefaultConfig())

	// Middle MCP at (320, 300): 0 units right, 60px above centre.
	hand := detector.OpenPalmLandmarks()
	tr := m.Update(&hand, gesture.Five)

	assert.InDelta(t, 0, tr.Position.X, 1e-12)
	assert.InDelta(t, 60.0/45*0.3, tr.Position.Y, 1e-12)
	assert.InDelta(t, 0, tr.Position.Z, 1e-12)

	for i := 0; i < 500; i++ {
		tr = m.Update(&hand, gesture.Five)
	}
	assert.InDelta(t, 60.0/45, tr.Position.Y, 1e-9)
	assert.InDelta(t, 2.0, tr.Scale, 1e-9)
}

func TestUpdate_Rotation(t *testing.T) {
	m := NewMapper(DefaultConfig())

	// Hand pointing straight up at the right edge of the frame.
	hand := detector.Translate(detector.OpenPalmLandmarks(), 320, 0)
	var tr Transform
	for i := 0; i < 1000; i++ {
		tr = m.Update(&hand, gesture.Five)
	}

	assert.InDelta(t, -1, tr.Rotation.X, 1e-9)
	assert.InDelta(t, math.Pi/4, tr.Rotation.Y, 1e-9)
	assert.InDelta(t, 0, tr.Rotation.Z, 1e-9)
}

func TestUpdate_SymbolScale(t *testing.T) {
	tests := []struct {
		sym  gesture.Symbol
		want float64
	}{
		{gesture.Pinch, 4},
		{gesture.Zero, 3},
		{gesture.Five, 2},
		{gesture.Two, 2.5},
		{gesture.Heart, 2.5},
		{gesture.None, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.sym.String(), func(t *testing.T) {
			m := NewMapper(DefaultConfig())
			hand := detector.FistLandmarks()
			var tr Transform
			for i := 0; i < 500; i++ {
				tr = m.Update(&hand, tt.sym)
			}
			assert.InDelta(t, tt.want, tr.Scale, 1e-9)
		})
	}
}

func TestUpdate_SpanScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ScaleSpan
	m := NewMapper(cfg)

	hand := detector.OpenPalmLandmarks() // span 100px
	var tr Transform
	for i := 0; i < 500; i++ {
		tr = m.Update(&hand, gesture.None)
	}
	assert.InDelta(t, 2.5, tr.Scale, 1e-9)

	// A huge span is clamped.
	hand.Keypoints[detector.Wrist].Y = 5000
	for i := 0; i < 500; i++ {
		tr = m.Update(&hand, gesture.None)
	}
	assert.InDelta(t, 4, tr.Scale, 1e-9)
}

func TestUpdate_ScaleAlwaysClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ScaleSpan
	m := NewMapper(cfg)
	rng := rand.New(rand.NewPCG(9, 9))

	values := []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1e9, 1e9, 0}
	for i := 0; i < 2000; i++ {
		hand := detector.OpenPalmLandmarks()
		for j := range hand.Keypoints {
			switch rng.IntN(4) {
			case 0:
				hand.Keypoints[j].X = values[rng.IntN(len(values))]
			case 1:
				hand.Keypoints[j].Y = (rng.Float64() - 0.5) * 1e5
			}
		}
		if rng.IntN(10) == 0 {
			hand.Keypoints = hand.Keypoints[:rng.IntN(len(hand.Keypoints))]
		}

		tr := m.Update(&hand, gesture.Symbol(rng.IntN(12)-1))
		require.GreaterOrEqual(t, tr.Scale, cfg.MinScale)
		require.LessOrEqual(t, tr.Scale, cfg.MaxScale)
		require.True(t, finiteTransform(tr), "transform %+v", tr)
	}
}

func TestUpdate_NaNAnchorHoldsTransform(t *testing.T) {
	m := NewMapper(DefaultConfig())

	hand := detector.OpenPalmLandmarks()
	for i := 0; i < 10; i++ {
		m.Update(&hand, gesture.Five)
	}
	before := m.Transform()

	corrupt := hand.Clone()
	corrupt.Keypoints[detector.MiddleMCP].X = math.NaN()
	after := m.Update(&corrupt, gesture.Five)

	assert.Equal(t, before, after)
	assert.Equal(t, 1, m.Rejected())
}

func TestUpdate_NoHandHolds(t *testing.T) {
	m := NewMapper(DefaultConfig())
	hand := detector.PeaceLandmarks()
	m.Update(&hand, gesture.Two)
	before := m.Transform()

	assert.Equal(t, before, m.Update(nil, gesture.None))
	assert.Equal(t, 0, m.Rejected())
}

func TestUpdate_CorruptWristFallsBackPerValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ScaleSpan
	m := NewMapper(cfg)

	hand := detector.OpenPalmLandmarks()
	hand.Keypoints[detector.Wrist].X = math.Inf(1)
	before := m.Transform()
	tr := m.Update(&hand, gesture.Five)

	assert.NotEqual(t, before.Position, tr.Position, "position still follows the anchor")
	assert.Equal(t, before.Rotation.X, tr.Rotation.X)
	assert.Equal(t, before.Rotation.Z, tr.Rotation.Z)
	assert.Equal(t, before.Scale, tr.Scale)
}

func TestOrigin(t *testing.T) {
	m := NewMapper(DefaultConfig())
	hand := detector.OpenPalmLandmarks()

	origin := m.Origin(&hand)
	require.NotNil(t, origin)
	assert.InDelta(t, 60.0/45, origin.Y, 1e-12)

	hand.Keypoints[detector.MiddleMCP].Z = math.NaN()
	assert.Nil(t, m.Origin(&hand))
	assert.Nil(t, m.Origin(nil))
}

func finiteTransform(tr Transform) bool {
	for _, v := range []r3.Vec{tr.Position, tr.Rotation} {
		if math.IsNaN(v.X+v.Y+v.Z) || math.IsInf(v.X+v.Y+v.Z, 0) {
			return false
		}
	}
	return !math.IsNaN(tr.Scale) && !math.IsInf(tr.Scale, 0)
}
