// Package anchor maps a tracked hand onto the hologram group transform.
package anchor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/gesture"
)

// ScaleMode selects how the target scale is derived.
type ScaleMode string

const (
	// ScaleSpan derives scale from the wrist to anchor pixel distance.
	ScaleSpan ScaleMode = "span"
	// ScaleSymbol derives scale from the active gesture symbol.
	ScaleSymbol ScaleMode = "symbol"
)

// Transform is the smoothed group transform. Rotation is in radians.
type Transform struct {
	Position r3.Vec  `json:"position"`
	Rotation r3.Vec  `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// IdentityTransform is the transform before any hand has been seen.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Config holds the mapping constants.
type Config struct {
	FrameWidth    float64
	FrameHeight   float64
	PixelsPerUnit float64
	DepthDivisor  float64
	MaxYaw        float64
	SpanDivisor   float64

	PositionGain float64
	RotationGain float64
	ScaleGain    float64

	MinScale float64
	MaxScale float64

	Mode ScaleMode
}

// DefaultConfig returns the stock mapping for a 640x480 camera.
func DefaultConfig() Config {
	return Config{
		FrameWidth:    640,
		FrameHeight:   480,
		PixelsPerUnit: 45,
		DepthDivisor:  25,
		MaxYaw:        math.Pi / 4,
		SpanDivisor:   40,
		PositionGain:  0.3,
		RotationGain:  0.1,
		ScaleGain:     0.15,
		MinScale:      0.5,
		MaxScale:      4,
		Mode:          ScaleSymbol,
	}
}

// SymbolScale is the target scale for a symbol in ScaleSymbol mode.
func SymbolScale(sym gesture.Symbol) float64 {
	switch sym {
	case gesture.Pinch:
		return 4.0
	case gesture.Zero:
		return 3.0
	case gesture.Five:
		return 2.0
	default:
		return 2.5
	}
}

// Mapper smooths hand anchors into a Transform. It keeps the last good value
// across lost or corrupt frames. Not safe for concurrent use; the render loop
// owns it.
type Mapper struct {
	cfg      Config
	current  Transform
	rejected int
}

// NewMapper creates a mapper at the identity transform. Zero config fields
// take their defaults.
func NewMapper(cfg Config) *Mapper {
	def := DefaultConfig()
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		cfg.FrameWidth, cfg.FrameHeight = def.FrameWidth, def.FrameHeight
	}
	if cfg.PixelsPerUnit <= 0 {
		cfg.PixelsPerUnit = def.PixelsPerUnit
	}
	if cfg.DepthDivisor <= 0 {
		cfg.DepthDivisor = def.DepthDivisor
	}
	if cfg.MaxYaw == 0 {
		cfg.MaxYaw = def.MaxYaw
	}
	if cfg.SpanDivisor <= 0 {
		cfg.SpanDivisor = def.SpanDivisor
	}
	if cfg.PositionGain <= 0 {
		cfg.PositionGain = def.PositionGain
	}
	if cfg.RotationGain <= 0 {
		cfg.RotationGain = def.RotationGain
	}
	if cfg.ScaleGain <= 0 {
		cfg.ScaleGain = def.ScaleGain
	}
	if cfg.MinScale <= 0 || cfg.MaxScale < cfg.MinScale {
		cfg.MinScale, cfg.MaxScale = def.MinScale, def.MaxScale
	}
	if cfg.Mode != ScaleSpan && cfg.Mode != ScaleSymbol {
		cfg.Mode = def.Mode
	}
	m := &Mapper{cfg: cfg}
	m.Reset()
	return m
}

// Transform returns the current transform.
func (m *Mapper) Transform() Transform {
	return m.current
}

// Rejected counts frames discarded because the anchor was non-finite.
func (m *Mapper) Rejected() int {
	return m.rejected
}

// Config returns the effective configuration.
func (m *Mapper) Config() Config {
	return m.cfg
}

// Update advances the transform one render tick toward the pose of hand.
// A nil hand holds the transform. A non-finite anchor rejects the whole
// update; any other non-finite candidate keeps its previous component.
func (m *Mapper) Update(hand *detector.Hand, sym gesture.Symbol) Transform {
	if hand == nil || len(hand.Keypoints) <= detector.MiddleMCP {
		return m.current
	}

	anchor, ok := hand.Point(detector.MiddleMCP)
	if !ok {
		m.rejected++
		return m.current
	}
	ref, refOK := hand.Point(detector.Wrist)

	cfg := m.cfg
	next := m.current

	halfW := cfg.FrameWidth / 2
	halfH := cfg.FrameHeight / 2
	target := r3.Vec{
		X: (anchor.X - halfW) / cfg.PixelsPerUnit,
		Y: -(anchor.Y - halfH) / cfg.PixelsPerUnit,
		Z: -anchor.Z / cfg.DepthDivisor,
	}
	next.Position = smoothVec(m.current.Position, target, cfg.PositionGain)

	yaw := (anchor.X - halfW) / halfW * cfg.MaxYaw
	rotTarget := r3.Vec{X: math.NaN(), Y: yaw, Z: math.NaN()}
	if refOK {
		dir := r3.Vec{X: anchor.X - ref.X, Y: -(anchor.Y - ref.Y), Z: -(anchor.Z - ref.Z)}
		if n := r3.Norm(dir); n > 1e-9 {
			dir = r3.Scale(1/n, dir)
			rotTarget.X = -dir.Y
			rotTarget.Z = dir.X
		}
	}
	next.Rotation = smoothVec(m.current.Rotation, rotTarget, cfg.RotationGain)

	scaleTarget := SymbolScale(sym)
	if cfg.Mode == ScaleSpan {
		scaleTarget = math.NaN()
		if refOK {
			scaleTarget = detector.Distance2D(anchor, ref) / cfg.SpanDivisor
		}
	}
	if isFinite(scaleTarget) {
		scaleTarget = clamp(scaleTarget, cfg.MinScale, cfg.MaxScale)
	}
	next.Scale = clamp(smooth(m.current.Scale, scaleTarget, cfg.ScaleGain), cfg.MinScale, cfg.MaxScale)

	m.current = next
	return m.current
}

// Reset returns the mapper to the identity transform, with its scale kept
// inside the clamp range.
func (m *Mapper) Reset() {
	m.current = IdentityTransform()
	m.current.Scale = clamp(m.current.Scale, m.cfg.MinScale, m.cfg.MaxScale)
}

// Origin returns the anchor-relative repulsion origin in cloud-local units
// for hand, or nil when the anchor is unusable.
func (m *Mapper) Origin(hand *detector.Hand) *r3.Vec {
	anchor, ok := hand.Point(detector.MiddleMCP)
	if !ok {
		return nil
	}
	world := r3.Vec{
		X: (anchor.X - m.cfg.FrameWidth/2) / m.cfg.PixelsPerUnit,
		Y: -(anchor.Y - m.cfg.FrameHeight/2) / m.cfg.PixelsPerUnit,
		Z: -anchor.Z / m.cfg.DepthDivisor,
	}
	scale := m.current.Scale
	if !(scale > 0) {
		return nil
	}
	local := r3.Scale(1/scale, r3.Sub(world, m.current.Position))
	if !isFinite(local.X) || !isFinite(local.Y) || !isFinite(local.Z) {
		return nil
	}
	return &local
}

// smooth moves cur toward target by gain and keeps cur when the result is
// not finite.
func smooth(cur, target, gain float64) float64 {
	next := cur + (target-cur)*gain
	if !isFinite(next) {
		return cur
	}
	return next
}

func smoothVec(cur, target r3.Vec, gain float64) r3.Vec {
	return r3.Vec{
		X: smooth(cur.X, target.X, gain),
		Y: smooth(cur.Y, target.Y, gain),
		Z: smooth(cur.Z, target.Z, gain),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
