package gesture

import (
	"math"

	"github.com/ayusman/hologram/internal/detector"
)

// Thresholds tune the finger-state heuristics. Ratios are relative to the
// hand-scale reference; FusionPixels is an absolute image-plane distance.
type Thresholds struct {
	// ExtendMargin: a finger is extended when tip-wrist exceeds PIP-wrist by this factor.
	ExtendMargin float64
	// ThumbRatio: the thumb is extended when thumb tip to index MCP exceeds ThumbRatio x scale.
	ThumbRatio float64
	// PinchRatio: pinch when thumb tip to index tip is below PinchRatio x scale.
	PinchRatio float64
	// FusionPixels is the two-hand heart proximity threshold.
	FusionPixels float64
	// UseDepth includes z in distances.
	UseDepth bool
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExtendMargin: 1.1,
		ThumbRatio:   0.45,
		PinchRatio:   0.2,
		FusionPixels: 100,
	}
}

// Classifier turns single hands, or pairs of hands, into symbols.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	t Thresholds
}

// NewClassifier creates a classifier; zero fields in t take their defaults.
func NewClassifier(t Thresholds) *Classifier {
	def := DefaultThresholds()
	if t.ExtendMargin <= 0 {
		t.ExtendMargin = def.ExtendMargin
	}
	if t.ThumbRatio <= 0 {
		t.ThumbRatio = def.ThumbRatio
	}
	if t.PinchRatio <= 0 {
		t.PinchRatio = def.PinchRatio
	}
	if t.FusionPixels <= 0 {
		t.FusionPixels = def.FusionPixels
	}
	return &Classifier{t: t}
}

// Thresholds returns the effective tuning.
func (c *Classifier) Thresholds() Thresholds {
	return c.t
}

var fingerJoints = [4]struct{ pip, tip int }{
	{detector.IndexPIP, detector.IndexTip},
	{detector.MiddlePIP, detector.MiddleTip},
	{detector.RingPIP, detector.RingTip},
	{detector.PinkyPIP, detector.PinkyTip},
}

// Classify maps one hand to None, Pinch or a finger count. It never panics;
// incomplete hands and a degenerate scale reference yield None.
func (c *Classifier) Classify(hand *detector.Hand) Symbol {
	if !hand.Complete() {
		return None
	}

	scale := hand.ScaleReference(c.t.UseDepth)
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < 1e-9 {
		return None
	}

	if d := c.dist(hand, detector.ThumbTip, detector.IndexTip); d < c.t.PinchRatio*scale {
		return Pinch
	}

	count := 0
	if c.dist(hand, detector.ThumbTip, detector.IndexMCP) > c.t.ThumbRatio*scale {
		count++
	}
	for _, f := range fingerJoints {
		tip := c.dist(hand, f.tip, detector.Wrist)
		pip := c.dist(hand, f.pip, detector.Wrist)
		// NaN on either side fails the comparison, leaving the finger curled.
		if tip > c.t.ExtendMargin*pip {
			count++
		}
	}

	return FromCount(count)
}

// FingerStates reports [thumb, index, middle, ring, pinky] extension for a hand.
func (c *Classifier) FingerStates(hand *detector.Hand) [5]bool {
	var states [5]bool
	if !hand.Complete() {
		return states
	}
	scale := hand.ScaleReference(c.t.UseDepth)
	states[0] = c.dist(hand, detector.ThumbTip, detector.IndexMCP) > c.t.ThumbRatio*scale
	for i, f := range fingerJoints {
		states[i+1] = c.dist(hand, f.tip, detector.Wrist) > c.t.ExtendMargin*c.dist(hand, f.pip, detector.Wrist)
	}
	return states
}

// dist returns NaN when either point is missing or corrupt, so every
// comparison against it is false.
func (c *Classifier) dist(hand *detector.Hand, i, j int) float64 {
	a, ok1 := hand.Point(i)
	b, ok2 := hand.Point(j)
	if !ok1 || !ok2 {
		return math.NaN()
	}
	if c.t.UseDepth {
		return detector.Distance3D(a, b)
	}
	return detector.Distance2D(a, b)
}
