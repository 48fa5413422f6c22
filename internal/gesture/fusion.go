package gesture

import (
	"math"

	"github.com/ayusman/hologram/internal/detector"
)

// Fuse checks two hands for the heart gesture: both thumb tips and both index
// tips closer than FusionPixels in the image plane. The threshold is in raw
// pixels, so it depends on camera distance. When ok is false the caller
// should classify the primary hand instead.
func (c *Classifier) Fuse(a, b *detector.Hand) (sym Symbol, ok bool) {
	if !a.Complete() || !b.Complete() {
		return None, false
	}

	thumbs := pairDistance(a, b, detector.ThumbTip)
	indexes := pairDistance(a, b, detector.IndexTip)
	if thumbs < c.t.FusionPixels && indexes < c.t.FusionPixels {
		return Heart, true
	}
	return None, false
}

// Resolve applies the per-cycle policy: no hands is None, two or more hands
// try fusion on the first two and fall back to the first hand, one hand is
// classified directly.
func (c *Classifier) Resolve(hands []detector.Hand) Symbol {
	switch len(hands) {
	case 0:
		return None
	case 1:
		return c.Classify(&hands[0])
	}

	if sym, ok := c.Fuse(&hands[0], &hands[1]); ok {
		return sym
	}
	return c.Classify(&hands[0])
}

func pairDistance(a, b *detector.Hand, i int) float64 {
	pa, ok1 := a.Point(i)
	pb, ok2 := b.Point(i)
	if !ok1 || !ok2 {
		return math.NaN()
	}
	return detector.Distance2D(pa, pb)
}
