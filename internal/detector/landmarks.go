// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a keypoint in camera pixel space. Z is relative depth and is zero
// when the source only reports 2D positions.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsFinite reports whether none of the coordinates is NaN or infinite.
func (p Point3D) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

// Hand is one detected hand. A usable hand has exactly NumLandmarks keypoints
// in MediaPipe order; occluded points may carry NaN.
type Hand struct {
	Keypoints  []Point3D `json:"keypoints"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Complete reports whether the hand carries the full landmark set.
func (h *Hand) Complete() bool {
	return h != nil && len(h.Keypoints) >= NumLandmarks
}

// Point returns the keypoint at index i and whether it exists and is finite.
func (h *Hand) Point(i int) (Point3D, bool) {
	if h == nil || i < 0 || i >= len(h.Keypoints) {
		return Point3D{}, false
	}
	p := h.Keypoints[i]
	return p, p.IsFinite()
}

// Clone returns a deep copy so snapshots never share keypoint storage.
func (h Hand) Clone() Hand {
	out := h
	out.Keypoints = append([]Point3D(nil), h.Keypoints...)
	return out
}

// Distance2D is the image-plane distance between two points.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Distance3D is the Euclidean distance between two points.
func Distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ScaleReference is the wrist to middle finger MCP distance, the per-hand
// length used to make thresholds independent of hand size and camera distance.
// It returns NaN when either point is missing or corrupt.
func (h *Hand) ScaleReference(useDepth bool) float64 {
	wrist, ok1 := h.Point(Wrist)
	mcp, ok2 := h.Point(MiddleMCP)
	if !ok1 || !ok2 {
		return math.NaN()
	}
	if useDepth {
		return Distance3D(wrist, mcp)
	}
	return Distance2D(wrist, mcp)
}

// Normalize returns a copy translated so the wrist is at the origin and scaled
// so the wrist to middle MCP distance is 1.0. It returns nil when the hand is
// incomplete or its scale reference is degenerate. Corrupt points other than
// the wrist and middle MCP stay NaN in the result.
func (h *Hand) Normalize(useDepth bool) *Hand {
	if !h.Complete() {
		return nil
	}

	scale := h.ScaleReference(useDepth)
	if !isFinite(scale) || scale < 1e-10 {
		return nil
	}

	wrist := h.Keypoints[Wrist]
	normalized := &Hand{
		Keypoints:  make([]Point3D, NumLandmarks),
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i := 0; i < NumLandmarks; i++ {
		p := h.Keypoints[i]
		normalized.Keypoints[i] = Point3D{
			X: (p.X - wrist.X) / scale,
			Y: (p.Y - wrist.Y) / scale,
			Z: (p.Z - wrist.Z) / scale,
		}
	}

	return normalized
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
