package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []Hand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Preset poses in 640x480 pixel space. The wrist sits at (320, 400) and the
// middle MCP at (320, 300), so every preset has a scale reference of 100px.

var palmBase = map[int]Point3D{
	Wrist:     {X: 320, Y: 400},
	IndexMCP:  {X: 290, Y: 305},
	MiddleMCP: {X: 320, Y: 300},
	RingMCP:   {X: 350, Y: 305},
	PinkyMCP:  {X: 378, Y: 318},
}

var (
	thumbOpen   = [4]Point3D{{X: 280, Y: 380}, {X: 250, Y: 350}, {X: 225, Y: 320}, {X: 200, Y: 295}}
	thumbTucked = [4]Point3D{{X: 290, Y: 385}, {X: 275, Y: 360}, {X: 285, Y: 345}, {X: 300, Y: 330}}

	indexOpen   = [3]Point3D{{X: 285, Y: 250}, {X: 282, Y: 215}, {X: 280, Y: 185}}
	indexCurled = [3]Point3D{{X: 288, Y: 260}, {X: 292, Y: 285}, {X: 298, Y: 292}}

	middleOpen   = [3]Point3D{{X: 320, Y: 240}, {X: 320, Y: 200}, {X: 320, Y: 170}}
	middleCurled = [3]Point3D{{X: 320, Y: 255}, {X: 321, Y: 285}, {X: 322, Y: 298}}

	ringOpen   = [3]Point3D{{X: 355, Y: 250}, {X: 358, Y: 215}, {X: 360, Y: 190}}
	ringCurled = [3]Point3D{{X: 350, Y: 262}, {X: 347, Y: 290}, {X: 345, Y: 305}}

	pinkyOpen   = [3]Point3D{{X: 388, Y: 275}, {X: 394, Y: 250}, {X: 398, Y: 228}}
	pinkyCurled = [3]Point3D{{X: 376, Y: 282}, {X: 372, Y: 305}, {X: 368, Y: 318}}
)

func buildHand(thumb [4]Point3D, index, middle, ring, pinky [3]Point3D) Hand {
	h := Hand{
		Keypoints:  make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
	for i, p := range palmBase {
		h.Keypoints[i] = p
	}
	copy(h.Keypoints[ThumbCMC:ThumbTip+1], thumb[:])
	copy(h.Keypoints[IndexPIP:IndexTip+1], index[:])
	copy(h.Keypoints[MiddlePIP:MiddleTip+1], middle[:])
	copy(h.Keypoints[RingPIP:RingTip+1], ring[:])
	copy(h.Keypoints[PinkyPIP:PinkyTip+1], pinky[:])
	return h
}

// FistLandmarks returns a closed fist: no finger extended, thumb tucked.
func FistLandmarks() Hand {
	return buildHand(thumbTucked, indexCurled, middleCurled, ringCurled, pinkyCurled)
}

// OpenPalmLandmarks returns an open palm with all five fingers extended.
func OpenPalmLandmarks() Hand {
	return buildHand(thumbOpen, indexOpen, middleOpen, ringOpen, pinkyOpen)
}

// PointingLandmarks returns a fist with only the index finger extended.
func PointingLandmarks() Hand {
	return buildHand(thumbTucked, indexOpen, middleCurled, ringCurled, pinkyCurled)
}

// PeaceLandmarks returns index and middle fingers extended.
func PeaceLandmarks() Hand {
	return buildHand(thumbTucked, indexOpen, middleOpen, ringCurled, pinkyCurled)
}

// PinchLandmarks returns an open hand whose thumb and index tips touch.
func PinchLandmarks() Hand {
	h := OpenPalmLandmarks()
	h.Keypoints[IndexDIP] = Point3D{X: 270, Y: 240}
	h.Keypoints[IndexTip] = Point3D{X: 255, Y: 255}
	h.Keypoints[ThumbTip] = Point3D{X: 250, Y: 262}
	return h
}

// Translate returns a copy of h shifted by (dx, dy) pixels.
func Translate(h Hand, dx, dy float64) Hand {
	out := h.Clone()
	for i := range out.Keypoints {
		out.Keypoints[i].X += dx
		out.Keypoints[i].Y += dy
	}
	return out
}

// HeartLandmarks returns two open hands whose thumb tips and index tips are
// 50px apart, close enough for the two-hand gesture.
func HeartLandmarks() []Hand {
	right := OpenPalmLandmarks()
	left := Translate(right, 50, 0)
	left.Handedness = "Left"
	return []Hand{right, left}
}
