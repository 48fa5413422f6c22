package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/gesture"
	"github.com/ayusman/hologram/internal/render"
	"github.com/ayusman/hologram/internal/session"
)

func newTestApp(t *testing.T, name string) *App {
	t.Helper()

	cc := render.DefaultConfig()
	cc.Particles = 64

	a, err := New(Config{
		Logger:      zerolog.Nop(),
		Detector:    detector.NewMockDetector(),
		SessionName: name,
		Thresholds:  gesture.DefaultThresholds(),
		Grace:       500 * time.Millisecond,
		Composer:    cc,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestNew_RequiresDetector(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without a detector")
	}
}

func TestNew_AccentFollowsName(t *testing.T) {
	tests := []struct {
		name   string
		gender session.Gender
	}{
		{name: "Dilnoza", gender: session.Female},
		{name: "Sardorbek", gender: session.Male},
		{name: "", gender: session.Male},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, tt.name)
			if a.Gender() != tt.gender {
				t.Errorf("Gender() = %s, want %s", a.Gender(), tt.gender)
			}
			frame := a.RenderTick(time.Now())
			if frame.Accent != tt.gender.Accent() {
				t.Errorf("Accent = %s, want %s", frame.Accent, tt.gender.Accent())
			}
		})
	}
}

func TestApp_ProcessHands(t *testing.T) {
	tests := []struct {
		name  string
		hands []detector.Hand
		want  gesture.Symbol
	}{
		{name: "no hands", hands: nil, want: gesture.None},
		{name: "fist", hands: []detector.Hand{detector.FistLandmarks()}, want: gesture.Zero},
		{name: "open palm", hands: []detector.Hand{detector.OpenPalmLandmarks()}, want: gesture.Five},
		{name: "pinch", hands: []detector.Hand{detector.PinchLandmarks()}, want: gesture.Pinch},
		{name: "heart", hands: detector.HeartLandmarks(), want: gesture.Heart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, "")
			det := a.ProcessHands(tt.hands, time.Now())

			if det.Symbol != tt.want {
				t.Errorf("Symbol = %s, want %s", det.Symbol, tt.want)
			}
			if det.Hands != len(tt.hands) {
				t.Errorf("Hands = %d, want %d", det.Hands, len(tt.hands))
			}
			if (det.Primary != nil) != (len(tt.hands) > 0) {
				t.Errorf("Primary presence mismatch: %v", det.Primary)
			}
			if a.Detection() != det {
				t.Error("expected the detection to be published")
			}
		})
	}
}

func TestApp_ProcessHandsCopiesPrimary(t *testing.T) {
	a := newTestApp(t, "")
	hands := []detector.Hand{detector.FistLandmarks()}

	det := a.ProcessHands(hands, time.Now())
	hands[0].Keypoints[detector.Wrist].X = -1

	if det.Primary.Keypoints[detector.Wrist].X == -1 {
		t.Error("published hand must not alias the detector's slice")
	}
}

func TestApp_GestureCallback(t *testing.T) {
	a := newTestApp(t, "")

	var got []gesture.Symbol
	a.OnGesture(func(s gesture.Symbol) { got = append(got, s) })

	now := time.Now()
	fist := []detector.Hand{detector.FistLandmarks()}
	a.ProcessHands(fist, now)
	a.ProcessHands(fist, now.Add(10*time.Millisecond))
	a.ProcessHands(nil, now.Add(20*time.Millisecond))

	want := []gesture.Symbol{gesture.Zero, gesture.None}
	if len(got) != len(want) {
		t.Fatalf("callbacks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("callback %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestApp_RenderTickStability(t *testing.T) {
	a := newTestApp(t, "")

	var links []bool
	a.OnLinkChange(func(stable bool) { links = append(links, stable) })

	now := time.Now()
	a.ProcessHands([]detector.Hand{detector.OpenPalmLandmarks()}, now)
	a.ProcessHands(nil, now.Add(10*time.Millisecond))

	if f := a.RenderTick(now.Add(300 * time.Millisecond)); !f.Stable {
		t.Error("expected stable within the grace period")
	}
	if f := a.RenderTick(now.Add(600 * time.Millisecond)); f.Stable {
		t.Error("expected searching after the grace period")
	}

	if len(links) != 2 || !links[0] || links[1] {
		t.Errorf("link callbacks = %v, want [true false]", links)
	}
	if a.Frame() == nil || a.Frame().Seq != 2 {
		t.Errorf("expected the second frame to be published, got %+v", a.Frame())
	}
}

func TestApp_RenderTickFollowsSymbol(t *testing.T) {
	a := newTestApp(t, "")
	now := time.Now()

	a.ProcessHands([]detector.Hand{detector.PinchLandmarks()}, now)
	frame := a.RenderTick(now)

	if frame.Symbol != gesture.Pinch {
		t.Errorf("Symbol = %s, want PINCH", frame.Symbol)
	}
	if frame.Label != "PINCH_SINGULARITY" {
		t.Errorf("Label = %s, want PINCH_SINGULARITY", frame.Label)
	}
	if len(frame.Positions) != 64 {
		t.Errorf("expected 64 positions, got %d", len(frame.Positions))
	}
}

func TestApp_DetectFailuresFallBackToIdle(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()
	errPipe := errors.New("write length: broken pipe")

	now := time.Now()
	a.ProcessHands([]detector.Hand{detector.OpenPalmLandmarks()}, now)
	held := a.RenderTick(now).Transform

	// Inside the grace window the last detection stays published.
	a.detectFailed(ctx, errPipe, now.Add(100*time.Millisecond))
	a.detectFailed(ctx, errPipe, now.Add(300*time.Millisecond))
	if d := a.Detection(); d.Symbol != gesture.Five || d.Primary == nil {
		t.Fatalf("expected FIVE to hold inside the grace window, got %s", d.Symbol)
	}

	at := now.Add(700 * time.Millisecond)
	a.detectFailed(ctx, errPipe, at)

	d := a.Detection()
	if d.Symbol != gesture.None {
		t.Errorf("Symbol = %s, want NONE after the grace window", d.Symbol)
	}
	if d.Primary != nil {
		t.Error("expected the primary hand to be cleared")
	}
	if a.failures != 3 {
		t.Errorf("failures = %d, want 3", a.failures)
	}

	frame := a.RenderTick(at)
	if frame.Symbol != gesture.None || frame.Stable {
		t.Errorf("frame = %s stable=%v, want NONE searching", frame.Symbol, frame.Stable)
	}
	if frame.Transform != held {
		t.Errorf("Transform = %+v, want held %+v", frame.Transform, held)
	}
}

func TestApp_SetEnabledWithoutStore(t *testing.T) {
	a := newTestApp(t, "")
	if !a.IsEnabled() {
		t.Fatal("expected detection enabled by default")
	}
	a.SetEnabled(false)
	if a.IsEnabled() {
		t.Error("expected detection disabled")
	}
}

func TestApp_StopWithoutStart(t *testing.T) {
	a := newTestApp(t, "")
	a.Stop()
}
