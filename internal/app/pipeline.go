package app

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/render"
	"github.com/ayusman/hologram/internal/store"
)

// detectLoop reads, detects and publishes one cycle per tick. Cycles run
// sequentially, so at most one inference is outstanding and ticks that
// elapse during a slow inference are dropped.
func (a *App) detectLoop(ctx context.Context) error {
	if cam := a.cfg.Camera; cam != nil {
		defer func() {
			if err := cam.Close(); err != nil {
				a.log.Warn().Err(err).Msg("Error closing camera")
			}
		}()
	}

	interval := time.Second / time.Duration(a.cfg.DetectFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		start := time.Now()

		// Paused: keep publishing empty cycles so the link decays.
		if !a.IsEnabled() {
			a.ProcessHands(nil, start)
			continue
		}

		hands, err := a.detectOnce()
		if err != nil {
			if errors.Is(err, detector.ErrReplayExhausted) {
				if !a.exhausted {
					a.exhausted = true
					a.log.Info().Msg("Replay finished")
				}
				hands = nil
			} else {
				a.detectFailed(ctx, err, time.Now())
				continue
			}
		}
		if a.failures > 0 {
			a.log.Info().Int("failures", a.failures).Msg("Detection recovered")
			a.failures = 0
			a.failedIdle = false
		}

		a.ProcessHands(hands, time.Now())

		elapsed := time.Since(start)
		a.metrics.detectCycles.Add(ctx, 1)
		a.metrics.detectLatency.Record(ctx, float64(elapsed.Microseconds())/1000)
		if elapsed > interval {
			a.metrics.droppedTicks.Add(ctx, int64(elapsed/interval))
		}
	}
}

// detectFailed counts a failed cycle. Once failures have lasted past the
// grace window each further failure publishes an empty cycle, so the symbol
// falls back to idle while the anchor holds its last transform.
func (a *App) detectFailed(ctx context.Context, err error, now time.Time) {
	a.metrics.detectErrors.Add(ctx, 1)
	a.failures++
	if a.failures == 1 {
		a.failingSince = now
		a.log.Debug().Err(err).Msg("Detection cycle failed")
	}
	if now.Sub(a.failingSince) < a.stabilizer.Grace() {
		return
	}
	if !a.failedIdle {
		a.failedIdle = true
		a.log.Warn().Err(err).Int("failures", a.failures).Msg("Detection failing, falling back to idle")
	}
	a.ProcessHands(nil, now)
}

// detectOnce reads a frame if there is a camera and runs the detector on it.
func (a *App) detectOnce() ([]detector.Hand, error) {
	cam := a.cfg.Camera
	if cam == nil {
		return a.cfg.Detector.Detect(nil)
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	if a.cfg.Frames != nil {
		if err := a.cfg.Frames.Publish(frame); err != nil {
			a.log.Debug().Err(err).Msg("Preview encode failed")
		}
	}

	return a.cfg.Detector.Detect(frame)
}

// ProcessHands classifies one cycle's hands, feeds the stabilizer and
// publishes the resulting Detection. Only the detect loop calls it while
// the App is running.
func (a *App) ProcessHands(hands []detector.Hand, now time.Time) *Detection {
	sym := a.debouncer.Push(a.classifier.Resolve(hands))
	a.stabilizer.Observe(len(hands) > 0, now)

	a.detectSeq++
	det := &Detection{
		Seq:    a.detectSeq,
		At:     now,
		Symbol: sym,
		Hands:  len(hands),
	}
	if len(hands) > 0 {
		primary := hands[0].Clone()
		det.Primary = &primary
	}
	a.detection.Store(det)

	if sym != a.lastSymbol {
		a.lastSymbol = sym
		a.metrics.gestureChanged(sym)
		a.log.Debug().Str("symbol", sym.String()).Str("label", sym.Label()).Msg("Gesture changed")
		a.recordEvent(det)
		for _, fn := range a.gestureCallbacks() {
			fn(sym)
		}
	}

	return det
}

func (a *App) recordEvent(det *Detection) {
	if a.cfg.Store == nil {
		return
	}
	sess := a.Session()
	if sess == nil {
		return
	}
	ev := &store.Event{SessionID: sess.ID, Symbol: det.Symbol, OccurredAt: det.At}
	if err := a.cfg.Store.Events().Append(ev); err != nil {
		a.log.Warn().Err(err).Msg("Failed to record gesture event")
	}
}

// renderLoop steps the composer once per tick.
func (a *App) renderLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.RenderFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.RenderTick(now)
			a.metrics.renderFrames.Add(ctx, 1)
		}
	}
}

// RenderTick advances the composer from the latest Detection and publishes
// the frame. Only the render loop calls it while the App is running.
func (a *App) RenderTick(now time.Time) *render.Frame {
	in := render.Input{Stable: a.stabilizer.Stable(now)}
	if det := a.detection.Load(); det != nil {
		in.Symbol = det.Symbol
		in.Hand = det.Primary
	}

	frame := a.composer.Tick(in, now)
	a.frame.Store(frame)

	if rejected := a.composer.Mapper().Rejected(); rejected > a.lastRejected {
		a.metrics.rejectedAnchor.Add(context.Background(), int64(rejected-a.lastRejected))
		a.lastRejected = rejected
	}

	if in.Stable != a.lastStable {
		a.lastStable = in.Stable
		a.log.Debug().Str("link", frame.LinkStatus()).Msg("Link changed")
		for _, fn := range a.linkCallbacks() {
			fn(in.Stable)
		}
	}

	return frame
}
