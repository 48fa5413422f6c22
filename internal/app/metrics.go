package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ayusman/hologram/internal/gesture"
)

const instrumentationName = "github.com/ayusman/hologram/internal/app"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments are registered on the global provider, which is a no-op
// unless the binary installs an SDK.
type instruments struct {
	detectCycles   metric.Int64Counter
	detectErrors   metric.Int64Counter
	droppedTicks   metric.Int64Counter
	detectLatency  metric.Float64Histogram
	renderFrames   metric.Int64Counter
	gestureChanges metric.Int64Counter
	rejectedAnchor metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	m := meter()
	ins := &instruments{}

	var err error
	ins.detectCycles, err = m.Int64Counter(
		"hologram.detect.cycles",
		metric.WithDescription("Completed detection cycles"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating detect cycles counter: %w", err)
	}

	ins.detectErrors, err = m.Int64Counter(
		"hologram.detect.errors",
		metric.WithDescription("Camera or detector failures inside the detect loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating detect errors counter: %w", err)
	}

	ins.droppedTicks, err = m.Int64Counter(
		"hologram.detect.dropped_ticks",
		metric.WithDescription("Detect ticks skipped while an inference was running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped ticks counter: %w", err)
	}

	ins.detectLatency, err = m.Float64Histogram(
		"hologram.detect.latency",
		metric.WithDescription("Time from frame read to published detection"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating detect latency histogram: %w", err)
	}

	ins.renderFrames, err = m.Int64Counter(
		"hologram.render.frames",
		metric.WithDescription("Published render frames"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating render frames counter: %w", err)
	}

	ins.gestureChanges, err = m.Int64Counter(
		"hologram.gesture.changes",
		metric.WithDescription("Symbol transitions by new symbol"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gesture changes counter: %w", err)
	}

	ins.rejectedAnchor, err = m.Int64Counter(
		"hologram.anchor.rejected",
		metric.WithDescription("Render frames whose anchor was non-finite"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected anchor counter: %w", err)
	}

	return ins, nil
}

func (ins *instruments) gestureChanged(sym gesture.Symbol) {
	ins.gestureChanges.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("symbol", sym.String())))
}
