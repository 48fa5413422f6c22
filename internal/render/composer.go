package render

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/hologram/internal/anchor"
	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/gesture"
	"github.com/ayusman/hologram/internal/morph"
	"github.com/ayusman/hologram/internal/session"
	"github.com/ayusman/hologram/internal/shape"
)

// Input is what the render loop reads from the latest detection.
type Input struct {
	Symbol gesture.Symbol
	// Hand is the primary hand, nil when none is tracked.
	Hand   *detector.Hand
	Stable bool
}

// Config tunes the composer.
type Config struct {
	Particles int
	Seed      uint64
	Morph     morph.Params
	Anchor    anchor.Config
	// Repulsion enables the hand push field.
	Repulsion bool
	// SpinStep is the idle rotation about y per tick, in radians.
	SpinStep float64
	// PulseAmplitude scales the sin(2t) breathing pulse.
	PulseAmplitude float64
	// InitialHue is the hue before any hand is seen, in degrees.
	InitialHue float64
	// Accent is the session accent colour.
	Accent string
}

// DefaultConfig returns the stock render tuning.
func DefaultConfig() Config {
	return Config{
		Particles:      2500,
		Seed:           1,
		Morph:          morph.DefaultParams(),
		Anchor:         anchor.DefaultConfig(),
		Repulsion:      true,
		SpinStep:       0.005,
		PulseAmplitude: 0.05,
		InitialHue:     180,
		Accent:         session.AccentMale,
	}
}

// Composer owns the particle and anchor state and produces frames. It is
// not safe for concurrent use; only the render loop calls Tick.
type Composer struct {
	cfg      Config
	registry *shape.Registry
	engine   *morph.Engine
	mapper   *anchor.Mapper

	start time.Time
	seq   uint64
	spin  float64
	hue   float64
	depth float64
}

// NewComposer builds the shape registry and particle engine from cfg.
func NewComposer(cfg Config) *Composer {
	if cfg.Particles <= 0 {
		cfg.Particles = DefaultConfig().Particles
	}
	if cfg.Accent == "" {
		cfg.Accent = session.AccentMale
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
	return &Composer{
		cfg:      cfg,
		registry: shape.Build(cfg.Particles, rng),
		engine:   morph.NewEngine(cfg.Particles, cfg.Morph, rng),
		mapper:   anchor.NewMapper(cfg.Anchor),
		hue:      cfg.InitialHue,
	}
}

// Registry returns the target shape registry.
func (c *Composer) Registry() *shape.Registry {
	return c.registry
}

// Mapper returns the anchor mapper.
func (c *Composer) Mapper() *anchor.Mapper {
	return c.mapper
}

// SetAccent changes the accent colour for subsequent frames.
func (c *Composer) SetAccent(accent string) {
	c.cfg.Accent = accent
}

// Tick advances one render step and returns the new frame.
func (c *Composer) Tick(in Input, now time.Time) *Frame {
	if c.start.IsZero() {
		c.start = now
	}
	c.seq++

	sym := in.Symbol
	if !sym.Valid() {
		sym = gesture.None
	}

	origin := c.repulsionOrigin(in)
	c.engine.Step(c.registry.Target(sym), origin)

	tr := c.mapper.Update(in.Hand, sym)

	if p, ok := in.Hand.Point(detector.MiddleMCP); ok {
		if hue, ok := HueFromX(p.X, c.mapper.Config().FrameWidth); ok {
			c.hue = hue
		}
	}

	if p, ok := in.Hand.Point(detector.Wrist); ok {
		c.depth = p.Z
	}

	c.spin = math.Mod(c.spin+c.cfg.SpinStep, 2*math.Pi)
	t := now.Sub(c.start).Seconds()

	return &Frame{
		Seq:       c.seq,
		At:        now,
		Symbol:    sym,
		Label:     sym.Label(),
		Stable:    in.Stable,
		Transform: tr,
		Spin:      c.spin,
		Pulse:     math.Sin(2*t) * c.cfg.PulseAmplitude,
		Depth:     c.depth,
		Palette:   NewPalette(c.hue),
		Accent:    c.cfg.Accent,
		Positions: c.engine.Snapshot(),
	}
}

func (c *Composer) repulsionOrigin(in Input) *r3.Vec {
	if !c.cfg.Repulsion || in.Hand == nil || !in.Stable {
		return nil
	}
	return c.mapper.Origin(in.Hand)
}
