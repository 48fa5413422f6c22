// Package app runs the detection and render loops of the hologram.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/hologram/internal/capture"
	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/gesture"
	"github.com/ayusman/hologram/internal/render"
	"github.com/ayusman/hologram/internal/session"
	"github.com/ayusman/hologram/internal/store"
	"github.com/ayusman/hologram/internal/tracking"
)

// Loop rate defaults.
const (
	DefaultDetectFPS = 15
	DefaultRenderFPS = 60
)

// EnabledSetting is the settings key that persists the detection toggle.
const EnabledSetting = "detection.enabled"

// Config holds configuration options for the application.
type Config struct {
	Logger zerolog.Logger
	// Camera supplies frames to the detector. It may be nil for detectors
	// that ignore frames, such as a replay.
	Camera   capture.Camera
	Detector detector.Detector
	// Store records the session and its gesture events when set.
	Store *store.Store
	// Frames receives camera frames for the MJPEG preview when set.
	Frames *capture.FrameBuffer

	SessionName    string
	Thresholds     gesture.Thresholds
	DebounceFrames int
	Grace          time.Duration
	Composer       render.Config
	DetectFPS      int
	RenderFPS      int
}

// Detection is the immutable result of one detection cycle.
type Detection struct {
	Seq    uint64         `json:"seq"`
	At     time.Time      `json:"at"`
	Symbol gesture.Symbol `json:"symbol"`
	Hands  int            `json:"hands"`
	// Primary is the first detected hand, nil when none.
	Primary *detector.Hand `json:"-"`
}

// App orchestrates the camera, detector, classifier and render composer.
type App struct {
	cfg        Config
	log        zerolog.Logger
	classifier *gesture.Classifier
	debouncer  *gesture.Debouncer
	stabilizer *tracking.Stabilizer
	composer   *render.Composer
	metrics    *instruments
	gender     session.Gender

	detection atomic.Pointer[Detection]
	frame     atomic.Pointer[render.Frame]
	enabled   atomic.Bool

	// Owned by the detect loop.
	detectSeq    uint64
	lastSymbol   gesture.Symbol
	exhausted    bool
	failures     int
	failingSince time.Time
	failedIdle   bool

	// Owned by the render loop.
	lastStable   bool
	lastRejected int

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	runErr      error
	session     *store.Session
	onGesture   []func(gesture.Symbol)
	onLinkState []func(stable bool)
}

// New creates an App. The detector is required.
func New(cfg Config) (*App, error) {
	if cfg.Detector == nil {
		return nil, errors.New("app: detector is required")
	}
	if cfg.DetectFPS <= 0 {
		cfg.DetectFPS = DefaultDetectFPS
	}
	if cfg.RenderFPS <= 0 {
		cfg.RenderFPS = DefaultRenderFPS
	}

	ins, err := newInstruments()
	if err != nil {
		return nil, err
	}

	gender := session.DetectGender(cfg.SessionName)
	cfg.Composer.Accent = gender.Accent()

	a := &App{
		cfg:        cfg,
		log:        cfg.Logger.With().Str("component", "app").Logger(),
		classifier: gesture.NewClassifier(cfg.Thresholds),
		debouncer:  gesture.NewDebouncer(cfg.DebounceFrames),
		stabilizer: tracking.NewStabilizer(cfg.Grace),
		composer:   render.NewComposer(cfg.Composer),
		metrics:    ins,
		gender:     gender,
	}

	enabled := true
	if cfg.Store != nil {
		enabled = cfg.Store.Settings().Bool(EnabledSetting, true)
	}
	a.enabled.Store(enabled)

	return a, nil
}

// SetEnabled pauses or resumes detection. Rendering continues while paused
// and the link decays to searching.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
	if a.cfg.Store != nil {
		if err := a.cfg.Store.Settings().SetBool(EnabledSetting, enabled); err != nil {
			a.log.Warn().Err(err).Msg("Failed to persist detection toggle")
		}
	}
	a.log.Info().Bool("enabled", enabled).Msg("Detection toggled")
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// Gender is the accent gender inferred from the session name.
func (a *App) Gender() session.Gender {
	return a.gender
}

// OnGesture registers fn to be called from the detect loop whenever the
// symbol changes.
func (a *App) OnGesture(fn func(gesture.Symbol)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = append(a.onGesture, fn)
}

// OnLinkChange registers fn to be called from the render loop whenever the
// stable flag flips.
func (a *App) OnLinkChange(fn func(stable bool)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLinkState = append(a.onLinkState, fn)
}

// Detection returns the latest detection, nil before the first cycle.
func (a *App) Detection() *Detection {
	return a.detection.Load()
}

// Frame returns the latest render frame, nil before the first tick.
func (a *App) Frame() *render.Frame {
	return a.frame.Load()
}

// Session returns the stored session of the current run, if any.
func (a *App) Session() *store.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Start opens the camera, records a session and launches both loops.
// Calling Start on a running App is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if a.cfg.Camera != nil {
		if err := a.cfg.Camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
		a.cfg.Camera.SetFPS(a.cfg.DetectFPS)
	}

	if a.cfg.Store != nil {
		sess := &store.Session{Name: a.cfg.SessionName, Gender: a.gender}
		if err := a.cfg.Store.Sessions().Create(sess); err != nil {
			a.log.Warn().Err(err).Msg("Failed to record session")
		} else {
			a.session = sess
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.detectLoop(gctx) })
	g.Go(func() error { return a.renderLoop(gctx) })

	done := make(chan struct{})
	go func() {
		err := g.Wait()
		a.mu.Lock()
		a.runErr = err
		a.mu.Unlock()
		close(done)
	}()

	a.cancel = cancel
	a.done = done

	a.log.Info().
		Int("detect_fps", a.cfg.DetectFPS).
		Int("render_fps", a.cfg.RenderFPS).
		Str("gender", string(a.gender)).
		Msg("Hologram pipeline started")
	return nil
}

// Stop cancels both loops, waits for them and releases the detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := a.cfg.Detector.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Error closing detector")
	}

	a.mu.Lock()
	sess := a.session
	a.mu.Unlock()
	if sess != nil && a.cfg.Store != nil {
		if err := a.cfg.Store.Sessions().End(sess.ID, time.Now()); err != nil {
			a.log.Warn().Err(err).Str("session", sess.ID).Msg("Failed to end session")
		}
	}

	a.log.Info().Msg("Hologram pipeline stopped")
}

// Run starts the App and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runErr
}

func (a *App) gestureCallbacks() []func(gesture.Symbol) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]func(gesture.Symbol){}, a.onGesture...)
}

func (a *App) linkCallbacks() []func(bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]func(bool){}, a.onLinkState...)
}
