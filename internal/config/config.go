// Package config loads hologram settings from defaults, an optional JSON
// file, HOLOGRAM_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ayusman/hologram/internal/anchor"
	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/gesture"
	"github.com/ayusman/hologram/internal/morph"
	"github.com/ayusman/hologram/internal/render"
)

// FileName is the config file looked up in the config directory.
const FileName = "hologram.json"

// EnvPrefix prefixes environment overrides, e.g. HOLOGRAM_SERVER_ADDR.
const EnvPrefix = "HOLOGRAM"

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	FeedFPS   int    `json:"feedFPS" mapstructure:"feedFPS"`
	StreamFPS int    `json:"streamFPS" mapstructure:"streamFPS"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	ID     int `json:"id" mapstructure:"id"`
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
}

// DetectConfig tunes the inference loop.
type DetectConfig struct {
	FPS           int     `json:"fps" mapstructure:"fps"`
	MaxHands      int     `json:"maxHands" mapstructure:"maxHands"`
	MinConfidence float64 `json:"minConfidence" mapstructure:"minConfidence"`
	MinTracking   float64 `json:"minTracking" mapstructure:"minTracking"`
	Mirror        bool    `json:"mirror" mapstructure:"mirror"`
	Replay        string  `json:"replay" mapstructure:"replay"`
	ReplayLoop    bool    `json:"replayLoop" mapstructure:"replayLoop"`
}

// GestureConfig tunes classification.
type GestureConfig struct {
	ExtendMargin   float64 `json:"extendMargin" mapstructure:"extendMargin"`
	ThumbRatio     float64 `json:"thumbRatio" mapstructure:"thumbRatio"`
	PinchRatio     float64 `json:"pinchRatio" mapstructure:"pinchRatio"`
	FusionPixels   float64 `json:"fusionPixels" mapstructure:"fusionPixels"`
	UseDepth       bool    `json:"useDepth" mapstructure:"useDepth"`
	DebounceFrames int     `json:"debounceFrames" mapstructure:"debounceFrames"`
}

// TrackingConfig tunes the presence stabilizer.
type TrackingConfig struct {
	Grace time.Duration `json:"grace" mapstructure:"grace"`
}

// RenderConfig tunes the render loop.
type RenderConfig struct {
	FPS            int     `json:"fps" mapstructure:"fps"`
	Particles      int     `json:"particles" mapstructure:"particles"`
	Seed           uint64  `json:"seed" mapstructure:"seed"`
	Repulsion      bool    `json:"repulsion" mapstructure:"repulsion"`
	SpinStep       float64 `json:"spinStep" mapstructure:"spinStep"`
	PulseAmplitude float64 `json:"pulseAmplitude" mapstructure:"pulseAmplitude"`
}

// MorphConfig tunes the particle morph step.
type MorphConfig struct {
	Gain     float64 `json:"gain" mapstructure:"gain"`
	Radius   float64 `json:"radius" mapstructure:"radius"`
	Strength float64 `json:"strength" mapstructure:"strength"`
}

// AnchorConfig tunes the hand to transform mapping.
type AnchorConfig struct {
	PixelsPerUnit float64 `json:"pixelsPerUnit" mapstructure:"pixelsPerUnit"`
	DepthDivisor  float64 `json:"depthDivisor" mapstructure:"depthDivisor"`
	MaxYaw        float64 `json:"maxYaw" mapstructure:"maxYaw"`
	SpanDivisor   float64 `json:"spanDivisor" mapstructure:"spanDivisor"`
	PositionGain  float64 `json:"positionGain" mapstructure:"positionGain"`
	RotationGain  float64 `json:"rotationGain" mapstructure:"rotationGain"`
	ScaleGain     float64 `json:"scaleGain" mapstructure:"scaleGain"`
	MinScale      float64 `json:"minScale" mapstructure:"minScale"`
	MaxScale      float64 `json:"maxScale" mapstructure:"maxScale"`
	ScaleMode     string  `json:"scaleMode" mapstructure:"scaleMode"`
}

// SessionConfig names the viewing session.
type SessionConfig struct {
	Name string `json:"name" mapstructure:"name"`
}

// Config is the complete application configuration.
type Config struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`
	LogFile  string `json:"logFile" mapstructure:"logFile"`
	DataDir  string `json:"dataDir" mapstructure:"dataDir"`
	WebDir   string `json:"webDir" mapstructure:"webDir"`
	Headless bool   `json:"headless" mapstructure:"headless"`

	Server   ServerConfig   `json:"server" mapstructure:"server"`
	Camera   CameraConfig   `json:"camera" mapstructure:"camera"`
	Detect   DetectConfig   `json:"detect" mapstructure:"detect"`
	Gesture  GestureConfig  `json:"gesture" mapstructure:"gesture"`
	Tracking TrackingConfig `json:"tracking" mapstructure:"tracking"`
	Render   RenderConfig   `json:"render" mapstructure:"render"`
	Morph    MorphConfig    `json:"morph" mapstructure:"morph"`
	Anchor   AnchorConfig   `json:"anchor" mapstructure:"anchor"`
	Session  SessionConfig  `json:"session" mapstructure:"session"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")
	v.SetDefault("dataDir", defaultDataDir())
	v.SetDefault("webDir", "")
	v.SetDefault("headless", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.feedFPS", 30)
	v.SetDefault("server.streamFPS", 15)

	v.SetDefault("camera.id", 0)
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)

	v.SetDefault("detect.fps", 15)
	v.SetDefault("detect.maxHands", 2)
	v.SetDefault("detect.minConfidence", 0.5)
	v.SetDefault("detect.minTracking", 0.5)
	v.SetDefault("detect.mirror", true)
	v.SetDefault("detect.replay", "")
	v.SetDefault("detect.replayLoop", true)

	v.SetDefault("gesture.extendMargin", 1.1)
	v.SetDefault("gesture.thumbRatio", 0.45)
	v.SetDefault("gesture.pinchRatio", 0.2)
	v.SetDefault("gesture.fusionPixels", 100.0)
	v.SetDefault("gesture.useDepth", false)
	v.SetDefault("gesture.debounceFrames", 1)

	v.SetDefault("tracking.grace", "500ms")

	v.SetDefault("render.fps", 60)
	v.SetDefault("render.particles", 2500)
	v.SetDefault("render.seed", 1)
	v.SetDefault("render.repulsion", true)
	v.SetDefault("render.spinStep", 0.005)
	v.SetDefault("render.pulseAmplitude", 0.05)

	v.SetDefault("morph.gain", 0.05)
	v.SetDefault("morph.radius", 1.5)
	v.SetDefault("morph.strength", 0.4)

	v.SetDefault("anchor.pixelsPerUnit", 45.0)
	v.SetDefault("anchor.depthDivisor", 25.0)
	v.SetDefault("anchor.maxYaw", math.Pi/4)
	v.SetDefault("anchor.spanDivisor", 40.0)
	v.SetDefault("anchor.positionGain", 0.3)
	v.SetDefault("anchor.rotationGain", 0.1)
	v.SetDefault("anchor.scaleGain", 0.15)
	v.SetDefault("anchor.minScale", 0.5)
	v.SetDefault("anchor.maxScale", 4.0)
	v.SetDefault("anchor.scaleMode", string(anchor.ScaleSymbol))

	v.SetDefault("session.name", "")
}

// Flags returns the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("hologram", pflag.ContinueOnError)
	fs.String("config-dir", "", "directory containing "+FileName)
	fs.String("name", "", "session name")
	fs.Bool("headless", false, "run without the system tray")
	fs.String("replay", "", "replay recorded landmarks from a JSON-lines file instead of the camera")
	fs.String("addr", "", "HTTP listen address")
	fs.String("log-level", "", "log level (trace, debug, info, warn, error)")
	return fs
}

var flagKeys = map[string]string{
	"name":      "session.name",
	"headless":  "headless",
	"replay":    "detect.replay",
	"addr":      "server.addr",
	"log-level": "logLevel",
}

// Load builds the configuration. configDir may be empty, and the config file
// inside it is optional. fs may be nil; only flags that were set override.
func Load(configDir string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configDir != "" {
		v.SetConfigFile(filepath.Join(configDir, FileName))
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				v.Set(key, f.Value.String())
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Detect.FPS > 0, "detect.fps must be positive, got %d", c.Detect.FPS)
	check(c.Render.FPS > 0, "render.fps must be positive, got %d", c.Render.FPS)
	check(c.Server.FeedFPS > 0, "server.feedFPS must be positive, got %d", c.Server.FeedFPS)
	check(c.Server.StreamFPS > 0, "server.streamFPS must be positive, got %d", c.Server.StreamFPS)
	check(c.Detect.MaxHands >= 1 && c.Detect.MaxHands <= 2, "detect.maxHands must be 1 or 2, got %d", c.Detect.MaxHands)
	check(c.Render.Particles > 0, "render.particles must be positive, got %d", c.Render.Particles)
	check(c.Morph.Gain > 0 && c.Morph.Gain < 1, "morph.gain must be in (0, 1), got %v", c.Morph.Gain)
	check(c.Morph.Radius > 0, "morph.radius must be positive, got %v", c.Morph.Radius)
	check(c.Anchor.MinScale > 0 && c.Anchor.MinScale <= c.Anchor.MaxScale,
		"anchor scale range [%v, %v] is invalid", c.Anchor.MinScale, c.Anchor.MaxScale)
	check(c.Anchor.ScaleMode == string(anchor.ScaleSpan) || c.Anchor.ScaleMode == string(anchor.ScaleSymbol),
		"anchor.scaleMode must be %q or %q, got %q", anchor.ScaleSpan, anchor.ScaleSymbol, c.Anchor.ScaleMode)
	check(c.Camera.Width > 0 && c.Camera.Height > 0, "camera size %dx%d is invalid", c.Camera.Width, c.Camera.Height)
	check(c.Tracking.Grace > 0, "tracking.grace must be positive, got %v", c.Tracking.Grace)
	check(c.Gesture.DebounceFrames >= 1, "gesture.debounceFrames must be at least 1, got %d", c.Gesture.DebounceFrames)

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// DBPath is the SQLite database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "hologram.db")
}

// DetectorConfig maps detection settings onto the detector package.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detect.MaxHands,
		MinConfidence:   c.Detect.MinConfidence,
		MinTrackingConf: c.Detect.MinTracking,
		Mirror:          c.Detect.Mirror,
	}
}

// Thresholds maps gesture settings onto classifier thresholds.
func (c *Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		ExtendMargin: c.Gesture.ExtendMargin,
		ThumbRatio:   c.Gesture.ThumbRatio,
		PinchRatio:   c.Gesture.PinchRatio,
		FusionPixels: c.Gesture.FusionPixels,
		UseDepth:     c.Gesture.UseDepth,
	}
}

// ComposerConfig maps render, morph and anchor settings onto the render package.
func (c *Config) ComposerConfig() render.Config {
	rc := render.DefaultConfig()
	rc.Particles = c.Render.Particles
	rc.Seed = c.Render.Seed
	rc.Repulsion = c.Render.Repulsion
	rc.SpinStep = c.Render.SpinStep
	rc.PulseAmplitude = c.Render.PulseAmplitude
	rc.Morph = morph.Params{Gain: c.Morph.Gain, Radius: c.Morph.Radius, Strength: c.Morph.Strength}
	rc.Anchor = anchor.Config{
		FrameWidth:    float64(c.Camera.Width),
		FrameHeight:   float64(c.Camera.Height),
		PixelsPerUnit: c.Anchor.PixelsPerUnit,
		DepthDivisor:  c.Anchor.DepthDivisor,
		MaxYaw:        c.Anchor.MaxYaw,
		SpanDivisor:   c.Anchor.SpanDivisor,
		PositionGain:  c.Anchor.PositionGain,
		RotationGain:  c.Anchor.RotationGain,
		ScaleGain:     c.Anchor.ScaleGain,
		MinScale:      c.Anchor.MinScale,
		MaxScale:      c.Anchor.MaxScale,
		Mode:          anchor.ScaleMode(c.Anchor.ScaleMode),
	}
	return rc
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hologram"
	}
	return filepath.Join(home, ".hologram")
}
