package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ayusman/hologram/internal/app"
	"github.com/ayusman/hologram/internal/capture"
	"github.com/ayusman/hologram/internal/config"
	"github.com/ayusman/hologram/internal/detector"
	"github.com/ayusman/hologram/internal/logging"
	"github.com/ayusman/hologram/internal/server"
	"github.com/ayusman/hologram/internal/store"
	"github.com/ayusman/hologram/internal/tray"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "hologram:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.Flags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	configDir, _ := fs.GetString("config-dir")

	cfg, err := config.Load(configDir, fs)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	det, cam, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}

	var preview *capture.FrameBuffer
	if cam != nil {
		preview = capture.NewFrameBuffer()
	}

	a, err := app.New(app.Config{
		Logger:         logger,
		Camera:         cam,
		Detector:       det,
		Store:          st,
		Frames:         preview,
		SessionName:    cfg.Session.Name,
		Thresholds:     cfg.Thresholds(),
		DebounceFrames: cfg.Gesture.DebounceFrames,
		Grace:          cfg.Tracking.Grace,
		Composer:       cfg.ComposerConfig(),
		DetectFPS:      cfg.Detect.FPS,
		RenderFPS:      cfg.Render.FPS,
	})
	if err != nil {
		return err
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		logger.Info().Str("dir", webDir).Msg("Serving static files")
	}

	srv := server.New(server.Config{
		Logger:    logger,
		StaticDir: webDir,
		Store:     st,
		Frames:    a,
		Preview:   preview,
		Toggle:    a,
		FeedFPS:   cfg.Server.FeedFPS,
		StreamFPS: cfg.Server.StreamFPS,
	})
	httpSrv := server.NewHTTPServer(cfg.Server.Addr, srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var t *tray.Tray
	if !cfg.Headless {
		t = tray.New(a.IsEnabled())
		t.OnToggle(a.SetEnabled)
		t.OnViewer(func() { openBrowser(viewerURL(cfg.Server.Addr), logger) })
		t.OnQuit(stop)
		a.OnGesture(t.SetGesture)
		a.OnLinkChange(t.SetLinkStatus)
	}

	if err := a.Start(ctx); err != nil {
		return err
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	if t != nil {
		// The tray owns the main thread until it quits.
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	} else {
		<-ctx.Done()
	}

	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown")
	}
	srv.Close()
	a.Stop()

	return nil
}

// newDetector picks a replay when one is configured, otherwise the camera
// with MediaPipe, falling back to a mock detector that sees no hands.
func newDetector(cfg *config.Config, logger zerolog.Logger) (detector.Detector, capture.Camera, error) {
	if cfg.Detect.Replay != "" {
		d, err := detector.OpenReplay(cfg.Detect.Replay, cfg.Detect.ReplayLoop)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("file", cfg.Detect.Replay).Int("records", d.Len()).Msg("Replaying recorded landmarks")
		return d, nil, nil
	}

	cam := capture.NewCameraWithOptions(capture.Options{
		DeviceID: cfg.Camera.ID,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		FPS:      cfg.Detect.FPS,
	})

	mp, err := detector.NewMediaPipeDetector(cfg.DetectorConfig())
	if err != nil {
		logger.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
		return detector.NewMockDetector(), cam, nil
	}
	logger.Info().Msg("Using MediaPipe hand detection")
	return mp, cam, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}

func viewerURL(addr string) string {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/"
}

func openBrowser(url string, logger zerolog.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
	}
}
