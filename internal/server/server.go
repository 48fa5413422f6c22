// Package server provides the HTTP server for the hologram viewer.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/hologram/internal/capture"
	"github.com/ayusman/hologram/internal/render"
	"github.com/ayusman/hologram/internal/server/api"
	"github.com/ayusman/hologram/internal/store"
)

// DefaultFeedFPS is the websocket broadcast rate when none is configured.
const DefaultFeedFPS = 30

// FrameSource provides the latest render frame, nil before the first one.
type FrameSource interface {
	Frame() *render.Frame
}

// Config holds the server configuration. Routes whose dependency is nil are
// not registered.
type Config struct {
	Logger    zerolog.Logger
	StaticDir string
	Store     *store.Store
	Frames    FrameSource
	Preview   *capture.FrameBuffer
	Toggle    api.Toggle
	FeedFPS   int
	StreamFPS int
}

// Server represents the HTTP server for the hologram application.
type Server struct {
	config Config
	log    zerolog.Logger
	mux    *http.ServeMux
	start  time.Time
	feed   *HologramHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.FeedFPS <= 0 {
		config.FeedFPS = DefaultFeedFPS
	}
	if config.StreamFPS <= 0 {
		config.StreamFPS = capture.DefaultFPS
	}
	s := &Server{
		config: config,
		log:    config.Logger.With().Str("component", "server").Logger(),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Frames != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.feed = NewHologramHandler(s.config.Frames, s.config.FeedFPS, s.log)
		s.mux.Handle("/api/hologram", s.feed)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview, s.config.StreamFPS))
	}

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Toggle != nil {
		s.mux.Handle("/api/detection", api.NewDetectionHandler(s.config.Toggle))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops the websocket broadcaster and disconnects its clients.
func (s *Server) Close() {
	if s.feed != nil {
		s.feed.Close()
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleState handles GET /api/state. ?points=1 adds the flattened
// particle positions.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame := s.config.Frames.Frame()
	if frame == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "No frame rendered yet"})
		return
	}

	writeJSON(w, http.StatusOK, newFrameMessage(frame, r.URL.Query().Get("points") == "1"))
}

// NewHTTPServer wraps h in an http.Server listening on addr.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// frameMessage is the wire form of a render frame.
type frameMessage struct {
	*render.Frame
	Link   string    `json:"link"`
	Points []float32 `json:"points,omitempty"`
}

func newFrameMessage(f *render.Frame, withPoints bool) frameMessage {
	msg := frameMessage{Frame: f, Link: f.LinkStatus()}
	if withPoints {
		msg.Points = f.Flat()
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
