package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// HologramHandler broadcasts render frames with particle positions to
// websocket clients. A single goroutine writes to all connections.
type HologramHandler struct {
	source  FrameSource
	log     zerolog.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	stop    chan struct{}
	closed  bool
	once    sync.Once
}

// NewHologramHandler creates a HologramHandler broadcasting at fps.
func NewHologramHandler(source FrameSource, fps int, log zerolog.Logger) *HologramHandler {
	h := &HologramHandler{
		source:  source,
		log:     log,
		clients: make(map[*websocket.Conn]bool),
		stop:    make(chan struct{}),
	}
	go h.broadcast(time.Second / time.Duration(fps))
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
// Viewers are refused once the handler is closed.
func (h *HologramHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "Hologram feed closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Int("clients", count).Msg("Viewer connected")

	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected viewers.
func (h *HologramHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops broadcasting and closes every connection.
func (h *HologramHandler) Close() {
	h.once.Do(func() {
		close(h.stop)
		h.mu.Lock()
		h.closed = true
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
}

func (h *HologramHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// broadcast sends each new frame once to all connected clients.
func (h *HologramHandler) broadcast(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		frame := h.source.Frame()
		if frame == nil || frame.Seq == lastSeq {
			continue
		}
		lastSeq = frame.Seq

		msg, err := json.Marshal(newFrameMessage(frame, true))
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to encode frame")
			continue
		}

		var dead []*websocket.Conn
		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				dead = append(dead, conn)
			}
		}
		h.mu.RUnlock()

		for _, conn := range dead {
			h.remove(conn)
			conn.Close()
		}
	}
}
