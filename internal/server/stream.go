package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/hologram/internal/capture"
)

// StreamHandler serves the camera preview as MJPEG. Frames come from the
// detect loop through a FrameBuffer, so the camera is never read twice.
type StreamHandler struct {
	frames   *capture.FrameBuffer
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler capped at fps frames per second.
func NewStreamHandler(frames *capture.FrameBuffer, fps int) *StreamHandler {
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	return &StreamHandler{frames: frames, interval: time.Second / time.Duration(fps)}
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	detach := h.frames.Attach()
	defer detach()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ctx := r.Context()
	var last uint64
	for {
		// Take the channel first so a publish between Latest and the wait is not missed.
		updated := h.frames.Updated()
		data, seq := h.frames.Latest()

		if seq != last && len(data) > 0 {
			last = seq
			if err := writePart(w, data); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(h.interval):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-updated:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
