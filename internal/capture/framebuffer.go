package capture

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// FrameBuffer holds the most recent camera frame as JPEG so viewers can
// stream it without reading the camera themselves. Frames are only encoded
// while at least one viewer is attached.
type FrameBuffer struct {
	viewers atomic.Int32

	mu     sync.Mutex
	jpeg   []byte
	seq    uint64
	notify chan struct{}
}

// NewFrameBuffer creates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{notify: make(chan struct{})}
}

// Attach registers a viewer; the returned function detaches it.
func (b *FrameBuffer) Attach() (detach func()) {
	b.viewers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { b.viewers.Add(-1) })
	}
}

// Wanted reports whether any viewer is attached.
func (b *FrameBuffer) Wanted() bool {
	return b.viewers.Load() > 0
}

// Publish encodes frame when a viewer wants it. The frame is not retained.
func (b *FrameBuffer) Publish(frame *gocv.Mat) error {
	if !b.Wanted() || frame == nil || frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	b.PublishJPEG(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// PublishJPEG stores an already encoded frame and wakes waiting viewers.
func (b *FrameBuffer) PublishJPEG(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jpeg = data
	b.seq++
	close(b.notify)
	b.notify = make(chan struct{})
}

// Latest returns the newest frame and its sequence number; seq 0 means none yet.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jpeg, b.seq
}

// Updated returns a channel closed by the next publish. Take it before
// calling Latest so no frame is missed.
func (b *FrameBuffer) Updated() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notify
}
