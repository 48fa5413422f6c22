package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStabilizer_InitiallyUnstable(t *testing.T) {
	s := NewStabilizer(0)
	now := time.Unix(1000, 0)

	assert.False(t, s.Stable(now))
	assert.False(t, s.Observe(false, now))
	assert.Equal(t, DefaultGrace, s.Grace())
}

func TestStabilizer_GraceWindow(t *testing.T) {
	s := NewStabilizer(500 * time.Millisecond)
	start := time.Unix(1000, 0)

	// Ten frames at ~30 fps with a hand visible.
	var last time.Time
	for i := 0; i < 10; i++ {
		last = start.Add(time.Duration(i) * 33 * time.Millisecond)
		assert.True(t, s.Observe(true, last))
	}

	assert.True(t, s.Observe(false, last.Add(300*time.Millisecond)), "still inside grace window")
	assert.False(t, s.Observe(false, last.Add(600*time.Millisecond)), "grace window elapsed")
	assert.False(t, s.Stable(last.Add(500*time.Millisecond)))
}

func TestStabilizer_ReacquireIsImmediate(t *testing.T) {
	s := NewStabilizer(500 * time.Millisecond)
	now := time.Unix(1000, 0)

	s.Observe(true, now)
	assert.False(t, s.Observe(false, now.Add(time.Second)))
	assert.True(t, s.Observe(true, now.Add(time.Second+time.Millisecond)))
}

func TestStabilizer_Reset(t *testing.T) {
	s := NewStabilizer(time.Second)
	now := time.Unix(1000, 0)

	s.Observe(true, now)
	s.Reset()
	assert.False(t, s.Stable(now))
}
