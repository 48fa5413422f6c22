package detector

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// ErrReplayExhausted is returned by a non-looping ReplayDetector after the last record.
var ErrReplayExhausted = errors.New("replay exhausted")

// Record is one recorded inference cycle.
type Record struct {
	Hands []Hand `json:"hands"`
}

// ReplayDetector plays back recorded hand landmarks, one record per Detect
// call, ignoring the frame. Recordings are JSON lines of Record.
type ReplayDetector struct {
	records []Record
	index   int
	loop    bool
	mu      sync.Mutex
}

// NewReplayDetector reads all records from r.
func NewReplayDetector(r io.Reader, loop bool) (*ReplayDetector, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parse record %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("recording has no records")
	}

	return &ReplayDetector{records: records, loop: loop}, nil
}

// NewReplayDetectorFromHands builds a replay from in-memory cycles.
func NewReplayDetectorFromHands(cycles [][]Hand, loop bool) (*ReplayDetector, error) {
	if len(cycles) == 0 {
		return nil, errors.New("recording has no records")
	}
	records := make([]Record, len(cycles))
	for i, hands := range cycles {
		records[i].Hands = make([]Hand, len(hands))
		for j, h := range hands {
			records[i].Hands[j] = h.Clone()
		}
	}
	return &ReplayDetector{records: records, loop: loop}, nil
}

// WriteRecording writes cycles as JSON lines readable by NewReplayDetector.
func WriteRecording(w io.Writer, cycles [][]Hand) error {
	enc := json.NewEncoder(w)
	for i, hands := range cycles {
		if err := enc.Encode(Record{Hands: hands}); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	return nil
}

// OpenReplay loads a recording from a file.
func OpenReplay(path string, loop bool) (*ReplayDetector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	return NewReplayDetector(f, loop)
}

// Detect returns the next recorded cycle.
func (d *ReplayDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.index >= len(d.records) {
		if !d.loop {
			return nil, ErrReplayExhausted
		}
		d.index = 0
	}

	rec := d.records[d.index]
	d.index++

	hands := make([]Hand, len(rec.Hands))
	for i, h := range rec.Hands {
		hands[i] = h.Clone()
	}
	return hands, nil
}

// Len returns the number of records in the recording.
func (d *ReplayDetector) Len() int {
	return len(d.records)
}

// Close is a no-op.
func (d *ReplayDetector) Close() error {
	return nil
}
