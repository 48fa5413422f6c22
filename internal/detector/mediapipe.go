package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the MediaPipe helper script cannot be located.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

// idleShutdown is how long the Python process may sit unused before it is stopped.
const idleShutdown = 30 * time.Second

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// The service returns normalized coordinates; Detect converts them to pixels
// of the submitted frame.
type MediaPipeDetector struct {
	config    Config
	script    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
	// command builds the service process; tests replace it.
	command func() *exec.Cmd
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := findMediaPipeScript()
	if scriptPath == "" {
		return nil, ErrServiceNotFound
	}

	d := &MediaPipeDetector{
		config: config,
		script: scriptPath,
	}
	d.command = d.serviceCommand
	return d, nil
}

// Detect analyzes a frame and returns detected hands in pixel coordinates.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Frames are length-prefixed (4 bytes big-endian) JPEG payloads.
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))

	if _, err := d.stdin.Write(length[:]); err != nil {
		return nil, d.restart(fmt.Errorf("write length: %w", err))
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, d.restart(fmt.Errorf("write data: %w", err))
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, d.restart(fmt.Errorf("read response: %w", err))
	}

	hands, err := decodeResponse([]byte(line), frame.Cols(), frame.Rows(), d.config)
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()

	return hands, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) serviceCommand() *exec.Cmd {
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	return exec.Command(pythonPath, d.script,
		"--max-hands", fmt.Sprint(d.config.MaxHands),
		"--min-confidence", fmt.Sprint(d.config.MinConfidence),
		"--min-tracking", fmt.Sprint(d.config.MinTrackingConf),
	)
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	d.cmd = d.command()

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

// restart kills a service whose pipes broke so the next Detect starts a
// fresh one, and returns err.
func (d *MediaPipeDetector) restart(err error) error {
	if d.cmd != nil && d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.shutdown()
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".hologram/scripts/mediapipe_service.py"),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".hologram/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// decodeResponse parses one service line and maps normalized points onto a
// width x height frame. Hands beyond MaxHands are dropped.
func decodeResponse(line []byte, width, height int, cfg Config) ([]Hand, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	n := len(response.Hands)
	if cfg.MaxHands > 0 && n > cfg.MaxHands {
		n = cfg.MaxHands
	}

	result := make([]Hand, n)
	for i := 0; i < n; i++ {
		result[i] = response.Hands[i].toHand(float64(width), float64(height), cfg.Mirror)
	}
	return result, nil
}

func (h jsonHand) toHand(width, height float64, mirror bool) Hand {
	hand := Hand{
		Keypoints:  make([]Point3D, len(h.Points)),
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i, p := range h.Points {
		x := p.X
		if mirror {
			x = 1 - x
		}
		// MediaPipe reports z on roughly the same scale as x.
		hand.Keypoints[i] = Point3D{
			X: x * width,
			Y: p.Y * height,
			Z: p.Z * width,
		}
	}

	return hand
}
