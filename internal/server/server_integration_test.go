package server

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/hologram/internal/capture"
	"github.com/ayusman/hologram/internal/store"
)

func TestAPI_HologramFeed(t *testing.T) {
	src := &fakeSource{}
	src.frame.Store(testFrame(1))

	srv := New(Config{Frames: src, FeedFPS: 100})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/hologram"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var msg struct {
		Seq    uint64    `json:"seq"`
		Symbol string    `json:"symbol"`
		Link   string    `json:"link"`
		Points []float32 `json:"points"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	if msg.Seq != 1 || msg.Symbol != "PINCH" || msg.Link != "STABLE" {
		t.Errorf("unexpected frame %+v", msg)
	}
	if len(msg.Points) != 6 {
		t.Errorf("expected 6 coordinates, got %d", len(msg.Points))
	}

	// A new frame is sent once.
	src.frame.Store(testFrame(2))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, data, err = conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	if msg.Seq != 2 {
		t.Errorf("expected seq 2, got %d", msg.Seq)
	}
}

func TestHologramHandler_RefusesAfterClose(t *testing.T) {
	src := &fakeSource{}
	src.frame.Store(testFrame(1))

	h := NewHologramHandler(src, 100, zerolog.Nop())
	ts := httptest.NewServer(h)
	defer ts.Close()
	h.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected the upgrade to be refused after Close")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %v", http.StatusServiceUnavailable, resp)
	}
	if h.Clients() != 0 {
		t.Errorf("expected no clients after Close, got %d", h.Clients())
	}
}

func TestAPI_PreviewStream(t *testing.T) {
	fb := capture.NewFrameBuffer()
	srv := New(Config{Preview: fb})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("unexpected Content-Type %s", ct)
	}

	// The viewer is attached once the handler runs.
	deadline := time.Now().Add(2 * time.Second)
	for !fb.Wanted() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	fb.PublishJPEG([]byte("jpegdata"))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 5 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}

	if lines[0] != "--frame" || lines[1] != "Content-Type: image/jpeg" || lines[2] != "Content-Length: 8" {
		t.Errorf("unexpected part header %q", lines[:3])
	}
	if lines[4] != "jpegdata" {
		t.Errorf("unexpected part body %q", lines[4])
	}
}

func TestAPI_SessionWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	sess := &store.Session{Name: "Madina"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ts := httptest.NewServer(New(Config{Store: s}))
	defer ts.Close()
	client := ts.Client()

	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []struct {
			ID     string `json:"id"`
			Gender string `json:"gender"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Sessions[0].ID != sess.ID {
		t.Fatalf("unexpected sessions %+v", listed.Sessions)
	}
	if listed.Sessions[0].Gender != "female" {
		t.Errorf("expected female, got %s", listed.Sessions[0].Gender)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+sess.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
