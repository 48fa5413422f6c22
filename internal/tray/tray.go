// Package tray provides the system tray menu for the hologram.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/hologram/internal/gesture"
)

// Tray shows the detection toggle, the current gesture and the tracking
// link in the system tray.
type Tray struct {
	onToggle func(enabled bool)
	onViewer func()
	onQuit   func()
	enabled  bool
	gesture  gesture.Symbol
	stable   bool
	mu       sync.RWMutex

	menuToggle  *systray.MenuItem
	menuGesture *systray.MenuItem
	menuLink    *systray.MenuItem
}

// New creates a Tray showing the given detection state.
func New(enabled bool) *Tray {
	return &Tray{enabled: enabled}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnViewer sets the callback for the "Open Viewer..." item.
func (t *Tray) OnViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Hologram")
	systray.SetTooltip("Gesture-driven particle hologram")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume hand detection")
	systray.AddSeparator()

	t.menuGesture = systray.AddMenuItem(gestureTitle(t.gesture), "Current gesture")
	t.menuGesture.Disable()
	t.menuLink = systray.AddMenuItem(linkTitle(t.stable), "Hand tracking status")
	t.menuLink.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the hologram in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Hologram")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuViewer.ClickedCh:
				t.handleViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetGesture updates the gesture line. Safe to call before Run.
func (t *Tray) SetGesture(sym gesture.Symbol) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gesture = sym
	if t.menuGesture != nil {
		t.menuGesture.SetTitle(gestureTitle(sym))
	}
}

// SetLinkStatus updates the tracking link line. Safe to call before Run.
func (t *Tray) SetLinkStatus(stable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stable = stable
	if t.menuLink != nil {
		t.menuLink.SetTitle(linkTitle(stable))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Detection on"
	}
	return "○ Detection paused"
}

func gestureTitle(sym gesture.Symbol) string {
	return "Gesture: " + sym.Label()
}

func linkTitle(stable bool) string {
	if stable {
		return "Link: STABLE"
	}
	return "Link: SEARCHING..."
}
