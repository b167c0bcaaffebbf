// Package host exposes the overlay window collaborators.
package host

import "sync"

// Window is the capability set the input pipeline needs from the overlay
// window. Lifecycle and placement stay with the window's owner.
type Window interface {
	// IsVisible reports whether the overlay is on screen.
	IsVisible() bool
	// Toggle shows or hides the overlay.
	Toggle()
	// Close shuts the application down.
	Close()
}

// Viewport reports the overlay's client area size.
type Viewport interface {
	// Size returns the client width and height in pixels.
	Size() (float64, float64)
}

// StateWindow is a portable in-memory Window/Viewport used when no native
// window backend is available (development and tests).
type StateWindow struct {
	mu      sync.Mutex
	visible bool
	w, h    float64
	onClose func()
}

// NewStateWindow returns a visible state window of the given size.
// onClose runs when Close is called and may be nil.
func NewStateWindow(w, h float64, onClose func()) *StateWindow {
	return &StateWindow{visible: true, w: w, h: h, onClose: onClose}
}

// IsVisible reports the stored visibility.
func (s *StateWindow) IsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Toggle flips the stored visibility.
func (s *StateWindow) Toggle() {
	s.mu.Lock()
	s.visible = !s.visible
	s.mu.Unlock()
}

// Close invokes the close hook.
func (s *StateWindow) Close() {
	if s.onClose != nil {
		s.onClose()
	}
}

// Size returns the configured client size.
func (s *StateWindow) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}
