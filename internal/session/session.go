// Package session holds runtime state shared across the input pipeline.
package session

import "sync"

// CaptureCursor routes directional input to the virtual cursor.
const CaptureCursor = "cursor"

// CaptureKeyboard routes directional input to the on-screen keyboard.
const CaptureKeyboard = "keyboard"

// Session is the single owner of capture mode and background state.
// Components receive it at construction instead of reading globals.
type Session struct {
	mu         sync.RWMutex
	capture    string
	background bool
}

// New returns a session in cursor capture, foreground.
func New() *Session {
	return &Session{capture: CaptureCursor}
}

// SetCapture switches which consumer receives directional input.
func (s *Session) SetCapture(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case CaptureKeyboard:
		s.capture = CaptureKeyboard
	default:
		s.capture = CaptureCursor
	}
}

// Capture returns the active capture mode.
func (s *Session) Capture() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capture
}

// SetBackground marks whether another application owns the controller.
func (s *Session) SetBackground(bg bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = bg
}

// Background reports whether input processing is suspended.
func (s *Session) Background() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}
