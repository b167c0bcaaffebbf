//go:build !windows

// Package host exposes the overlay window collaborators.
package host

import "errors"

// WinWindow is unavailable off Windows; see StateWindow.
type WinWindow struct{}

// NewWindow reports that no native window backend exists on this platform.
func NewWindow(title string, onClose func()) (*WinWindow, error) {
	return nil, errors.New("native window control is only implemented on windows")
}

// IsVisible is unreachable on this platform.
func (w *WinWindow) IsVisible() bool { return false }

// Toggle is unreachable on this platform.
func (w *WinWindow) Toggle() {}

// Close is unreachable on this platform.
func (w *WinWindow) Close() {}

// Size is unreachable on this platform.
func (w *WinWindow) Size() (float64, float64) { return 0, 0 }
