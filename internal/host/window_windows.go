//go:build windows

// Package host exposes the overlay window collaborators.
package host

import (
	"fmt"
	"syscall"

	"github.com/lxn/win"
)

// WinWindow drives an existing overlay window through the WinAPI.
type WinWindow struct {
	hwnd    win.HWND
	onClose func()
}

// NewWindow attaches to the overlay window by title. onClose runs when
// Close is called and may be nil.
func NewWindow(title string, onClose func()) (*WinWindow, error) {
	p, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return nil, err
	}
	hwnd := win.FindWindow(nil, p)
	if hwnd == 0 {
		return nil, fmt.Errorf("overlay window %q not found", title)
	}
	return &WinWindow{hwnd: hwnd, onClose: onClose}, nil
}

// IsVisible reports whether the window is shown.
func (w *WinWindow) IsVisible() bool {
	return win.IsWindowVisible(w.hwnd)
}

// Toggle shows or hides the window without activating it.
func (w *WinWindow) Toggle() {
	if w.IsVisible() {
		win.ShowWindow(w.hwnd, win.SW_HIDE)
		return
	}
	win.ShowWindow(w.hwnd, win.SW_SHOWNOACTIVATE)
}

// Close invokes the close hook.
func (w *WinWindow) Close() {
	if w.onClose != nil {
		w.onClose()
	}
}

// Size returns the window's client area in pixels.
func (w *WinWindow) Size() (float64, float64) {
	var rect win.RECT
	if !win.GetClientRect(w.hwnd, &rect) {
		return 0, 0
	}
	return float64(rect.Right - rect.Left), float64(rect.Bottom - rect.Top)
}
