// Package tray provides the overlay's system tray menu.
package tray

import (
	"github.com/getlantern/systray"

	"github.com/frudas24/padglass/internal/host"
)

// Tray shows a minimal menu for driving the overlay without a mouse:
// toggle visibility and quit.
type Tray struct {
	window  host.Window
	tooltip string
	quitCh  chan struct{}
}

// New returns a tray bound to the overlay window.
func New(window host.Window, tooltip string) *Tray {
	return &Tray{
		window:  window,
		tooltip: tooltip,
		quitCh:  make(chan struct{}),
	}
}

// Run starts the tray event loop and blocks until Stop or quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop tears the tray down.
func (t *Tray) Stop() {
	systray.Quit()
}

// onReady builds the menu once systray is up.
func (t *Tray) onReady() {
	systray.SetTitle("padglass")
	systray.SetTooltip(t.tooltip)

	toggle := systray.AddMenuItem("Show/Hide overlay", "Toggle the overlay window")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Close padglass")

	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				t.window.Toggle()
			case <-quit.ClickedCh:
				t.window.Close()
			case <-t.quitCh:
				return
			}
		}
	}()
}

// onExit releases the menu goroutine.
func (t *Tray) onExit() {
	close(t.quitCh)
}
