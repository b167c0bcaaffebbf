// Package dispatch routes controller frames into named application actions.
package dispatch

import (
	"math"
	"sync/atomic"

	"github.com/frudas24/padglass/internal/gamepad"
	"github.com/frudas24/padglass/internal/repeat"
	"github.com/frudas24/padglass/internal/session"
)

// maxAxis is the largest magnitude a filtered stick axis can reach.
const maxAxis = 32767.0

// WindowOps is the host-window capability set the dispatcher requires.
type WindowOps interface {
	// IsVisible reports whether the overlay window is on screen.
	IsVisible() bool
	// Toggle shows or hides the overlay window.
	Toggle()
	// Close shuts the application down.
	Close()
}

// Tuning holds the dispatcher's empirically tuned thresholds. All of them
// must be non-zero; exact values are a matter of feel, not correctness.
type Tuning struct {
	// StickThreshold is the minimum normalized magnitude before a stick
	// emits anything, on top of the sampler's deadzone.
	StickThreshold float64
	// ScrollStep is the scroll delta in pixels at full stick deflection.
	ScrollStep float64
	// ScrollMinDelta discards sub-perceptible scroll jitter, in pixels.
	ScrollMinDelta float64
	// FastTriggerMin is the right-trigger level that switches d-pad cursor
	// actions to their fast variants.
	FastTriggerMin uint8
}

// Dispatcher turns frames into actions. It holds no per-frame state of its
// own; repeat timing lives in the scheduler, edges in the frame itself.
type Dispatcher struct {
	sess    *session.Session
	window  WindowOps
	repeats *repeat.Scheduler
	sink    Sink
	tuning  Tuning

	// fastHeld mirrors the latest right-trigger state so repeat callbacks
	// firing between frames pick the correct speed variant.
	fastHeld atomic.Bool
}

// quitCombo closes the application; toggleCombo flips window visibility.
// Both fire on the combo's own edge and work in background mode.
const (
	quitCombo   = gamepad.BtnBack | gamepad.BtnB
	toggleCombo = gamepad.BtnBack | gamepad.BtnStart
)

// buttonActions lists single-button edges in dispatch priority order:
// face buttons, then shoulder buttons, then start.
var buttonActions = []struct {
	btn    gamepad.Buttons
	action Action
}{
	{gamepad.BtnA, ActionClick},
	{gamepad.BtnB, ActionBack},
	{gamepad.BtnX, ActionHome},
	{gamepad.BtnY, ActionSearch},
	{gamepad.BtnLB, ActionPageUp},
	{gamepad.BtnRB, ActionPageDown},
	{gamepad.BtnStart, ActionStart},
}

// dpadActions maps directional buttons to their cursor actions.
var dpadActions = []struct {
	btn    gamepad.Buttons
	action Action
}{
	{gamepad.BtnDPadUp, ActionCursorUp},
	{gamepad.BtnDPadDown, ActionCursorDown},
	{gamepad.BtnDPadLeft, ActionCursorLeft},
	{gamepad.BtnDPadRight, ActionCursorRight},
}

// New returns a dispatcher wired to its collaborators.
func New(sess *session.Session, window WindowOps, repeats *repeat.Scheduler, sink Sink, tuning Tuning) *Dispatcher {
	return &Dispatcher{
		sess:    sess,
		window:  window,
		repeats: repeats,
		sink:    sink,
		tuning:  tuning,
	}
}

// Dispatch processes one frame. Button edges are handled strictly before
// analog vectors; directional repeats are armed/cleared independently of
// the single-button edges within the same frame.
func (d *Dispatcher) Dispatch(f gamepad.Frame) {
	d.fastHeld.Store(f.Triggers.Right >= d.tuning.FastTriggerMin)

	// High-priority combos fire even while backgrounded or hidden;
	// the toggle must work with nothing on screen.
	if f.ComboPressed(quitCombo) {
		d.window.Close()
		return
	}
	comboFired := false
	if f.ComboPressed(toggleCombo) {
		d.window.Toggle()
		comboFired = true
	}

	if d.sess.Background() {
		return
	}
	if !d.window.IsVisible() {
		return
	}

	if !comboFired {
		for _, ba := range buttonActions {
			if f.JustPressed(ba.btn) {
				d.sink.Action(ba.action)
			}
		}
	}

	// Directional level transitions are evaluated even on a combo frame,
	// so a release never leaves a repeat armed.
	d.handleDPad(f)

	if !comboFired {
		d.handleSticks(f)
	}
}

// handleDPad arms and clears repeats from directional level transitions.
func (d *Dispatcher) handleDPad(f gamepad.Frame) {
	for _, da := range dpadActions {
		switch {
		case f.JustPressed(da.btn):
			action := da.action
			d.repeats.Start(da.btn, func() {
				d.sink.Action(d.speedVariant(action))
			})
		case f.JustReleased(da.btn):
			d.repeats.Clear(da.btn)
		}
	}
}

// handleSticks emits analog vectors: left stick moves the cursor, right
// stick scrolls. Y axes are inverted into screen coordinates.
func (d *Dispatcher) handleSticks(f gamepad.Frame) {
	lx := float64(f.Sticks.LeftX) / maxAxis
	ly := float64(f.Sticks.LeftY) / maxAxis
	if math.Hypot(lx, ly) > d.tuning.StickThreshold {
		d.sink.CursorMove(lx, -ly)
	}

	ry := float64(f.Sticks.RightY) / maxAxis
	if math.Abs(ry) > d.tuning.StickThreshold {
		scroll := -ry * d.tuning.ScrollStep
		if math.Abs(scroll) >= d.tuning.ScrollMinDelta {
			d.sink.Scroll(scroll)
		}
	}
}

// speedVariant applies the fast suffix while the right trigger is held.
func (d *Dispatcher) speedVariant(a Action) Action {
	if d.fastHeld.Load() {
		return a.Fast()
	}
	return a
}
