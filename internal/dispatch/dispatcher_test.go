package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/frudas24/padglass/internal/gamepad"
	"github.com/frudas24/padglass/internal/repeat"
	"github.com/frudas24/padglass/internal/session"
)

// testTuning is a representative non-zero tuning set.
var testTuning = Tuning{
	StickThreshold: 0.1,
	ScrollStep:     60,
	ScrollMinDelta: 10,
	FastTriggerMin: 100,
}

// recordSink records everything a dispatcher emits.
type recordSink struct {
	mu      sync.Mutex
	actions []Action
	moves   [][2]float64
	scrolls []float64
}

// Action records a named action.
func (r *recordSink) Action(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

// CursorMove records a movement vector.
func (r *recordSink) CursorMove(dx, dy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, [2]float64{dx, dy})
}

// Scroll records a scroll delta.
func (r *recordSink) Scroll(dy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrolls = append(r.scrolls, dy)
}

// Actions returns a copy of recorded actions.
func (r *recordSink) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// fakeWindow implements WindowOps with counters.
type fakeWindow struct {
	visible bool
	toggles int
	closes  int
}

// IsVisible reports the scripted visibility.
func (w *fakeWindow) IsVisible() bool { return w.visible }

// Toggle flips visibility and counts the call.
func (w *fakeWindow) Toggle() {
	w.visible = !w.visible
	w.toggles++
}

// Close counts the call.
func (w *fakeWindow) Close() { w.closes++ }

// newTestDispatcher wires a dispatcher with fakes and a slow scheduler.
func newTestDispatcher(visible bool) (*Dispatcher, *recordSink, *fakeWindow, *repeat.Scheduler) {
	sink := &recordSink{}
	win := &fakeWindow{visible: visible}
	sched := repeat.NewScheduler(time.Hour, time.Hour)
	d := New(session.New(), win, sched, sink, testTuning)
	return d, sink, win, sched
}

// TestQuitCombo_FiresOnceWhileHeld verifies combo edge detection.
func TestQuitCombo_FiresOnceWhileHeld(t *testing.T) {
	d, _, win, _ := newTestDispatcher(true)

	combo := gamepad.BtnBack | gamepad.BtnB
	d.Dispatch(gamepad.Frame{Buttons: combo, Previous: gamepad.BtnBack})
	for i := 0; i < 9; i++ {
		d.Dispatch(gamepad.Frame{Buttons: combo, Previous: combo})
	}

	if win.closes != 1 {
		t.Fatalf("expected exactly one close across 10 held frames, got %d", win.closes)
	}
}

// TestToggleCombo_SuppressesNavigation verifies BACK|START emits only a toggle.
func TestToggleCombo_SuppressesNavigation(t *testing.T) {
	d, sink, win, _ := newTestDispatcher(true)

	d.Dispatch(gamepad.Frame{
		Buttons:  gamepad.BtnBack | gamepad.BtnStart,
		Previous: gamepad.BtnBack,
	})

	if win.toggles != 1 {
		t.Fatalf("expected one visibility toggle, got %d", win.toggles)
	}
	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected zero navigation actions, got %v", got)
	}
}

// TestToggleCombo_WorksWhileHidden verifies the toggle ignores visibility.
func TestToggleCombo_WorksWhileHidden(t *testing.T) {
	d, _, win, _ := newTestDispatcher(false)

	d.Dispatch(gamepad.Frame{Buttons: gamepad.BtnBack | gamepad.BtnStart})

	if win.toggles != 1 {
		t.Fatalf("expected toggle while hidden, got %d", win.toggles)
	}
}

// TestBackground_OnlyCombosProcessed verifies background gating.
func TestBackground_OnlyCombosProcessed(t *testing.T) {
	d, sink, win, _ := newTestDispatcher(true)
	d.sess.SetBackground(true)

	d.Dispatch(gamepad.Frame{Buttons: gamepad.BtnA})
	d.Dispatch(gamepad.Frame{Buttons: gamepad.BtnBack | gamepad.BtnB, Previous: gamepad.BtnA})

	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected no actions in background, got %v", got)
	}
	if win.closes != 1 {
		t.Fatalf("quit combo must still fire in background, got %d closes", win.closes)
	}
}

// TestHidden_NoNavigationActions verifies visibility gating.
func TestHidden_NoNavigationActions(t *testing.T) {
	d, sink, _, _ := newTestDispatcher(false)

	d.Dispatch(gamepad.Frame{Buttons: gamepad.BtnA | gamepad.BtnLB})

	if got := sink.Actions(); len(got) != 0 {
		t.Fatalf("expected no actions while hidden, got %v", got)
	}
}

// TestSingleEdges_PriorityOrder verifies face, shoulder, start ordering.
func TestSingleEdges_PriorityOrder(t *testing.T) {
	d, sink, _, _ := newTestDispatcher(true)

	d.Dispatch(gamepad.Frame{Buttons: gamepad.BtnLB | gamepad.BtnA | gamepad.BtnStart})

	got := sink.Actions()
	want := []Action{ActionClick, ActionPageUp, ActionStart}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// TestDPad_ArmsAndClearsRepeats verifies level-based repeat handling.
func TestDPad_ArmsAndClearsRepeats(t *testing.T) {
	d, _, _, sched := newTestDispatcher(true)

	d.Dispatch(gamepad.Frame{Buttons: gamepad.BtnDPadUp})
	if !sched.Active(gamepad.BtnDPadUp) {
		t.Fatalf("press edge must arm a repeat")
	}

	d.Dispatch(gamepad.Frame{Buttons: gamepad.BtnDPadUp, Previous: gamepad.BtnDPadUp})
	if !sched.Active(gamepad.BtnDPadUp) {
		t.Fatalf("held button must keep its repeat")
	}

	d.Dispatch(gamepad.Frame{Previous: gamepad.BtnDPadUp})
	if sched.Active(gamepad.BtnDPadUp) {
		t.Fatalf("release must clear the repeat")
	}
}

// TestDPad_FastVariantFollowsTrigger verifies trigger-modulated speed.
func TestDPad_FastVariantFollowsTrigger(t *testing.T) {
	sink := &recordSink{}
	win := &fakeWindow{visible: true}
	sched := repeat.NewScheduler(time.Millisecond, 50*time.Millisecond)
	d := New(session.New(), win, sched, sink, testTuning)

	d.Dispatch(gamepad.Frame{
		Buttons:  gamepad.BtnDPadRight,
		Triggers: gamepad.Triggers{Right: 255},
	})
	time.Sleep(25 * time.Millisecond)
	sched.ClearAll()

	got := sink.Actions()
	if len(got) == 0 {
		t.Fatalf("expected at least one repeat emission")
	}
	if got[0] != ActionCursorRight.Fast() {
		t.Fatalf("expected fast variant with trigger held, got %v", got[0])
	}
}

// TestSticks_ThresholdAndInversion verifies analog gating and Y inversion.
func TestSticks_ThresholdAndInversion(t *testing.T) {
	d, sink, _, _ := newTestDispatcher(true)

	// Below the normalized threshold nothing is emitted.
	d.Dispatch(gamepad.Frame{Sticks: gamepad.Sticks{LeftX: 100, LeftY: 100}})
	if len(sink.moves) != 0 {
		t.Fatalf("sub-threshold stick must emit nothing, got %v", sink.moves)
	}

	// Pushing up (positive raw Y) must move up-screen (negative dy).
	d.Dispatch(gamepad.Frame{Sticks: gamepad.Sticks{LeftY: 16000}})
	if len(sink.moves) != 1 {
		t.Fatalf("expected one move, got %v", sink.moves)
	}
	if sink.moves[0][1] >= 0 {
		t.Fatalf("stick up must yield negative screen dy, got %v", sink.moves[0])
	}
}

// TestScroll_MinimumPerceptibleThreshold verifies scroll jitter is discarded.
func TestScroll_MinimumPerceptibleThreshold(t *testing.T) {
	d, sink, _, _ := newTestDispatcher(true)

	// Past the stick threshold but producing a delta under ScrollMinDelta.
	d.Dispatch(gamepad.Frame{Sticks: gamepad.Sticks{RightY: 4000}})
	if len(sink.scrolls) != 0 {
		t.Fatalf("sub-perceptible scroll must be discarded, got %v", sink.scrolls)
	}

	d.Dispatch(gamepad.Frame{Sticks: gamepad.Sticks{RightY: 30000}})
	if len(sink.scrolls) != 1 {
		t.Fatalf("expected one scroll, got %v", sink.scrolls)
	}
	if sink.scrolls[0] >= 0 {
		t.Fatalf("stick up must scroll up (negative delta), got %v", sink.scrolls[0])
	}
}
