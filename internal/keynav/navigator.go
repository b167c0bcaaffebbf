// Package keynav implements the on-screen keyboard's grid navigation.
package keynav

import (
	"math"
	"strings"
	"sync"
	"time"
)

// columns is the fixed key-grid width; row count follows layout length.
const columns = 10

// LayoutLetters is the alphabetic key set.
const LayoutLetters = "letters"

// LayoutNumbers is the numeric/symbol key set.
const LayoutNumbers = "numbers"

// lettersKeys is the 30-key alphabetic layout.
var lettersKeys = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
	"k", "l", "m", "n", "o", "p", "q", "r", "s", "t",
	"u", "v", "w", "x", "y", "z", "-", "'", ".", "/",
}

// numbersKeys is the numeric/symbol layout.
var numbersKeys = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "0",
	"!", "@", "#", "$", "%", "&", "*", "(", ")", "?",
	"+", "=", ":", ";", ",", "\"", "_", "~", "<", ">",
}

// Direction is a grid navigation step.
type Direction string

const (
	// Up moves the selection one row up.
	Up Direction = "up"
	// Down moves the selection one row down.
	Down Direction = "down"
	// Left moves the selection one column left.
	Left Direction = "left"
	// Right moves the selection one column right.
	Right Direction = "right"
)

// CompletionFunc receives the target field reference and the final text
// when the keyboard is submitted.
type CompletionFunc func(target any, text string)

// Tuning holds the navigator's analog feel constants.
type Tuning struct {
	// MoveMinInterval debounces analog navigation: a held stick moves the
	// selection at most once per interval.
	MoveMinInterval time.Duration
	// StickTrigger is the normalized magnitude an axis must exceed before
	// it counts as a navigation intent.
	StickTrigger float64
}

// Navigator tracks on-screen keyboard state. It exists logically only
// while keyboard capture is active; Show and Hide bracket that window.
type Navigator struct {
	mu         sync.Mutex
	tuning     Tuning
	onComplete CompletionFunc
	now        func() time.Time

	visible    bool
	layoutName string
	keys       []string
	selected   int
	buffer     string
	target     any
	lastMove   time.Time
}

// NewNavigator returns a navigator with the letters layout selected.
func NewNavigator(tuning Tuning, onComplete CompletionFunc) *Navigator {
	return &Navigator{
		tuning:     tuning,
		onComplete: onComplete,
		now:        time.Now,
		layoutName: LayoutLetters,
		keys:       lettersKeys,
	}
}

// SetNowFunc overrides the clock used for analog debouncing.
func (n *Navigator) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		n.now = fn
	}
}

// Show activates the keyboard for a target field, seeding the buffer with
// the field's current text.
func (n *Navigator) Show(target any, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = true
	n.target = target
	n.buffer = text
	n.selected = 0
	n.lastMove = time.Time{}
}

// Hide deactivates the keyboard without writing anything back.
func (n *Navigator) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = false
	n.target = nil
}

// Visible reports whether the keyboard is active.
func (n *Navigator) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

// Navigate moves the selection one step with wraparound on both axes.
// A wrap that would land past the end of a short last row clamps to the
// final key.
func (n *Navigator) Navigate(dir Direction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navigateLocked(dir)
}

// navigateLocked applies one grid step. Caller holds the mutex.
func (n *Navigator) navigateLocked(dir Direction) {
	rows := (len(n.keys) + columns - 1) / columns
	row := n.selected / columns
	col := n.selected % columns

	switch dir {
	case Up:
		row--
	case Down:
		row++
	case Left:
		col--
	case Right:
		col++
	}

	if col < 0 {
		col = columns - 1
	}
	if col >= columns {
		col = 0
	}
	if row < 0 {
		row = rows - 1
	}
	if row >= rows {
		row = 0
	}

	idx := row*columns + col
	if idx >= len(n.keys) {
		idx = len(n.keys) - 1
	}
	n.selected = idx
}

// HandleStick feeds an analog vector into grid navigation. Moves are
// debounced to one per interval; the larger-magnitude axis wins when both
// exceed the trigger level. dy is in screen coordinates (negative = up).
func (n *Navigator) HandleStick(dx, dy float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ax, ay := math.Abs(dx), math.Abs(dy)
	if ax < n.tuning.StickTrigger && ay < n.tuning.StickTrigger {
		return
	}
	now := n.now()
	if !n.lastMove.IsZero() && now.Sub(n.lastMove) < n.tuning.MoveMinInterval {
		return
	}
	n.lastMove = now

	if ax >= ay {
		if dx > 0 {
			n.navigateLocked(Right)
		} else {
			n.navigateLocked(Left)
		}
		return
	}
	if dy > 0 {
		n.navigateLocked(Down)
	} else {
		n.navigateLocked(Up)
	}
}

// TypeSelected appends the selected key to the buffer, case-normalized.
func (n *Navigator) TypeSelected() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buffer += strings.ToLower(n.keys[n.selected])
}

// Backspace removes the last buffered character.
func (n *Navigator) Backspace() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.buffer != "" {
		n.buffer = n.buffer[:len(n.buffer)-1]
	}
}

// Space appends a space to the buffer.
func (n *Navigator) Space() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buffer += " "
}

// SwitchLayout toggles between the two key sets and re-clamps the
// selection to the new layout's length.
func (n *Navigator) SwitchLayout() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.layoutName == LayoutLetters {
		n.layoutName = LayoutNumbers
		n.keys = numbersKeys
	} else {
		n.layoutName = LayoutLetters
		n.keys = lettersKeys
	}
	if n.selected >= len(n.keys) {
		n.selected = len(n.keys) - 1
	}
}

// Submit writes the buffer back through the completion hook and hides
// the keyboard.
func (n *Navigator) Submit() {
	n.mu.Lock()
	target, text := n.target, n.buffer
	hook := n.onComplete
	n.visible = false
	n.target = nil
	n.mu.Unlock()

	if hook != nil {
		hook(target, text)
	}
}

// Cancel hides the keyboard; nothing is written back.
func (n *Navigator) Cancel() {
	n.Hide()
}

// Layout returns the active layout name.
func (n *Navigator) Layout() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.layoutName
}

// Selected returns the selection index.
func (n *Navigator) Selected() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selected
}

// SelectedKey returns the key under the selection.
func (n *Navigator) SelectedKey() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.keys[n.selected]
}

// Buffer returns the current text buffer.
func (n *Navigator) Buffer() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.buffer
}
