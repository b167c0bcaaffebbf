// Package dispatch routes controller frames into named application actions.
package dispatch

// Action names a discrete application action produced by a button edge.
type Action string

const (
	// ActionClick activates whatever the cursor is on.
	ActionClick Action = "click"
	// ActionBack navigates back.
	ActionBack Action = "back"
	// ActionHome navigates to the start page.
	ActionHome Action = "home"
	// ActionSearch opens the on-screen keyboard for the search field.
	ActionSearch Action = "search"
	// ActionPageUp scrolls a page up.
	ActionPageUp Action = "page-up"
	// ActionPageDown scrolls a page down.
	ActionPageDown Action = "page-down"
	// ActionStart submits the current context (keyboard submit, etc).
	ActionStart Action = "start"

	// ActionCursorUp moves the selection or cursor up one step.
	ActionCursorUp Action = "cursor-up"
	// ActionCursorDown moves the selection or cursor down one step.
	ActionCursorDown Action = "cursor-down"
	// ActionCursorLeft moves the selection or cursor left one step.
	ActionCursorLeft Action = "cursor-left"
	// ActionCursorRight moves the selection or cursor right one step.
	ActionCursorRight Action = "cursor-right"
)

// Fast returns the accelerated variant of a cursor action.
func (a Action) Fast() Action {
	return a + "-fast"
}

// Sink receives dispatched actions and analog vectors. Within one frame,
// button-edge actions arrive strictly before analog events.
type Sink interface {
	// Action delivers one named action.
	Action(a Action)
	// CursorMove delivers a normalized movement vector, each axis in [-1, 1],
	// already in screen coordinates (stick up yields negative dy).
	CursorMove(dx, dy float64)
	// Scroll delivers a vertical scroll delta in pixels.
	Scroll(dy float64)
}
