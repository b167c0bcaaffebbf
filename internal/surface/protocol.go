// Package surface bridges the isolated content pane over a websocket.
package surface

// NavStarted is sent by the pane when a navigation begins.
const NavStarted = "nav-started"

// NavFinished is sent by the pane when a navigation completes.
const NavFinished = "nav-finished"

// NavFailed is sent by the pane when a navigation fails.
const NavFailed = "nav-failed"

// Rect is an element box on the wire, in pane-local coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// WireElement is one interactive element reported by the pane. Index is
// an opaque handle into the pane's own element table; it is the only way
// to reference the element in later commands.
type WireElement struct {
	Index int  `json:"index"`
	Rect  Rect `json:"rect"`
}

// Message is a bridge websocket payload, both directions.
type Message struct {
	T        string        `json:"t"`
	ID       int           `json:"id,omitempty"`
	Force    bool          `json:"force,omitempty"`
	Index    int           `json:"index,omitempty"`
	On       *bool         `json:"on,omitempty"`
	DY       float64       `json:"dy,omitempty"`
	Phase    string        `json:"phase,omitempty"`
	Text     string        `json:"text,omitempty"`
	Elements []WireElement `json:"elements,omitempty"`
	Error    string        `json:"error,omitempty"`
}
