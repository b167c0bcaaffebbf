// Package element tracks the clickable targets under the virtual cursor.
package element

// SurfaceKind tags which rendering context owns a clickable target.
type SurfaceKind int

const (
	// SurfaceHost marks a live node in the host UI tree.
	SurfaceHost SurfaceKind = iota
	// SurfaceEmbedded marks an opaque index into the content pane's own
	// element table; no direct handle crosses the isolation boundary.
	SurfaceEmbedded
)

// HostNode is a live, directly referenceable element of the host UI tree.
type HostNode interface {
	// Box returns the node's bounds in viewport coordinates.
	Box() Box
	// TextInput reports whether the node accepts typed text.
	TextInput() bool
	// Focus gives the node input focus.
	Focus()
	// Activate triggers the node's default action.
	Activate()
	// SetHighlighted toggles the node's highlight marker.
	SetHighlighted(on bool)
}

// Clickable is one interactive target, valid for a single refresh cycle.
// The tagged reference keeps host and embedded handles from being confused:
// Node is set only for SurfaceHost, Index only for SurfaceEmbedded.
type Clickable struct {
	Kind  SurfaceKind
	Node  HostNode
	Index int
	Box   Box
}

// Center returns the target's center point.
func (c Clickable) Center() (float64, float64) {
	return c.Box.Center()
}

// Same reports whether two clickables reference the same underlying target.
func (c Clickable) Same(o Clickable) bool {
	if c.Kind != o.Kind {
		return false
	}
	if c.Kind == SurfaceHost {
		return c.Node == o.Node
	}
	return c.Index == o.Index
}

// RemoteElement is one embedded-pane result, in pane-local coordinates.
type RemoteElement struct {
	Index int
	Box   Box
}

// HostScanner enumerates the host surface's interactive elements
// synchronously, already in viewport coordinates.
type HostScanner interface {
	// ScanClickables returns the currently visible, enabled targets.
	ScanClickables() []Clickable
}

// EmbeddedSurface is the asynchronous boundary to the content pane. Every
// method is best-effort; a stale index simply makes the call do nothing.
type EmbeddedSurface interface {
	// QueryElements enumerates the pane's interactive elements. It blocks
	// until the pane answers or the bridge times out; callers run it off
	// the polling tick.
	QueryElements(forceStyleReinit bool) ([]RemoteElement, error)
	// SurfaceBox returns the pane's on-screen bounds in viewport
	// coordinates, used to translate pane-local boxes.
	SurfaceBox() Box
	// Click triggers the element behind an opaque index.
	Click(index int) error
	// Highlight toggles the highlight of the element behind an index.
	Highlight(index int, on bool) error
	// Scroll scrolls the pane content by a vertical delta.
	Scroll(dy float64) error
}
