// Package cursor owns the virtual pointer: position, magnetic snapping,
// highlight handoff, and click/scroll resolution.
package cursor

import (
	"log"
	"sync"
	"time"

	"github.com/frudas24/padglass/internal/element"
)

// edgeMargin keeps the pointer off the very edge of the viewport.
const edgeMargin = 10

// View renders the pointer sprite. Rendering itself is a collaborator;
// the engine only drives it.
type View interface {
	// SetPosition moves the rendered pointer.
	SetPosition(x, y float64)
	// Show makes the pointer visible.
	Show()
	// Hide removes the pointer from screen.
	Hide()
}

// HostScroller scrolls the host surface's scroll container.
type HostScroller interface {
	// ScrollBy scrolls the host container by a vertical delta.
	ScrollBy(dy float64)
}

// Tuning holds the engine's feel constants. All must be non-zero.
type Tuning struct {
	// SnapRadius is how close a target must be before it attracts
	// the pointer, in pixels.
	SnapRadius float64
	// MaxPull is the strongest per-tick magnetic pull, in pixels,
	// reached as distance to the target approaches zero.
	MaxPull float64
	// HideDelay is how long the pointer stays visible without activity.
	HideDelay time.Duration
	// ClickRefreshDelay is how long after an embedded click to rescan,
	// giving the content time to react.
	ClickRefreshDelay time.Duration
	// PageScrollFraction is how much of the viewport height a page
	// scroll covers.
	PageScrollFraction float64
}

// Engine is the virtual pointer state machine (hidden ⇄ visible).
// It exclusively owns the pointer position; positions are clamped to the
// viewport after every move.
type Engine struct {
	mu       sync.Mutex
	registry *element.Registry
	embedded element.EmbeddedSurface
	view     View
	hostScr  HostScroller
	viewport func() (float64, float64)
	tuning   Tuning

	x, y        float64
	visible     bool
	highlighted element.Clickable
	hasTarget   bool
	hideTimer   *time.Timer
}

// NewEngine returns an engine centered in the viewport, hidden.
func NewEngine(registry *element.Registry, embedded element.EmbeddedSurface, view View, hostScr HostScroller, viewport func() (float64, float64), tuning Tuning) *Engine {
	w, h := viewport()
	return &Engine{
		registry: registry,
		embedded: embedded,
		view:     view,
		hostScr:  hostScr,
		viewport: viewport,
		tuning:   tuning,
		x:        w / 2,
		y:        h / 2,
	}
}

// Move applies a raw delta, then magnetic attraction toward the nearest
// target, then clamps to the viewport — in that order — and finally
// re-resolves the highlight. Any movement shows the pointer.
func (e *Engine) Move(dx, dy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.showLocked()

	x := e.x + dx
	y := e.y + dy

	if target, ok := e.registry.FindNearest(x, y, e.tuning.SnapRadius); ok {
		cx, cy := target.Center()
		dist := element.Distance(x, y, cx, cy)
		if dist > 0.5 && dist < e.tuning.SnapRadius {
			pull := e.tuning.MaxPull * (1 - dist/e.tuning.SnapRadius)
			x += (cx - x) / dist * pull
			y += (cy - y) / dist * pull
		}
	}

	w, h := e.viewport()
	e.x = clamp(x, edgeMargin, w-edgeMargin)
	e.y = clamp(y, edgeMargin, h-edgeMargin)
	e.view.SetPosition(e.x, e.y)

	e.resolveHighlightLocked()
}

// Nudge moves the pointer by a fixed step in a unit direction, used by
// d-pad repeats. step is in pixels.
func (e *Engine) Nudge(dirX, dirY, step float64) {
	e.Move(dirX*step, dirY*step)
}

// Click resolves the current highlight. Host text inputs are focused,
// other host nodes activated; embedded targets get a click command by
// index followed by a delayed forced refresh, since content navigation
// invalidates injected highlight markup. No-op without a highlight.
func (e *Engine) Click() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasTarget {
		return
	}
	e.armHideTimerLocked()

	target := e.highlighted
	switch target.Kind {
	case element.SurfaceHost:
		if target.Node.TextInput() {
			target.Node.Focus()
		} else {
			target.Node.Activate()
		}
	case element.SurfaceEmbedded:
		if e.embedded == nil {
			return
		}
		index := target.Index
		go func() {
			if err := e.embedded.Click(index); err != nil {
				log.Printf("embedded click: %v", err)
			}
		}()
		time.AfterFunc(e.tuning.ClickRefreshDelay, func() {
			e.registry.Refresh(true)
			e.Touch()
		})
	}
}

// ScrollBy routes a scroll delta to whichever surface is under the
// pointer and schedules a refresh, since scrolling changes which targets
// are in the viewport.
func (e *Engine) ScrollBy(dy float64) {
	e.mu.Lock()
	overPane := e.embedded != nil && e.embedded.SurfaceBox().Contains(e.x, e.y)
	e.armHideTimerLocked()
	e.mu.Unlock()

	if overPane {
		go func() {
			if err := e.embedded.Scroll(dy); err != nil {
				log.Printf("embedded scroll: %v", err)
			}
		}()
	} else if e.hostScr != nil {
		e.hostScr.ScrollBy(dy)
	}
	e.registry.Refresh(false)
}

// ScrollPage scrolls most of a viewport height; dir is -1 (up) or +1 (down).
func (e *Engine) ScrollPage(dir float64) {
	_, h := e.viewport()
	e.ScrollBy(dir * h * e.tuning.PageScrollFraction)
}

// Show makes the pointer visible and arms the auto-hide timer.
func (e *Engine) Show() {
	e.mu.Lock()
	e.showLocked()
	e.mu.Unlock()
}

// Hide hides the pointer and clears the highlight. Position is kept, so
// restoring shows the pointer where it was.
func (e *Engine) Hide() {
	e.mu.Lock()
	e.hideLocked()
	e.mu.Unlock()
}

// Touch rearms the auto-hide timer if the pointer is visible. Called when
// an external event (registry refresh) counts as activity.
func (e *Engine) Touch() {
	e.mu.Lock()
	if e.visible {
		e.armHideTimerLocked()
	}
	e.mu.Unlock()
}

// Stop cancels the auto-hide timer. Used on shutdown and when entering
// background so no stray callback fires into an inactive context.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.hideTimer != nil {
		e.hideTimer.Stop()
		e.hideTimer = nil
	}
	e.mu.Unlock()
}

// Position returns the current pointer position.
func (e *Engine) Position() (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.x, e.y
}

// Visible reports whether the pointer is shown.
func (e *Engine) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

// Highlighted returns the current highlight target, if any.
func (e *Engine) Highlighted() (element.Clickable, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlighted, e.hasTarget
}

// showLocked transitions hidden→visible and rearms the timer.
func (e *Engine) showLocked() {
	if !e.visible {
		e.visible = true
		e.view.SetPosition(e.x, e.y)
		e.view.Show()
	}
	e.armHideTimerLocked()
}

// hideLocked transitions visible→hidden and clears the highlight.
func (e *Engine) hideLocked() {
	if e.hideTimer != nil {
		e.hideTimer.Stop()
		e.hideTimer = nil
	}
	if !e.visible {
		return
	}
	e.visible = false
	e.view.Hide()
	e.clearHighlightLocked()
}

// armHideTimerLocked (re)starts the inactivity countdown.
func (e *Engine) armHideTimerLocked() {
	if e.hideTimer != nil {
		e.hideTimer.Stop()
	}
	e.hideTimer = time.AfterFunc(e.tuning.HideDelay, func() {
		e.mu.Lock()
		e.hideLocked()
		e.mu.Unlock()
	})
}

// resolveHighlightLocked re-resolves the nearest target and hands the
// highlight over when it changed.
func (e *Engine) resolveHighlightLocked() {
	target, ok := e.registry.FindNearest(e.x, e.y, e.tuning.SnapRadius)
	if !ok {
		e.clearHighlightLocked()
		return
	}
	if e.hasTarget && e.highlighted.Same(target) {
		return
	}
	e.clearHighlightLocked()
	e.highlighted = target
	e.hasTarget = true
	e.setHighlightLocked(target, true)
}

// clearHighlightLocked removes the current highlight marker, if any.
func (e *Engine) clearHighlightLocked() {
	if !e.hasTarget {
		return
	}
	e.setHighlightLocked(e.highlighted, false)
	e.highlighted = element.Clickable{}
	e.hasTarget = false
}

// setHighlightLocked applies or removes a highlight marker on a target.
// Embedded commands are fire-and-forget; a stale index does nothing.
func (e *Engine) setHighlightLocked(c element.Clickable, on bool) {
	switch c.Kind {
	case element.SurfaceHost:
		c.Node.SetHighlighted(on)
	case element.SurfaceEmbedded:
		if e.embedded == nil {
			return
		}
		index := c.Index
		go func() {
			if err := e.embedded.Highlight(index, on); err != nil {
				log.Printf("embedded highlight: %v", err)
			}
		}()
	}
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
