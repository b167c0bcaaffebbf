// Package element tracks the clickable targets under the virtual cursor.
package element

import (
	"log"
	"math"
	"sync"
	"time"
)

// minTargetSize drops embedded elements too small to aim at, in pixels.
const minTargetSize = 4

// Registry merges host and embedded targets into one viewport-coordinate
// set. Embedded discovery is asynchronous; an epoch token discards results
// that arrive after a newer refresh or a reset superseded them.
type Registry struct {
	mu          sync.RWMutex
	host        HostScanner
	embedded    EmbeddedSurface
	viewport    func() (float64, float64)
	minInterval time.Duration
	maxEmbedded int
	now         func() time.Time

	hostEls     []Clickable
	embEls      []Clickable
	epoch       uint64
	lastRefresh time.Time
}

// NewRegistry returns a registry over the two element sources. viewport
// reports the current overlay client size; minInterval throttles refreshes;
// maxEmbedded caps how many embedded targets are kept per refresh.
func NewRegistry(host HostScanner, embedded EmbeddedSurface, viewport func() (float64, float64), minInterval time.Duration, maxEmbedded int) *Registry {
	return &Registry{
		host:        host,
		embedded:    embedded,
		viewport:    viewport,
		minInterval: minInterval,
		maxEmbedded: maxEmbedded,
		now:         time.Now,
	}
}

// SetNowFunc overrides the clock used for throttling.
func (r *Registry) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		r.now = fn
	}
}

// Refresh rescans the host surface synchronously and queries the embedded
// pane in the background. forceStyleReinit bypasses the throttle and asks
// the pane to rebuild its highlight styling (needed after a navigation
// invalidates injected markup). A failed embedded query keeps the previous
// embedded set so the cursor does not flicker to nothing mid-navigation.
func (r *Registry) Refresh(forceStyleReinit bool) {
	r.mu.Lock()
	now := r.now()
	if !forceStyleReinit && !r.lastRefresh.IsZero() && now.Sub(r.lastRefresh) < r.minInterval {
		r.mu.Unlock()
		return
	}
	r.lastRefresh = now
	r.epoch++
	epoch := r.epoch
	if r.host != nil {
		r.hostEls = r.host.ScanClickables()
	}
	r.mu.Unlock()

	if r.embedded == nil {
		return
	}
	go r.queryEmbedded(epoch, forceStyleReinit)
}

// queryEmbedded runs one embedded enumeration and applies it if still
// relevant. Runs outside the polling tick.
func (r *Registry) queryEmbedded(epoch uint64, forceStyleReinit bool) {
	remote, err := r.embedded.QueryElements(forceStyleReinit)
	if err != nil {
		// Retain the last-known embedded set; the next refresh retries.
		log.Printf("element query: %v", err)
		return
	}

	offset := r.embedded.SurfaceBox()
	vw, vh := r.viewport()
	view := Box{Right: vw, Bottom: vh}

	els := make([]Clickable, 0, len(remote))
	for _, re := range remote {
		if re.Box.Width() < minTargetSize || re.Box.Height() < minTargetSize {
			continue
		}
		box := re.Box.Translate(offset.Left, offset.Top)
		if !box.Intersects(view) {
			continue
		}
		els = append(els, Clickable{Kind: SurfaceEmbedded, Index: re.Index, Box: box})
		if len(els) >= r.maxEmbedded {
			break
		}
	}

	r.mu.Lock()
	if r.epoch == epoch {
		r.embEls = els
	}
	r.mu.Unlock()
}

// FindNearest resolves the target at (x, y): a containing box wins over any
// center distance; otherwise the closest center within maxRadius. The second
// return is false when nothing qualifies.
func (r *Registry) FindNearest(x, y, maxRadius float64) (Clickable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best        Clickable
		found       bool
		containing  bool
		bestArea    float64
		bestDistSq  float64
		maxRadiusSq = maxRadius * maxRadius
	)

	consider := func(c Clickable) {
		if c.Box.Contains(x, y) {
			area := c.Box.Width() * c.Box.Height()
			if !containing || area < bestArea {
				best, found, containing, bestArea = c, true, true, area
			}
			return
		}
		if containing {
			return
		}
		cx, cy := c.Center()
		distSq := (cx-x)*(cx-x) + (cy-y)*(cy-y)
		if distSq > maxRadiusSq {
			return
		}
		if !found || distSq < bestDistSq {
			best, found, bestDistSq = c, true, distSq
		}
	}

	for _, c := range r.hostEls {
		consider(c)
	}
	for _, c := range r.embEls {
		consider(c)
	}
	return best, found
}

// Elements returns a snapshot of all tracked targets.
func (r *Registry) Elements() []Clickable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Clickable, 0, len(r.hostEls)+len(r.embEls))
	out = append(out, r.hostEls...)
	out = append(out, r.embEls...)
	return out
}

// Reset drops every tracked target and invalidates in-flight queries.
// Used when leaving into a different top-level view.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.hostEls = nil
	r.embEls = nil
	r.epoch++
	r.mu.Unlock()
}

// Distance returns the euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
