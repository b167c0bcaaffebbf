package app

import (
	"sync"
	"testing"
	"time"

	"github.com/frudas24/padglass/internal/config"
	"github.com/frudas24/padglass/internal/cursor"
	"github.com/frudas24/padglass/internal/dispatch"
	"github.com/frudas24/padglass/internal/element"
	"github.com/frudas24/padglass/internal/gamepad"
	"github.com/frudas24/padglass/internal/host"
	"github.com/frudas24/padglass/internal/session"
	"github.com/frudas24/padglass/internal/surface"
)

// fakePoller replays a queue of frames; an exhausted queue reports misses.
type fakePoller struct {
	mu     sync.Mutex
	frames []gamepad.Frame
}

func (p *fakePoller) push(f gamepad.Frame) {
	p.mu.Lock()
	p.frames = append(p.frames, f)
	p.mu.Unlock()
}

func (p *fakePoller) Poll() (gamepad.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return gamepad.Frame{}, false
	}
	f := p.frames[0]
	p.frames = p.frames[1:]
	return f, true
}

// fakeNav records navigation calls.
type fakeNav struct {
	mu          sync.Mutex
	backs       int
	homes       int
	submits     int
	searchText  string
	submitted   []string
	submittedTo []any
}

func (n *fakeNav) Back() {
	n.mu.Lock()
	n.backs++
	n.mu.Unlock()
}

func (n *fakeNav) Home() {
	n.mu.Lock()
	n.homes++
	n.mu.Unlock()
}

func (n *fakeNav) Submit() {
	n.mu.Lock()
	n.submits++
	n.mu.Unlock()
}

func (n *fakeNav) SearchTarget() (any, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return "search-field", n.searchText
}

func (n *fakeNav) SubmitSearch(target any, text string) {
	n.mu.Lock()
	n.submitted = append(n.submitted, text)
	n.submittedTo = append(n.submittedTo, target)
	n.mu.Unlock()
}

// nullView satisfies cursor.View without rendering anything.
type nullView struct{}

func (nullView) SetPosition(x, y float64) {}
func (nullView) Show()                    {}
func (nullView) Hide()                    {}

// countScanner reports how many host scans happened.
type countScanner struct {
	mu    sync.Mutex
	scans int
}

func (s *countScanner) ScanClickables() []element.Clickable {
	s.mu.Lock()
	s.scans++
	s.mu.Unlock()
	return nil
}

func (s *countScanner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

// testFixture bundles one fully wired app with its fakes.
type testFixture struct {
	app     *App
	poller  *fakePoller
	nav     *fakeNav
	window  *host.StateWindow
	scanner *countScanner
	engine  *cursor.Engine
	sess    *session.Session
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	cfg := config.Config{Tuning: config.DefaultTuning()}
	cfg.Tuning.MissedFrameLimit = 3

	sess := session.New()
	poller := &fakePoller{}
	window := host.NewStateWindow(1280, 720, nil)
	viewport := func() (float64, float64) { return window.Size() }
	scanner := &countScanner{}
	registry := element.NewRegistry(scanner, nil, viewport, time.Millisecond, cfg.Tuning.MaxEmbedded)
	engine := cursor.NewEngine(registry, nil, nullView{}, nil, viewport, cursor.Tuning{
		SnapRadius:         cfg.Tuning.SnapRadius,
		MaxPull:            cfg.Tuning.MaxPull,
		HideDelay:          time.Hour,
		ClickRefreshDelay:  time.Millisecond,
		PageScrollFraction: cfg.Tuning.PageScrollFraction,
	})
	nav := &fakeNav{}

	a, err := New(cfg, sess, poller, window, registry, engine, nav)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return &testFixture{app: a, poller: poller, nav: nav, window: window, scanner: scanner, engine: engine, sess: sess}
}

// TestNew_RequiresCollaborators verifies constructor validation.
func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(config.Config{}, nil, nil, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for missing collaborators")
	}
}

// TestAction_CursorCaptureRoutesNavigation verifies face-button actions
// reach the navigation collaborator while the cursor owns input.
func TestAction_CursorCaptureRoutesNavigation(t *testing.T) {
	fx := newFixture(t)

	fx.app.Action(dispatch.ActionBack)
	fx.app.Action(dispatch.ActionHome)
	fx.app.Action(dispatch.ActionStart)

	if fx.nav.backs != 1 || fx.nav.homes != 1 || fx.nav.submits != 1 {
		t.Fatalf("expected one call each, got back=%d home=%d submit=%d",
			fx.nav.backs, fx.nav.homes, fx.nav.submits)
	}
}

// TestAction_SearchOpensKeyboard verifies the search action switches
// capture to the keyboard, seeds it with the field text, and suppresses
// the cursor.
func TestAction_SearchOpensKeyboard(t *testing.T) {
	fx := newFixture(t)
	fx.nav.searchText = "seed"
	fx.engine.Show()

	fx.app.Action(dispatch.ActionSearch)

	if fx.sess.Capture() != session.CaptureKeyboard {
		t.Fatalf("expected keyboard capture, got %q", fx.sess.Capture())
	}
	if !fx.app.Keyboard().Visible() {
		t.Fatalf("keyboard must be visible")
	}
	if got := fx.app.Keyboard().Buffer(); got != "seed" {
		t.Fatalf("expected seeded buffer, got %q", got)
	}
	if fx.engine.Visible() {
		t.Fatalf("cursor must be suppressed during keyboard capture")
	}
}

// TestAction_KeyboardCaptureRoutesKeys verifies button actions edit the
// keyboard instead of driving the cursor or navigation.
func TestAction_KeyboardCaptureRoutesKeys(t *testing.T) {
	fx := newFixture(t)
	fx.app.Action(dispatch.ActionSearch)

	fx.app.Action(dispatch.ActionClick) // types "a"
	fx.app.Action(dispatch.ActionCursorRight)
	fx.app.Action(dispatch.ActionClick) // types "b"
	fx.app.Action(dispatch.ActionHome)  // space
	fx.app.Action(dispatch.ActionBack)  // backspace

	if got := fx.app.Keyboard().Buffer(); got != "ab" {
		t.Fatalf("expected buffer %q, got %q", "ab", got)
	}
	if fx.nav.backs != 0 || fx.nav.homes != 0 {
		t.Fatalf("navigation must not receive keyboard-mode actions")
	}
}

// TestAction_KeyboardSubmitWritesBack verifies submit hands the final
// text to the target field and restores cursor capture.
func TestAction_KeyboardSubmitWritesBack(t *testing.T) {
	fx := newFixture(t)
	fx.nav.searchText = "wi"
	fx.app.Action(dispatch.ActionSearch)
	fx.app.Action(dispatch.ActionClick) // "a"

	fx.app.Action(dispatch.ActionStart)

	if len(fx.nav.submitted) != 1 || fx.nav.submitted[0] != "wia" {
		t.Fatalf("expected submitted text %q, got %v", "wia", fx.nav.submitted)
	}
	if fx.nav.submittedTo[0] != "search-field" {
		t.Fatalf("expected original target, got %v", fx.nav.submittedTo[0])
	}
	if fx.sess.Capture() != session.CaptureCursor {
		t.Fatalf("capture must return to cursor after submit")
	}
	if !fx.engine.Visible() {
		t.Fatalf("cursor must reappear after submit")
	}
}

// TestAction_KeyboardCancelDiscards verifies cancel writes nothing back.
func TestAction_KeyboardCancelDiscards(t *testing.T) {
	fx := newFixture(t)
	fx.app.Action(dispatch.ActionSearch)
	fx.app.Action(dispatch.ActionClick)

	fx.app.Action(dispatch.ActionPageUp)

	if len(fx.nav.submitted) != 0 {
		t.Fatalf("cancel must not write back, got %v", fx.nav.submitted)
	}
	if fx.sess.Capture() != session.CaptureCursor {
		t.Fatalf("capture must return to cursor after cancel")
	}
}

// TestCursorMove_RoutesByCapture verifies analog movement goes to the
// pointer in cursor mode and to grid navigation in keyboard mode.
func TestCursorMove_RoutesByCapture(t *testing.T) {
	fx := newFixture(t)

	x0, y0 := fx.engine.Position()
	fx.app.CursorMove(1, 0)
	x1, _ := fx.engine.Position()
	if x1 <= x0 {
		t.Fatalf("cursor mode must move the pointer, %v -> %v (y %v)", x0, x1, y0)
	}

	fx.app.Action(dispatch.ActionSearch)
	fx.app.CursorMove(1, 0)
	if got := fx.app.Keyboard().Selected(); got != 1 {
		t.Fatalf("keyboard mode must move the selection, got %d", got)
	}
	x2, _ := fx.engine.Position()
	if x2 != x1 {
		t.Fatalf("pointer must not move in keyboard mode, %v -> %v", x1, x2)
	}
}

// TestTick_MissedFrameRunClearsRepeats verifies a held repeat is released
// after the configured run of device read failures.
func TestTick_MissedFrameRunClearsRepeats(t *testing.T) {
	fx := newFixture(t)

	fx.poller.push(gamepad.Frame{Buttons: gamepad.BtnDPadUp})
	fx.app.tick()
	if !fx.app.repeats.Active(gamepad.BtnDPadUp) {
		t.Fatalf("d-pad press must arm a repeat")
	}

	// Two misses are tolerated; the third clears.
	fx.app.tick()
	fx.app.tick()
	if !fx.app.repeats.Active(gamepad.BtnDPadUp) {
		t.Fatalf("repeat must survive short miss runs")
	}
	fx.app.tick()
	if fx.app.repeats.Active(gamepad.BtnDPadUp) {
		t.Fatalf("repeat must be cleared after the miss limit")
	}
}

// TestToggle_HidingClearsCursorAndRepeats verifies hiding the overlay
// leaves no pending repeat or visible pointer behind.
func TestToggle_HidingClearsCursorAndRepeats(t *testing.T) {
	fx := newFixture(t)
	fx.engine.Show()
	fx.app.repeats.Start(gamepad.BtnDPadDown, func() {})

	fx.app.Toggle()

	if fx.window.IsVisible() {
		t.Fatalf("toggle must hide a visible window")
	}
	if fx.engine.Visible() {
		t.Fatalf("pointer must hide with the overlay")
	}
	if fx.app.repeats.Active(gamepad.BtnDPadDown) {
		t.Fatalf("repeats must be cleared when the overlay hides")
	}
}

// TestSetBackground_StopsActivity verifies entering background clears
// repeats and hides the pointer.
func TestSetBackground_StopsActivity(t *testing.T) {
	fx := newFixture(t)
	fx.engine.Show()
	fx.app.repeats.Start(gamepad.BtnDPadLeft, func() {})

	fx.app.SetBackground(true)

	if !fx.sess.Background() {
		t.Fatalf("session must record background mode")
	}
	if fx.engine.Visible() || fx.app.repeats.Active(gamepad.BtnDPadLeft) {
		t.Fatalf("background must stop cursor and repeats")
	}
}

// TestOnNav_FinishedForcesRescan verifies a completed pane navigation
// triggers a forced element refresh.
func TestOnNav_FinishedForcesRescan(t *testing.T) {
	fx := newFixture(t)
	before := fx.scanner.count()

	fx.app.OnNav(surface.NavFinished)

	if fx.scanner.count() != before+1 {
		t.Fatalf("navigation end must force a host rescan")
	}

	fx.app.OnNav(surface.NavFailed)
	if fx.scanner.count() != before+1 {
		t.Fatalf("a failed navigation must not rescan")
	}
}

// TestNudge_FastVariantUsesFastStep verifies fast d-pad actions cover
// more distance than plain ones.
func TestNudge_FastVariantUsesFastStep(t *testing.T) {
	fx := newFixture(t)

	x0, _ := fx.engine.Position()
	fx.app.Action(dispatch.ActionCursorRight)
	x1, _ := fx.engine.Position()
	fx.app.Action(dispatch.ActionCursorRight.Fast())
	x2, _ := fx.engine.Position()

	if (x1 - x0) <= 0 {
		t.Fatalf("plain nudge must move right")
	}
	if (x2 - x1) <= (x1 - x0) {
		t.Fatalf("fast nudge must cover more distance: %v vs %v", x2-x1, x1-x0)
	}
}

// TestStartStop_Lifecycle verifies the poll loop starts once and stops
// cleanly.
func TestStartStop_Lifecycle(t *testing.T) {
	fx := newFixture(t)

	if err := fx.app.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := fx.app.Start(); err == nil {
		t.Fatalf("second start must fail")
	}
	fx.app.Stop()

	if err := fx.app.Start(); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	fx.app.Stop()
}
