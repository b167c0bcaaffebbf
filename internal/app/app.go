// Package app wires the input pipeline together and runs the poll loop.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/frudas24/padglass/internal/config"
	"github.com/frudas24/padglass/internal/cursor"
	"github.com/frudas24/padglass/internal/dispatch"
	"github.com/frudas24/padglass/internal/element"
	"github.com/frudas24/padglass/internal/gamepad"
	"github.com/frudas24/padglass/internal/host"
	"github.com/frudas24/padglass/internal/keynav"
	"github.com/frudas24/padglass/internal/repeat"
	"github.com/frudas24/padglass/internal/session"
	"github.com/frudas24/padglass/internal/surface"
)

// Poller produces one controller frame per tick.
type Poller interface {
	// Poll returns the next frame, or false when no device answered.
	Poll() (gamepad.Frame, bool)
}

// Navigator is the navigation collaborator actions are forwarded to.
type Navigator interface {
	// Back navigates one step back.
	Back()
	// Home navigates to the start page.
	Home()
	// Submit confirms the current context.
	Submit()
	// SearchTarget returns the field the on-screen keyboard edits and
	// its current text.
	SearchTarget() (any, string)
	// SubmitSearch writes the final text back to the target field.
	SubmitSearch(target any, text string)
}

// App owns the poll loop and routes dispatched actions to the cursor
// engine or the keyboard navigator depending on capture mode.
type App struct {
	cfg      config.Config
	sess     *session.Session
	poller   Poller
	window   host.Window
	registry *element.Registry
	engine   *cursor.Engine
	keys     *keynav.Navigator
	nav      Navigator
	repeats  *repeat.Scheduler

	dispatcher *dispatch.Dispatcher

	mu     sync.Mutex
	stopCh chan struct{}
	missed int
}

// New wires the application. The keyboard navigator and dispatcher are
// built here so their hooks can close over the app.
func New(cfg config.Config, sess *session.Session, poller Poller, window host.Window, registry *element.Registry, engine *cursor.Engine, nav Navigator) (*App, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if poller == nil {
		return nil, errors.New("poller is required")
	}
	if window == nil {
		return nil, errors.New("window is required")
	}
	if registry == nil {
		return nil, errors.New("element registry is required")
	}
	if engine == nil {
		return nil, errors.New("cursor engine is required")
	}
	if nav == nil {
		return nil, errors.New("navigator is required")
	}

	a := &App{
		cfg:      cfg,
		sess:     sess,
		poller:   poller,
		window:   window,
		registry: registry,
		engine:   engine,
		nav:      nav,
		repeats: repeat.NewScheduler(
			time.Duration(cfg.Tuning.RepeatDelayMs)*time.Millisecond,
			time.Duration(cfg.Tuning.RepeatIntervalMs)*time.Millisecond,
		),
	}

	a.keys = keynav.NewNavigator(keynav.Tuning{
		MoveMinInterval: time.Duration(cfg.Tuning.KeyMoveIntervalMs) * time.Millisecond,
		StickTrigger:    cfg.Tuning.KeyStickTrigger,
	}, a.completeSearch)

	a.dispatcher = dispatch.New(sess, a, a.repeats, a, dispatch.Tuning{
		StickThreshold: cfg.Tuning.StickThreshold,
		ScrollStep:     cfg.Tuning.ScrollStep,
		ScrollMinDelta: cfg.Tuning.ScrollMinDelta,
		FastTriggerMin: uint8(cfg.Tuning.FastTriggerMin),
	})

	return a, nil
}

// Start launches the poll loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopCh != nil {
		return errors.New("already started")
	}
	a.stopCh = make(chan struct{})
	go a.loop(a.stopCh)
	a.registry.Refresh(true)
	return nil
}

// Stop halts polling and cancels every outstanding timer.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()
	a.repeats.ClearAll()
	a.engine.Stop()
}

// SetBackground flips background mode. Entering background synchronously
// clears repeats and the auto-hide timer so nothing fires into an
// inactive context; a query already in flight is left to the registry's
// epoch check.
func (a *App) SetBackground(bg bool) {
	a.sess.SetBackground(bg)
	if bg {
		a.repeats.ClearAll()
		a.engine.Stop()
		a.engine.Hide()
	}
}

// OnNav receives pane navigation lifecycle phases.
func (a *App) OnNav(phase string) {
	switch phase {
	case surface.NavFinished:
		// New content invalidates injected highlight markup.
		a.registry.Refresh(true)
		a.engine.Touch()
	case surface.NavFailed:
		log.Printf("pane navigation failed")
	}
}

// Keyboard returns the on-screen keyboard navigator for rendering.
func (a *App) Keyboard() *keynav.Navigator {
	return a.keys
}

// loop runs poll+dispatch at the configured cadence until stopped.
func (a *App) loop(stop chan struct{}) {
	ticker := time.NewTicker(time.Duration(a.cfg.Tuning.PollIntervalMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick polls once and dispatches. A missing frame is skipped; after the
// configured run of consecutive misses, held repeats are cleared since
// release edges can no longer arrive.
func (a *App) tick() {
	frame, ok := a.poller.Poll()
	if !ok {
		a.missed++
		if a.missed == a.cfg.Tuning.MissedFrameLimit {
			a.repeats.ClearAll()
		}
		return
	}
	a.missed = 0
	a.dispatcher.Dispatch(frame)
}

// IsVisible implements dispatch.WindowOps.
func (a *App) IsVisible() bool {
	return a.window.IsVisible()
}

// Toggle implements dispatch.WindowOps. Hiding the overlay clears
// repeats and the cursor's timers.
func (a *App) Toggle() {
	a.window.Toggle()
	if !a.window.IsVisible() {
		a.repeats.ClearAll()
		a.engine.Stop()
		a.engine.Hide()
	}
}

// Close implements dispatch.WindowOps.
func (a *App) Close() {
	a.window.Close()
}

// Action implements dispatch.Sink: one named action per button edge.
func (a *App) Action(act dispatch.Action) {
	if a.sess.Capture() == session.CaptureKeyboard {
		a.keyboardAction(act)
		return
	}
	a.cursorAction(act)
}

// cursorAction handles actions while the cursor owns input.
func (a *App) cursorAction(act dispatch.Action) {
	step := a.cfg.Tuning.DPadStep
	switch act {
	case dispatch.ActionClick:
		a.engine.Click()
	case dispatch.ActionBack:
		a.nav.Back()
	case dispatch.ActionHome:
		a.nav.Home()
	case dispatch.ActionSearch:
		a.openKeyboard()
	case dispatch.ActionPageUp:
		a.engine.ScrollPage(-1)
	case dispatch.ActionPageDown:
		a.engine.ScrollPage(1)
	case dispatch.ActionStart:
		a.nav.Submit()
	case dispatch.ActionCursorUp:
		a.engine.Nudge(0, -1, step)
	case dispatch.ActionCursorDown:
		a.engine.Nudge(0, 1, step)
	case dispatch.ActionCursorLeft:
		a.engine.Nudge(-1, 0, step)
	case dispatch.ActionCursorRight:
		a.engine.Nudge(1, 0, step)
	case dispatch.ActionCursorUp.Fast():
		a.engine.Nudge(0, -1, a.cfg.Tuning.DPadFastStep)
	case dispatch.ActionCursorDown.Fast():
		a.engine.Nudge(0, 1, a.cfg.Tuning.DPadFastStep)
	case dispatch.ActionCursorLeft.Fast():
		a.engine.Nudge(-1, 0, a.cfg.Tuning.DPadFastStep)
	case dispatch.ActionCursorRight.Fast():
		a.engine.Nudge(1, 0, a.cfg.Tuning.DPadFastStep)
	}
}

// keyboardAction handles actions while the keyboard owns input.
func (a *App) keyboardAction(act dispatch.Action) {
	switch act {
	case dispatch.ActionClick:
		a.keys.TypeSelected()
	case dispatch.ActionBack:
		a.keys.Backspace()
	case dispatch.ActionHome:
		a.keys.Space()
	case dispatch.ActionSearch:
		a.keys.SwitchLayout()
	case dispatch.ActionPageUp:
		a.cancelKeyboard()
	case dispatch.ActionStart:
		a.keys.Submit()
	case dispatch.ActionCursorUp, dispatch.ActionCursorUp.Fast():
		a.keys.Navigate(keynav.Up)
	case dispatch.ActionCursorDown, dispatch.ActionCursorDown.Fast():
		a.keys.Navigate(keynav.Down)
	case dispatch.ActionCursorLeft, dispatch.ActionCursorLeft.Fast():
		a.keys.Navigate(keynav.Left)
	case dispatch.ActionCursorRight, dispatch.ActionCursorRight.Fast():
		a.keys.Navigate(keynav.Right)
	}
}

// CursorMove implements dispatch.Sink: analog movement routing.
func (a *App) CursorMove(dx, dy float64) {
	if a.sess.Capture() == session.CaptureKeyboard {
		a.keys.HandleStick(dx, dy)
		return
	}
	speed := a.cfg.Tuning.CursorSpeed
	a.engine.Move(dx*speed, dy*speed)
}

// Scroll implements dispatch.Sink: analog scroll routing.
func (a *App) Scroll(dy float64) {
	if a.sess.Capture() == session.CaptureKeyboard {
		return
	}
	a.engine.ScrollBy(dy)
}

// openKeyboard switches capture to the on-screen keyboard. The cursor is
// suppressed, not destroyed; its position survives.
func (a *App) openKeyboard() {
	target, text := a.nav.SearchTarget()
	a.repeats.ClearAll()
	a.engine.Stop()
	a.engine.Hide()
	a.keys.Show(target, text)
	a.sess.SetCapture(session.CaptureKeyboard)
}

// cancelKeyboard discards the keyboard buffer and restores the cursor.
func (a *App) cancelKeyboard() {
	a.keys.Cancel()
	a.restoreCursor()
}

// completeSearch is the keyboard's completion hook: write the text back,
// then restore cursor capture.
func (a *App) completeSearch(target any, text string) {
	a.nav.SubmitSearch(target, text)
	a.restoreCursor()
}

// restoreCursor returns input to the cursor after keyboard capture ends.
func (a *App) restoreCursor() {
	a.repeats.ClearAll()
	a.sess.SetCapture(session.CaptureCursor)
	a.engine.Show()
}
