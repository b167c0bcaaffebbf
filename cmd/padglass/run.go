// Package main starts the padglass overlay controller.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/frudas24/padglass/internal/app"
	"github.com/frudas24/padglass/internal/config"
	"github.com/frudas24/padglass/internal/cursor"
	"github.com/frudas24/padglass/internal/element"
	"github.com/frudas24/padglass/internal/gamepad"
	"github.com/frudas24/padglass/internal/host"
	"github.com/frudas24/padglass/internal/session"
	"github.com/frudas24/padglass/internal/surface"
	"github.com/frudas24/padglass/internal/tray"
)

// overlayWindow is the window capability set run() wires together.
type overlayWindow interface {
	host.Window
	host.Viewport
}

// run wires the application and blocks until shutdown.
func run(noTray bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logStartup(cfg)

	quitCh := make(chan struct{})
	var quitOnce sync.Once
	requestQuit := func() {
		quitOnce.Do(func() { close(quitCh) })
	}

	window := openWindow(cfg.WindowTitle, requestQuit)
	viewport := func() (float64, float64) { return window.Size() }

	sess := session.New()
	sampler := gamepad.NewSampler(openDevice(), cfg.Tuning.StickDeadzone)

	// The bridge is created before the app; the nav callback resolves
	// through this pointer once wiring completes.
	var appInstance *app.App
	onNav := func(phase string) {
		if appInstance != nil {
			appInstance.OnNav(phase)
		}
	}
	bridge := surface.NewBridge(
		time.Duration(cfg.Tuning.QueryTimeoutMs)*time.Millisecond,
		func() element.Box {
			w, h := viewport()
			return element.Box{Right: w, Bottom: h}
		},
		onNav,
	)

	registry := element.NewRegistry(nil, bridge, viewport,
		time.Duration(cfg.Tuning.RefreshMinIntervalMs)*time.Millisecond,
		cfg.Tuning.MaxEmbedded)

	view := &overlayState{}
	engine := cursor.NewEngine(registry, bridge, view, nil, viewport, cursor.Tuning{
		SnapRadius:         cfg.Tuning.SnapRadius,
		MaxPull:            cfg.Tuning.MaxPull,
		HideDelay:          time.Duration(cfg.Tuning.HideDelayMs) * time.Millisecond,
		ClickRefreshDelay:  time.Duration(cfg.Tuning.ClickRefreshDelayMs) * time.Millisecond,
		PageScrollFraction: cfg.Tuning.PageScrollFraction,
	})

	nav := &paneNav{bridge: bridge}

	appInstance, err = app.New(cfg, sess, sampler, window, registry, engine, nav)
	if err != nil {
		return err
	}
	if err := appInstance.Start(); err != nil {
		return err
	}
	defer appInstance.Stop()

	mux := http.NewServeMux()
	mux.Handle("/pane", bridge)
	mux.HandleFunc("/state", stateHandler(view, appInstance, bridge))
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	if !noTray {
		trayIcon := tray.New(appInstance, "padglass overlay controller")
		go trayIcon.Run()
		defer trayIcon.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	select {
	case <-ctx.Done():
	case <-quitCh:
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openWindow binds the native overlay window, falling back to an
// in-memory window when no native backend is available.
func openWindow(title string, onClose func()) overlayWindow {
	native, err := host.NewWindow(title, onClose)
	if err != nil {
		log.Printf("window check: fallback (%v)", err)
		return host.NewStateWindow(1280, 720, onClose)
	}
	log.Printf("window check: ok (%q)", title)
	return native
}

// openDevice binds the controller, falling back to a silent device so
// the pipeline runs and picks the controller up via reconnect handling.
func openDevice() gamepad.Device {
	dev, err := gamepad.NewDevice()
	if err != nil {
		log.Printf("gamepad check: missing (%v)", err)
		return silentDevice{}
	}
	log.Printf("gamepad check: ok")
	return dev
}

// silentDevice reports every read as a miss.
type silentDevice struct{}

// Read always misses.
func (silentDevice) Read() (gamepad.RawState, bool) {
	return gamepad.RawState{}, false
}

// paneNav routes navigation actions to the content pane.
type paneNav struct {
	bridge *surface.Bridge

	mu         sync.Mutex
	lastSearch string
}

// Back navigates the pane one step back.
func (n *paneNav) Back() {
	if err := n.bridge.Back(); err != nil {
		log.Printf("nav back: %v", err)
	}
}

// Home loads the pane's start page.
func (n *paneNav) Home() {
	if err := n.bridge.Home(); err != nil {
		log.Printf("nav home: %v", err)
	}
}

// Submit confirms the pane's current context.
func (n *paneNav) Submit() {
	if err := n.bridge.Submit(); err != nil {
		log.Printf("nav submit: %v", err)
	}
}

// SearchTarget returns the pane search field and its last text.
func (n *paneNav) SearchTarget() (any, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return "pane-search", n.lastSearch
}

// SubmitSearch runs a pane search with the final keyboard text.
func (n *paneNav) SubmitSearch(target any, text string) {
	n.mu.Lock()
	n.lastSearch = text
	n.mu.Unlock()
	if err := n.bridge.Search(text); err != nil {
		log.Printf("nav search: %v", err)
	}
}

// overlayState is the cursor view: it stores what the renderer should
// draw and is exposed read-only through the state endpoint.
type overlayState struct {
	mu      sync.Mutex
	x, y    float64
	visible bool
}

// SetPosition stores the pointer position.
func (v *overlayState) SetPosition(x, y float64) {
	v.mu.Lock()
	v.x, v.y = x, y
	v.mu.Unlock()
}

// Show marks the pointer visible.
func (v *overlayState) Show() {
	v.mu.Lock()
	v.visible = true
	v.mu.Unlock()
}

// Hide marks the pointer hidden.
func (v *overlayState) Hide() {
	v.mu.Lock()
	v.visible = false
	v.mu.Unlock()
}

// snapshot returns the renderable cursor state.
func (v *overlayState) snapshot() (float64, float64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.x, v.y, v.visible
}

// stateHandler serves the overlay state as JSON for the renderer.
func stateHandler(view *overlayState, a *app.App, bridge *surface.Bridge) http.HandlerFunc {
	type cursorState struct {
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		Visible bool    `json:"visible"`
	}
	type keyboardState struct {
		Visible  bool   `json:"visible"`
		Layout   string `json:"layout"`
		Selected int    `json:"selected"`
		Buffer   string `json:"buffer"`
	}
	type state struct {
		Cursor        cursorState   `json:"cursor"`
		Keyboard      keyboardState `json:"keyboard"`
		PaneConnected bool          `json:"paneConnected"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		x, y, visible := view.snapshot()
		keys := a.Keyboard()
		s := state{
			Cursor: cursorState{X: x, Y: y, Visible: visible},
			Keyboard: keyboardState{
				Visible:  keys.Visible(),
				Layout:   keys.Layout(),
				Selected: keys.Selected(),
				Buffer:   keys.Buffer(),
			},
			PaneConnected: bridge.Connected(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s); err != nil {
			log.Printf("state encode: %v", err)
		}
	}
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints startup checks and connection info.
func logStartup(cfg config.Config) {
	log.Printf("padglass starting")
	logEnvStatus(cfg)
	logProfileStatus(cfg.ProfilePath)
	logListenStatus(cfg.ListenAddr)
}

// logEnvStatus reports whether a .env file was found.
func logEnvStatus(cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		log.Printf("env check: ok (%s)", envPath)
	} else {
		log.Printf("env check: missing (%s)", envPath)
	}
}

// logProfileStatus reports whether a tuning profile was found.
func logProfileStatus(path string) {
	if fileExists(path) {
		log.Printf("profile check: ok (%s)", path)
	} else {
		log.Printf("profile check: defaults (%s)", path)
	}
}

// logListenStatus reports the listen address and the pane endpoint.
func logListenStatus(addr string) {
	log.Printf("listen addr: %s", addr)
	name, port, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if name == "" || name == "0.0.0.0" || name == "::" {
		name = "localhost"
	}
	log.Printf("pane endpoint: ws://%s/pane", net.JoinHostPort(name, port))
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
