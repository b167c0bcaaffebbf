// Package config loads environment configuration and the tuning profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr  = "127.0.0.1:8123"
	defaultDataDir     = "./data"
	defaultWindowTitle = "padglass"
)

// Tuning holds every empirically tuned constant in the input pipeline.
// Values are a matter of feel; validation only insists they are non-zero.
type Tuning struct {
	PollIntervalMs       int     `yaml:"poll-interval-ms"`
	StickDeadzone        int     `yaml:"stick-deadzone"`
	StickThreshold       float64 `yaml:"stick-threshold"`
	CursorSpeed          float64 `yaml:"cursor-speed"`
	DPadStep             float64 `yaml:"dpad-step"`
	DPadFastStep         float64 `yaml:"dpad-fast-step"`
	ScrollStep           float64 `yaml:"scroll-step"`
	ScrollMinDelta       float64 `yaml:"scroll-min-delta"`
	FastTriggerMin       int     `yaml:"fast-trigger-min"`
	RepeatDelayMs        int     `yaml:"repeat-delay-ms"`
	RepeatIntervalMs     int     `yaml:"repeat-interval-ms"`
	SnapRadius           float64 `yaml:"snap-radius"`
	MaxPull              float64 `yaml:"max-pull"`
	HideDelayMs          int     `yaml:"hide-delay-ms"`
	ClickRefreshDelayMs  int     `yaml:"click-refresh-delay-ms"`
	RefreshMinIntervalMs int     `yaml:"refresh-min-interval-ms"`
	MaxEmbedded          int     `yaml:"max-embedded"`
	QueryTimeoutMs       int     `yaml:"query-timeout-ms"`
	KeyMoveIntervalMs    int     `yaml:"key-move-interval-ms"`
	KeyStickTrigger      float64 `yaml:"key-stick-trigger"`
	PageScrollFraction   float64 `yaml:"page-scroll-fraction"`
	MissedFrameLimit     int     `yaml:"missed-frame-limit"`
}

// Config holds runtime configuration values.
type Config struct {
	ListenAddr  string
	DataDir     string
	ProfilePath string
	WindowTitle string
	Tuning      Tuning
}

// DefaultTuning returns the stock feel profile.
func DefaultTuning() Tuning {
	return Tuning{
		PollIntervalMs:       16,
		StickDeadzone:        7849,
		StickThreshold:       0.15,
		CursorSpeed:          14,
		DPadStep:             18,
		DPadFastStep:         54,
		ScrollStep:           60,
		ScrollMinDelta:       8,
		FastTriggerMin:       64,
		RepeatDelayMs:        350,
		RepeatIntervalMs:     80,
		SnapRadius:           96,
		MaxPull:              8,
		HideDelayMs:          3000,
		ClickRefreshDelayMs:  600,
		RefreshMinIntervalMs: 250,
		MaxEmbedded:          300,
		QueryTimeoutMs:       1500,
		KeyMoveIntervalMs:    180,
		KeyStickTrigger:      0.5,
		PageScrollFraction:   0.9,
		MissedFrameLimit:     30,
	}
}

// Load reads configuration from ./data/.env, environment variables, and
// the optional YAML tuning profile.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:  defaultListenAddr,
		DataDir:     defaultDataDir,
		WindowTitle: defaultWindowTitle,
		Tuning:      DefaultTuning(),
	}

	if err := loadEnvFile(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return Config{}, err
	}

	cfg.ListenAddr = envString("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.WindowTitle = envString("WINDOW_TITLE", cfg.WindowTitle)
	cfg.ProfilePath = envString("PROFILE_PATH", filepath.Join(cfg.DataDir, "profile.yaml"))

	tuning, err := loadProfile(cfg.ProfilePath, cfg.Tuning)
	if err != nil {
		return Config{}, err
	}
	cfg.Tuning = tuning

	if err := validateTuning(cfg.Tuning); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadProfile overlays the YAML profile onto the defaults. A missing
// profile file is not an error.
func loadProfile(path string, defaults Tuning) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return Tuning{}, err
	}

	tuning := defaults
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return Tuning{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return tuning, nil
}

// validateTuning rejects zero or negative values that would disable a
// threshold or stall a timer.
func validateTuning(t Tuning) error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"poll-interval-ms", t.PollIntervalMs > 0},
		{"stick-deadzone", t.StickDeadzone > 0},
		{"stick-threshold", t.StickThreshold > 0},
		{"cursor-speed", t.CursorSpeed > 0},
		{"dpad-step", t.DPadStep > 0},
		{"dpad-fast-step", t.DPadFastStep > 0},
		{"scroll-step", t.ScrollStep > 0},
		{"scroll-min-delta", t.ScrollMinDelta > 0},
		{"fast-trigger-min", t.FastTriggerMin > 0 && t.FastTriggerMin <= 255},
		{"repeat-delay-ms", t.RepeatDelayMs > 0},
		{"repeat-interval-ms", t.RepeatIntervalMs > 0},
		{"snap-radius", t.SnapRadius > 0},
		{"max-pull", t.MaxPull > 0},
		{"hide-delay-ms", t.HideDelayMs > 0},
		{"click-refresh-delay-ms", t.ClickRefreshDelayMs > 0},
		{"refresh-min-interval-ms", t.RefreshMinIntervalMs > 0},
		{"max-embedded", t.MaxEmbedded > 0},
		{"query-timeout-ms", t.QueryTimeoutMs > 0},
		{"key-move-interval-ms", t.KeyMoveIntervalMs > 0},
		{"key-stick-trigger", t.KeyStickTrigger > 0},
		{"page-scroll-fraction", t.PageScrollFraction > 0 && t.PageScrollFraction <= 1},
		{"missed-frame-limit", t.MissedFrameLimit > 0},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%s must be positive", c.name)
		}
	}
	return nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
	if key == "" {
		return "", "", false
	}
	return key, value, true
}
