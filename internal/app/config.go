// Package app wires the CHIP-8 machine to configuration, scheduling
// and the graphics backend.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/input"
)

// Config holds all application configuration.
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`

	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration.
type WindowConfig struct {
	Scale      int  `json:"scale"` // window pixels per display cell
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig contains video rendering configuration.
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine", "headless"
	VSync   bool   `json:"vsync"`
}

// InputConfig maps the 16 logical keypad keys and the reset key to
// keyboard key names.
type InputConfig struct {
	Keys     [input.NumKeys]string `json:"keys"`
	ResetKey string                `json:"reset_key"`
}

// EmulationConfig contains emulation pacing settings. The timer tick
// rate is fixed by the machine definition at 60 Hz; CyclesPerSecond
// only changes how fast instructions execute.
type EmulationConfig struct {
	CyclesPerSecond int `json:"cycles_per_second"`
}

// DebugConfig contains debugging options.
type DebugConfig struct {
	Trace      bool `json:"trace"`       // log every executed instruction
	DumpMemory bool `json:"dump_memory"` // hexdump memory after a headless run
}

// NewConfig creates a configuration with default values. The default
// keypad layout maps keys 0-F to X 123 QWE ASD ZC 4RFV.
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale: 10,
		},
		Video: VideoConfig{
			Backend: "ebitengine",
			VSync:   true,
		},
		Input: InputConfig{
			Keys: [input.NumKeys]string{
				"X", "1", "2", "3",
				"Q", "W", "E", "A",
				"S", "D", "Z", "C",
				"4", "R", "F", "V",
			},
			ResetKey: "Y",
		},
		Emulation: EmulationConfig{
			CyclesPerSecond: 700,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// not an error: the defaults are written there instead.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	c.validate()
	c.loaded = true
	return nil
}

// SaveToFile saves the configuration as indented JSON.
func (c *Config) SaveToFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	c.configPath = path
	return nil
}

// validate replaces out-of-range values with defaults.
func (c *Config) validate() {
	if c.Window.Scale < 1 {
		c.Window.Scale = 10
	}
	if c.Emulation.CyclesPerSecond < TickRate {
		c.Emulation.CyclesPerSecond = 700
	}
	if c.Video.Backend == "" {
		c.Video.Backend = "ebitengine"
	}
	defaults := NewConfig()
	for i, name := range c.Input.Keys {
		if name == "" {
			c.Input.Keys[i] = defaults.Input.Keys[i]
		}
	}
	if c.Input.ResetKey == "" {
		c.Input.ResetKey = defaults.Input.ResetKey
	}
}

// IsLoaded returns whether the configuration was loaded from a file.
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
