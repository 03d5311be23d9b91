// Package graphics provides an abstraction layer for different
// rendering backends of the 64x32 monochrome CHIP-8 display.
package graphics

import (
	"fmt"
	"io"

	"gochip8/internal/chip8"
	"gochip8/internal/input"
)

// Backend represents a rendering backend (Ebitengine, headless).
type Backend interface {
	// Initialize initializes the backend.
	Initialize(config Config) error

	// CreateWindow creates a window wired to the given hooks.
	CreateWindow(title string, hooks Hooks) (Window, error)

	// Cleanup releases all resources.
	Cleanup() error

	// IsHeadless returns true if the backend never opens a window.
	IsHeadless() bool

	// Name returns the backend name for identification.
	Name() string
}

// Window presents display frames and polls the keyboard.
type Window interface {
	// SetTitle sets the window title.
	SetTitle(title string)

	// Run drives the window loop and blocks until the window closes.
	Run() error

	// Cleanup releases window resources and unblocks Run.
	Cleanup() error
}

// Hooks connect a window to the emulation side. All hooks may be
// invoked from the window's own goroutine.
type Hooks struct {
	// Frame copies the most recent display buffer into dst.
	Frame func(dst *[chip8.DisplaySize]uint8)

	// Keys receives the state of the 16 logical keypad keys on every
	// input poll.
	Keys func(keys [input.NumKeys]bool)

	// Reset is invoked when the reset key is pressed.
	Reset func()

	// Quit is invoked when the user closes the window.
	Quit func()
}

// Config contains configuration for graphics backends.
type Config struct {
	WindowTitle string
	Scale       int // display pixels per CHIP-8 cell
	Fullscreen  bool
	VSync       bool
	Headless    bool

	// KeyNames maps logical keypad keys 0-F to keyboard key names.
	KeyNames [input.NumKeys]string
	// ResetKey is the keyboard key name that triggers a machine reset.
	ResetKey string
}

// BackendType represents the supported graphics backend types.
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
)

// CreateBackend creates a graphics backend of the specified type.
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}

// WritePPM writes a display buffer as a binary PPM image, scaled up by
// scale. White cells on black background.
func WritePPM(w io.Writer, frame *[chip8.DisplaySize]uint8, scale int) error {
	if scale < 1 {
		scale = 1
	}
	width := chip8.DisplayWidth * scale
	height := chip8.DisplayHeight * scale
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height); err != nil {
		return err
	}

	row := make([]byte, width*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v byte
			if frame[(y/scale)*chip8.DisplayWidth+x/scale] != 0 {
				v = 0xFF
			}
			row[x*3] = v
			row[x*3+1] = v
			row[x*3+2] = v
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
