package graphics

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"gochip8/internal/chip8"
)

// HeadlessBackend implements the Backend interface without opening a
// window. Its windows pull frames at the usual 60 Hz cadence and throw
// them away, which is enough for automation and tests.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless
// operation.
type HeadlessWindow struct {
	title      string
	hooks      Hooks
	frames     atomic.Uint64
	frameLimit uint64

	done      chan struct{}
	closeOnce sync.Once
}

// NewHeadlessBackend creates a new headless graphics backend.
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend.
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return errors.New("headless backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a headless "window" (no actual window).
func (b *HeadlessBackend) CreateWindow(title string, hooks Hooks) (Window, error) {
	if !b.initialized {
		return nil, errors.New("backend not initialized")
	}
	return &HeadlessWindow{
		title: title,
		hooks: hooks,
		done:  make(chan struct{}),
	}, nil
}

// Cleanup releases all headless resources.
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true.
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// Name returns the backend name.
func (b *HeadlessBackend) Name() string {
	return "Headless"
}

// SetTitle records the window title.
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// SetFrameLimit makes Run return after n frames. Zero means run until
// Cleanup.
func (w *HeadlessWindow) SetFrameLimit(n uint64) {
	w.frameLimit = n
}

// FrameCount returns the number of frames pulled so far.
func (w *HeadlessWindow) FrameCount() uint64 {
	return w.frames.Load()
}

// Run pulls frames at 60 Hz until Cleanup is called or the frame limit
// is reached.
func (w *HeadlessWindow) Run() error {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	var frame [chip8.DisplaySize]uint8
	for {
		select {
		case <-w.done:
			return nil
		case <-ticker.C:
			if w.hooks.Frame != nil {
				w.hooks.Frame(&frame)
			}
			n := w.frames.Add(1)
			if w.frameLimit > 0 && n >= w.frameLimit {
				return nil
			}
		}
	}
}

// Cleanup stops the window loop.
func (w *HeadlessWindow) Cleanup() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}
