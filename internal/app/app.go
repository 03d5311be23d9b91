package app

import (
	"context"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/chip8"
	"gochip8/internal/graphics"
	"gochip8/internal/input"
	"gochip8/internal/rom"
)

// Application is the main application container that wires together the
// machine, keypad, emulation loop and graphics backend.
type Application struct {
	logger *log.Logger
	config *Config

	machine  *chip8.Machine
	keypad   *input.Keypad
	emulator *Emulator

	backend graphics.Backend
	window  graphics.Window

	romName string
}

// NewApplication creates an application from the given configuration.
func NewApplication(logger *log.Logger, config *Config) *Application {
	keypad := input.NewKeypad()
	machine := chip8.New(keypad)

	a := &Application{
		logger:   logger,
		config:   config,
		machine:  machine,
		keypad:   keypad,
		emulator: NewEmulator(logger, machine, config.Emulation.CyclesPerSecond),
	}

	if config.Debug.Trace {
		machine.SetTracer(a.traceInstruction)
	}
	return a
}

// LoadROM loads a ROM file into the machine program area.
func (a *Application) LoadROM(path string) error {
	image, err := rom.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	if err := a.machine.LoadProgram(image.Data()); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	a.romName = image.Name()

	a.logger.Info("ROM loaded",
		log.String("name", image.Name()),
		log.Int("size", image.Size()),
	)
	return nil
}

// Run starts the application with a window. The emulation loop runs on
// its own goroutine so that a key-wait busy poll in the machine never
// blocks rendering; the window keeps the keypad snapshot fresh through
// the input hook.
func (a *Application) Run(ctx context.Context) error {
	backend, err := graphics.CreateBackend(graphics.BackendType(a.config.Video.Backend))
	if err != nil {
		return err
	}
	a.backend = backend

	if err := backend.Initialize(a.graphicsConfig()); err != nil {
		return fmt.Errorf("initializing %s backend: %w", backend.Name(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hooks := graphics.Hooks{
		Frame: a.emulator.CopyFrame,
		Keys:  a.keypad.SetKeys,
		Reset: a.emulator.RequestReset,
		Quit:  cancel,
	}

	window, err := backend.CreateWindow(a.windowTitle(), hooks)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	a.window = window

	go a.emulator.Run(ctx)

	a.logger.Info("starting emulation",
		log.String("backend", backend.Name()),
		log.Int("cycles_per_second", a.config.Emulation.CyclesPerSecond),
	)

	err = window.Run()
	cancel()
	a.emulator.Stop()
	if err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// RunHeadless runs a fixed number of frames without a window, then
// writes the final display to frameFile as a PPM image if requested.
// Frames are stepped synchronously so runs are deterministic.
func (a *Application) RunHeadless(ctx context.Context, frames uint64, frameFile string) error {
	a.logger.Info("starting headless emulation",
		log.Int("frames", int(frames)),
		log.Int("cycles_per_second", a.config.Emulation.CyclesPerSecond),
	)

	for range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.emulator.StepFrame()
		if a.emulator.Halted() {
			break
		}
	}

	if frameFile != "" {
		if err := a.writeFrameFile(frameFile); err != nil {
			return err
		}
	}
	if a.config.Debug.DumpMemory {
		if err := a.machine.DumpMemory(os.Stdout); err != nil {
			return fmt.Errorf("dumping memory: %w", err)
		}
	}

	a.logger.Info("headless emulation finished",
		log.Int("frames", int(a.emulator.Frames())),
	)
	return nil
}

// Cleanup releases backend resources.
func (a *Application) Cleanup() {
	if a.window != nil {
		if err := a.window.Cleanup(); err != nil {
			a.logger.Error("cleaning up window", log.Err(err))
		}
	}
	if a.backend != nil {
		if err := a.backend.Cleanup(); err != nil {
			a.logger.Error("cleaning up backend", log.Err(err))
		}
	}
}

func (a *Application) writeFrameFile(path string) error {
	var frame [chip8.DisplaySize]uint8
	a.emulator.CopyFrame(&frame)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating frame file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := graphics.WritePPM(f, &frame, a.config.Window.Scale); err != nil {
		return fmt.Errorf("writing frame file: %w", err)
	}
	a.logger.Info("frame written", log.String("file", path))
	return nil
}

func (a *Application) graphicsConfig() graphics.Config {
	return graphics.Config{
		WindowTitle: a.windowTitle(),
		Scale:       a.config.Window.Scale,
		Fullscreen:  a.config.Window.Fullscreen,
		VSync:       a.config.Video.VSync,
		KeyNames:    a.config.Input.Keys,
		ResetKey:    a.config.Input.ResetKey,
	}
}

func (a *Application) windowTitle() string {
	if a.romName == "" {
		return "gochip8"
	}
	return "gochip8 - " + a.romName
}

func (a *Application) traceInstruction(pc, op uint16) {
	a.logger.Debug("executing",
		log.Hex("pc", pc),
		log.Hex("opcode", op),
		log.String("mnemonic", chip8.Mnemonic(op)),
	)
}
