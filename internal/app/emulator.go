package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/chip8"
)

// TickRate is the fixed rate of the timer clock in Hz.
const TickRate = 60

// Emulator drives a CHIP-8 machine at a fixed timestep: one timer tick
// per frame and a configurable number of instruction cycles per second.
type Emulator struct {
	logger  *log.Logger
	machine *chip8.Machine

	cyclesPerFrame int

	frameMu sync.Mutex
	frame   [chip8.DisplaySize]uint8

	resetRequested atomic.Bool
	stopRequested  atomic.Bool
	halted         atomic.Bool

	frames uint64
}

// NewEmulator creates an emulator for the given machine.
func NewEmulator(logger *log.Logger, machine *chip8.Machine, cyclesPerSecond int) *Emulator {
	return &Emulator{
		logger:         logger,
		machine:        machine,
		cyclesPerFrame: cyclesPerSecond / TickRate,
	}
}

// Run executes the emulation loop until the context is canceled or
// Stop is called. It is meant to run on its own goroutine; the display
// frame is published under a mutex for the render side to copy.
func (e *Emulator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.stopRequested.Load() {
				return
			}
			e.StepFrame()
		}
	}
}

// StepFrame runs one frame worth of emulation: the per-frame cycle
// batch followed by exactly one timer tick. A machine fault halts
// execution but preserves machine state for inspection.
func (e *Emulator) StepFrame() {
	if e.resetRequested.Swap(false) {
		e.machine.Reset()
		e.halted.Store(false)
		e.logger.Info("machine reset")
	}
	if e.halted.Load() {
		return
	}

	for range e.cyclesPerFrame {
		if err := e.machine.Cycle(); err != nil {
			e.halt(err)
			break
		}
	}
	e.machine.Tick()
	e.frames++
	e.publishFrame()
}

func (e *Emulator) halt(err error) {
	e.halted.Store(true)

	var opErr *chip8.OpcodeError
	var stackErr *chip8.StackError
	var memErr *chip8.MemoryError

	switch {
	case errors.As(err, &opErr):
		e.logger.Error("invalid opcode, halting",
			log.Hex("opcode", opErr.Opcode),
			log.Hex("address", opErr.Address))
	case errors.As(err, &stackErr):
		e.logger.Error("stack fault, halting",
			log.Hex("opcode", stackErr.Opcode),
			log.Hex("address", stackErr.Address),
			log.Uint8("sp", stackErr.SP))
	case errors.As(err, &memErr):
		e.logger.Error("memory access fault, halting",
			log.Hex("opcode", memErr.Opcode),
			log.Hex("address", memErr.Address),
			log.Hex("target", memErr.Target))
	default:
		e.logger.Error("emulation fault, halting", log.Err(err))
	}
}

func (e *Emulator) publishFrame() {
	e.frameMu.Lock()
	e.machine.CopyDisplay(&e.frame)
	e.frameMu.Unlock()
}

// CopyFrame copies the last published display frame into dst.
func (e *Emulator) CopyFrame(dst *[chip8.DisplaySize]uint8) {
	e.frameMu.Lock()
	*dst = e.frame
	e.frameMu.Unlock()
}

// RequestReset schedules a machine reset before the next frame.
func (e *Emulator) RequestReset() {
	e.resetRequested.Store(true)
}

// Stop ends the emulation loop after the current frame.
func (e *Emulator) Stop() {
	e.stopRequested.Store(true)
}

// Halted returns whether emulation stopped on a machine fault.
func (e *Emulator) Halted() bool {
	return e.halted.Load()
}

// Frames returns the number of frames executed.
func (e *Emulator) Frames() uint64 {
	return e.frames
}
