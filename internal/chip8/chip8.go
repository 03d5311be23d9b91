// Package chip8 implements the CHIP-8 virtual machine core: machine
// state, instruction decoding and execution, and the cycle/tick driver.
// The package performs no I/O; rendering and input live behind the
// display buffer accessors and the InputSource interface.
package chip8

import (
	"fmt"
	"io"
	"math/rand/v2"
)

// Machine geometry constants.
const (
	MemorySize   = 0x1000
	ProgramStart = 0x200
	// MaxProgramSize is the number of bytes available to a loaded
	// program (memory above the interpreter area).
	MaxProgramSize = MemorySize - ProgramStart

	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight

	StackSize  = 16
	KeypadSize = 16

	FontStart = 0x000
	GlyphSize = 5
	FontSize  = KeypadSize * GlyphSize

	addrMask = MemorySize - 1
)

// InputSource refreshes the machine's view of the 16-key keypad. It is
// invoked once at the start of every cycle and repeatedly during the
// key-wait instruction's blocking poll.
type InputSource interface {
	ReadKeys(keys *[KeypadSize]bool)
}

// Machine holds the complete state of one CHIP-8 virtual machine.
// It has exactly one owner; nothing in this package synchronizes
// access. Registers are exported in the same spirit as a hardware
// register file: tests and debug tooling read them directly, programs
// mutate them only through executed instructions.
type Machine struct {
	// Registers
	V     [16]uint8 // general purpose, VF doubles as flag output
	I     uint16    // index register
	DT    uint8     // delay timer
	ST    uint8     // sound timer
	SP    uint8     // stack pointer, indexes the next free slot
	PC    uint16    // program counter
	Stack [StackSize]uint16

	memory  [MemorySize]uint8
	display [DisplaySize]uint8
	keys    [KeypadSize]bool

	input  InputSource
	rand   func() uint8
	tracer func(pc, op uint16)
}

// New creates a machine with zeroed state, the font table installed at
// FontStart and the program counter at ProgramStart. input may be nil;
// key state is then whatever the host pushes through SetKey. Note that
// the key-wait instruction spins until a key is down, so a nil-input
// machine must not execute it unless a key has been set.
func New(input InputSource) *Machine {
	m := &Machine{
		PC:    ProgramStart,
		input: input,
		rand:  func() uint8 { return uint8(rand.UintN(0x100)) },
	}
	copy(m.memory[FontStart:], font[:])
	return m
}

// LoadProgram copies a program image into memory at ProgramStart.
// Images larger than MaxProgramSize are rejected without touching
// memory.
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(m.memory[ProgramStart:], program)
	return nil
}

// Reset returns the machine to its power-on register state. Memory is
// deliberately untouched so the loaded program and font survive.
func (m *Machine) Reset() {
	m.PC = ProgramStart
	m.I = 0
	m.DT = 0
	m.ST = 0
	m.SP = 0
	m.V = [16]uint8{}
	m.Stack = [StackSize]uint16{}
	m.display = [DisplaySize]uint8{}
}

// Cycle executes one fetch-decode-execute step: refresh the keypad,
// fetch the big-endian opcode at PC, advance PC past it, dispatch.
// PC moves before the handler runs so jump/call/return arithmetic is
// relative to the next instruction. A returned fault leaves all other
// machine state as the faulting instruction found it.
func (m *Machine) Cycle() error {
	if m.input != nil {
		m.input.ReadKeys(&m.keys)
	}
	addr := m.PC & addrMask
	op := uint16(m.memory[addr])<<8 | uint16(m.memory[(addr+1)&addrMask])
	m.PC = (addr + 2) & addrMask
	if m.tracer != nil {
		m.tracer(addr, op)
	}
	return m.execute(addr, op)
}

// Tick decays both timers by one, independently, floored at zero.
// The caller is responsible for invoking it at a fixed 60 Hz rate
// regardless of how fast Cycle runs.
func (m *Machine) Tick() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
}

// SetTracer installs a hook invoked with the address and opcode of
// every instruction before it executes. A nil tracer disables tracing.
func (m *Machine) SetTracer(tracer func(pc, op uint16)) {
	m.tracer = tracer
}

// SetRandFunc replaces the random byte source used by RND. Tests use
// this to make Cxkk deterministic.
func (m *Machine) SetRandFunc(fn func() uint8) {
	m.rand = fn
}

// ReadMemory returns the byte at addr, wrapped into the address space.
func (m *Machine) ReadMemory(addr uint16) uint8 {
	return m.memory[addr&addrMask]
}

// WriteMemory stores value at addr, wrapped into the address space.
// Host-side helper; the loaded program only writes through
// instructions.
func (m *Machine) WriteMemory(addr uint16, value uint8) {
	m.memory[addr&addrMask] = value
}

// Pixel reports the display cell at (x, y); always 0 or 1.
func (m *Machine) Pixel(x, y int) uint8 {
	return m.display[y*DisplayWidth+x]
}

// CopyDisplay copies the row-major 64x32 display buffer into dst.
// Renderers call this after a cycle batch instead of aliasing the
// machine's buffer.
func (m *Machine) CopyDisplay(dst *[DisplaySize]uint8) {
	*dst = m.display
}

// DisplayCleared reports whether every display cell is zero.
func (m *Machine) DisplayCleared() bool {
	for _, p := range m.display {
		if p != 0 {
			return false
		}
	}
	return true
}

// SetKey sets one keypad entry directly. The usual path is an
// InputSource; this exists for hosts that push key events instead.
func (m *Machine) SetKey(key int, pressed bool) {
	if key >= 0 && key < KeypadSize {
		m.keys[key] = pressed
	}
}

// KeyPressed reports the state of one keypad entry.
func (m *Machine) KeyPressed(key int) bool {
	if key < 0 || key >= KeypadSize {
		return false
	}
	return m.keys[key]
}

// DumpMemory writes a hexdump of the full address space, 16 bytes per
// row prefixed with the row address.
func (m *Machine) DumpMemory(w io.Writer) error {
	for base := 0; base < MemorySize; base += 16 {
		if _, err := fmt.Fprintf(w, "%04x:", base); err != nil {
			return err
		}
		for i := 0; i < 16; i++ {
			if _, err := fmt.Fprintf(w, " %02x", m.memory[base+i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
