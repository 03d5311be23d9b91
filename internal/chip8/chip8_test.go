package chip8

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNewMachine(t *testing.T) {
	m := New(nil)

	assert.Equal(t, ProgramStart, m.PC)
	assert.Equal(t, 0, m.I)
	assert.Equal(t, 0, m.SP)
	assert.True(t, m.DisplayCleared())

	// Font glyphs installed below the program area.
	assert.Equal(t, 0xF0, m.ReadMemory(FontStart))
	assert.Equal(t, 0x80, m.ReadMemory(FontStart+FontSize-1))
}

func TestLoadProgram(t *testing.T) {
	m := New(nil)

	program := []byte{0x00, 0xE0, 0x12, 0x00}
	assert.NoError(t, m.LoadProgram(program))

	assert.Equal(t, 0x00, m.ReadMemory(ProgramStart))
	assert.Equal(t, 0xE0, m.ReadMemory(ProgramStart+1))
	assert.Equal(t, 0x12, m.ReadMemory(ProgramStart+2))
}

func TestLoadProgramTooLarge(t *testing.T) {
	m := New(nil)

	err := m.LoadProgram(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrProgramTooLarge))

	// Memory stays untouched on rejection.
	assert.Equal(t, 0, m.ReadMemory(ProgramStart))

	assert.NoError(t, m.LoadProgram(make([]byte, MaxProgramSize)))
}

func TestCycleExecutesProgram(t *testing.T) {
	m := New(nil)
	assert.NoError(t, m.LoadProgram([]byte{0x00, 0xE0}))

	assert.NoError(t, m.Cycle())
	assert.Equal(t, 0x202, m.PC)
}

func TestCycleFetchWrapsAddressSpace(t *testing.T) {
	m := New(nil)
	m.PC = MemorySize - 1
	m.WriteMemory(MemorySize-1, 0x00)
	m.WriteMemory(0x0000, 0xE0) // second opcode byte wraps to 0x000

	assert.NoError(t, m.Cycle())
	assert.Equal(t, 0x0001, m.PC)
}

func TestTick(t *testing.T) {
	m := New(nil)
	m.DT = 2
	m.ST = 1

	m.Tick()
	assert.Equal(t, 1, m.DT)
	assert.Equal(t, 0, m.ST)

	// Both timers floor at zero.
	m.Tick()
	m.Tick()
	assert.Equal(t, 0, m.DT)
	assert.Equal(t, 0, m.ST)
}

func TestTimersDecayIndependently(t *testing.T) {
	m := New(nil)
	m.DT = 5

	for range 3 {
		m.Tick()
	}
	assert.Equal(t, 2, m.DT)
	assert.Equal(t, 0, m.ST)
}

func TestReset(t *testing.T) {
	m := New(nil)
	assert.NoError(t, m.LoadProgram([]byte{0x00, 0xE0}))

	m.PC = 0x400
	m.I = 0x123
	m.DT = 10
	m.ST = 20
	m.SP = 3
	m.V[4] = 0x42
	m.display[7] = 1

	m.Reset()

	assert.Equal(t, ProgramStart, m.PC)
	assert.Equal(t, 0, m.I)
	assert.Equal(t, 0, m.DT)
	assert.Equal(t, 0, m.ST)
	assert.Equal(t, 0, m.SP)
	assert.Equal(t, 0, m.V[4])
	assert.True(t, m.DisplayCleared())

	// The loaded program and the font survive a reset.
	assert.Equal(t, 0xE0, m.ReadMemory(ProgramStart+1))
	assert.Equal(t, 0xF0, m.ReadMemory(FontStart))
}

func TestSetTracer(t *testing.T) {
	m := New(nil)
	assert.NoError(t, m.LoadProgram([]byte{0x6A, 0x42, 0x00, 0xE0}))

	calls := 0
	var tracedPC, tracedOp uint16
	m.SetTracer(func(pc, op uint16) {
		calls++
		tracedPC = pc
		tracedOp = op
	})

	assert.NoError(t, m.Cycle())
	assert.Equal(t, 0x200, tracedPC)
	assert.Equal(t, 0x6A42, tracedOp)

	// Clearing the tracer must not disturb execution of the next
	// instruction.
	m.SetTracer(nil)
	assert.NoError(t, m.Cycle())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0x204, m.PC)
}

func TestCycleRefreshesKeypad(t *testing.T) {
	input := inputFunc(func(keys *[KeypadSize]bool) {
		keys[0x7] = true
	})
	m := New(input)
	assert.NoError(t, m.LoadProgram([]byte{0x00, 0xE0}))

	assert.False(t, m.KeyPressed(0x7))
	assert.NoError(t, m.Cycle())
	assert.True(t, m.KeyPressed(0x7))
}

func TestMemoryAccessWraps(t *testing.T) {
	m := New(nil)

	m.WriteMemory(0x1234, 0x42) // wraps to 0x234
	assert.Equal(t, 0x42, m.ReadMemory(0x234))
	assert.Equal(t, 0x42, m.ReadMemory(0x1234))
}

func TestSetKeyBounds(t *testing.T) {
	m := New(nil)

	m.SetKey(-1, true)
	m.SetKey(KeypadSize, true)
	assert.False(t, m.KeyPressed(-1))
	assert.False(t, m.KeyPressed(KeypadSize))

	m.SetKey(0xF, true)
	assert.True(t, m.KeyPressed(0xF))
}

func TestCopyDisplay(t *testing.T) {
	m := New(nil)
	m.display[5] = 1

	var frame [DisplaySize]uint8
	m.CopyDisplay(&frame)
	assert.Equal(t, 1, frame[5])

	// The copy does not alias the machine's buffer.
	frame[5] = 0
	assert.Equal(t, 1, m.Pixel(5, 0))
}

func TestDumpMemory(t *testing.T) {
	m := New(nil)
	m.WriteMemory(0x200, 0xAB)

	var buf bytes.Buffer
	assert.NoError(t, m.DumpMemory(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, MemorySize/16)
	assert.True(t, strings.HasPrefix(lines[0], "0000: f0 90 90 90 f0"))
	assert.True(t, strings.HasPrefix(lines[0x200/16], "0200: ab 00"))
}
