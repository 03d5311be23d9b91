package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func writeTestROM(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestApplicationLoadROM(t *testing.T) {
	application := NewApplication(log.NewTestLogger(t), NewConfig())

	// Jump-to-self program.
	path := writeTestROM(t, []byte{0x12, 0x00})
	assert.NoError(t, application.LoadROM(path))
	assert.Equal(t, "gochip8 - test.ch8", application.windowTitle())
}

func TestApplicationLoadROMMissing(t *testing.T) {
	application := NewApplication(log.NewTestLogger(t), NewConfig())
	assert.Error(t, application.LoadROM(filepath.Join(t.TempDir(), "missing.ch8")))
}

func TestApplicationRunHeadless(t *testing.T) {
	config := NewConfig()
	config.Video.Backend = "headless"
	application := NewApplication(log.NewTestLogger(t), config)

	// Draw glyph "0" at the origin, then loop.
	path := writeTestROM(t, []byte{0xD0, 0x15, 0x12, 0x02})
	assert.NoError(t, application.LoadROM(path))

	frameFile := filepath.Join(t.TempDir(), "out.ppm")
	assert.NoError(t, application.RunHeadless(context.Background(), 3, frameFile))
	assert.Equal(t, 3, int(application.emulator.Frames()))

	data, err := os.ReadFile(frameFile)
	assert.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, byte('P'), data[0])
}

func TestApplicationRunHeadlessStopsOnFault(t *testing.T) {
	config := NewConfig()
	config.Video.Backend = "headless"
	application := NewApplication(log.NewTestLogger(t), config)

	path := writeTestROM(t, []byte{0xFF, 0xFF})
	assert.NoError(t, application.LoadROM(path))

	assert.NoError(t, application.RunHeadless(context.Background(), 100, ""))
	assert.True(t, application.emulator.Halted())
	assert.Equal(t, 1, int(application.emulator.Frames()))
}

func TestApplicationRunHeadlessCanceledContext(t *testing.T) {
	config := NewConfig()
	application := NewApplication(log.NewTestLogger(t), config)

	path := writeTestROM(t, []byte{0x12, 0x00})
	assert.NoError(t, application.LoadROM(path))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, application.RunHeadless(ctx, 100, ""))
}

func TestApplicationTrace(t *testing.T) {
	config := NewConfig()
	config.Debug.Trace = true
	application := NewApplication(log.NewTestLogger(t), config)

	path := writeTestROM(t, []byte{0x12, 0x00})
	assert.NoError(t, application.LoadROM(path))

	// Tracing must not disturb execution.
	application.emulator.StepFrame()
	assert.False(t, application.emulator.Halted())
}
