package graphics

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/internal/chip8"
)

func TestCreateBackend(t *testing.T) {
	backend, err := CreateBackend(BackendHeadless)
	assert.NoError(t, err)
	assert.True(t, backend.IsHeadless())

	backend, err = CreateBackend(BackendEbitengine)
	assert.NoError(t, err)
	assert.False(t, backend.IsHeadless())

	_, err = CreateBackend("sdl2")
	assert.Error(t, err)
}

func TestHeadlessWindowRun(t *testing.T) {
	backend := NewHeadlessBackend()
	assert.NoError(t, backend.Initialize(Config{}))

	pulls := 0
	hooks := Hooks{
		Frame: func(dst *[chip8.DisplaySize]uint8) {
			pulls++
		},
	}
	window, err := backend.CreateWindow("test", hooks)
	assert.NoError(t, err)

	hw := window.(*HeadlessWindow)
	hw.SetFrameLimit(3)

	assert.NoError(t, window.Run())
	assert.Equal(t, 3, int(hw.FrameCount()))
	assert.Equal(t, 3, pulls)

	assert.NoError(t, window.Cleanup())
	assert.NoError(t, backend.Cleanup())
}

func TestHeadlessWindowCleanupStopsRun(t *testing.T) {
	backend := NewHeadlessBackend()
	assert.NoError(t, backend.Initialize(Config{}))

	window, err := backend.CreateWindow("test", Hooks{})
	assert.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- window.Run()
	}()

	assert.NoError(t, window.Cleanup())
	assert.NoError(t, <-done)
}

func TestCreateWindowRequiresInitialize(t *testing.T) {
	backend := NewHeadlessBackend()
	_, err := backend.CreateWindow("test", Hooks{})
	assert.Error(t, err)
}

func TestWritePPM(t *testing.T) {
	var frame [chip8.DisplaySize]uint8
	frame[0] = 1 // top-left pixel lit

	var buf bytes.Buffer
	assert.NoError(t, WritePPM(&buf, &frame, 1))

	header := []byte("P6\n64 32\n255\n")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), header))

	pixels := buf.Bytes()[len(header):]
	assert.Len(t, pixels, chip8.DisplaySize*3)
	assert.Equal(t, byte(0xFF), pixels[0])
	assert.Equal(t, byte(0xFF), pixels[2])
	assert.Equal(t, byte(0x00), pixels[3])
}

func TestWritePPMScaled(t *testing.T) {
	var frame [chip8.DisplaySize]uint8
	frame[0] = 1

	var buf bytes.Buffer
	assert.NoError(t, WritePPM(&buf, &frame, 2))

	header := []byte("P6\n128 64\n255\n")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), header))

	pixels := buf.Bytes()[len(header):]
	assert.Len(t, pixels, chip8.DisplaySize*4*3)
	// The lit cell covers a 2x2 block.
	assert.Equal(t, byte(0xFF), pixels[0])
	assert.Equal(t, byte(0xFF), pixels[3])
	assert.Equal(t, byte(0x00), pixels[6])
	assert.Equal(t, byte(0xFF), pixels[128*3])
}

func TestKeyByName(t *testing.T) {
	for _, name := range []string{"A", "Z", "0", "9", "Up", "Space", "Enter"} {
		_, err := KeyByName(name)
		assert.NoError(t, err)
	}

	_, err := KeyByName("NoSuchKey")
	assert.Error(t, err)
}
