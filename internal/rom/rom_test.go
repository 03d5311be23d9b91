package rom

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/internal/chip8"
)

func TestLoadFromReader(t *testing.T) {
	data := []byte{0x00, 0xE0, 0x12, 0x00}

	img, err := LoadFromReader(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, data, img.Data())
	assert.Equal(t, 4, img.Size())
	assert.Equal(t, "", img.Name())
}

func TestLoadFromReaderEmpty(t *testing.T) {
	_, err := LoadFromReader(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestLoadFromReaderSizeLimit(t *testing.T) {
	img, err := LoadFromReader(bytes.NewReader(make([]byte, chip8.MaxProgramSize)))
	assert.NoError(t, err)
	assert.Equal(t, chip8.MaxProgramSize, img.Size())

	_, err = LoadFromReader(bytes.NewReader(make([]byte, chip8.MaxProgramSize+1)))
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ch8")
	data := []byte{0x6A, 0x42}
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	img, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, data, img.Data())
	assert.Equal(t, "test.ch8", img.Name())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Error(t, err)
}
