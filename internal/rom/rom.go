// Package rom implements loading and validation of CHIP-8 program
// images. The machine core never touches the filesystem; hosts load an
// Image here and hand its bytes to the machine.
package rom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gochip8/internal/chip8"
)

var (
	// ErrEmpty is returned for a zero-length image.
	ErrEmpty = errors.New("empty ROM image")
	// ErrTooLarge is returned for an image that cannot fit into
	// program memory.
	ErrTooLarge = errors.New("ROM image too large")
)

// Image is a validated program image ready to be placed at the
// machine's program start address.
type Image struct {
	data []byte
	name string
}

// LoadFromFile reads and validates a ROM image from disk.
func LoadFromFile(filename string) (*Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ROM: %w", err)
	}
	defer file.Close()

	img, err := LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading ROM %s: %w", filename, err)
	}
	img.name = filepath.Base(filename)
	return img, nil
}

// LoadFromReader reads and validates a ROM image from r. Images larger
// than the available program memory are rejected rather than
// truncated.
func LoadFromReader(r io.Reader) (*Image, error) {
	// Read one byte past the limit to tell "exactly full" from
	// "too large".
	data, err := io.ReadAll(io.LimitReader(r, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading ROM data: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, chip8.MaxProgramSize)
	}
	return &Image{data: data}, nil
}

// Data returns the raw program bytes.
func (i *Image) Data() []byte {
	return i.data
}

// Size returns the image length in bytes.
func (i *Image) Size() int {
	return len(i.data)
}

// Name returns the base filename the image was loaded from, if any.
func (i *Image) Name() string {
	return i.name
}
