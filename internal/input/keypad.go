// Package input implements keypad state handling for the CHIP-8
// machine: a 16-key logical keypad written by the windowing layer and
// read by the emulation loop.
package input

import (
	"sync"

	"gochip8/internal/chip8"
)

// NumKeys is the number of logical keypad keys (0-F).
const NumKeys = chip8.KeypadSize

// Keypad holds the logical state of the 16-key keypad. The render
// goroutine writes, the emulation goroutine reads through ReadKeys, so
// access is guarded.
type Keypad struct {
	mu   sync.RWMutex
	keys [NumKeys]bool
}

// NewKeypad creates a keypad with all keys released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// SetKey sets the state of one logical key. Out-of-range keys are
// ignored.
func (k *Keypad) SetKey(key int, pressed bool) {
	if key < 0 || key >= NumKeys {
		return
	}
	k.mu.Lock()
	k.keys[key] = pressed
	k.mu.Unlock()
}

// SetKeys replaces the state of all keys at once.
func (k *Keypad) SetKeys(keys [NumKeys]bool) {
	k.mu.Lock()
	k.keys = keys
	k.mu.Unlock()
}

// IsPressed reports whether one logical key is down.
func (k *Keypad) IsPressed(key int) bool {
	if key < 0 || key >= NumKeys {
		return false
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys[key]
}

// AnyPressed reports whether any key is down.
func (k *Keypad) AnyPressed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for _, pressed := range k.keys {
		if pressed {
			return true
		}
	}
	return false
}

// Reset releases all keys.
func (k *Keypad) Reset() {
	k.mu.Lock()
	k.keys = [NumKeys]bool{}
	k.mu.Unlock()
}

// ReadKeys copies the current key state into the machine's key array.
// Implements chip8.InputSource.
func (k *Keypad) ReadKeys(keys *[chip8.KeypadSize]bool) {
	k.mu.RLock()
	*keys = k.keys
	k.mu.RUnlock()
}
