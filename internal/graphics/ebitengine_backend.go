package graphics

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gochip8/internal/chip8"
	"gochip8/internal/input"
)

// EbitengineBackend implements the Backend interface using Ebitengine.
type EbitengineBackend struct {
	initialized bool
	config      Config
}

// EbitengineWindow implements the Window interface for Ebitengine.
type EbitengineWindow struct {
	title string
	game  *ebitenGame
}

// ebitenGame implements ebiten.Game. Update polls the keyboard and
// pushes key state through the hooks; Draw pulls the latest display
// frame and blits it scaled.
type ebitenGame struct {
	hooks    Hooks
	keymap   [input.NumKeys]ebiten.Key
	resetKey ebiten.Key
	scale    int

	frame      [chip8.DisplaySize]uint8
	frameImage *ebiten.Image
	pixels     []byte
}

// NewEbitengineBackend creates a new Ebitengine graphics backend.
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend.
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return errors.New("ebitengine backend already initialized")
	}
	if config.Scale < 1 {
		config.Scale = 1
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates an Ebitengine window wired to the given hooks.
func (b *EbitengineBackend) CreateWindow(title string, hooks Hooks) (Window, error) {
	if !b.initialized {
		return nil, errors.New("backend not initialized")
	}
	if b.config.Headless {
		return nil, errors.New("cannot create window in headless mode")
	}

	game := &ebitenGame{
		hooks:  hooks,
		scale:  b.config.Scale,
		pixels: make([]byte, chip8.DisplaySize*4),
	}
	for i, name := range b.config.KeyNames {
		key, err := KeyByName(name)
		if err != nil {
			return nil, fmt.Errorf("keypad key %X: %w", i, err)
		}
		game.keymap[i] = key
	}
	resetKey, err := KeyByName(b.config.ResetKey)
	if err != nil {
		return nil, fmt.Errorf("reset key: %w", err)
	}
	game.resetKey = resetKey
	game.frameImage = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(chip8.DisplayWidth*game.scale, chip8.DisplayHeight*game.scale)
	ebiten.SetVsyncEnabled(b.config.VSync)
	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &EbitengineWindow{title: title, game: game}, nil
}

// Cleanup releases all Ebitengine resources.
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false; this backend always opens a window.
func (b *EbitengineBackend) IsHeadless() bool {
	return false
}

// Name returns the backend name.
func (b *EbitengineBackend) Name() string {
	return "Ebitengine"
}

// SetTitle sets the window title.
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// Run starts the Ebitengine game loop and blocks until the window
// closes.
func (w *EbitengineWindow) Run() error {
	err := ebiten.RunGame(w.game)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Cleanup releases window resources.
func (w *EbitengineWindow) Cleanup() error {
	return nil
}

// Update implements ebiten.Game.
func (g *ebitenGame) Update() error {
	var keys [input.NumKeys]bool
	for i, key := range g.keymap {
		keys[i] = ebiten.IsKeyPressed(key)
	}
	if g.hooks.Keys != nil {
		g.hooks.Keys(keys)
	}

	if inpututil.IsKeyJustPressed(g.resetKey) && g.hooks.Reset != nil {
		g.hooks.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.hooks.Quit != nil {
			g.hooks.Quit()
		}
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *ebitenGame) Draw(screen *ebiten.Image) {
	if g.hooks.Frame != nil {
		g.hooks.Frame(&g.frame)
	}
	for i, cell := range g.frame {
		var v byte
		if cell != 0 {
			v = 0xFF
		}
		g.pixels[i*4] = v
		g.pixels[i*4+1] = v
		g.pixels[i*4+2] = v
		g.pixels[i*4+3] = 0xFF
	}
	g.frameImage.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.frameImage, op)
}

// Layout implements ebiten.Game.
func (g *ebitenGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.DisplayWidth * g.scale, chip8.DisplayHeight * g.scale
}

// ebitenKeyNames maps configuration key names to Ebitengine keys.
// Letter and digit keys plus the few special keys a keypad mapping
// plausibly uses.
var ebitenKeyNames = map[string]ebiten.Key{
	"A": ebiten.KeyA, "B": ebiten.KeyB, "C": ebiten.KeyC, "D": ebiten.KeyD,
	"E": ebiten.KeyE, "F": ebiten.KeyF, "G": ebiten.KeyG, "H": ebiten.KeyH,
	"I": ebiten.KeyI, "J": ebiten.KeyJ, "K": ebiten.KeyK, "L": ebiten.KeyL,
	"M": ebiten.KeyM, "N": ebiten.KeyN, "O": ebiten.KeyO, "P": ebiten.KeyP,
	"Q": ebiten.KeyQ, "R": ebiten.KeyR, "S": ebiten.KeyS, "T": ebiten.KeyT,
	"U": ebiten.KeyU, "V": ebiten.KeyV, "W": ebiten.KeyW, "X": ebiten.KeyX,
	"Y": ebiten.KeyY, "Z": ebiten.KeyZ,
	"0": ebiten.KeyDigit0, "1": ebiten.KeyDigit1, "2": ebiten.KeyDigit2,
	"3": ebiten.KeyDigit3, "4": ebiten.KeyDigit4, "5": ebiten.KeyDigit5,
	"6": ebiten.KeyDigit6, "7": ebiten.KeyDigit7, "8": ebiten.KeyDigit8,
	"9": ebiten.KeyDigit9,
	"Up": ebiten.KeyArrowUp, "Down": ebiten.KeyArrowDown,
	"Left": ebiten.KeyArrowLeft, "Right": ebiten.KeyArrowRight,
	"Space": ebiten.KeySpace, "Enter": ebiten.KeyEnter,
	"Tab": ebiten.KeyTab, "Backspace": ebiten.KeyBackspace,
}

// KeyByName resolves a configuration key name to an Ebitengine key.
func KeyByName(name string) (ebiten.Key, error) {
	key, ok := ebitenKeyNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown key name %q", name)
	}
	return key, nil
}
