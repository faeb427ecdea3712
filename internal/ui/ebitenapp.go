// Package ui implements a host.Presenter on top of ebiten: window
// presentation of the 160x144 framebuffer at integer scale, and joypad
// polling from ebiten's keyboard snapshot. Adapted down from the
// teacher's ebitenapp.go — its menu system, audio pipeline, and
// save-state UI are out of scope here (see DESIGN.md).
package ui

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/kestrelsoft/gbz80/internal/host"
	"github.com/kestrelsoft/gbz80/internal/ppu"
)

// errQuit signals a normal window-close request out of Update; Run
// swallows it rather than surfacing it as a failure to the caller.
var errQuit = errors.New("gbz80: quit requested")

// App is an ebiten.Game that also satisfies host.Presenter; the Machine
// drives it through the Presenter methods while ebiten drives Update/
// Draw/Layout on its own render loop.
type App struct {
	cfg     Config
	palette ppu.Palette

	tex   *ebiten.Image
	frame [160 * 144 * 4]byte

	// step is called once per ebiten tick to advance emulation; the
	// Machine calls back into Present/PollInput/ShouldQuit from inside
	// it, keeping everything on ebiten's single render goroutine.
	step func()

	quit bool
}

// NewApp constructs a window-backed presenter using the given display
// palette (grey or nostalgic green, chosen by the caller's cfg.Nostalgic
// flag at the Machine/Config level).
func NewApp(cfg Config, palette ppu.Palette) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	return &App{cfg: cfg, palette: palette}
}

// SetStepFunc wires the emulation advance callback ebiten's Update loop
// drives each tick (typically a Machine's StepFrame), keeping stepping
// and presentation on the same goroutine.
func (a *App) SetStepFunc(step func()) { a.step = step }

// Run starts ebiten's render loop; it blocks until the window closes.
func (a *App) Run() error {
	if err := ebiten.RunGame(a); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// Present satisfies host.Presenter: it converts the raw 0-3 shade buffer
// to RGBA using the configured palette, ready for the next Draw call.
func (a *App) Present(shades *[160 * 144]byte, scx, scy byte) {
	for i, s := range shades {
		c := a.palette[s&0x03]
		copy(a.frame[i*4:i*4+4], c[:])
	}
}

// PollInput satisfies host.Presenter, mapping the conventional DMG
// emulator keyboard layout (arrows, Z/X, Enter, right Shift) to the
// dpad/button nibbles.
func (a *App) PollInput() byte {
	var b byte
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		b |= host.Right
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		b |= host.Left
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		b |= host.Up
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		b |= host.Down
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		b |= host.A
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		b |= host.B
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		b |= host.Start
	}
	if ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		b |= host.SelectBtn
	}
	return b
}

// ShouldQuit satisfies host.Presenter.
func (a *App) ShouldQuit() bool { return a.quit }

// Update is ebiten's per-tick hook: it checks for Escape and then runs the
// step function installed by SetStepFunc (cmd/gbz80 installs StepFrame).
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.quit = true
	}
	if a.quit {
		return errQuit
	}
	if a.step != nil {
		a.step()
	}
	return nil
}

// Draw blits the most recently Present-ed frame to the screen.
func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(160, 144)
	}
	a.tex.WritePixels(a.frame[:])
	screen.DrawImage(a.tex, nil)
}

// Layout pins ebiten's logical screen size to the DMG's native resolution.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) { return 160, 144 }
