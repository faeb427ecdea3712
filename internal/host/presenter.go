// Package host defines the seam between the emulator core and whatever
// windowing/input system presents its frames; it has no behavior of its
// own, only the Presenter interface a concrete UI implements.
package host

// Joypad button bitmasks, matching mmu's Joyp* constants so a Presenter's
// poll result can be handed straight to MMU.SetJoypadState.
const (
	Right     = 1 << 0
	Left      = 1 << 1
	Up        = 1 << 2
	Down      = 1 << 3
	A         = 1 << 4
	B         = 1 << 5
	SelectBtn = 1 << 6
	Start     = 1 << 7
)

// Presenter is the host-side seam the Emulator drives once per frame:
// it hands over a completed 160x144 frame to present, polls for the
// joypad state to apply to the next frame, and reports whether the host
// wants the run loop to stop.
type Presenter interface {
	// Present displays one rendered frame. shades holds 160*144 values
	// 0-3 (post-palette DMG shades); scx/scy are the background scroll
	// registers at the moment of the frame boundary, included for hosts
	// that want to show scroll/debug overlays.
	Present(shades *[160 * 144]byte, scx, scy byte)

	// PollInput returns the current joypad state as a single bitmask
	// built from this package's button constants.
	PollInput() byte

	// ShouldQuit reports whether the host has requested shutdown.
	ShouldQuit() bool
}
