package ppu

// RGBA is a packed display color; Present implementations can treat the
// four bytes as R,G,B,A in that order.
type RGBA [4]byte

// Palette maps the four DMG shades (0 lightest .. 3 darkest) to a display
// color. Two sets are supported per design notes §9: the standard grey
// shades and a "nostalgic" green tint reminiscent of the original DMG
// screen, selected as construction-time configuration of the PPU rather
// than a package-level global.
type Palette [4]RGBA

var greyPalette = Palette{
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0xAA, 0xAA, 0xAA, 0xFF},
	{0x55, 0x55, 0x55, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
}

var nostalgicPalette = Palette{
	{0xE0, 0xF8, 0xD0, 0xFF},
	{0x88, 0xC0, 0x70, 0xFF},
	{0x34, 0x68, 0x56, 0xFF},
	{0x08, 0x18, 0x20, 0xFF},
}

// PaletteFor returns the display palette for the "nostalgic" construction
// flag: true selects the green DMG-tint set, false the neutral greys.
func PaletteFor(nostalgic bool) Palette {
	if nostalgic {
		return nostalgicPalette
	}
	return greyPalette
}
