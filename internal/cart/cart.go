// Package cart loads a DMG cartridge image and exposes it as the fixed
// ROM/RAM region of the address space. Only the minimal "ROM only" layout
// is mapped: the first 32 KiB of the image is addressable, bank switching
// is not performed (see spec Non-goals on MBC1/2/3/5 banking).
package cart

import (
	"errors"
	"fmt"
)

// ErrRomLoadFailure wraps a cartridge read/parse failure.
var ErrRomLoadFailure = errors.New("rom load failure")

// MinSize is the smallest cartridge image this core will accept.
const MinSize = 32 * 1024

// Cartridge is the minimal interface the MMU needs to read the fixed ROM
// region (0x0000-0x7FFF) and the (unimplemented) external RAM window
// (0xA000-0xBFFF).
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// ROMOnly maps the first 32 KiB of the image directly; writes to the ROM
// region are no-ops (hardware ignores them on a cartridge with no MBC),
// and external RAM is unbacked (always reads 0xFF).
type ROMOnly struct {
	rom []byte
	hdr *Header
}

// Load reads a cartridge image and validates it is large enough to map.
func Load(rom []byte) (*ROMOnly, error) {
	if len(rom) < MinSize {
		return nil, fmt.Errorf("%w: rom is %d bytes, need at least %d", ErrRomLoadFailure, len(rom), MinSize)
	}
	hdr, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRomLoadFailure, err)
	}
	return &ROMOnly{rom: rom, hdr: hdr}, nil
}

// Header returns the parsed cartridge header (title, type, sizes) for
// diagnostics; never nil on a successfully-loaded cartridge.
func (c *ROMOnly) Header() *Header { return c.hdr }

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	default: // 0xA000-0xBFFF: no external RAM on this board
		return 0xFF
	}
}

// Write is a no-op: this is a bare ROM-only cartridge with no MBC
// registers and no battery RAM to bank in.
func (c *ROMOnly) Write(addr uint16, value byte) {}
