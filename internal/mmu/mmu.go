// Package mmu implements the DMG's 16-bit memory map: cartridge ROM/RAM,
// work RAM, echo RAM, HRAM, the PPU's VRAM/OAM window, the Timer's
// register window, joypad/serial I/O, boot-ROM overlay, and OAM DMA.
package mmu

import (
	"errors"
	"io"

	"github.com/kestrelsoft/gbz80/internal/cart"
	"github.com/kestrelsoft/gbz80/internal/ppu"
	"github.com/kestrelsoft/gbz80/internal/timer"
)

// ErrInvalidAddress is returned by LoadBootROM and similar boundary
// operations fed attacker- or tool-controlled data, not by ordinary
// Read/Write (the full 16-bit space is always mapped to something).
var ErrInvalidAddress = errors.New("mmu: invalid address")

// Joypad button bitmasks for SetJoypadState; set bits mean "pressed".
const (
	JoypRight     = 1 << 0
	JoypLeft      = 1 << 1
	JoypUp        = 1 << 2
	JoypDown      = 1 << 3
	JoypA         = 1 << 4
	JoypB         = 1 << 5
	JoypSelectBtn = 1 << 6
	JoypStart     = 1 << 7
)

// MMU composes the DMG's address-mapped components behind a single
// Read/Write surface, matching the cpu.Memory interface.
type MMU struct {
	cart  cart.Cartridge
	ppu   *ppu.PPU
	timer *timer.Timer

	wram [0x2000]byte // 0xC000-0xDFFF, echoed at 0xE000-0xFDFF
	hram [0x7F]byte   // 0xFF80-0xFFFE

	ie    byte
	ifReg byte

	joypSelect byte
	joypad     byte

	sb     byte
	sc     byte
	serial io.Writer // optional sink for completed serial bytes (diagnostics)

	bootROM     []byte
	bootEnabled bool

	dma       byte
	dmaActive bool
	dmaSrc    uint16
	dmaIndex  int
	dmaCycleAcc int
}

// New wires an MMU around a cartridge, constructing its own PPU and Timer
// with IF-raising callbacks that loop back into the MMU's own IF register.
func New(c cart.Cartridge) *MMU {
	m := &MMU{cart: c}
	m.ppu = ppu.New(ppu.PaletteFor(false), m.RequestInterrupt)
	m.timer = timer.New(m.RequestInterrupt)
	return m
}

// PPU exposes the owned PPU for the Emulator's per-cycle ticking and for
// host.Presenter frame delivery.
func (m *MMU) PPU() *ppu.PPU { return m.ppu }

// Timer exposes the owned Timer for the Emulator's per-cycle ticking.
func (m *MMU) Timer() *timer.Timer { return m.timer }

// SetPalette swaps the PPU's display palette (grey vs. nostalgic green).
func (m *MMU) SetPalette(p ppu.Palette) { m.ppu.SetPalette(p) }

// RequestInterrupt sets an IF bit; passed as the InterruptRequester
// callback to both the PPU and the Timer at construction time.
func (m *MMU) RequestInterrupt(bit int) { m.ifReg |= 1 << uint(bit) }

// SetSerialWriter installs a sink that receives each byte a completed
// serial transfer shifts out of SB (cmd/cpurunner uses this to capture
// Blargg test-ROM output; ordinary play never needs it).
func (m *MMU) SetSerialWriter(w io.Writer) { m.serial = w }

// LoadBootROM maps a 256-byte DMG boot ROM at 0x0000-0x00FF until a
// non-zero write to FF50 disables it.
func (m *MMU) LoadBootROM(data []byte) error {
	if len(data) < 0x100 {
		return ErrInvalidAddress
	}
	m.bootROM = make([]byte, 0x100)
	copy(m.bootROM, data[:0x100])
	m.bootEnabled = true
	return nil
}

func (m *MMU) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if m.bootEnabled && addr < 0x0100 {
			return m.bootROM[addr]
		}
		return m.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return m.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return m.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return m.wram[addr-0x2000-0xC000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m.dmaActive {
			return 0xFF
		}
		return m.ppu.CPURead(addr)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return m.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return m.ie
	case addr == 0xFF0F:
		return 0xE0 | (m.ifReg & 0x1F)
	case addr == 0xFF00:
		return m.readJoyp()
	case addr == 0xFF01:
		return m.sb
	case addr == 0xFF02:
		return 0x7E | (m.sc & 0x81)
	case addr == 0xFF04:
		return m.timer.DIV()
	case addr == 0xFF05:
		return m.timer.TIMA()
	case addr == 0xFF06:
		return m.timer.TMA()
	case addr == 0xFF07:
		return 0xF8 | m.timer.TAC()
	case addr == 0xFF46:
		return m.dma
	case addr == 0xFF50:
		return 0xFF
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return m.ppu.CPURead(addr)
	default:
		return 0xFF
	}
}

func (m *MMU) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		m.cart.Write(addr, value)
	case addr >= 0x8000 && addr <= 0x9FFF:
		m.ppu.CPUWrite(addr, value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		m.cart.Write(addr, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		m.wram[addr-0xC000] = value
	case addr >= 0xE000 && addr <= 0xFDFF:
		m.wram[addr-0x2000-0xC000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m.dmaActive {
			return
		}
		m.ppu.CPUWrite(addr, value)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		m.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		m.ie = value
	case addr == 0xFF0F:
		m.ifReg = value & 0x1F
	case addr == 0xFF00:
		m.joypSelect = value & 0x30
	case addr == 0xFF01:
		m.sb = value
	case addr == 0xFF02:
		m.sc = value & 0x81
		if m.sc&0x80 != 0 {
			// No external serial peer: the transfer completes immediately
			// and raises the Serial interrupt, per the documented fallback.
			m.ifReg |= 1 << 3
			m.sc &^= 0x80
			if m.serial != nil {
				m.serial.Write([]byte{m.sb})
			}
		}
	case addr == 0xFF04:
		m.timer.WriteDIV()
	case addr == 0xFF05:
		m.timer.WriteTIMA(value)
	case addr == 0xFF06:
		m.timer.WriteTMA(value)
	case addr == 0xFF07:
		m.timer.WriteTAC(value)
	case addr == 0xFF46:
		m.startDMA(value)
	case addr == 0xFF50:
		if value != 0 {
			m.bootEnabled = false
		}
	case addr >= 0xFF40 && addr <= 0xFF4B:
		m.ppu.CPUWrite(addr, value)
	}
}

// SetJoypadState sets which buttons are currently pressed, using the
// Joyp* bitmasks (set bits mean pressed).
func (m *MMU) SetJoypadState(mask byte) { m.joypad = mask }

func (m *MMU) readJoyp() byte {
	res := byte(0xC0 | (m.joypSelect & 0x30) | 0x0F)
	if m.joypSelect&0x10 == 0 {
		if m.joypad&JoypRight != 0 {
			res &^= 0x01
		}
		if m.joypad&JoypLeft != 0 {
			res &^= 0x02
		}
		if m.joypad&JoypUp != 0 {
			res &^= 0x04
		}
		if m.joypad&JoypDown != 0 {
			res &^= 0x08
		}
	}
	if m.joypSelect&0x20 == 0 {
		if m.joypad&JoypA != 0 {
			res &^= 0x01
		}
		if m.joypad&JoypB != 0 {
			res &^= 0x02
		}
		if m.joypad&JoypSelectBtn != 0 {
			res &^= 0x04
		}
		if m.joypad&JoypStart != 0 {
			res &^= 0x08
		}
	}
	return res
}

func (m *MMU) startDMA(value byte) {
	m.dma = value
	m.dmaActive = true
	m.dmaSrc = uint16(value) << 8
	m.dmaIndex = 0
}

// Step advances the OAM DMA engine by n clock cycles, copying one byte
// per machine cycle (4 clock cycles) from dmaSrc into OAM until 160
// bytes have moved — 160 bytes over ≈640 clock cycles, as documented.
// The Emulator calls this with the same clock-cycle count it reports to
// the Timer and PPU.
func (m *MMU) Step(n int) {
	for i := 0; i < n; i++ {
		if !m.dmaActive {
			return
		}
		m.dmaCycleAcc++
		if m.dmaCycleAcc < 4 {
			continue
		}
		m.dmaCycleAcc = 0
		v := m.Read(m.dmaSrc + uint16(m.dmaIndex))
		m.ppu.CPUWrite(0xFE00+uint16(m.dmaIndex), v)
		m.dmaIndex++
		if m.dmaIndex >= 0xA0 {
			m.dmaActive = false
		}
	}
}

// DMAInProgress reports whether an OAM DMA transfer is currently running.
func (m *MMU) DMAInProgress() bool { return m.dmaActive }
