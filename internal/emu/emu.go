// Package emu composes the MMU, Timer, CPU, and PPU into the
// synchronous clock loop described by the core: one Step runs one CPU
// instruction (or one DMA tick when a transfer is active) and then
// advances Timer and PPU by the same number of clock cycles.
package emu

import (
	"fmt"
	"log/slog"

	"github.com/kestrelsoft/gbz80/internal/cart"
	"github.com/kestrelsoft/gbz80/internal/cpu"
	"github.com/kestrelsoft/gbz80/internal/host"
	"github.com/kestrelsoft/gbz80/internal/mmu"
	"github.com/kestrelsoft/gbz80/internal/ppu"
)

// dmaTickCycles is the clock-cycle granularity the Emulator advances by
// while OAM DMA owns the bus, matching one machine cycle (the pace at
// which MMU.Step copies one byte).
const dmaTickCycles = 4

// Machine is the top-level composition the CLI drives: load a cartridge,
// then repeatedly call Step or StepFrame and let the configured
// host.Presenter display the result.
type Machine struct {
	cfg  Config
	mem  *mmu.MMU
	cpu  *cpu.CPU
	pres host.Presenter
	log  *slog.Logger
}

// New constructs a Machine with no cartridge loaded yet; call
// LoadCartridge before stepping. A nil logger defaults to slog.Default().
func New(cfg Config, pres host.Presenter, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{cfg: cfg, pres: pres, log: logger}
}

// LoadCartridge parses and maps a cartridge image, wires a fresh
// MMU/CPU pair around it, and brings the CPU to its starting state:
// either running the supplied boot ROM, or, if cfg.SkipBoot is set (or
// no boot ROM is given), the documented post-BIOS register state.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	c, err := cart.Load(rom)
	if err != nil {
		m.log.Error("rom load failed", "err", err)
		return fmt.Errorf("%w", err)
	}
	m.log.Info("cartridge loaded", "title", c.Header().Title, "type", c.Header().CartTypeStr)

	m.mem = mmu.New(c)
	if m.cfg.Nostalgic {
		m.mem.SetPalette(ppu.PaletteFor(true))
	}
	m.cpu = cpu.New(m.mem)

	if !m.cfg.SkipBoot && len(boot) > 0 {
		if err := m.mem.LoadBootROM(boot); err != nil {
			m.log.Error("boot rom load failed", "err", err)
			return fmt.Errorf("%w", err)
		}
		return nil
	}

	m.applyPostBIOS()
	return nil
}

// applyPostBIOS sets the documented DMG post-boot register and I/O
// register state, for runs that skip the boot ROM entirely.
func (m *Machine) applyPostBIOS() {
	m.cpu.ResetNoBoot()
	m.mem.Write(0xFF40, 0x91) // LCDC
	m.mem.Write(0xFF41, 0x05) // STAT
	m.mem.Write(0xFF47, 0xFC) // BGP
	m.mem.Write(0xFF48, 0xFF) // OBP0
	m.mem.Write(0xFF49, 0xFF) // OBP1
	m.mem.Write(0xFF50, 0x01) // disable boot overlay
}

// Step runs one unit of emulation — one CPU instruction, or one DMA tick
// while a transfer owns the bus — and advances Timer and PPU by the same
// clock-cycle count. It returns that cycle count.
func (m *Machine) Step() int {
	m.mem.SetJoypadState(m.pres.PollInput())

	var cycles int
	if m.mem.DMAInProgress() {
		cycles = dmaTickCycles
		m.mem.Step(cycles)
	} else {
		cycles = m.cpu.Step()
		if m.cpu.Err != nil {
			m.log.Warn("undefined opcode trapped", "pc", m.cpu.PC, "err", m.cpu.Err)
			m.cpu.Err = nil
		}
		if m.cfg.Trace {
			m.log.Debug("step", "pc", m.cpu.PC, "a", m.cpu.A, "f", m.cpu.F, "sp", m.cpu.SP, "cycles", cycles)
		}
	}

	m.mem.Timer().Tick(cycles)
	p := m.mem.PPU()
	p.Tick(cycles)
	if p.FrameReady() {
		m.pres.Present(p.Frame(), m.scx(), m.scy())
	}
	return cycles
}

func (m *Machine) scx() byte { return m.mem.Read(0xFF43) }
func (m *Machine) scy() byte { return m.mem.Read(0xFF42) }

// StepFrame runs Step until a frame has just been rendered (the PPU's
// 143->144 VBlank transition), matching the host's one-call-per-display-
// frame contract.
func (m *Machine) StepFrame() {
	for {
		m.Step()
		if m.mem.PPU().FrameReady() {
			return
		}
	}
}

// Run drives StepFrame in a loop until the host presenter requests quit.
func (m *Machine) Run() {
	for !m.pres.ShouldQuit() {
		m.StepFrame()
	}
}

// CPU exposes the underlying CPU for diagnostic tools and tests.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// MMU exposes the underlying MMU for diagnostic tools.
func (m *Machine) MMU() *mmu.MMU { return m.mem }
