package mmu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelsoft/gbz80/internal/cart"
)

func newMMU() *MMU {
	rom := make([]byte, cart.MinSize)
	c, err := cart.Load(rom)
	if err != nil {
		panic(err)
	}
	return New(c)
}

func TestWRAM_EchoMirrorsWork(t *testing.T) {
	m := newMMU()
	m.Write(0xC010, 0x42)
	require.Equal(t, byte(0x42), m.Read(0xE010))

	m.Write(0xE020, 0x7E)
	require.Equal(t, byte(0x7E), m.Read(0xC020))
}

func TestHRAM_RoundTrip(t *testing.T) {
	m := newMMU()
	m.Write(0xFF80, 0x11)
	require.Equal(t, byte(0x11), m.Read(0xFF80))
}

func TestInterruptRegisters_IEandIF(t *testing.T) {
	m := newMMU()
	m.Write(0xFFFF, 0x1F)
	require.Equal(t, byte(0x1F), m.Read(0xFFFF))

	m.Write(0xFF0F, 0x03)
	require.Equal(t, byte(0xE0|0x03), m.Read(0xFF0F))
}

func TestOAMDMA_CopiesSourceBlockOverSeqCycles(t *testing.T) {
	m := newMMU()
	for i := 0; i < 0xA0; i++ {
		m.Write(0xC000+uint16(i), byte(i))
	}
	m.Write(0xFF46, 0xC0) // source = 0xC000

	require.True(t, m.DMAInProgress())
	m.Step(0xA0 * 4)
	require.False(t, m.DMAInProgress())

	for i := 0; i < 0xA0; i++ {
		require.Equal(t, byte(i), m.ppu.CPURead(0xFE00+uint16(i)))
	}
}

func TestOAMDMA_BlocksOAMReadsWhileActive(t *testing.T) {
	m := newMMU()
	m.Write(0xC000, 0xAB)
	m.Write(0xFF46, 0xC0)
	require.Equal(t, byte(0xFF), m.Read(0xFE00))
	m.Step(0xA0 * 4)
	require.Equal(t, byte(0xAB), m.Read(0xFE00))
}

func TestJoypad_SelectAndButtons(t *testing.T) {
	m := newMMU()
	m.SetJoypadState(JoypA | JoypUp)
	m.Write(0xFF00, 0x10) // select buttons (P14 high, P15 low)
	got := m.Read(0xFF00)
	require.Equal(t, byte(0), got&0x01, "A should read pressed (bit low)")

	m.Write(0xFF00, 0x20) // select dpad
	got = m.Read(0xFF00)
	require.Equal(t, byte(0), got&0x04, "Up should read pressed (bit low)")
}

func TestBootROMOverlay_DisablesOnWrite(t *testing.T) {
	m := newMMU()
	boot := make([]byte, 0x100)
	boot[0] = 0xAA
	require.NoError(t, m.LoadBootROM(boot))
	require.Equal(t, byte(0xAA), m.Read(0x0000))

	m.Write(0xFF50, 0x01)
	require.NotEqual(t, byte(0xAA), m.Read(0x0000))
}

func TestLoadBootROM_RejectsShortImage(t *testing.T) {
	m := newMMU()
	require.ErrorIs(t, m.LoadBootROM([]byte{0x00}), ErrInvalidAddress)
}
