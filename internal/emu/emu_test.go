package emu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePresenter struct {
	frames int
	quit   bool
}

func (f *fakePresenter) Present(shades *[160 * 144]byte, scx, scy byte) { f.frames++ }
func (f *fakePresenter) PollInput() byte                                { return 0 }
func (f *fakePresenter) ShouldQuit() bool                               { return f.quit }

func blankROM() []byte {
	return make([]byte, 32*1024)
}

func TestLoadCartridge_SkipBootAppliesPostBIOSState(t *testing.T) {
	m := New(Config{SkipBoot: true}, &fakePresenter{}, nil)
	require.NoError(t, m.LoadCartridge(blankROM(), nil))
	require.Equal(t, uint16(0x0100), m.CPU().PC)
	require.Equal(t, byte(0x01), m.CPU().A)
	require.Equal(t, uint16(0xFFFE), m.CPU().SP)
	require.Equal(t, byte(0x91), m.MMU().Read(0xFF40))
}

func TestLoadCartridge_RejectsShortROM(t *testing.T) {
	m := New(Config{}, &fakePresenter{}, nil)
	err := m.LoadCartridge([]byte{0x00}, nil)
	require.Error(t, err)
}

func TestStep_ExecutesOneInstruction(t *testing.T) {
	m := New(Config{SkipBoot: true}, &fakePresenter{}, nil)
	require.NoError(t, m.LoadCartridge(blankROM(), nil))
	m.MMU().Write(0x0100, 0x00) // NOP at PC
	divBefore := m.MMU().Read(0xFF04)
	m.Step()
	_ = divBefore
	require.Equal(t, uint16(0x0101), m.CPU().PC)
}

func TestStepFrame_InvokesPresentOnce(t *testing.T) {
	pres := &fakePresenter{}
	m := New(Config{SkipBoot: true}, pres, nil)
	require.NoError(t, m.LoadCartridge(blankROM(), nil))
	m.StepFrame()
	require.Equal(t, 1, pres.frames)
}

func TestDMA_OwnsTheBusUntilComplete(t *testing.T) {
	m := New(Config{SkipBoot: true}, &fakePresenter{}, nil)
	require.NoError(t, m.LoadCartridge(blankROM(), nil))
	for i := 0; i < 0xA0; i++ {
		m.MMU().Write(0xC000+uint16(i), byte(i))
	}
	m.MMU().Write(0xFF46, 0xC0)
	require.True(t, m.MMU().DMAInProgress())

	pcBefore := m.CPU().PC
	for m.MMU().DMAInProgress() {
		m.Step()
	}
	require.Equal(t, pcBefore, m.CPU().PC, "CPU must not execute while DMA owns the bus")
}
