package timer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDIV_IncrementsEvery256Cycles(t *testing.T) {
	tm := New(nil)
	tm.Tick(255)
	require.Equal(t, byte(0), tm.DIV())
	tm.Tick(1)
	require.Equal(t, byte(1), tm.DIV())
}

func TestDIV_ResetOnWrite(t *testing.T) {
	tm := New(nil)
	tm.Tick(1000)
	require.NotEqual(t, byte(0), tm.DIV())
	tm.WriteDIV()
	require.Equal(t, byte(0), tm.DIV())
}

func TestTIMA_IncrementsAtSelectedDivider(t *testing.T) {
	for tac := byte(0); tac < 4; tac++ {
		tm := New(nil)
		tm.WriteTAC(0x04 | tac)
		cycles := 5000
		tm.Tick(cycles)
		want := byte(cycles / dividers[tac])
		require.Equal(t, want, tm.TIMA(), "tac select %d", tac)
	}
}

func TestTIMA_OverflowReloadsAndInterrupts(t *testing.T) {
	var raised []int
	tm := New(func(bit int) { raised = append(raised, bit) })
	tm.WriteTAC(0x05) // enabled, divider=16
	tm.WriteTMA(0x10)
	tm.WriteTIMA(0xFF)
	tm.Tick(16)
	require.Equal(t, byte(0x10), tm.TIMA())
	require.Equal(t, []int{2}, raised)
}

func TestTimer_DisabledDoesNotTickTIMA(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x00) // disabled
	tm.Tick(100000)
	require.Equal(t, byte(0), tm.TIMA())
}
