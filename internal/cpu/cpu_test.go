package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// flatMemory is a 64KiB byte-addressable stand-in for the MMU, letting
// these tests exercise the CPU in isolation against its Memory interface.
type flatMemory [0x10000]byte

func (m *flatMemory) Read(addr uint16) byte     { return m[addr] }
func (m *flatMemory) Write(addr uint16, v byte) { m[addr] = v }

func newCPU(prog ...byte) (*CPU, *flatMemory) {
	mem := &flatMemory{}
	copy(mem[:], prog)
	return New(mem), mem
}

func TestStep_NopAdvancesPC(t *testing.T) {
	c, _ := newCPU(0x00)
	cycles := c.Step()
	require.Equal(t, 4, cycles)
	require.Equal(t, uint16(1), c.PC)
}

func TestStep_LoadImmediateAndXor(t *testing.T) {
	c, _ := newCPU(0x3E, 0x12, 0xAF) // LD A,0x12; XOR A
	c.Step()
	require.Equal(t, byte(0x12), c.A)
	c.Step()
	require.Equal(t, byte(0x00), c.A)
	require.True(t, c.flag(flagZ))
}

func TestStep_MemoryRoundTrip(t *testing.T) {
	// LD A,0x77; LD (0xC000),A; LD A,0x00; LD A,(0xC000)
	c, mem := newCPU(0x3E, 0x77, 0xEA, 0x00, 0xC0, 0x3E, 0x00, 0xFA, 0x00, 0xC0)
	c.Step()
	c.Step()
	require.Equal(t, byte(0x77), mem[0xC000])
	c.Step()
	c.Step()
	require.Equal(t, byte(0x77), c.A)
}

func TestExecLoadRR_RegisterToRegister(t *testing.T) {
	c, _ := newCPU(0x41) // LD B,C
	c.C = 0x99
	cycles := c.Step()
	require.Equal(t, 4, cycles)
	require.Equal(t, byte(0x99), c.B)
}

func TestExecLoadRR_ThroughMemoryCostsEightCycles(t *testing.T) {
	c, _ := newCPU(0x46) // LD B,(HL)
	c.SetHL(0xC010)
	c.mem.Write(0xC010, 0x55)
	cycles := c.Step()
	require.Equal(t, 8, cycles)
	require.Equal(t, byte(0x55), c.B)
}

func TestExecALU_AddSetsFlags(t *testing.T) {
	c, _ := newCPU(0x80) // ADD A,B
	c.A = 0x3A
	c.B = 0xC6
	c.Step()
	require.Equal(t, byte(0x00), c.A)
	require.True(t, c.flag(flagZ))
	require.True(t, c.flag(flagH))
	require.True(t, c.flag(flagC))
	require.False(t, c.flag(flagN))
}

func TestExecALU_CompareLeavesARegisterUnchanged(t *testing.T) {
	c, _ := newCPU(0xB8) // CP B
	c.A = 0x10
	c.B = 0x10
	c.Step()
	require.Equal(t, byte(0x10), c.A)
	require.True(t, c.flag(flagZ))
}

func TestIncDec_HalfCarryAndZero(t *testing.T) {
	c, _ := newCPU(0x04, 0x04) // INC B twice
	c.B = 0x0F
	c.F = flagC
	c.Step()
	require.Equal(t, byte(0x10), c.B)
	require.True(t, c.flag(flagH))
	require.True(t, c.flag(flagC), "INC must not clobber the carry flag")

	c.B = 0xFF
	c.Step()
	require.Equal(t, byte(0x00), c.B)
	require.True(t, c.flag(flagZ))
}

func TestDAA_AddThenSubtractRoundTrips(t *testing.T) {
	// 0x45 + 0x38 in BCD = 0x83; DAA after plain binary ADD corrects it.
	c, _ := newCPU(0x80, 0x27, 0x90, 0x27) // ADD A,B; DAA; SUB B; DAA
	c.A = 0x45
	c.B = 0x38
	c.Step() // ADD
	c.Step() // DAA
	require.Equal(t, byte(0x83), c.A)
	c.Step() // SUB B (binary, undoing the ADD)
	c.Step() // DAA
	require.Equal(t, byte(0x45), c.A)
}

func TestCallAndRet(t *testing.T) {
	mem := &flatMemory{}
	mem[0] = 0xCD
	mem[1] = 0x05
	mem[2] = 0x00
	mem[5] = 0xC9 // RET
	c := New(mem)

	c.Step() // CALL 0x0005
	require.Equal(t, uint16(0x0005), c.PC)
	cycles := c.Step() // RET
	require.Equal(t, 16, cycles)
	require.Equal(t, uint16(0x0003), c.PC)
}

func TestJR_Backward(t *testing.T) {
	mem := &flatMemory{}
	mem[0x10] = 0x18 // JR -2
	mem[0x11] = 0xFE
	c := New(mem)
	c.PC = 0x10
	c.Step()
	require.Equal(t, uint16(0x10), c.PC)
}

func TestUndefinedOpcode_HaltsAndRecordsError(t *testing.T) {
	c, _ := newCPU(0xD3) // undefined
	c.Step()
	require.ErrorIs(t, c.Err, ErrUndefinedOpcode)
	require.True(t, c.Halted())
}

// TestHaltWakeup exercises scenario F: IME=0, IE=0x01, HALT, then one
// VBlank worth of the timer/ppu side raising IF; without IME the CPU
// must not dispatch, and with IME=1 it must wake and jump to 0x40.
func TestHaltWakeup(t *testing.T) {
	mem := &flatMemory{}
	mem[0] = 0x76 // HALT
	c := New(mem)
	c.IME = false
	mem.Write(addrIE, 0x01)

	c.Step() // execute HALT
	require.True(t, c.Halted())

	mem.Write(addrIF, 0x01) // VBlank requested
	c.Step()
	require.False(t, c.Halted(), "CPU must wake even without IME")
	require.Equal(t, uint16(0x01), c.PC, "without IME the CPU must not dispatch")

	c.halted = true
	c.IME = true
	cycles := c.Step()
	require.Equal(t, 20, cycles)
	require.Equal(t, uint16(0x40), c.PC)
	require.False(t, c.IME)
}

// TestInterruptPriority exercises scenario D's priority order: VBlank
// before STAT when both are pending.
func TestInterruptPriority(t *testing.T) {
	mem := &flatMemory{}
	c := New(mem)
	c.IME = true
	mem.Write(addrIE, 0x03)  // VBlank + STAT enabled
	mem.Write(addrIF, 0x03)  // both requested
	cycles := c.Step()
	require.Equal(t, 20, cycles)
	require.Equal(t, uint16(0x40), c.PC, "VBlank (bit 0) must dispatch before STAT")
	require.Equal(t, byte(0x02), mem.Read(addrIF), "only the serviced bit is cleared")
}

func TestCB_BitResSet(t *testing.T) {
	c, _ := newCPU(0xCB, 0x7F, 0xCB, 0xC7, 0xCB, 0x87) // BIT 7,A; SET 0,A; RES 0,A
	c.A = 0x00
	c.Step() // BIT 7,A -> Z set (bit7=0)
	require.True(t, c.flag(flagZ))
	c.Step() // SET 0,A
	require.Equal(t, byte(0x01), c.A)
	c.Step() // RES 0,A
	require.Equal(t, byte(0x00), c.A)
}

func TestCB_RotateThroughMemory(t *testing.T) {
	c, _ := newCPU(0xCB, 0x06) // RLC (HL)
	c.SetHL(0xC000)
	c.mem.Write(0xC000, 0x85)
	cycles := c.Step()
	require.Equal(t, 16, cycles)
	require.Equal(t, byte(0x0B), c.mem.Read(0xC000))
	require.True(t, c.flag(flagC))
}
