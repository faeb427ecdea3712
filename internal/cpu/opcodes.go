package cpu

// execute dispatches one primary (non-CB) opcode and returns its cycle
// cost. The two large regular blocks (0x40-0x7F LD r,r' and 0x80-0xBF
// ALU A,r) are decoded by 3-bit register index rather than hand-written
// per the documented opcode table's own regularity; everything else is
// irregular enough to list case by case.
func (c *CPU) execute(op byte) int {
	switch {
	case op == 0x76:
		c.halted = true
		return 4
	case op >= 0x40 && op <= 0x7F:
		return c.execLoadRR(op)
	case op >= 0x80 && op <= 0xBF:
		return c.execALU(op)
	}

	switch op {
	case 0x00: // NOP
		return 4
	case 0x10: // STOP (low-power; the following byte is conventionally 0x00)
		c.fetch8()
		return 4
	case 0x01:
		c.SetBC(c.fetch16())
		return 12
	case 0x11:
		c.SetDE(c.fetch16())
		return 12
	case 0x21:
		c.SetHL(c.fetch16())
		return 12
	case 0x31:
		c.SP = c.fetch16()
		return 12
	case 0x02:
		c.write8(c.BC(), c.A)
		return 8
	case 0x12:
		c.write8(c.DE(), c.A)
		return 8
	case 0x0A:
		c.A = c.read8(c.BC())
		return 8
	case 0x1A:
		c.A = c.read8(c.DE())
		return 8
	case 0x22: // LD (HL+),A
		c.write8(c.HL(), c.A)
		c.SetHL(c.HL() + 1)
		return 8
	case 0x2A: // LD A,(HL+)
		c.A = c.read8(c.HL())
		c.SetHL(c.HL() + 1)
		return 8
	case 0x32: // LD (HL-),A
		c.write8(c.HL(), c.A)
		c.SetHL(c.HL() - 1)
		return 8
	case 0x3A: // LD A,(HL-)
		c.A = c.read8(c.HL())
		c.SetHL(c.HL() - 1)
		return 8
	case 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 20
	case 0x06:
		c.B = c.fetch8()
		return 8
	case 0x0E:
		c.C = c.fetch8()
		return 8
	case 0x16:
		c.D = c.fetch8()
		return 8
	case 0x1E:
		c.E = c.fetch8()
		return 8
	case 0x26:
		c.H = c.fetch8()
		return 8
	case 0x2E:
		c.L = c.fetch8()
		return 8
	case 0x36:
		c.write8(c.HL(), c.fetch8())
		return 12
	case 0x3E:
		c.A = c.fetch8()
		return 8

	case 0x03:
		c.SetBC(c.BC() + 1)
		return 8
	case 0x13:
		c.SetDE(c.DE() + 1)
		return 8
	case 0x23:
		c.SetHL(c.HL() + 1)
		return 8
	case 0x33:
		c.SP++
		return 8
	case 0x0B:
		c.SetBC(c.BC() - 1)
		return 8
	case 0x1B:
		c.SetDE(c.DE() - 1)
		return 8
	case 0x2B:
		c.SetHL(c.HL() - 1)
		return 8
	case 0x3B:
		c.SP--
		return 8

	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		r := c.reg8((op >> 3) & 7)
		res, z, n, h := inc8(*r)
		*r = res
		c.setFlags(z, n, h, c.flag(flagC))
		return 4
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		r := c.reg8((op >> 3) & 7)
		res, z, n, h := dec8(*r)
		*r = res
		c.setFlags(z, n, h, c.flag(flagC))
		return 4
	case 0x34:
		res, z, n, h := inc8(c.read8(c.HL()))
		c.write8(c.HL(), res)
		c.setFlags(z, n, h, c.flag(flagC))
		return 12
	case 0x35:
		res, z, n, h := dec8(c.read8(c.HL()))
		c.write8(c.HL(), res)
		c.setFlags(z, n, h, c.flag(flagC))
		return 12

	case 0x09, 0x19, 0x29, 0x39:
		var operand uint16
		switch op {
		case 0x09:
			operand = c.BC()
		case 0x19:
			operand = c.DE()
		case 0x29:
			operand = c.HL()
		case 0x39:
			operand = c.SP
		}
		res, _, h, cy := add16(c.HL(), operand)
		c.SetHL(res)
		c.setFlags(c.flag(flagZ), false, h, cy)
		return 8

	case 0x07: // RLCA
		res, _, cy := rlc(c.A)
		c.A = res
		c.setFlags(false, false, false, cy)
		return 4
	case 0x0F: // RRCA
		res, _, cy := rrc(c.A)
		c.A = res
		c.setFlags(false, false, false, cy)
		return 4
	case 0x17: // RLA
		res, _, cy := rl(c.A, c.flag(flagC))
		c.A = res
		c.setFlags(false, false, false, cy)
		return 4
	case 0x1F: // RRA
		res, _, cy := rr(c.A, c.flag(flagC))
		c.A = res
		c.setFlags(false, false, false, cy)
		return 4
	case 0x27: // DAA
		res, f := daa(c.A, c.F)
		c.A = res
		c.F = f
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = c.F | flagN | flagH
		return 4
	case 0x37: // SCF
		c.F = (c.F & flagZ) | flagC
		return 4
	case 0x3F: // CCF
		z := c.flag(flagZ)
		c.setFlags(z, false, false, !c.flag(flagC))
		return 4

	case 0x18: // JR r8
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	case 0x20, 0x28, 0x30, 0x38:
		off := int8(c.fetch8())
		if c.jrCond(op) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 12
		}
		return 8

	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16
	case 0xE9: // JP (HL)
		c.PC = c.HL()
		return 4
	case 0xC2, 0xCA, 0xD2, 0xDA:
		addr := c.fetch16()
		if c.jpCallCond(op) {
			c.PC = addr
			return 16
		}
		return 12

	case 0xCD: // CALL a16
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC4, 0xCC, 0xD4, 0xDC:
		addr := c.fetch16()
		if c.jpCallCond(op) {
			c.push16(c.PC)
			c.PC = addr
			return 24
		}
		return 12

	case 0xC9: // RET
		c.PC = c.pop16()
		return 16
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.IME = true
		return 16
	case 0xC0, 0xC8, 0xD0, 0xD8:
		if c.jpCallCond(op) {
			c.PC = c.pop16()
			return 20
		}
		return 8

	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op - 0xC7)
		return 16

	case 0xC1:
		c.SetBC(c.pop16())
		return 12
	case 0xD1:
		c.SetDE(c.pop16())
		return 12
	case 0xE1:
		c.SetHL(c.pop16())
		return 12
	case 0xF1:
		c.SetAF(c.pop16())
		return 12
	case 0xC5:
		c.push16(c.BC())
		return 16
	case 0xD5:
		c.push16(c.DE())
		return 16
	case 0xE5:
		c.push16(c.HL())
		return 16
	case 0xF5:
		c.push16(c.AF())
		return 16

	case 0xE0: // LDH (a8),A
		c.write8(0xFF00+uint16(c.fetch8()), c.A)
		return 12
	case 0xF0: // LDH A,(a8)
		c.A = c.read8(0xFF00 + uint16(c.fetch8()))
		return 12
	case 0xE2: // LD (C),A
		c.write8(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2: // LD A,(C)
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 8
	case 0xEA: // LD (a16),A
		c.write8(c.fetch16(), c.A)
		return 16
	case 0xFA: // LD A,(a16)
		c.A = c.read8(c.fetch16())
		return 16

	case 0xF9: // LD SP,HL
		c.SP = c.HL()
		return 8
	case 0xF8: // LD HL,SP+r8
		off := int8(c.fetch8())
		res, h, cy := addSPSigned(c.SP, off)
		c.SetHL(res)
		c.setFlags(false, false, h, cy)
		return 12
	case 0xE8: // ADD SP,r8
		off := int8(c.fetch8())
		res, h, cy := addSPSigned(c.SP, off)
		c.SP = res
		c.setFlags(false, false, h, cy)
		return 16

	case 0xF3: // DI
		c.IME = false
		c.eiPending = false
		return 4
	case 0xFB: // EI
		c.eiPending = true
		return 4

	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		return c.execALUImm((op>>3)&7, c.fetch8())

	case 0xCB:
		return c.executeCB(c.fetch8())

	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		c.Err = ErrUndefinedOpcode
		c.halted = true
		return 4

	default:
		c.Err = ErrUndefinedOpcode
		c.halted = true
		return 4
	}
}

// jrCond evaluates the condition for a conditional JR, keyed by the
// opcode's own bits (NZ=0x20, Z=0x28, NC=0x30, C=0x38).
func (c *CPU) jrCond(op byte) bool {
	switch op {
	case 0x20:
		return !c.flag(flagZ)
	case 0x28:
		return c.flag(flagZ)
	case 0x30:
		return !c.flag(flagC)
	default: // 0x38
		return c.flag(flagC)
	}
}

// jpCallCond evaluates the shared condition encoding used by conditional
// JP/CALL/RET: bits 4-3 of the opcode select NZ/Z/NC/C.
func (c *CPU) jpCallCond(op byte) bool {
	switch (op >> 3) & 3 {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	default:
		return c.flag(flagC)
	}
}

// execLoadRR implements the regular LD r,r' block 0x40-0x7F (HALT at
// 0x76 is intercepted before this is called): bits 5-3 select the
// destination, bits 2-0 the source, either side may be (HL).
func (c *CPU) execLoadRR(op byte) int {
	dst := (op >> 3) & 7
	src := op & 7
	v := c.get8(src)
	c.set8(dst, v)
	if dst == 6 || src == 6 {
		return 8
	}
	return 4
}

// execALU implements the regular ALU A,r block 0x80-0xBF: bits 5-3
// select the operation, bits 2-0 the operand register (or (HL)).
func (c *CPU) execALU(op byte) int {
	operand := c.get8(op & 7)
	cycles := 4
	if op&7 == 6 {
		cycles = 8
	}

	var res byte
	var z, n, h, cy bool
	switch (op >> 3) & 7 {
	case 0:
		res, z, n, h, cy = add8(c.A, operand)
	case 1:
		res, z, n, h, cy = adc8(c.A, operand, c.flag(flagC))
	case 2:
		res, z, n, h, cy = sub8(c.A, operand)
	case 3:
		res, z, n, h, cy = sbc8(c.A, operand, c.flag(flagC))
	case 4:
		res, z, n, h, cy = and8(c.A, operand)
	case 5:
		res, z, n, h, cy = xor8(c.A, operand)
	case 6:
		res, z, n, h, cy = or8(c.A, operand)
	case 7: // CP: flags only, A unchanged
		res, z, n, h, cy = sub8(c.A, operand)
		c.setFlags(z, n, h, cy)
		return cycles
	}
	c.A = res
	c.setFlags(z, n, h, cy)
	return cycles
}

// execALUImm implements the eight immediate-operand ALU opcodes
// (0xC6,0xCE,0xD6,0xDE,0xE6,0xEE,0xF6,0xFE), sharing execALU's op table
// via the same bits 5-3 selector.
func (c *CPU) execALUImm(selector byte, operand byte) int {
	var res byte
	var z, n, h, cy bool
	switch selector {
	case 0:
		res, z, n, h, cy = add8(c.A, operand)
	case 1:
		res, z, n, h, cy = adc8(c.A, operand, c.flag(flagC))
	case 2:
		res, z, n, h, cy = sub8(c.A, operand)
	case 3:
		res, z, n, h, cy = sbc8(c.A, operand, c.flag(flagC))
	case 4:
		res, z, n, h, cy = and8(c.A, operand)
	case 5:
		res, z, n, h, cy = xor8(c.A, operand)
	case 6:
		res, z, n, h, cy = or8(c.A, operand)
	case 7:
		res, z, n, h, cy = sub8(c.A, operand)
		c.setFlags(z, n, h, cy)
		return 8
	}
	c.A = res
	c.setFlags(z, n, h, cy)
	return 8
}
