/*
 * mips32 - Arithmetic, logic, shift and load/store instruction handlers.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a
 * copy of this software and associated documentation files (the "Software"),
 * to deal in the Software without restriction, including without limitation
 * the rights to use, copy, modify, merge, publish, distribute, sublicense,
 * and/or sell copies of the Software, and to permit persons to whom the
 * Software is furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
 * RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 */

package cpu

const msign = uint32(0x80000000)

// addOverflows reports whether a+b, computed as 32-bit unsigned wrap,
// overflows as a signed 32-bit addition. Carry-out-of-sign-bit test,
// not a range comparison on the widened result.
func addOverflows(a, b, sum uint32) bool {
	carry := (a & b) | ((a ^ b) &^ sum)
	return (((carry << 1) ^ carry) & msign) != 0
}

func subOverflows(a, b, diff uint32) bool {
	nb := ^b
	carry := (a & nb) | ((a ^ nb) &^ diff)
	return (((carry << 1) ^ carry) & msign) != 0
}

// execAdd implements add: trap-on-overflow signed addition. The
// result is always computed and written, wrapped mod 2^32; overflow
// only raises IntOverflow, it never suppresses the write.
func (c *CPU) execAdd(s *stepInfo) ExceptionMask {
	a, b := c.regs[s.rs], c.regs[s.rt]
	sum := a + b
	c.regs[s.rd] = sum
	if addOverflows(a, b, sum) {
		return IntOverflow
	}
	return None
}

// execAddu implements addu: unsigned addition, never overflows.
func (c *CPU) execAddu(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rs] + c.regs[s.rt]
	return None
}

func (c *CPU) execSub(s *stepInfo) ExceptionMask {
	a, b := c.regs[s.rs], c.regs[s.rt]
	diff := a - b
	c.regs[s.rd] = diff
	if subOverflows(a, b, diff) {
		return IntOverflow
	}
	return None
}

func (c *CPU) execSubu(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rs] - c.regs[s.rt]
	return None
}

func (c *CPU) execAnd(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rs] & c.regs[s.rt]
	return None
}

func (c *CPU) execOr(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rs] | c.regs[s.rt]
	return None
}

func (c *CPU) execXor(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rs] ^ c.regs[s.rt]
	return None
}

func (c *CPU) execNor(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = ^(c.regs[s.rs] | c.regs[s.rt])
	return None
}

func (c *CPU) execSlt(s *stepInfo) ExceptionMask {
	if int32(c.regs[s.rs]) < int32(c.regs[s.rt]) {
		c.regs[s.rd] = 1
	} else {
		c.regs[s.rd] = 0
	}
	return None
}

func (c *CPU) execSltu(s *stepInfo) ExceptionMask {
	if c.regs[s.rs] < c.regs[s.rt] {
		c.regs[s.rd] = 1
	} else {
		c.regs[s.rd] = 0
	}
	return None
}

func (c *CPU) execSll(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rt] << s.shamt
	return None
}

func (c *CPU) execSrl(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rt] >> s.shamt
	return None
}

func (c *CPU) execSra(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = uint32(int32(c.regs[s.rt]) >> s.shamt)
	return None
}

func (c *CPU) execSllv(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rt] << (c.regs[s.rs] & 0x1f)
	return None
}

func (c *CPU) execSrlv(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = c.regs[s.rt] >> (c.regs[s.rs] & 0x1f)
	return None
}

func (c *CPU) execSrav(s *stepInfo) ExceptionMask {
	c.regs[s.rd] = uint32(int32(c.regs[s.rt]) >> (c.regs[s.rs] & 0x1f))
	return None
}

// execAddi implements addi: trap-on-overflow signed add-immediate.
func (c *CPU) execAddi(s *stepInfo) ExceptionMask {
	a, b := c.regs[s.rs], uint32(s.imms)
	sum := a + b
	c.regs[s.rt] = sum
	if addOverflows(a, b, sum) {
		return IntOverflow
	}
	return None
}

func (c *CPU) execAddiu(s *stepInfo) ExceptionMask {
	c.regs[s.rt] = c.regs[s.rs] + uint32(s.imms)
	return None
}

func (c *CPU) execSlti(s *stepInfo) ExceptionMask {
	if int32(c.regs[s.rs]) < s.imms {
		c.regs[s.rt] = 1
	} else {
		c.regs[s.rt] = 0
	}
	return None
}

func (c *CPU) execSltiu(s *stepInfo) ExceptionMask {
	if c.regs[s.rs] < uint32(s.imms) {
		c.regs[s.rt] = 1
	} else {
		c.regs[s.rt] = 0
	}
	return None
}

func (c *CPU) execAndi(s *stepInfo) ExceptionMask {
	c.regs[s.rt] = c.regs[s.rs] & uint32(s.imm)
	return None
}

func (c *CPU) execOri(s *stepInfo) ExceptionMask {
	c.regs[s.rt] = c.regs[s.rs] | uint32(s.imm)
	return None
}

func (c *CPU) execXori(s *stepInfo) ExceptionMask {
	c.regs[s.rt] = c.regs[s.rs] ^ uint32(s.imm)
	return None
}

func (c *CPU) execLui(s *stepInfo) ExceptionMask {
	c.regs[s.rt] = uint32(s.imm) << 16
	return None
}

// execLb, execLbu: byte loads never raise DataAlign; every address is
// byte-aligned by definition.
func (c *CPU) execLb(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	c.regs[s.rt] = uint32(int32(int8(c.mem.GetByte(addr))))
	return None
}

func (c *CPU) execLbu(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	c.regs[s.rt] = uint32(c.mem.GetByte(addr))
	return None
}

func (c *CPU) execLh(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	if addr&0x1 != 0 {
		return DataAlign
	}
	c.regs[s.rt] = uint32(int32(int16(c.mem.GetHalf(addr))))
	return None
}

func (c *CPU) execLhu(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	if addr&0x1 != 0 {
		return DataAlign
	}
	c.regs[s.rt] = uint32(c.mem.GetHalf(addr))
	return None
}

func (c *CPU) execLw(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	if addr&0x3 != 0 {
		return DataAlign
	}
	c.regs[s.rt] = c.mem.GetWord(addr)
	return None
}

func (c *CPU) execSb(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	c.mem.SetByte(addr, uint8(c.regs[s.rt]))
	return None
}

func (c *CPU) execSh(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	if addr&0x1 != 0 {
		return DataAlign
	}
	c.mem.SetHalf(addr, uint16(c.regs[s.rt]))
	return None
}

func (c *CPU) execSw(s *stepInfo) ExceptionMask {
	addr := c.regs[s.rs] + uint32(s.imms)
	if addr&0x3 != 0 {
		return DataAlign
	}
	c.mem.SetWord(addr, c.regs[s.rt])
	return None
}
