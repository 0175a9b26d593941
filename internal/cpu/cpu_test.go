package cpu

/*
 * mips32 - CPU execution tests
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

import (
	"testing"

	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

func rtype(opcode, rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(opcode)<<26 | uint32(rs)<<21 | uint32(rt)<<16 |
		uint32(rd)<<11 | uint32(shamt)<<6 | uint32(funct)
}

func itype(opcode, rs, rt uint8, imm uint16) uint32 {
	return uint32(opcode)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(imm)
}

func jtype(opcode uint8, target uint32) uint32 {
	return uint32(opcode)<<26 | (target & 0x03ffffff)
}

func newTestCPU() (*CPU, *memory.Memory) {
	m := memory.New()
	return New(m), m
}

// Reset restores the documented post-reset architectural state.
func TestResetInvariant(t *testing.T) {
	c, _ := newTestCPU()
	c.regs[5] = 0xffffffff
	c.PC = 0x1234
	c.Cycle = 99
	c.Halted = true
	c.Reset()

	if c.PC != isa.InitialPC {
		t.Errorf("pc got: %#x expected: %#x", c.PC, isa.InitialPC)
	}
	if c.regs[29] != isa.InitialSP {
		t.Errorf("$sp got: %#x expected: %#x", c.regs[29], isa.InitialSP)
	}
	if c.regs[28] != isa.InitialGP {
		t.Errorf("$gp got: %#x expected: %#x", c.regs[28], isa.InitialGP)
	}
	if c.regs[5] != 0 {
		t.Errorf("$5 got: %#x expected: 0", c.regs[5])
	}
	if c.Cycle != 0 || c.Halted {
		t.Error("cycle and halted must clear on reset")
	}
}

// Register zero always reads as zero, even after an instruction
// targets it as a destination.
func TestRegisterZeroInvariant(t *testing.T) {
	c, m := newTestCPU()
	m.SetWord(c.PC, rtype(isa.OpSPECIAL, 1, 2, 0, 0, isa.FnADD))
	c.regs[1] = 5
	c.regs[2] = 7
	if mask := c.Step(); mask != None {
		t.Errorf("unexpected mask: %#x", mask)
	}
	if c.regs[0] != 0 {
		t.Errorf("$zero got: %d expected: 0", c.regs[0])
	}
}

// Summing 1..10 with a backward branch loop produces 55 in $t0.
func TestSumOneToTen(t *testing.T) {
	c, m := newTestCPU()
	base := c.PC
	// $t0 = running sum, $t1 = loop counter starting at 1, $t2 = 11
	// (one past the last value added), looping while $t1 != $t2.
	m.SetWord(base+0, itype(isa.OpADDIU, 0, 8, 0))
	m.SetWord(base+4, itype(isa.OpADDIU, 0, 9, 1))
	m.SetWord(base+8, itype(isa.OpADDIU, 0, 10, 11))
	m.SetWord(base+12, rtype(isa.OpSPECIAL, 8, 9, 8, 0, isa.FnADD))
	m.SetWord(base+16, itype(isa.OpADDIU, 9, 9, 1))
	// bne $t1, $t2, loop(base+12): offset = (12 - 20) >> 2 = -2
	m.SetWord(base+20, itype(isa.OpBNE, 9, 10, 0xfffe)) // -2 as 16-bit two's complement
	m.SetWord(base+24, rtype(isa.OpSPECIAL, 0, 0, 0, 0, isa.FnSYS))

	for i := 0; i < 200 && !c.Halted; i++ {
		if mask := c.Step(); mask&(InvalidInst|DataAlign|PCAlign) != 0 {
			t.Fatalf("unexpected exception mask %#x at pc %#x", mask, c.PC)
		}
	}
	if !c.Halted {
		t.Fatal("program did not halt")
	}
	if c.regs[8] != 55 {
		t.Errorf("$t0 got: %d expected: 55", c.regs[8])
	}
}

// add traps on signed overflow but still commits the wrapped result.
func TestAddOverflowTraps(t *testing.T) {
	c, m := newTestCPU()
	m.SetWord(c.PC, rtype(isa.OpSPECIAL, 8, 9, 10, 0, isa.FnADD))
	c.regs[8] = 0x7fffffff
	c.regs[9] = 1
	mask := c.Step()
	if mask&IntOverflow == 0 {
		t.Errorf("expected IntOverflow, got mask %#x", mask)
	}
	if c.regs[10] != 0x80000000 {
		t.Errorf("$t2 got: %#x expected: %#x (wrapped result still committed)", c.regs[10], 0x80000000)
	}
}

// addu never overflows even at the same boundary.
func TestAdduNoOverflow(t *testing.T) {
	c, m := newTestCPU()
	m.SetWord(c.PC, rtype(isa.OpSPECIAL, 8, 9, 10, 0, isa.FnADDU))
	c.regs[8] = 0x7fffffff
	c.regs[9] = 1
	if mask := c.Step(); mask != None {
		t.Errorf("unexpected mask: %#x", mask)
	}
	if c.regs[10] != 0x80000000 {
		t.Errorf("$t2 got: %#x expected: %#x", c.regs[10], 0x80000000)
	}
}

// An unaligned word load raises DataAlign without mutating the
// destination register or faulting the program counter.
func TestUnalignedLoadRaisesDataAlign(t *testing.T) {
	c, m := newTestCPU()
	c.regs[8] = 1 // base, off-by-one from a word boundary
	c.regs[9] = 0xffffffff
	m.SetWord(c.PC, itype(isa.OpLW, 8, 9, 0))
	mask := c.Step()
	if mask&DataAlign == 0 {
		t.Errorf("expected DataAlign, got mask %#x", mask)
	}
	if c.regs[9] != 0xffffffff {
		t.Error("destination register must be untouched on DataAlign")
	}
}

// jr retargets pc to the register value with no delay slot executed.
func TestJrRetargetsPC(t *testing.T) {
	c, m := newTestCPU()
	c.regs[31] = 0x00040100
	m.SetWord(c.PC, rtype(isa.OpSPECIAL, 31, 0, 0, 0, isa.FnJR))
	c.Step()
	if c.PC != 0x00040100 {
		t.Errorf("pc got: %#x expected: %#x", c.PC, 0x00040100)
	}
}

// jal writes the return address and jumps to the packed target.
func TestJalLinksAndJumps(t *testing.T) {
	c, m := newTestCPU()
	base := c.PC
	target := uint32(0x00040200)
	m.SetWord(base, jtype(isa.OpJAL, target>>2))
	c.Step()
	if c.regs[31] != base+4 {
		t.Errorf("$ra got: %#x expected: %#x", c.regs[31], base+4)
	}
	if c.PC != target {
		t.Errorf("pc got: %#x expected: %#x", c.PC, target)
	}
}

// syscall halts the CPU and fires OnEvent exactly once, without
// advancing pc.
func TestSyscallHaltsAndFiresEvent(t *testing.T) {
	c, m := newTestCPU()
	pc0 := c.PC
	m.SetWord(pc0, rtype(isa.OpSPECIAL, 0, 0, 0, 0, isa.FnSYS))
	events := 0
	c.OnEvent = func(mask ExceptionMask) {
		events++
		if mask != Syscall {
			t.Errorf("event mask got: %#x expected: %#x", mask, Syscall)
		}
	}
	mask := c.Step()
	if mask != Syscall {
		t.Errorf("return mask got: %#x expected: %#x", mask, Syscall)
	}
	if !c.Halted {
		t.Error("expected Halted after syscall")
	}
	if events != 1 {
		t.Errorf("OnEvent fired %d times, expected 1", events)
	}
	if c.PC != pc0 {
		t.Errorf("pc got: %#x expected unchanged %#x", c.PC, pc0)
	}
}

// An invalid opcode raises InvalidInst and still advances pc, since
// this core has no trap handler to redirect control flow.
func TestInvalidInstruction(t *testing.T) {
	c, m := newTestCPU()
	m.SetWord(c.PC, uint32(0x3f)<<26) // opcode 0x3f is unassigned
	mask := c.Step()
	if mask&InvalidInst == 0 {
		t.Errorf("expected InvalidInst, got mask %#x", mask)
	}
}
