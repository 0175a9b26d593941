/*
 * mips32 - Single-cycle CPU: instruction fetch and execute.
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

// Package cpu implements the single-cycle MIPS32 processor: a 32-entry
// general register file, program counter, and the fetch/decode/execute
// loop. One Step call executes exactly one instruction and returns an
// ExceptionMask describing any exceptional conditions raised.
package cpu

import (
	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

// ExceptionMask is an OR-able bitset of conditions raised by a single Step.
type ExceptionMask uint32

const (
	None              ExceptionMask = 0
	InvalidInst       ExceptionMask = 1
	IntOverflow       ExceptionMask = 2
	PCAlign           ExceptionMask = 4
	DataAlign         ExceptionMask = 8
	BranchInDelaySlot ExceptionMask = 16
	Break             ExceptionMask = 32
	PCLimit           ExceptionMask = 64
	Syscall           ExceptionMask = 128
)

// stepInfo carries the decoded fields of the instruction currently
// being executed, passed to the arithmetic/logic/load-store handler
// for its opcode or funct.
type stepInfo struct {
	opcode uint8
	funct  uint8
	rs     uint8
	rt     uint8
	rd     uint8
	shamt  uint8
	imm    uint16
	imms   int32
	target uint32
}

// CPU holds the architectural state of the simulated processor: the
// program counter, 32 general registers, the executed-instruction
// counter, and the halted flag. It does not own the Memory it
// executes against; the caller supplies one to New and keeps it alive
// for the CPU's lifetime.
type CPU struct {
	PC     uint32
	regs   [32]uint32
	Cycle  uint64
	Halted bool

	// branchTarget is declared for interface parity with a future
	// delay-slot extension (see the Step doc) but is never written;
	// this core has no delay slots.
	branchTarget uint32

	mem *memory.Memory

	// OnEvent, if set, is invoked exactly once per Step call that
	// raises a non-None exception mask or that newly sets Halted,
	// after architectural state for that step has settled. It
	// stands in for a full event/observer bus: this core has
	// exactly one event source (the CPU itself), so one callback is
	// enough.
	OnEvent func(ExceptionMask)

	rtable map[uint8]func(*CPU, *stepInfo) ExceptionMask
	itable map[uint8]func(*CPU, *stepInfo) ExceptionMask
}

// New returns a CPU wired to m and in its post-reset state.
func New(m *memory.Memory) *CPU {
	c := &CPU{mem: m}
	c.createTable()
	c.Reset()
	return c
}

// Registers returns a read-only snapshot of the 32 general registers.
func (c *CPU) Registers() [32]uint32 {
	return c.regs
}

// Register returns the value of general register n (0..31).
func (c *CPU) Register(n int) uint32 {
	return c.regs[n&0x1f]
}

// Reset restores the CPU to its initial architectural state: all
// registers zero except $gp and $sp, pc at the default text origin,
// cycle count zero, halted cleared. It does not touch Memory.
func (c *CPU) Reset() {
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.regs[28] = isa.InitialGP
	c.regs[29] = isa.InitialSP
	c.PC = isa.InitialPC
	c.Cycle = 0
	c.Halted = false
	c.branchTarget = 0
}

// createTable builds the funct dispatch table for opcode SPECIAL's
// arithmetic/logic/shift instructions and the opcode dispatch table
// for the immediate and load/store instructions. Control-transfer
// instructions (jr, j, jal, beq, bne, syscall, break) are handled
// directly in Step, since they mutate pc rather than a register.
//
// Mirrors the teacher's table-of-funcs createTable, generalized from
// a 256-entry array (IBM 370 opcodes are a full byte) to two small
// maps, since MIPS opcode and funct fields are each only 6 bits and
// mostly unused.
func (c *CPU) createTable() {
	c.rtable = map[uint8]func(*CPU, *stepInfo) ExceptionMask{
		isa.FnADD:  (*CPU).execAdd,
		isa.FnADDU: (*CPU).execAddu,
		isa.FnSUB:  (*CPU).execSub,
		isa.FnSUBU: (*CPU).execSubu,
		isa.FnAND:  (*CPU).execAnd,
		isa.FnOR:   (*CPU).execOr,
		isa.FnXOR:  (*CPU).execXor,
		isa.FnNOR:  (*CPU).execNor,
		isa.FnSLT:  (*CPU).execSlt,
		isa.FnSLTU: (*CPU).execSltu,
		isa.FnSLL:  (*CPU).execSll,
		isa.FnSRL:  (*CPU).execSrl,
		isa.FnSRA:  (*CPU).execSra,
		isa.FnSLLV: (*CPU).execSllv,
		isa.FnSRLV: (*CPU).execSrlv,
		isa.FnSRAV: (*CPU).execSrav,
	}
	c.itable = map[uint8]func(*CPU, *stepInfo) ExceptionMask{
		isa.OpADDI:  (*CPU).execAddi,
		isa.OpADDIU: (*CPU).execAddiu,
		isa.OpSLTI:  (*CPU).execSlti,
		isa.OpSLTIU: (*CPU).execSltiu,
		isa.OpANDI:  (*CPU).execAndi,
		isa.OpORI:   (*CPU).execOri,
		isa.OpXORI:  (*CPU).execXori,
		isa.OpLUI:   (*CPU).execLui,
		isa.OpLB:    (*CPU).execLb,
		isa.OpLBU:   (*CPU).execLbu,
		isa.OpLH:    (*CPU).execLh,
		isa.OpLHU:   (*CPU).execLhu,
		isa.OpLW:    (*CPU).execLw,
		isa.OpSB:    (*CPU).execSb,
		isa.OpSH:    (*CPU).execSh,
		isa.OpSW:    (*CPU).execSw,
	}
}

// decode splits inst into the fields used by every instruction format.
func decode(inst uint32) stepInfo {
	imm := uint16(inst & 0xffff)
	return stepInfo{
		opcode: uint8((inst >> 26) & 0x3f),
		rs:     uint8((inst >> 21) & 0x1f),
		rt:     uint8((inst >> 16) & 0x1f),
		rd:     uint8((inst >> 11) & 0x1f),
		shamt:  uint8((inst >> 6) & 0x1f),
		funct:  uint8(inst & 0x3f),
		imm:    imm,
		imms:   int32(int16(imm)),
		target: inst & 0x03ffffff,
	}
}

// Step fetches, decodes and executes exactly one instruction, updates
// pc, and returns the exception mask raised (None if the instruction
// completed without incident).
//
// Delay slots are not modeled: branches and jumps retarget pc
// immediately rather than after one more sequential instruction
// executes. BranchInDelaySlot is defined in ExceptionMask for
// interface parity but Step never raises it — this matches the
// historical simulator this core reproduces, not an oversight.
//
// beq/bne additionally compute their target as pc + (offset<<2),
// using the branch instruction's own address rather than the
// MIPS-canonical pc+4. This is intentionally preserved (see
// SPEC_FULL.md's Open Question decisions) for compatibility with
// existing programs written against this behavior.
func (c *CPU) Step() ExceptionMask {
	c.regs[0] = 0
	pc0 := c.PC

	inst := c.mem.GetWord(pc0)
	step := decode(inst)

	var mask ExceptionMask
	nextPC := pc0 + 4

	switch {
	case step.opcode == isa.OpSPECIAL && step.funct == isa.FnSYS:
		c.Halted = true
		c.regs[0] = 0
		if c.OnEvent != nil {
			c.OnEvent(Syscall)
		}
		return Syscall

	case step.opcode == isa.OpSPECIAL && step.funct == isa.FnBRK:
		mask = Break

	case step.opcode == isa.OpSPECIAL && step.funct == isa.FnJR:
		nextPC = c.regs[step.rs]

	case step.opcode == isa.OpSPECIAL:
		fn, ok := c.rtable[step.funct]
		if !ok {
			mask = InvalidInst
		} else {
			mask = fn(c, &step)
		}

	case step.opcode == isa.OpJ:
		nextPC = (pc0 & 0xf0000000) | (step.target << 2)

	case step.opcode == isa.OpJAL:
		c.regs[31] = pc0 + 4
		nextPC = (pc0 & 0xf0000000) | (step.target << 2)

	case step.opcode == isa.OpBEQ:
		if c.regs[step.rs] == c.regs[step.rt] {
			nextPC = pc0 + uint32(step.imms<<2)
		}

	case step.opcode == isa.OpBNE:
		if c.regs[step.rs] != c.regs[step.rt] {
			nextPC = pc0 + uint32(step.imms<<2)
		}

	default:
		fn, ok := c.itable[step.opcode]
		if !ok {
			mask = InvalidInst
		} else {
			mask = fn(c, &step)
		}
	}

	if nextPC&0x3 != 0 {
		mask |= PCAlign
		nextPC = (nextPC + 3) &^ 3
	}
	c.PC = nextPC
	c.regs[0] = 0
	c.Cycle++

	if mask != None && c.OnEvent != nil {
		c.OnEvent(mask)
	}
	return mask
}
