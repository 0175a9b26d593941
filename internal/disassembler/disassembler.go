/*
 * mips32 - Instruction word disassembly
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

// Package disassembler renders a 32-bit instruction word back to
// human-readable MIPS32 assembly text. It is the inverse of
// package assembler's encoder, sharing the opcode and funct tables
// in package isa so the two stay in lockstep.
package disassembler

import (
	"fmt"

	"github.com/mipssim/mips32/internal/isa"
)

// fields mirrors the decode step in package cpu; disassembly needs
// the same bit layout, just rendered as text instead of executed.
type fields struct {
	opcode uint8
	rs     uint8
	rt     uint8
	rd     uint8
	shamt  uint8
	funct  uint8
	imm    uint16
	imms   int32
	target uint32
}

func decode(inst uint32) fields {
	imm := uint16(inst & 0xffff)
	return fields{
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

func reg(n uint8) string {
	if name := isa.RegisterName(int(n)); name != "" {
		return "$" + name
	}
	return fmt.Sprintf("$%d", n)
}

// Disassemble renders inst, fetched from address addr, as one line of
// assembly text. Branch and jump targets are rendered as absolute
// hexadecimal addresses, since the disassembler has no symbol table
// to recover the original label name from.
func Disassemble(addr, inst uint32) string {
	f := decode(inst)
	mn, ok := isa.Lookup(f.opcode, f.funct)
	if !ok {
		return fmt.Sprintf(".word 0x%08x", inst)
	}

	switch mn.Name {
	case "syscall", "break":
		return mn.Name

	case "jr":
		return fmt.Sprintf("jr %s", reg(f.rs))

	case "sll", "srl", "sra":
		return fmt.Sprintf("%s %s, %s, %d", mn.Name, reg(f.rd), reg(f.rt), f.shamt)

	case "sllv", "srlv", "srav":
		return fmt.Sprintf("%s %s, %s, %s", mn.Name, reg(f.rd), reg(f.rt), reg(f.rs))

	case "add", "addu", "sub", "subu", "and", "or", "xor", "nor", "slt", "sltu":
		if mn.Name == "addu" && f.rt == 0 {
			return fmt.Sprintf("move %s, %s", reg(f.rd), reg(f.rs))
		}
		return fmt.Sprintf("%s %s, %s, %s", mn.Name, reg(f.rd), reg(f.rs), reg(f.rt))

	case "addi", "addiu", "slti", "sltiu":
		return fmt.Sprintf("%s %s, %s, %d", mn.Name, reg(f.rt), reg(f.rs), f.imms)

	case "andi", "ori", "xori":
		return fmt.Sprintf("%s %s, %s, 0x%x", mn.Name, reg(f.rt), reg(f.rs), f.imm)

	case "lui":
		return fmt.Sprintf("lui %s, 0x%x", reg(f.rt), f.imm)

	case "lb", "lbu", "lh", "lhu", "lw", "sb", "sh", "sw":
		return fmt.Sprintf("%s %s, %d(%s)", mn.Name, reg(f.rt), f.imms, reg(f.rs))

	case "beq", "bne":
		target := addr + uint32(f.imms<<2)
		return fmt.Sprintf("%s %s, %s, 0x%08x", mn.Name, reg(f.rs), reg(f.rt), target)

	case "j", "jal":
		target := (addr & 0xf0000000) | (f.target << 2)
		return fmt.Sprintf("%s 0x%08x", mn.Name, target)
	}

	return fmt.Sprintf(".word 0x%08x", inst)
}
