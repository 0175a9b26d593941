/*
 * mips32 - Opcode and register definitions shared by the assembler,
 * disassembler and CPU.
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

// Package isa holds the opcode, funct and register-name tables that the
// assembler, disassembler and CPU all need to agree on. Keeping them
// in one place is what lets the disassembler round-trip the
// assembler's own encodings (see the assembler/disassembler tests).
package isa

// Opcode field values (bits 31:26).
const (
	OpSPECIAL = 0x00
	OpJ       = 0x02
	OpJAL     = 0x03
	OpBEQ     = 0x04
	OpBNE     = 0x05
	OpADDI    = 0x08
	OpADDIU   = 0x09
	OpSLTI    = 0x0A
	OpSLTIU   = 0x0B
	OpANDI    = 0x0C
	OpORI     = 0x0D
	OpXORI    = 0x0E
	OpLUI     = 0x0F
	OpLB      = 0x20
	OpLH      = 0x21
	OpLW      = 0x23
	OpLBU     = 0x24
	OpLHU     = 0x25
	OpSB      = 0x28
	OpSH      = 0x29
	OpSW      = 0x2B
)

// Funct field values for opcode SPECIAL (bits 5:0).
const (
	FnSLL  = 0x00
	FnSRL  = 0x02
	FnSRA  = 0x03
	FnSLLV = 0x04
	FnSRLV = 0x06
	FnSRAV = 0x07
	FnJR   = 0x08
	FnSYS  = 0x0C
	FnBRK  = 0x0D
	FnADD  = 0x20
	FnADDU = 0x21
	FnSUB  = 0x22
	FnSUBU = 0x23
	FnAND  = 0x24
	FnOR   = 0x25
	FnXOR  = 0x26
	FnNOR  = 0x27
	FnSLT  = 0x2A
	FnSLTU = 0x2B
)

// Instruction formats.
type Format int

const (
	FmtR Format = iota
	FmtI
	FmtJ
)

// Mnemonic describes how one instruction's bits are laid out and named.
type Mnemonic struct {
	Name   string
	Format Format
	Opcode uint8
	Funct  uint8 // only meaningful for Format == FmtR
}

// Mnemonics is keyed by the canonical (lowercase) instruction name.
var Mnemonics = map[string]Mnemonic{
	"add":   {"add", FmtR, OpSPECIAL, FnADD},
	"addu":  {"addu", FmtR, OpSPECIAL, FnADDU},
	"sub":   {"sub", FmtR, OpSPECIAL, FnSUB},
	"subu":  {"subu", FmtR, OpSPECIAL, FnSUBU},
	"and":   {"and", FmtR, OpSPECIAL, FnAND},
	"or":    {"or", FmtR, OpSPECIAL, FnOR},
	"xor":   {"xor", FmtR, OpSPECIAL, FnXOR},
	"nor":   {"nor", FmtR, OpSPECIAL, FnNOR},
	"slt":   {"slt", FmtR, OpSPECIAL, FnSLT},
	"sltu":  {"sltu", FmtR, OpSPECIAL, FnSLTU},
	"sll":   {"sll", FmtR, OpSPECIAL, FnSLL},
	"srl":   {"srl", FmtR, OpSPECIAL, FnSRL},
	"sra":   {"sra", FmtR, OpSPECIAL, FnSRA},
	"sllv":  {"sllv", FmtR, OpSPECIAL, FnSLLV},
	"srlv":  {"srlv", FmtR, OpSPECIAL, FnSRLV},
	"srav":  {"srav", FmtR, OpSPECIAL, FnSRAV},
	"jr":    {"jr", FmtR, OpSPECIAL, FnJR},
	"syscall": {"syscall", FmtR, OpSPECIAL, FnSYS},
	"break":   {"break", FmtR, OpSPECIAL, FnBRK},

	"addi":  {"addi", FmtI, OpADDI, 0},
	"addiu": {"addiu", FmtI, OpADDIU, 0},
	"slti":  {"slti", FmtI, OpSLTI, 0},
	"sltiu": {"sltiu", FmtI, OpSLTIU, 0},
	"andi":  {"andi", FmtI, OpANDI, 0},
	"ori":   {"ori", FmtI, OpORI, 0},
	"xori":  {"xori", FmtI, OpXORI, 0},
	"lui":   {"lui", FmtI, OpLUI, 0},
	"lb":    {"lb", FmtI, OpLB, 0},
	"lbu":   {"lbu", FmtI, OpLBU, 0},
	"lh":    {"lh", FmtI, OpLH, 0},
	"lhu":   {"lhu", FmtI, OpLHU, 0},
	"lw":    {"lw", FmtI, OpLW, 0},
	"sb":    {"sb", FmtI, OpSB, 0},
	"sh":    {"sh", FmtI, OpSH, 0},
	"sw":    {"sw", FmtI, OpSW, 0},
	"beq":   {"beq", FmtI, OpBEQ, 0},
	"bne":   {"bne", FmtI, OpBNE, 0},

	"j":   {"j", FmtJ, OpJ, 0},
	"jal": {"jal", FmtJ, OpJAL, 0},
}

// ByOpcodeFunct indexes Mnemonics by (opcode, funct) for decode/disassembly.
// Non-SPECIAL opcodes are keyed with funct 0.
var ByOpcodeFunct = buildReverse()

func buildReverse() map[[2]uint8]Mnemonic {
	m := make(map[[2]uint8]Mnemonic, len(Mnemonics))
	for _, mn := range Mnemonics {
		key := [2]uint8{mn.Opcode, 0}
		if mn.Opcode == OpSPECIAL {
			key[1] = mn.Funct
		}
		m[key] = mn
	}
	return m
}

// Lookup returns the mnemonic for a decoded (opcode, funct) pair.
func Lookup(opcode, funct uint8) (Mnemonic, bool) {
	key := [2]uint8{opcode, 0}
	if opcode == OpSPECIAL {
		key[1] = funct
	}
	mn, ok := ByOpcodeFunct[key]
	return mn, ok
}

// RegisterNames maps the symbolic MIPS register names to their number,
// lowercased. "zero" and "$zero" both resolve to register 0.
var RegisterNames = map[string]int{
	"zero": 0, "at": 1,
	"v0": 2, "v1": 3,
	"a0": 4, "a1": 5, "a2": 6, "a3": 7,
	"t0": 8, "t1": 9, "t2": 10, "t3": 11, "t4": 12, "t5": 13, "t6": 14, "t7": 15,
	"s0": 16, "s1": 17, "s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"t8": 24, "t9": 25,
	"k0": 26, "k1": 27,
	"gp": 28, "sp": 29, "fp": 30, "ra": 31,
}

// RegisterName returns the canonical symbolic name ("$t0" style is
// formed by the caller) for register number n.
func RegisterName(n int) string {
	for name, num := range RegisterNames {
		if num == n {
			return name
		}
	}
	return ""
}

// Initial architectural register values.
const (
	InitialGP = 0x10008000
	InitialSP = 0x7FFFFFFC
	InitialPC = 0x00040000

	DefaultTextStart = 0x00040000
	DefaultDataStart = 0x10000000
)
