/*
 * mips32 - Instruction operand parsing and bit-exact encoding
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

package assembler

import (
	"strconv"
	"strings"

	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

// pass2 re-walks lines with every label now resolved, emitting
// instruction words and data bytes.
func (a *Assembler) pass2(lines []sourceLine, textWords int, dataLen uint32) (memory.Image, error) {
	img := memory.Image{
		TextStart: a.textStart,
		TextWords: make([]uint32, 0, textWords),
		DataStart: a.dataStart,
		DataBytes: make([]byte, 0, dataLen),
	}

	seg := segText
	textAddr := a.textStart

	emitWord := func(v uint32) {
		img.TextWords = append(img.TextWords, v)
	}
	padData := func(n int) {
		img.DataBytes = append(img.DataBytes, make([]byte, n)...)
	}

	for _, ln := range lines {
		toks := ln.toks
		for len(toks) > 0 && toks[0].Kind == TokLabel {
			toks = toks[1:]
		}
		if len(toks) == 0 || toks[0].Kind == TokEOF {
			continue
		}

		if toks[0].Kind == TokDirective {
			dir := strings.ToLower(toks[0].Text)
			operands := toks[1:]
			switch dir {
			case ".text":
				seg = segText
				if addr, ok := directiveAddr(operands); ok {
					textAddr = addr
				}
			case ".data":
				seg = segData
				// base address relocation for .data is honored only
				// in pass1's address accounting; DataBytes is always
				// laid out contiguously from img.DataStart.
			case ".word":
				padData(alignPad(a.dataStart, len(img.DataBytes), 4))
				for _, v := range numericOperands(operands) {
					b := make([]byte, 4)
					b[0] = byte(v >> 24)
					b[1] = byte(v >> 16)
					b[2] = byte(v >> 8)
					b[3] = byte(v)
					img.DataBytes = append(img.DataBytes, b...)
				}
			case ".half":
				padData(alignPad(a.dataStart, len(img.DataBytes), 2))
				for _, v := range numericOperands(operands) {
					img.DataBytes = append(img.DataBytes, byte(v>>8), byte(v))
				}
			case ".byte":
				for _, v := range numericOperands(operands) {
					img.DataBytes = append(img.DataBytes, byte(v))
				}
			case ".ascii":
				s, _ := directiveString(operands, ln.num)
				img.DataBytes = append(img.DataBytes, []byte(s)...)
			case ".asciiz":
				s, _ := directiveString(operands, ln.num)
				img.DataBytes = append(img.DataBytes, []byte(s)...)
				img.DataBytes = append(img.DataBytes, 0)
			case ".space":
				n, _ := directiveInt(operands)
				padData(int(n))
			case ".align":
				n, _ := directiveInt(operands)
				align := uint32(1) << uint(n)
				if seg == segText {
					want := alignUp(textAddr, align)
					for textAddr < want {
						emitWord(0)
						textAddr += 4
					}
				} else {
					padData(alignPad(a.dataStart, len(img.DataBytes), align))
				}
			}
			continue
		}

		if seg != segText {
			return memory.Image{}, &Error{ln.num, "instruction outside .text segment"}
		}
		word, err := a.encodeLine(toks, textAddr, ln.num)
		if err != nil {
			return memory.Image{}, err
		}
		emitWord(word)
		textAddr += 4
	}

	return img, nil
}

// alignPad reports how many padding bytes must follow the dataLen
// bytes already emitted (starting at dataStart) to reach the next
// multiple of align.
func alignPad(dataStart uint32, dataLen int, align uint32) int {
	cur := dataStart + uint32(dataLen)
	return int(alignUp(cur, align) - cur)
}

func numericOperands(toks []Token) []int64 {
	var out []int64
	for _, t := range toks {
		if t.Kind == TokNumber {
			out = append(out, t.Int)
		}
	}
	return out
}

// encodeLine encodes one instruction line (mnemonic plus operands) at
// address addr into its 32-bit instruction word.
func (a *Assembler) encodeLine(toks []Token, addr uint32, lineNum int) (uint32, error) {
	name := strings.ToLower(toks[0].Text)
	ops := toks[1:]
	// lexLine ends every line with a TokEOF; the operand parsers see
	// only the real operands.
	if n := len(ops); n > 0 && ops[n-1].Kind == TokEOF {
		ops = ops[:n-1]
	}

	switch name {
	case "nop":
		if len(ops) != 0 {
			return 0, &Error{lineNum, "nop takes no operands"}
		}
		return 0, nil
	case "move":
		rd, rs, err := a.parseTwoRegs(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeR(isa.OpSPECIAL, rs, 0, rd, 0, isa.FnADDU), nil
	}

	mn, ok := isa.Mnemonics[name]
	if !ok {
		return 0, &Error{lineNum, "undefined mnemonic " + name}
	}

	switch name {
	case "sll", "srl", "sra":
		rd, rt, shamt, err := a.parseShift(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeR(mn.Opcode, 0, rt, rd, shamt, mn.Funct), nil

	case "sllv", "srlv", "srav":
		rd, rt, rs, err := a.parseThreeRegs(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeR(mn.Opcode, rs, rt, rd, 0, mn.Funct), nil

	case "jr":
		rs, err := a.parseOneReg(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeR(mn.Opcode, rs, 0, 0, 0, mn.Funct), nil

	case "syscall", "break":
		if len(ops) != 0 {
			return 0, &Error{lineNum, name + " takes no operands"}
		}
		return encodeR(mn.Opcode, 0, 0, 0, 0, mn.Funct), nil

	case "add", "addu", "sub", "subu", "and", "or", "xor", "nor", "slt", "sltu":
		rd, rs, rt, err := a.parseThreeRegs(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeR(mn.Opcode, rs, rt, rd, 0, mn.Funct), nil

	case "addi", "addiu", "slti", "sltiu", "andi", "ori", "xori":
		rt, rs, imm, err := a.parseRegRegImm(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeI(mn.Opcode, rs, rt, uint16(imm)), nil

	case "lui":
		rt, imm, err := a.parseLuiOperand(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeI(mn.Opcode, 0, rt, imm), nil

	case "lb", "lbu", "lh", "lhu", "lw", "sb", "sh", "sw":
		rt, rs, imm, err := a.parseMemOperand(ops, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeI(mn.Opcode, rs, rt, uint16(imm)), nil

	case "beq", "bne":
		rs, rt, target, err := a.parseBranch(ops, addr, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeI(mn.Opcode, rs, rt, target), nil

	case "j", "jal":
		target, err := a.parseJumpTarget(ops, addr, lineNum)
		if err != nil {
			return 0, err
		}
		return encodeJ(mn.Opcode, target), nil
	}

	return 0, &Error{lineNum, "unimplemented mnemonic " + name}
}

func encodeR(opcode, rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(opcode)<<26 | uint32(rs)<<21 | uint32(rt)<<16 |
		uint32(rd)<<11 | uint32(shamt)<<6 | uint32(funct)
}

func encodeI(opcode, rs, rt uint8, imm uint16) uint32 {
	return uint32(opcode)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(imm)
}

func encodeJ(opcode uint8, target uint32) uint32 {
	return uint32(opcode)<<26 | (target & 0x03ffffff)
}

// --- operand parsing -------------------------------------------------

func parseRegister(t Token, lineNum int) (uint8, error) {
	if t.Kind != TokIdent {
		return 0, &Error{lineNum, "expected a register operand"}
	}
	name := strings.TrimPrefix(t.Text, "$")
	if n, ok := isa.RegisterNames[strings.ToLower(name)]; ok {
		return uint8(n), nil
	}
	if v, err := strconv.Atoi(name); err == nil && v >= 0 && v < 32 {
		return uint8(v), nil
	}
	return 0, &Error{lineNum, "unknown register " + t.Text}
}

func expectComma(toks []Token, i int, lineNum int) error {
	if i >= len(toks) || toks[i].Kind != TokComma {
		return &Error{lineNum, "expected ','"}
	}
	return nil
}

func (a *Assembler) parseOneReg(toks []Token, lineNum int) (uint8, error) {
	if len(toks) < 1 {
		return 0, &Error{lineNum, "expected a register operand"}
	}
	return parseRegister(toks[0], lineNum)
}

func (a *Assembler) parseTwoRegs(toks []Token, lineNum int) (uint8, uint8, error) {
	if len(toks) < 3 {
		return 0, 0, &Error{lineNum, "expected two register operands"}
	}
	r1, err := parseRegister(toks[0], lineNum)
	if err != nil {
		return 0, 0, err
	}
	if err := expectComma(toks, 1, lineNum); err != nil {
		return 0, 0, err
	}
	r2, err := parseRegister(toks[2], lineNum)
	if err != nil {
		return 0, 0, err
	}
	return r1, r2, nil
}

func (a *Assembler) parseThreeRegs(toks []Token, lineNum int) (uint8, uint8, uint8, error) {
	if len(toks) < 5 {
		return 0, 0, 0, &Error{lineNum, "expected three register operands"}
	}
	r1, err := parseRegister(toks[0], lineNum)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := expectComma(toks, 1, lineNum); err != nil {
		return 0, 0, 0, err
	}
	r2, err := parseRegister(toks[2], lineNum)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := expectComma(toks, 3, lineNum); err != nil {
		return 0, 0, 0, err
	}
	r3, err := parseRegister(toks[4], lineNum)
	if err != nil {
		return 0, 0, 0, err
	}
	return r1, r2, r3, nil
}

// parseShift parses "rd, rt, shamt" where shamt is a 0..31 immediate.
func (a *Assembler) parseShift(toks []Token, lineNum int) (rd, rt, shamt uint8, err error) {
	if len(toks) < 5 {
		return 0, 0, 0, &Error{lineNum, "expected rd, rt, shamt"}
	}
	rd, err = parseRegister(toks[0], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 1, lineNum); err != nil {
		return
	}
	rt, err = parseRegister(toks[2], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 3, lineNum); err != nil {
		return
	}
	if toks[4].Kind != TokNumber {
		err = &Error{lineNum, "expected an integer shift amount"}
		return
	}
	if toks[4].Int < 0 || toks[4].Int > 31 {
		err = &Error{lineNum, "shift amount out of range 0..31"}
		return
	}
	shamt = uint8(toks[4].Int)
	return
}

// parseRegRegImm parses "rt, rs, imm".
func (a *Assembler) parseRegRegImm(toks []Token, lineNum int) (rt, rs uint8, imm int64, err error) {
	if len(toks) < 5 {
		return 0, 0, 0, &Error{lineNum, "expected rt, rs, imm"}
	}
	rt, err = parseRegister(toks[0], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 1, lineNum); err != nil {
		return
	}
	rs, err = parseRegister(toks[2], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 3, lineNum); err != nil {
		return
	}
	imm, err = a.resolveImmediate(toks[4], lineNum)
	return
}

// parseLuiOperand parses "rt, imm" for lui. A literal immediate is
// placed directly in bits 15:0, as for every other I-format
// instruction. A label operand instead resolves to the upper 16 bits
// of the label's address, incrementing by one when bit 15 of the
// address is set — the LuiLabel fix-up from §4.2.1, which compensates
// for the sign-extension a following addi/ori-style use of the low
// half would otherwise introduce.
func (a *Assembler) parseLuiOperand(toks []Token, lineNum int) (rt uint8, imm uint16, err error) {
	if len(toks) < 3 {
		return 0, 0, &Error{lineNum, "expected rt, imm"}
	}
	rt, err = parseRegister(toks[0], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 1, lineNum); err != nil {
		return
	}
	opnd := toks[2]
	if opnd.Kind == TokIdent {
		sym, ok := a.symbols[strings.ToLower(opnd.Text)]
		if !ok {
			err = &Error{lineNum, "undefined symbol " + opnd.Text}
			return
		}
		upper := sym.addr >> 16
		if sym.addr&0x8000 != 0 {
			upper++
		}
		imm = uint16(upper & 0xffff)
		return
	}
	val, err2 := a.resolveImmediate(opnd, lineNum)
	if err2 != nil {
		err = err2
		return
	}
	imm = uint16(val)
	return
}

// parseMemOperand parses "rt, imm(rs)" used by every load and store.
func (a *Assembler) parseMemOperand(toks []Token, lineNum int) (rt, rs uint8, imm int64, err error) {
	if len(toks) < 3 {
		return 0, 0, 0, &Error{lineNum, "expected rt, offset(base)"}
	}
	rt, err = parseRegister(toks[0], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 1, lineNum); err != nil {
		return
	}
	rest := toks[2:]
	i := 0
	imm = 0
	if rest[i].Kind == TokNumber || rest[i].Kind == TokIdent {
		imm, err = a.resolveImmediate(rest[i], lineNum)
		if err != nil {
			return
		}
		i++
	}
	if i >= len(rest) || rest[i].Kind != TokLParen {
		err = &Error{lineNum, "expected '(' before base register"}
		return
	}
	i++
	if i >= len(rest) {
		err = &Error{lineNum, "expected base register"}
		return
	}
	rs, err = parseRegister(rest[i], lineNum)
	if err != nil {
		return
	}
	i++
	if i >= len(rest) || rest[i].Kind != TokRParen {
		err = &Error{lineNum, "expected ')'"}
		return
	}
	return
}

// parseBranch parses "rs, rt, label" and resolves label to a
// pc-relative word offset measured from this instruction's own
// address (not the next instruction's), matching this core's
// no-delay-slot branch execution semantics.
func (a *Assembler) parseBranch(toks []Token, addr uint32, lineNum int) (rs, rt uint8, offset uint16, err error) {
	if len(toks) < 5 {
		return 0, 0, 0, &Error{lineNum, "expected rs, rt, label"}
	}
	rs, err = parseRegister(toks[0], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 1, lineNum); err != nil {
		return
	}
	rt, err = parseRegister(toks[2], lineNum)
	if err != nil {
		return
	}
	if err = expectComma(toks, 3, lineNum); err != nil {
		return
	}
	var target int64
	switch toks[4].Kind {
	case TokIdent:
		sym, ok := a.symbols[strings.ToLower(toks[4].Text)]
		if !ok {
			err = &Error{lineNum, "undefined label " + toks[4].Text}
			return
		}
		target = int64(sym.addr)
	case TokNumber:
		// An absolute address, as produced by the disassembler; a
		// hand-written source file should use a label instead.
		target = toks[4].Int
	default:
		err = &Error{lineNum, "expected a branch target label"}
		return
	}
	rel := target - int64(addr)
	if rel%4 != 0 {
		err = &Error{lineNum, "branch target is not word-aligned relative to the branch"}
		return
	}
	word := rel / 4
	if word < -32768 || word > 32767 {
		err = &Error{lineNum, "branch target out of 16-bit offset range"}
		return
	}
	offset = uint16(int16(word))
	return
}

// parseJumpTarget resolves a label to the 26-bit region-local target
// field used by j/jal. thisPC is the address of the jump instruction
// itself, used only to warn when the target crosses into a different
// 256MiB region than the jump (the region-local target field can't
// express that, so the encoded target silently aliases into the
// jump's own region).
func (a *Assembler) parseJumpTarget(toks []Token, thisPC uint32, lineNum int) (uint32, error) {
	if len(toks) < 1 {
		return 0, &Error{lineNum, "expected a jump target label"}
	}
	var addr uint32
	switch toks[0].Kind {
	case TokIdent:
		sym, ok := a.symbols[strings.ToLower(toks[0].Text)]
		if !ok {
			return 0, &Error{lineNum, "undefined label " + toks[0].Text}
		}
		addr = sym.addr
	case TokNumber:
		addr = uint32(toks[0].Int)
	default:
		return 0, &Error{lineNum, "expected a jump target label"}
	}
	if addr&0x3 != 0 {
		return 0, &Error{lineNum, "jump target is not word-aligned"}
	}
	if (addr^thisPC)&0xf0000000 != 0 {
		a.warn(lineNum, "jump target crosses a 256MiB region boundary")
	}
	return (addr >> 2) & 0x03ffffff, nil
}

// resolveImmediate accepts either a literal integer or a previously
// defined label, which resolves to its absolute address. Callers that
// need a 16-bit field are responsible for range-checking the result;
// encodeI/encodeR truncate silently as hardware would.
func (a *Assembler) resolveImmediate(t Token, lineNum int) (int64, error) {
	switch t.Kind {
	case TokNumber:
		return t.Int, nil
	case TokIdent:
		sym, ok := a.symbols[strings.ToLower(t.Text)]
		if !ok {
			return 0, &Error{lineNum, "undefined symbol " + t.Text}
		}
		return int64(sym.addr), nil
	default:
		return 0, &Error{lineNum, "expected an integer or label"}
	}
}
