/*
 * mips32 - Two-pass MIPS32 assembler
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

// Package assembler turns MIPS32 assembly source into a loadable
// memory.Image. Assembly is two passes over the tokenized source: the
// first records every label's address without emitting anything, the
// second emits instruction words and data bytes with labels resolved.
//
// Pseudo-ops are limited to nop and move, both of which expand to a
// single real instruction with no address-size consequence. li and la
// are deliberately not supported: either write the equivalent lui/ori
// (or lui/addiu) pair, or declare a data symbol and address it with
// explicit immediates. This keeps every instruction exactly 4 bytes,
// so the address of a label never depends on which instructions
// happen to follow it.
package assembler

import (
	"fmt"
	"strings"

	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

// Error reports an assembly failure with the source line it occurred on.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type segment int

const (
	segText segment = iota
	segData
)

// sourceLine is one non-blank, comment-stripped input line together
// with its tokens and original line number, kept across both passes
// so pass two never re-lexes.
type sourceLine struct {
	num  int
	toks []Token
}

// symbol records where a label resolved to, and which segment it's in.
type symbol struct {
	addr uint32
	seg  segment
}

// Config overrides the default segment origins an Assembler places
// text and data at. A zero value in either field means "use the
// architecture default," matching assemble(source, config?)'s
// optional-config contract.
type Config struct {
	TextStartAddr uint32
	DataStartAddr uint32
}

// Assembler holds the state threaded through both passes of one
// assembly run. A fresh Assembler must be used for each source file;
// it is not safe to reuse.
type Assembler struct {
	symbols  map[string]symbol
	warnings []string

	textStart uint32
	dataStart uint32
}

// New returns an Assembler whose text and data segments are placed at
// the architecture's default origins.
func New() *Assembler {
	return NewWithConfig(Config{})
}

// NewWithConfig returns an Assembler honoring cfg's segment origin
// overrides, falling back to the architecture defaults for any field
// left zero.
func NewWithConfig(cfg Config) *Assembler {
	textStart := cfg.TextStartAddr
	if textStart == 0 {
		textStart = isa.DefaultTextStart
	}
	dataStart := cfg.DataStartAddr
	if dataStart == 0 {
		dataStart = isa.DefaultDataStart
	}
	return &Assembler{
		symbols:   make(map[string]symbol),
		textStart: textStart,
		dataStart: dataStart,
	}
}

// Assemble lexes, resolves and encodes src, returning a loadable image.
func Assemble(src string) (memory.Image, error) {
	return New().Assemble(src)
}

// AssembleWithConfig is Assemble with a non-default segment placement.
func AssembleWithConfig(src string, cfg Config) (memory.Image, error) {
	return NewWithConfig(cfg).Assemble(src)
}

// Assemble runs both passes over src.
func (a *Assembler) Assemble(src string) (memory.Image, error) {
	lines, err := a.lex(src)
	if err != nil {
		return memory.Image{}, err
	}
	textWords, dataLen, err := a.pass1(lines)
	if err != nil {
		return memory.Image{}, err
	}
	img, err := a.pass2(lines, textWords, dataLen)
	if err != nil {
		return memory.Image{}, err
	}
	img.Warnings = a.warnings
	return img, nil
}

// warn records a non-fatal diagnostic at the given source line.
func (a *Assembler) warn(line int, msg string) {
	a.warnings = append(a.warnings, fmt.Sprintf("line %d: %s", line, msg))
}

// lex strips comments and blank lines and tokenizes what remains.
func (a *Assembler) lex(src string) ([]sourceLine, error) {
	var out []sourceLine
	for i, raw := range strings.Split(src, "\n") {
		num := i + 1
		stripped := stripComment(raw)
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		toks, err := lexLine(stripped)
		if err != nil {
			return nil, &Error{num, err.Error()}
		}
		out = append(out, sourceLine{num: num, toks: toks})
	}
	return out, nil
}

// pass1 walks every line tracking the current segment's address,
// recording each label's resolved address and the data segment's
// total length, without emitting any instruction or data bytes.
func (a *Assembler) pass1(lines []sourceLine) (textWords int, dataLen uint32, err error) {
	seg := segText
	textAddr := a.textStart
	dataAddr := a.dataStart

	curAddr := func() uint32 {
		if seg == segText {
			return textAddr
		}
		return dataAddr
	}

	for _, ln := range lines {
		toks := ln.toks
		var labelToks []Token
		for len(toks) > 0 && toks[0].Kind == TokLabel {
			labelToks = append(labelToks, toks[0])
			toks = toks[1:]
		}

		// A .word/.half directive on this same line auto-aligns
		// dataAddr before reserving its bytes (spec.md §4.2 pass 1);
		// any label on this line must bind to that aligned address,
		// not the pre-alignment one, so the cursor is advanced before
		// the label-binding loop below runs.
		if seg == segData && len(toks) > 0 && toks[0].Kind == TokDirective {
			switch strings.ToLower(toks[0].Text) {
			case ".word":
				dataAddr = alignUp(dataAddr, 4)
			case ".half":
				dataAddr = alignUp(dataAddr, 2)
			}
		}

		for _, lt := range labelToks {
			name := strings.ToLower(lt.Text)
			if _, dup := a.symbols[name]; dup {
				return 0, 0, &Error{ln.num, fmt.Sprintf("duplicate label %q", lt.Text)}
			}
			a.symbols[name] = symbol{addr: curAddr(), seg: seg}
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
				if addr, ok := directiveAddr(operands); ok {
					dataAddr = addr
				}
			case ".word":
				// dataAddr was already aligned up to 4, above, before
				// this line's labels were bound.
				n := countItems(operands)
				dataAddr += uint32(n) * 4
			case ".half":
				// dataAddr was already aligned up to 2, above.
				n := countItems(operands)
				dataAddr += uint32(n) * 2
			case ".byte":
				n := countItems(operands)
				dataAddr += uint32(n)
			case ".ascii":
				s, err := directiveString(operands, ln.num)
				if err != nil {
					return 0, 0, err
				}
				dataAddr += uint32(len(s))
			case ".asciiz":
				s, err := directiveString(operands, ln.num)
				if err != nil {
					return 0, 0, err
				}
				dataAddr += uint32(len(s)) + 1
			case ".space":
				n, ok := directiveInt(operands)
				if !ok {
					return 0, 0, &Error{ln.num, ".space requires an integer count"}
				}
				dataAddr += uint32(n)
			case ".align":
				n, ok := directiveInt(operands)
				if !ok {
					return 0, 0, &Error{ln.num, ".align requires an integer power"}
				}
				align := uint32(1) << uint(n)
				if seg == segText {
					textAddr = alignUp(textAddr, align)
				} else {
					dataAddr = alignUp(dataAddr, align)
				}
			default:
				a.warn(ln.num, "unknown directive "+dir+" ignored")
			}
			continue
		}

		// Otherwise this line holds exactly one instruction; every
		// instruction (real or pseudo) occupies one 32-bit word.
		if seg != segText {
			return 0, 0, &Error{ln.num, "instruction outside .text segment"}
		}
		mnemonic := strings.ToLower(toks[0].Text)
		if mnemonic == "li" || mnemonic == "la" {
			return 0, 0, &Error{ln.num, mnemonic + " is not supported; write the lui/ori (or lui/addiu) expansion explicitly"}
		}
		textAddr += 4
	}

	return int((textAddr - a.textStart) / 4), dataAddr - a.dataStart, nil
}

// directiveAddr reads an optional leading numeric operand, used by
// .text/.data to relocate a segment's base address.
func directiveAddr(toks []Token) (uint32, bool) {
	if len(toks) > 0 && toks[0].Kind == TokNumber {
		return uint32(toks[0].Int), true
	}
	return 0, false
}

func directiveInt(toks []Token) (int64, bool) {
	if len(toks) > 0 && toks[0].Kind == TokNumber {
		return toks[0].Int, true
	}
	return 0, false
}

func directiveString(toks []Token, line int) (string, error) {
	if len(toks) == 0 || toks[0].Kind != TokString {
		return "", &Error{line, "expected a string literal"}
	}
	return toks[0].Text, nil
}

// countItems counts comma-separated numeric operands.
func countItems(toks []Token) int {
	n := 0
	for _, t := range toks {
		if t.Kind == TokNumber {
			n++
		}
	}
	return n
}

func alignUp(addr, align uint32) uint32 {
	if align == 0 {
		return addr
	}
	rem := addr % align
	if rem == 0 {
		return addr
	}
	return addr + (align - rem)
}
