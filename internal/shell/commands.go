/*
 * mips32 - Shell command table.
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

package shell

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mipssim/mips32/internal/assembler"
	"github.com/mipssim/mips32/internal/disassembler"
	"github.com/mipssim/mips32/internal/obslog"
)

type command struct {
	name string
	min  int
	run  func(*Shell, []string) (bool, error)
}

var commandList = []command{
	{name: "load", min: 1, run: cmdLoad},
	{name: "reset", min: 2, run: cmdReset},
	{name: "step", min: 2, run: cmdStep},
	{name: "run", min: 1, run: cmdRun},
	{name: "regs", min: 1, run: cmdRegs},
	{name: "dump", min: 1, run: cmdDump},
	{name: "break", min: 2, run: cmdBreak},
	{name: "quit", min: 1, run: cmdQuit},
}

func cmdLoad(s *Shell, args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("usage: load <file.s>")
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return false, err
	}
	img, err := assembler.Assemble(string(src))
	if err != nil {
		return false, err
	}
	s.Mem.LoadImage(img)
	s.CPU.Reset()
	s.out(fmt.Sprintf("loaded %d text words, %d data bytes", len(img.TextWords), len(img.DataBytes)))
	for _, w := range img.Warnings {
		s.out("warning: " + w)
	}
	return false, nil
}

func cmdReset(s *Shell, _ []string) (bool, error) {
	s.CPU.Reset()
	s.out("reset")
	return false, nil
}

func cmdStep(s *Shell, args []string) (bool, error) {
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return false, fmt.Errorf("step count must be a positive integer")
		}
		n = v
	}
	for i := 0; i < n; i++ {
		pc := s.CPU.PC
		inst := s.Mem.GetWord(pc)
		mask := s.CPU.Step()
		s.out(fmt.Sprintf("%#08x: %-28s mask=%#x", pc, disassembler.Disassemble(pc, inst), mask))
		if s.CPU.Halted {
			s.out("halted")
			break
		}
	}
	return false, nil
}

func cmdRun(s *Shell, _ []string) (bool, error) {
	for !s.CPU.Halted {
		if s.Breakpoint[s.CPU.PC] {
			s.out(fmt.Sprintf("breakpoint at %#08x", s.CPU.PC))
			break
		}
		s.CPU.Step()
	}
	if s.CPU.Halted {
		s.out("halted")
	}
	return false, nil
}

func cmdRegs(s *Shell, _ []string) (bool, error) {
	regs := s.CPU.Registers()
	var b strings.Builder
	for i := 0; i < 32; i += 4 {
		obslog.FormatWord(&b, []uint32{regs[i], regs[i+1], regs[i+2], regs[i+3]}, true)
		b.WriteString("\n")
	}
	s.out(fmt.Sprintf("pc=%#08x cycle=%d halted=%v\n%s", s.CPU.PC, s.CPU.Cycle, s.CPU.Halted, b.String()))
	return false, nil
}

func cmdDump(s *Shell, args []string) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("usage: dump <addr> <len>")
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		return false, fmt.Errorf("invalid address %q", args[0])
	}
	length, err := strconv.Atoi(args[1])
	if err != nil || length < 0 {
		return false, fmt.Errorf("invalid length %q", args[1])
	}
	data := s.Mem.Dump(uint32(addr), length)
	for _, line := range obslog.DumpLines(uint32(addr), data) {
		s.out(line)
	}
	return false, nil
}

func cmdBreak(s *Shell, args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("usage: break <addr>")
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		return false, fmt.Errorf("invalid address %q", args[0])
	}
	s.Breakpoint[uint32(addr)] = true
	s.out(fmt.Sprintf("breakpoint set at %#08x", addr))
	return false, nil
}

func cmdQuit(_ *Shell, _ []string) (bool, error) {
	return true, nil
}
