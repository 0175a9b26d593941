/*
 * mips32 - Interactive command shell.
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

// Package shell implements the interactive front end: a liner-backed
// read-eval-print loop over the CPU and memory. It replaces
// the teacher's device/channel command set (attach, detach, show,
// ipl and friends have no MIPS equivalent) with a small set of
// debugger-style commands appropriate to a single in-process core.
package shell

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peterh/liner"

	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/memory"
)

// Shell bundles the state an interactive session needs to dispatch
// commands against.
type Shell struct {
	CPU        *cpu.CPU
	Mem        *memory.Memory
	Log        *slog.Logger
	Breakpoint map[uint32]bool
	out        func(string)
}

// New returns a Shell over c and m. log may be nil; it is used only to
// report terminal read errors, and command output is printed either way.
func New(c *cpu.CPU, m *memory.Memory, log *slog.Logger) *Shell {
	return &Shell{
		CPU:        c,
		Mem:        m,
		Log:        log,
		Breakpoint: make(map[uint32]bool),
		out:        func(s string) { fmt.Println(s) },
	}
}

// Run starts the read-eval-print loop on stdin/stdout, returning once
// the user quits or the terminal is closed.
func (s *Shell) Run() error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return CompleteCommand(partial)
	})

	for {
		input, err := line.Prompt("mips> ")
		if err == nil {
			line.AppendHistory(input)
			quit, cmdErr := s.ProcessCommand(input)
			if cmdErr != nil {
				fmt.Println("error: " + cmdErr.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if s.Log != nil {
			s.Log.Error("error reading line", "err", err)
		}
		return err
	}
}

// ProcessCommand dispatches one already-read command line.
func (s *Shell) ProcessCommand(input string) (quit bool, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	for _, c := range commandList {
		if matchesCommand(name, c.name, c.min) {
			return c.run(s, args)
		}
	}
	return false, fmt.Errorf("unknown command %q", fields[0])
}

// matchesCommand reports whether typed is a prefix of full at least min
// characters long — the same minimum-match convention the teacher's
// command table uses. It does not check other commands for ambiguity;
// ProcessCommand runs the first entry of commandList that matches.
func matchesCommand(typed, full string, min int) bool {
	if len(typed) < min || len(typed) > len(full) {
		return false
	}
	return strings.HasPrefix(full, typed)
}

// CompleteCommand returns every command name that extends partial,
// for liner's tab completion.
func CompleteCommand(partial string) []string {
	var out []string
	for _, c := range commandList {
		if strings.HasPrefix(c.name, strings.ToLower(partial)) {
			out = append(out, c.name)
		}
	}
	return out
}
