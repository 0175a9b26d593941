/*
 * mips32 - Bounded-cadence CPU step driver.
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

// Package driver runs a cpu.CPU at a bounded cadence: once per tick it
// executes up to a fixed batch of instructions, stopping early if the
// CPU halts or raises an exception. This stands in for the UI-driven
// timer of an interactive front end: there is no UI here, so the
// ticker itself paces execution.
package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/mipssim/mips32/internal/cpu"
)

// Driver paces Step calls against one CPU on a time.Ticker.
type Driver struct {
	cpu   *cpu.CPU
	log   *slog.Logger
	hz    int
	batch int

	enable chan bool
	done   chan struct{}
}

// New returns a Driver for c that, once Started, executes at most
// batch instructions hz times per second.
func New(c *cpu.CPU, log *slog.Logger, hz, batch int) *Driver {
	if hz <= 0 {
		hz = 10
	}
	if batch <= 0 {
		batch = 1000
	}
	return &Driver{
		cpu:    c,
		log:    log,
		hz:     hz,
		batch:  batch,
		enable: make(chan bool, 1),
		done:   make(chan struct{}),
	}
}

// Start enables stepping. Run must already be running in a goroutine.
func (d *Driver) Start() { d.enable <- true }

// Stop pauses stepping without shutting the driver down.
func (d *Driver) Stop() { d.enable <- false }

// Run drives the ticker loop until ctx is canceled or the CPU halts.
// It blocks the calling goroutine; callers typically invoke it with
// `go d.Run(ctx)`.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(d.hz))
	defer ticker.Stop()

	running := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case running = <-d.enable:
			continue
		case <-ticker.C:
			if !running {
				continue
			}
			if d.runBatch() {
				return
			}
		}
	}
}

// Shutdown stops the Run loop.
func (d *Driver) Shutdown() {
	close(d.done)
}

// runBatch executes up to d.batch instructions and reports whether the
// CPU halted or raised any exception, either of which must stop the
// loop rather than merely being logged and stepped past.
func (d *Driver) runBatch() bool {
	for i := 0; i < d.batch; i++ {
		mask := d.cpu.Step()
		if mask != cpu.None {
			if d.log != nil {
				d.log.Warn("exception", "mask", mask, "pc", d.cpu.PC)
			}
			return true
		}
		if d.cpu.Halted {
			return true
		}
	}
	return false
}
