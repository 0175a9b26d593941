package driver

/*
 * mips32 - Driver tests
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
	"context"
	"testing"
	"time"

	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

func TestRunBatchStopsOnHalt(t *testing.T) {
	m := memory.New()
	c := cpu.New(m)
	m.SetWord(c.PC, uint32(isa.OpSPECIAL)<<26|isa.FnSYS)

	d := New(c, nil, 100, 10)
	if !d.runBatch() {
		t.Fatal("expected runBatch to report halt")
	}
	if !c.Halted {
		t.Fatal("expected CPU to be halted")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	m := memory.New()
	c := cpu.New(m)
	// An infinite loop: beq $zero, $zero, . (branch to self).
	m.SetWord(c.PC, uint32(isa.OpBEQ)<<26)

	d := New(c, nil, 1000, 1)
	ctx, cancel := context.WithCancel(context.Background())

	doneCh := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(doneCh)
	}()
	d.Start()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
