/*
 * mips32 - Main process.
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

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/mipssim/mips32/internal/assembler"
	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/driver"
	"github.com/mipssim/mips32/internal/memory"
	"github.com/mipssim/mips32/internal/obslog"
	"github.com/mipssim/mips32/internal/shell"
)

var Logger *slog.Logger

func main() {
	optSource := getopt.StringLong("source", 's', "", "Assembly source file to load")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHz := getopt.IntLong("hz", 0, 10, "Ticks per second for batch mode")
	optBatch := getopt.IntLong("batch", 0, 1000, "Instructions executed per tick in batch mode")
	optInteractive := getopt.BoolLong("interactive", 'i', "Start the interactive shell instead of free-running")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	if file == nil {
		file = os.Stderr
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	Logger = slog.New(obslog.NewHandler(file, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(Logger)

	Logger.Info("mips32 started")

	m := memory.New()
	c := cpu.New(m)
	c.OnEvent = func(mask cpu.ExceptionMask) {
		Logger.Warn("exception", "mask", mask, "pc", c.PC)
	}

	if *optSource != "" {
		src, err := os.ReadFile(*optSource)
		if err != nil {
			Logger.Error("reading source file", "err", err)
			os.Exit(1)
		}
		img, err := assembler.Assemble(string(src))
		if err != nil {
			Logger.Error("assembling source", "err", err)
			os.Exit(1)
		}
		m.LoadImage(img)
		c.Reset()
		Logger.Info("loaded program", "words", len(img.TextWords), "data_bytes", len(img.DataBytes))
		for _, w := range img.Warnings {
			Logger.Warn("assembly warning", "detail", w)
		}
	}

	if *optInteractive {
		sh := shell.New(c, m, Logger)
		if err := sh.Run(); err != nil {
			Logger.Error("shell exited", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	d := driver.New(c, Logger, *optHz, *optBatch)
	go d.Run(ctx)
	d.Start()

	<-sigChan
	Logger.Info("shutting down")
	d.Shutdown()
}
