/*
 * mips32 - Hex formatting tests
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

package obslog

import (
	"strings"
	"testing"
)

func TestFormatWordPlain(t *testing.T) {
	var b strings.Builder
	FormatWord(&b, []uint32{0xdeadbeef, 0x00000001}, false)
	want := "DEADBEEF 00000001 "
	if got := b.String(); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFormatWordAsciiGutter(t *testing.T) {
	var b strings.Builder
	// 0x74657374 is "test" in ASCII; 0x0000000a has no printable bytes.
	FormatWord(&b, []uint32{0x74657374, 0x0000000a}, true)
	want := "74657374|test| 0000000A|....| "
	if got := b.String(); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFormatBytes(t *testing.T) {
	var b strings.Builder
	FormatBytes(&b, true, []byte{0xab, 0x01})
	want := "AB 01 "
	if got := b.String(); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestDumpLinesShowsAsciiGutterAndPadsShortRows(t *testing.T) {
	data := []byte("hi")
	lines := DumpLines(0x1000, data)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := "00001000: 68 69                                            |hi|"
	if lines[0] != want {
		t.Errorf("got %q want %q", lines[0], want)
	}
}
