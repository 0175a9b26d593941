/*
 * mips32 - Convert hex to strings for register and memory display.
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

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatWord appends each of words as 8 hex digits separated by spaces.
// When ascii is true, each word is followed by a "|abcd|" gutter holding
// its four big-endian bytes rendered as printable ASCII (or '.' for
// anything outside the printable range), the same convention cmdRegs
// uses to spot a register holding a packed string or char constant
// rather than a plain numeric value.
func FormatWord(str *strings.Builder, words []uint32, ascii bool) {
	for _, full := range words {
		shift := 28
		for range 8 {
			str.WriteByte(hexMap[(full>>shift)&0xf])
			shift -= 4
		}
		if ascii {
			str.WriteByte('|')
			for byteShift := 24; byteShift >= 0; byteShift -= 8 {
				by := byte(full >> byteShift)
				if by >= 0x20 && by < 0x7f {
					str.WriteByte(by)
				} else {
					str.WriteByte('.')
				}
			}
			str.WriteByte('|')
		}
		str.WriteByte(' ')
	}
}

// FormatBytes appends each byte of data as two hex digits, optionally
// space-separated.
func FormatBytes(str *strings.Builder, space bool, data []byte) {
	for _, by := range data {
		str.WriteByte(hexMap[(by>>4)&0xf])
		str.WriteByte(hexMap[by&0xf])
		if space {
			str.WriteByte(' ')
		}
	}
}

// DumpLines renders data (read starting at addr) as classic 16-bytes-
// per-line hex dump rows: an 8-digit address, the hex bytes, then the
// printable ASCII rendering of the same bytes.
func DumpLines(addr uint32, data []byte) []string {
	var lines []string
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		var a strings.Builder
		FormatWord(&a, []uint32{addr + uint32(off)}, false)
		var b strings.Builder
		b.WriteString(strings.TrimSuffix(a.String(), " "))
		b.WriteString(": ")
		FormatBytes(&b, true, row)
		for i := len(row); i < 16; i++ {
			b.WriteString("   ")
		}
		b.WriteString(" |")
		for _, by := range row {
			if by >= 0x20 && by < 0x7f {
				b.WriteByte(by)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|")
		lines = append(lines, b.String())
	}
	return lines
}
