package memory

/*
 * mips32 - Low level memory tests
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

import "testing"

// Reads of never-written addresses always return zero.
func TestUnmappedRead(t *testing.T) {
	m := New()
	if r := m.GetByte(0x12345678); r != 0 {
		t.Errorf("GetByte on unmapped addr got: %d expected: 0", r)
	}
	if r := m.GetWord(0x12345678); r != 0 {
		t.Errorf("GetWord on unmapped addr got: %d expected: 0", r)
	}
	if m.PageMapped(0x12345678) {
		t.Error("GetByte on unmapped addr should not allocate a page")
	}
}

// set_word/get_word round trip.
func TestWordRoundTrip(t *testing.T) {
	m := New()
	for _, addr := range []uint32{0, 4, 0x10000000, 0xfffffffc} {
		m.SetWord(addr, 0xdeadbeef)
		if r := m.GetWord(addr); r != 0xdeadbeef {
			t.Errorf("GetWord(%#x) got: %#x expected: %#x", addr, r, 0xdeadbeef)
		}
	}
}

// set_half/get_half round trip.
func TestHalfRoundTrip(t *testing.T) {
	m := New()
	m.SetHalf(8, 0xbeef)
	if r := m.GetHalf(8); r != 0xbeef {
		t.Errorf("GetHalf got: %#x expected: %#x", r, 0xbeef)
	}
}

// Big-endianness: set_word(a, 0x11223344) lays out MSB first.
func TestBigEndian(t *testing.T) {
	m := New()
	m.SetWord(0x1000, 0x11223344)
	want := []uint8{0x11, 0x22, 0x33, 0x44}
	for i, w := range want {
		if r := m.GetByte(0x1000 + uint32(i)); r != w {
			t.Errorf("GetByte(%#x) got: %#x expected: %#x", 0x1000+i, r, w)
		}
	}
}

// Multi-byte accesses cross page boundaries correctly.
func TestCrossPageBoundary(t *testing.T) {
	m := New()
	addr := uint32(pageSize - 2)
	m.SetWord(addr, 0x01020304)
	if r := m.GetWord(addr); r != 0x01020304 {
		t.Errorf("GetWord across page boundary got: %#x expected: %#x", r, 0x01020304)
	}
	if !m.PageMapped(addr) || !m.PageMapped(addr+3) {
		t.Error("expected both pages spanned by the word to be mapped")
	}
}

// Dump never fails and never fabricates nonzero bytes for unmapped memory.
func TestDumpUnmapped(t *testing.T) {
	m := New()
	out := m.Dump(0x2000, 16)
	for i, b := range out {
		if b != 0 {
			t.Errorf("Dump byte %d got: %#x expected: 0", i, b)
		}
	}
}

// load_image copies the text and data segments to their base addresses.
func TestLoadImage(t *testing.T) {
	m := New()
	img := Image{
		TextStart: 0x00040000,
		TextWords: []uint32{0x00000000, 0x11223344},
		DataStart: 0x10000000,
		DataBytes: []byte{0xaa, 0xbb, 0xcc},
	}
	m.LoadImage(img)

	if r := m.GetWord(0x00040000); r != 0 {
		t.Errorf("text word 0 got: %#x expected: 0", r)
	}
	if r := m.GetWord(0x00040004); r != 0x11223344 {
		t.Errorf("text word 1 got: %#x expected: %#x", r, 0x11223344)
	}
	for i, want := range img.DataBytes {
		if r := m.GetByte(0x10000000 + uint32(i)); r != want {
			t.Errorf("data byte %d got: %#x expected: %#x", i, r, want)
		}
	}
}
