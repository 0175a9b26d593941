/*
 * mips32 - Sparse byte-addressable memory
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

// Package memory implements the simulated 32-bit, byte-addressable,
// big-endian address space. Backing storage is a set of fixed-size
// pages allocated lazily on first access, so a program that touches
// only a handful of addresses never pays for a flat 4GB array.
package memory

const (
	pageBits = 16
	pageSize = 1 << pageBits // 65536 bytes per page
	pageMask = pageSize - 1
)

type page [pageSize]byte

// Memory is a sparse, byte-addressable, big-endian 32-bit address space.
type Memory struct {
	pages map[uint32]*page
}

// New returns an empty Memory with no pages allocated.
func New() *Memory {
	return &Memory{pages: make(map[uint32]*page)}
}

// page returns the backing page for addr, allocating a zeroed page on
// first touch.
func (m *Memory) page(addr uint32) *page {
	idx := addr >> pageBits
	p, ok := m.pages[idx]
	if !ok {
		p = &page{}
		m.pages[idx] = p
	}
	return p
}

// GetByte returns the byte at addr, or 0 if its page was never written.
func (m *Memory) GetByte(addr uint32) uint8 {
	p, ok := m.pages[addr>>pageBits]
	if !ok {
		return 0
	}
	return p[addr&pageMask]
}

// SetByte stores v at addr.
func (m *Memory) SetByte(addr uint32, v uint8) {
	m.page(addr)[addr&pageMask] = v
}

// GetHalf returns the big-endian halfword at addr..addr+1.
func (m *Memory) GetHalf(addr uint32) uint16 {
	hi := m.GetByte(addr)
	lo := m.GetByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// SetHalf stores the big-endian halfword v at addr..addr+1.
func (m *Memory) SetHalf(addr uint32, v uint16) {
	m.SetByte(addr, uint8(v>>8))
	m.SetByte(addr+1, uint8(v))
}

// GetWord returns the big-endian word at addr..addr+3.
func (m *Memory) GetWord(addr uint32) uint32 {
	b0 := m.GetByte(addr)
	b1 := m.GetByte(addr + 1)
	b2 := m.GetByte(addr + 2)
	b3 := m.GetByte(addr + 3)
	return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
}

// SetWord stores the big-endian word v at addr..addr+3.
func (m *Memory) SetWord(addr uint32, v uint32) {
	m.SetByte(addr, uint8(v>>24))
	m.SetByte(addr+1, uint8(v>>16))
	m.SetByte(addr+2, uint8(v>>8))
	m.SetByte(addr+3, uint8(v))
}

// Dump returns a copy of length bytes starting at start. Unmapped
// regions read back as zero and are never materialized.
func (m *Memory) Dump(start uint32, length int) []byte {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = m.GetByte(start + uint32(i))
	}
	return out
}

// Image is the loadable output of the assembler: a text (instruction)
// segment and a data segment, each with its own base address.
type Image struct {
	TextStart uint32
	TextWords []uint32
	DataStart uint32
	DataBytes []byte

	// Warnings holds non-fatal diagnostics collected during assembly
	// (unknown directives, jump targets crossing a 256MiB region),
	// in source-line order. An Image with Warnings is still fully
	// loadable; warnings never abort assembly.
	Warnings []string
}

// LoadImage copies img's text and data segments into memory at their
// respective base addresses. Text words are written one set_word per
// instruction; data bytes are copied byte for byte.
func (m *Memory) LoadImage(img Image) {
	for i, word := range img.TextWords {
		m.SetWord(img.TextStart+uint32(i*4), word)
	}
	for i, b := range img.DataBytes {
		m.SetByte(img.DataStart+uint32(i), b)
	}
}

// PageCount reports how many pages are currently allocated.
func (m *Memory) PageCount() int {
	return len(m.pages)
}

// PageMapped reports whether the page containing addr has been
// allocated. Used by tests to confirm a failed access never
// materialized a page.
func (m *Memory) PageMapped(addr uint32) bool {
	_, ok := m.pages[addr>>pageBits]
	return ok
}
