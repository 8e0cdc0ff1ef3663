// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package tablefile reads and writes the current (v2) binary table
// layout: a 72-byte header followed by the key map, the key labels and
// the sorted item array, with explicit byte offsets to each section
// recorded in the header.  Tables containing phrase entries carry a
// trailing phrase region (index array plus flat text buffer) after the
// item section.
package tablefile

import (
	"errors"
	"fmt"
)

const (
	// Magic tags a v2 table file ("2TGH" little-endian on disk).
	Magic = 0x48475432

	// FormatVersion is the only version this package understands.
	FormatVersion = 2

	// HeaderSize is the fixed size of the on-disk header.
	HeaderSize = 72

	// GlyphSize is the fixed output slot of one item: up to one UTF-8
	// character, or a phrase reference when the first byte is zero.
	GlyphSize = 4

	// FlagKey64 marks tables whose packed keys occupy 8 bytes.  The
	// width is always derivable from max_press*keybits; the flag only
	// restates it.
	FlagKey64 = 1 << 0

	MaxCName   = 31
	MaxSelKeys = 11

	// maxPhraseRef is the largest encodable phrase reference.  The
	// decoder reads (ch[0]<<16)|(ch[1]<<8)|ch[2] with ch[0] required to
	// be zero, so references are effectively 16-bit.
	maxPhraseRef = 1<<16 - 1
)

var (
	ErrBadMagic          = errors.New("not a gtab table file")
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// An Item is one packed table entry.  Key holds the packed key sequence
// (right-aligned in the integer; the low (maxPress*keyBits) bits), Ch
// the output slot.
type Item struct {
	Key uint64
	Ch  [GlyphSize]byte
}

// PhraseRef reports whether the item's output slot is a phrase
// reference, and if so which one.
func (it Item) PhraseRef() (int, bool) {
	if it.Ch[0] != 0 {
		return 0, false
	}
	return int(it.Ch[0])<<16 | int(it.Ch[1])<<8 | int(it.Ch[2]), true
}

// GlyphSlot encodes a short UTF-8 glyph into an output slot.
func GlyphSlot(text string) (ch [GlyphSize]byte) {
	copy(ch[:], text)
	return ch
}

// PhraseSlot encodes a phrase reference into an output slot.
func PhraseSlot(ref int) ([GlyphSize]byte, error) {
	if ref < 0 || ref > maxPhraseRef {
		return [GlyphSize]byte{}, fmt.Errorf("%w: phrase reference %d out of range", ErrUnsupportedFormat, ref)
	}
	return [GlyphSize]byte{0, byte(ref >> 8), byte(ref)}, nil
}

// Key64 is the packed-key width rule shared by writer and reader: 8-byte
// keys exactly when the packed field overflows 32 bits.
func Key64(maxPress, keyBits int) bool {
	return maxPress*keyBits > 32
}

// A Table is the fully parsed in-memory form of a v2 file.
type Table struct {
	Header  Header
	Keymap  []byte // Header.KeyCount bytes, one ASCII key char per packed index
	Keyname []byte // Header.KeyCount fixed GlyphSize-byte label slots
	Items   []Item
	PhrIdx  []int32 // phrase index array including its leading count, nil if no phrases
	PhrBuf  []byte
}

// Key64 reports whether items of this table use 8-byte packed keys.
func (t *Table) Key64() bool {
	return Key64(int(t.Header.MaxPress), int(t.Header.KeyBits))
}

// ItemSize is the on-disk record size of one item.
func (t *Table) ItemSize() int {
	if t.Key64() {
		return 8 + GlyphSize
	}
	return 4 + GlyphSize
}

// Phrase resolves a phrase reference against the phrase region.
func (t *Table) Phrase(ref int) (string, bool) {
	if ref < 0 || ref+2 >= len(t.PhrIdx) {
		return "", false
	}
	start, end := t.PhrIdx[ref+1], t.PhrIdx[ref+2]
	if start < 0 || end < start || int(end) > len(t.PhrBuf) {
		return "", false
	}
	return string(t.PhrBuf[start:end]), true
}

// PhraseCount returns the number of phrases in the phrase region.
func (t *Table) PhraseCount() int {
	if len(t.PhrIdx) == 0 {
		return 0
	}
	return int(t.PhrIdx[0]) - 1
}

// BuildPhraseRegion lays out the phrase index array and text buffer for
// the given phrase texts.  The index array keeps the historical shape:
// element 0 holds the offset count (phrases+1), elements 1..phrases+1
// are byte offsets into the buffer, so phrase i spans idx[i+1]:idx[i+2].
func BuildPhraseRegion(phrases []string) ([]int32, []byte) {
	if len(phrases) == 0 {
		return nil, nil
	}
	idx := make([]int32, 0, len(phrases)+2)
	idx = append(idx, int32(len(phrases)+1))
	var buf []byte
	off := int32(0)
	for _, p := range phrases {
		idx = append(idx, off)
		buf = append(buf, p...)
		off += int32(len(p))
	}
	idx = append(idx, off)
	return idx, buf
}
