// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package legacy reads the older binary table layout produced by the
// original full-featured generator.  Its header is much larger than the
// current one: behind the 72-byte fixed head sit an 86480-byte
// quick-key region and a 128-byte tail carrying the end-key set, the
// key bit width and selection-key overflow.  The sections that follow
// add an index table, and items are trailed by a phrase index array
// plus a flat phrase text buffer.
package legacy

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/oouyang/gtab/internal/tablefile"
	"github.com/oouyang/gtab/internal/zero"
)

const (
	chSize = 4

	headSize = 72

	// quick-key region: 46 single-key rows of 10 candidate slots, then
	// 46x46 two-key rows of 10 candidate slots
	quickRows  = 46
	quickCands = 10
	quick1Size = quickRows * quickCands * chSize
	quick2Size = quickRows * quickRows * quickCands * chSize
	quickSize  = quick1Size + quick2Size

	// tail union: end keys, bits per key, selection-key overflow
	tailSize     = 128
	endKeyLen    = 99
	tailKeyBits  = endKeyLen
	tailSelKey2  = endKeyLen + 1
	selKey2Len   = 10
	fullHeadSize = headSize + quickSize + tailSize
)

// behavior flag bits, in the order the directives are written out
const (
	flagKeepKeyCase         = 1 << 0
	flagSymbolKBM           = 1 << 1
	flagPhraseAutoSkip      = 1 << 2
	flagAutoSelectByPhrase  = 1 << 3
	flagDispPartialMatch    = 1 << 4
	flagDispFullMatch       = 1 << 5
	flagVerticalSelection   = 1 << 6
	flagPressFullAutoSend   = 1 << 7
	flagUniqueAutoSend      = 1 << 8
)

var flagDirectives = []struct {
	bit  uint32
	name string
}{
	{flagKeepKeyCase, "keep_key_case"},
	{flagSymbolKBM, "symbol_kbm"},
	{flagPhraseAutoSkip, "phase_auto_skip_endkey"},
	{flagAutoSelectByPhrase, "flag_auto_select_by_phrase"},
	{flagDispPartialMatch, "flag_disp_partial_match"},
	{flagDispFullMatch, "flag_disp_full_match"},
	{flagVerticalSelection, "flag_vertical_selection"},
	{flagPressFullAutoSend, "flag_press_full_auto_send"},
	{flagUniqueAutoSend, "flag_unique_auto_send"},
}

type item struct {
	key uint64
	ch  [chSize]byte
}

// A Table is a parsed legacy file.
type Table struct {
	Version    int
	Flag       uint32
	CName      string
	selKey     [12]byte
	selKey2    [selKey2Len]byte
	SpaceStyle int
	KeyS       int
	MaxPress   int
	DupSel     int
	DefC       int
	EndKey     string
	KeyBits    int

	// Keymap has KeyS bytes; index 0 is the reserved "no key" slot.
	Keymap  []byte
	keyname []byte

	// HasQuick is computed once at load by comparing the whole
	// quick-key region against zero.
	HasQuick bool
	quick    []byte

	// Unsupported marks tables whose packed keys fit neither 32 nor 64
	// bits; their items are not decoded.
	Unsupported bool

	items  []item
	phrIdx []int32
	phrBuf []byte
}

// Parse reads a whole legacy table image.
func Parse(data []byte) (*Table, error) {
	if len(data) < fullHeadSize {
		return nil, fmt.Errorf("%w: legacy table truncated: %d < %d bytes",
			tablefile.ErrUnsupportedFormat, len(data), fullHeadSize)
	}

	var t Table
	t.Version = int(int32(binary.LittleEndian.Uint32(data[0:])))
	t.Flag = binary.LittleEndian.Uint32(data[4:])
	t.CName = cString(data[8:40])
	copy(t.selKey[:], data[40:52])
	t.SpaceStyle = int(int32(binary.LittleEndian.Uint32(data[52:])))
	t.KeyS = int(int32(binary.LittleEndian.Uint32(data[56:])))
	t.MaxPress = int(int32(binary.LittleEndian.Uint32(data[60:])))
	t.DupSel = int(int32(binary.LittleEndian.Uint32(data[64:])))
	t.DefC = int(int32(binary.LittleEndian.Uint32(data[68:])))

	if t.KeyS <= 0 || t.KeyS > 128 || t.MaxPress < 0 || t.DefC < 0 {
		return nil, fmt.Errorf("%w: implausible legacy head (keys=%d max_press=%d items=%d)",
			tablefile.ErrUnsupportedFormat, t.KeyS, t.MaxPress, t.DefC)
	}

	t.quick = data[headSize : headSize+quickSize]
	t.HasQuick = !zero.Bytes(t.quick)

	tail := data[headSize+quickSize : fullHeadSize]
	t.EndKey = cString(tail[:endKeyLen])
	t.KeyBits = int(tail[tailKeyBits])
	copy(t.selKey2[:], tail[tailSelKey2:tailSelKey2+selKey2Len])
	if t.KeyBits == 0 {
		// very old tables didn't record the width
		if t.MaxPress <= 5 {
			t.KeyBits = 6
		} else {
			t.KeyBits = 7
		}
	}

	off := fullHeadSize
	need := func(n int) error {
		if off+n > len(data) {
			return fmt.Errorf("%w: legacy table truncated at offset %d (+%d, size %d)",
				tablefile.ErrUnsupportedFormat, off, n, len(data))
		}
		return nil
	}

	if err := need(t.KeyS); err != nil {
		return nil, err
	}
	t.Keymap = data[off : off+t.KeyS]
	off += t.KeyS

	if err := need(t.KeyS * chSize); err != nil {
		return nil, err
	}
	t.keyname = data[off : off+t.KeyS*chSize]
	off += t.KeyS * chSize

	// per-first-key index table; regenerated on load by the engine, so
	// only skipped here
	off += (t.KeyS + 1) * 4
	if off > len(data) {
		return nil, fmt.Errorf("%w: legacy table truncated in index table",
			tablefile.ErrUnsupportedFormat)
	}

	if t.KeyBits*t.MaxPress > 64 {
		t.Unsupported = true
		return &t, nil
	}

	itemSize := 4 + chSize
	if t.key64() {
		itemSize = 8 + chSize
	}
	if err := need(t.DefC * itemSize); err != nil {
		return nil, err
	}
	t.items = make([]item, t.DefC)
	for i := range t.items {
		record := data[off : off+itemSize]
		// legacy keys are stored in native little-endian order
		if t.key64() {
			t.items[i].key = binary.LittleEndian.Uint64(record[:8])
		} else {
			t.items[i].key = uint64(binary.LittleEndian.Uint32(record[:4]))
		}
		copy(t.items[i].ch[:], record[itemSize-chSize:])
		off += itemSize
	}

	// phrase index array and text buffer; absent in tables without
	// phrase entries
	if rest := data[off:]; len(rest) >= 4 {
		count := int32(binary.LittleEndian.Uint32(rest))
		idxLen := int(count) + 1
		if count >= 1 && len(rest) >= 4*idxLen {
			t.phrIdx = make([]int32, idxLen)
			for i := range t.phrIdx {
				t.phrIdx[i] = int32(binary.LittleEndian.Uint32(rest[4*i:]))
			}
			t.phrBuf = rest[4*idxLen:]
		}
	}

	return &t, nil
}

func (t *Table) key64() bool {
	return t.KeyBits*t.MaxPress > 32
}

// phrase resolves a phrase reference the way the original did: the
// reference is (ch[0]<<16)|(ch[1]<<8)|ch[2] with ch[0] known to be
// zero, so it is effectively 16-bit (kept as-is, not widened).
func (t *Table) phrase(ref int) (string, bool) {
	if ref < 0 || ref+2 >= len(t.phrIdx) {
		return "", false
	}
	start, end := t.phrIdx[ref+1], t.phrIdx[ref+2]
	if start < 0 || end < start || int(end) > len(t.phrBuf) {
		return "", false
	}
	return string(t.phrBuf[start:end]), true
}

func (t *Table) isEndKey(key byte) bool {
	if key == ' ' {
		return true
	}
	return bytes.IndexByte([]byte(t.EndKey), key) >= 0
}

func (t *Table) quick1(row, cand int) []byte {
	off := (row*quickCands + cand) * chSize
	return t.quick[off : off+chSize]
}

func (t *Table) quick2(row1, row2, cand int) []byte {
	off := quick1Size + ((row1*quickRows+row2)*quickCands+cand)*chSize
	return t.quick[off : off+chSize]
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
