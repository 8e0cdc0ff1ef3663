// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tablefile

import (
	"encoding/binary"
	"fmt"
)

// Parse reads a whole v2 table image back into memory.  Sections are
// located through the offsets recorded in the header rather than by
// recomputing the layout.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := t.Header.UnmarshalBytes(data); err != nil {
		return nil, err
	}
	h := &t.Header

	keyCount := int(h.KeyCount)
	if err := checkSection(data, h.KeymapOff, keyCount); err != nil {
		return nil, fmt.Errorf("keymap section: %w", err)
	}
	if err := checkSection(data, h.KeynameOff, keyCount*GlyphSize); err != nil {
		return nil, fmt.Errorf("keyname section: %w", err)
	}
	t.Keymap = data[h.KeymapOff : int(h.KeymapOff)+keyCount]
	t.Keyname = data[h.KeynameOff : int(h.KeynameOff)+keyCount*GlyphSize]

	itemSize := t.ItemSize()
	itemCount := int(h.ItemCount)
	if err := checkSection(data, h.ItemsOff, itemCount*itemSize); err != nil {
		return nil, fmt.Errorf("items section: %w", err)
	}
	key64 := t.Key64()
	t.Items = make([]Item, itemCount)
	off := int(h.ItemsOff)
	for i := range t.Items {
		record := data[off : off+itemSize]
		if key64 {
			t.Items[i].Key = binary.BigEndian.Uint64(record[:8])
			copy(t.Items[i].Ch[:], record[8:])
		} else {
			t.Items[i].Key = uint64(binary.BigEndian.Uint32(record[:4]))
			copy(t.Items[i].Ch[:], record[4:])
		}
		off += itemSize
	}

	// anything after the items is the phrase region
	if rest := data[off:]; len(rest) >= 4 {
		count := int32(binary.LittleEndian.Uint32(rest))
		idxLen := int(count) + 1
		if count < 1 || len(rest) < 4*idxLen {
			return nil, fmt.Errorf("%w: truncated phrase index", ErrUnsupportedFormat)
		}
		t.PhrIdx = make([]int32, idxLen)
		for i := range t.PhrIdx {
			t.PhrIdx[i] = int32(binary.LittleEndian.Uint32(rest[4*i:]))
		}
		t.PhrBuf = rest[4*idxLen:]
	}

	return &t, nil
}

func checkSection(data []byte, off uint32, size int) error {
	if size < 0 || int(off) > len(data) || int(off)+size > len(data) {
		return fmt.Errorf("%w: section [%d:%d+%d] beyond file size %d", ErrUnsupportedFormat, off, off, size, len(data))
	}
	return nil
}
