// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tablefile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const defaultBufferSize = 1 * 1024 * 1024

// WriteTo serializes the table: header first, then the key map, key
// labels and sorted items at the offsets recorded in the header, then
// the phrase region when present.  Section offsets are recomputed here
// so a hand-assembled Table cannot write an inconsistent layout.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	keyCount := uint32(t.Header.KeyCount)
	t.Header.KeymapOff = HeaderSize
	t.Header.KeynameOff = HeaderSize + keyCount
	t.Header.ItemsOff = t.Header.KeynameOff + keyCount*GlyphSize
	t.Header.ItemCount = uint32(len(t.Items))
	if t.Key64() {
		t.Header.Flags |= FlagKey64
	} else {
		t.Header.Flags &^= FlagKey64
	}

	bw := bufio.NewWriterSize(w, defaultBufferSize)
	var n int64

	headerBuf := t.Header.MarshalBytes()
	if _, err := bw.Write(headerBuf[:]); err != nil {
		return n, fmt.Errorf("write header: %w", err)
	}
	n += HeaderSize

	if len(t.Keymap) != int(keyCount) || len(t.Keyname) != int(keyCount)*GlyphSize {
		return n, fmt.Errorf("%w: keymap/keyname sections don't match key count %d", ErrUnsupportedFormat, keyCount)
	}
	if _, err := bw.Write(t.Keymap); err != nil {
		return n, fmt.Errorf("write keymap: %w", err)
	}
	n += int64(len(t.Keymap))
	if _, err := bw.Write(t.Keyname); err != nil {
		return n, fmt.Errorf("write keyname: %w", err)
	}
	n += int64(len(t.Keyname))

	key64 := t.Key64()
	var record [8 + GlyphSize]byte
	for _, it := range t.Items {
		var recordLen int
		// keys are stored big-endian so that byte order and numeric
		// order agree
		if key64 {
			binary.BigEndian.PutUint64(record[:8], it.Key)
			copy(record[8:], it.Ch[:])
			recordLen = 8 + GlyphSize
		} else {
			binary.BigEndian.PutUint32(record[:4], uint32(it.Key))
			copy(record[4:], it.Ch[:])
			recordLen = 4 + GlyphSize
		}
		if _, err := bw.Write(record[:recordLen]); err != nil {
			return n, fmt.Errorf("write item: %w", err)
		}
		n += int64(recordLen)
	}

	if len(t.PhrIdx) > 0 {
		var idxBuf [4]byte
		for _, v := range t.PhrIdx {
			binary.LittleEndian.PutUint32(idxBuf[:], uint32(v))
			if _, err := bw.Write(idxBuf[:]); err != nil {
				return n, fmt.Errorf("write phrase index: %w", err)
			}
			n += 4
		}
		if _, err := bw.Write(t.PhrBuf); err != nil {
			return n, fmt.Errorf("write phrase buffer: %w", err)
		}
		n += int64(len(t.PhrBuf))
	}

	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	return n, nil
}
