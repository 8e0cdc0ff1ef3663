// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package trans performs bulk character substitution over UTF-8 text,
// e.g. conversion between traditional and simplified ideographs.
//
// A translation table is a flat on-disk array of fixed-width records,
// one source/target codepoint pair each, pre-sorted ascending by
// source key; the package trusts the sort and never verifies it.
// Tables are mapped into memory once and stay resident; every input
// character is a binary search, and characters without a mapping pass
// through unchanged.
package trans

import (
	"encoding/binary"
	"fmt"

	"github.com/oouyang/gtab/internal/mmapfile"
)

const (
	// recordSize is one source/target pair: the UTF-8 bytes of each
	// codepoint packed into 4 little-endian-compared bytes.
	recordSize = 8

	// initialBufSize is the minimum output buffer; translate doubles
	// the buffer whenever fewer than utf8.UTFMax+1 bytes remain.
	initialBufSize = 256

	maxCharSize = 4
)

// A Table is a resident translation table.
type Table struct {
	m     *mmapfile.File
	count int
}

// Open maps the translation table at path.  The file must be readable
// in full; there is no degraded mode.
func Open(path string) (*Table, error) {
	m, err := mmapfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("translation table: %w", err)
	}
	// a trailing partial record is ignored, matching the original's
	// size/sizeof arithmetic
	return &Table{m: m, count: m.Len() / recordSize}, nil
}

// Len returns the number of pairs in the table.
func (t *Table) Len() int {
	return t.count
}

// Close unmaps the table.  Translate must not be called afterwards.
func (t *Table) Close() error {
	return t.m.Close()
}

// lookup binary-searches the source-key column for key.
func (t *Table) lookup(key uint32) (uint32, bool) {
	data := t.m.Data()
	bot, top := 0, t.count-1
	for bot <= top {
		mid := (bot + top) / 2
		midKey := binary.LittleEndian.Uint32(data[mid*recordSize:])
		switch {
		case key > midKey:
			bot = mid + 1
		case key < midKey:
			top = mid - 1
		default:
			return binary.LittleEndian.Uint32(data[mid*recordSize+4:]), true
		}
	}
	return 0, false
}

// Translate maps every character of s that has a table entry to its
// target character and copies everything else through unchanged.
func (t *Table) Translate(s string) string {
	if len(s) == 0 {
		return ""
	}

	bufCap := initialBufSize
	if len(s) > initialBufSize {
		bufCap = 2 * len(s)
	}
	buf := make([]byte, 0, bufCap)

	for i := 0; i < len(s); {
		sz := utf8Size(s[i])
		if i+sz > len(s) {
			sz = len(s) - i
		}

		if cap(buf)-len(buf) < maxCharSize+1 {
			grown := make([]byte, len(buf), 2*cap(buf))
			copy(grown, buf)
			buf = grown
		}

		if target, ok := t.lookup(packKey(s[i : i+sz])); ok {
			buf = appendKey(buf, target)
		} else {
			buf = append(buf, s[i:i+sz]...)
		}
		i += sz
	}
	return string(buf)
}

// packKey packs the UTF-8 bytes of one character into the integer form
// the table is sorted by.
func packKey(ch string) uint32 {
	var b [4]byte
	copy(b[:], ch)
	return binary.LittleEndian.Uint32(b[:])
}

// appendKey appends the UTF-8 bytes packed in key.
func appendKey(buf []byte, key uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], key)
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return append(buf, b[:n]...)
}

// utf8Size returns the encoded length a UTF-8 lead byte announces.
func utf8Size(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead&0xe0 == 0xc0:
		return 2
	case lead&0xf0 == 0xe0:
		return 3
	case lead&0xf8 == 0xf0:
		return 4
	default:
		return 1
	}
}
