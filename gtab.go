// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package gtab converts between human-editable input-method table
// definitions (.cin) and the compact binary table format (.gtab) used
// for per-keystroke lookup.
//
// A definition names a set of key symbols and maps key sequences to
// output text.  Compiling a definition packs every key sequence into a
// fixed-width integer (keybits bits per keystroke, left-aligned so any
// typed prefix is a single right-shift away) and sorts the result so
// lookups are binary searches over a flat array.  Reading goes the
// other way: both the current format and the older, richer legacy
// layout can be turned back into definition text.
package gtab

import (
	"github.com/oouyang/gtab/internal/tablefile"
)

// A Definition is the in-memory form of a .cin source file.
type Definition struct {
	// CName is the short display name of the table.
	CName string
	// SelKeys are the candidate-selection keys, "1234567890" by default.
	SelKeys string
	// SpaceStyle selects how the space key behaves for this table.
	SpaceStyle int
	// Keys are the key symbols in definition order; the position of a
	// symbol in this slice determines its packed-key index (position 0
	// packs as index 1 -- packed index 0 is reserved for "no key").
	Keys []KeySym
	// Entries map key sequences to output text, in definition order.
	Entries []Entry
}

// A KeySym pairs an ASCII key character with its displayed label.
type KeySym struct {
	Key  byte
	Name string
}

// An Entry maps one key sequence to its output text.  Text is either a
// single glyph or a multi-character phrase; anything that doesn't fit
// the 4-byte glyph slot of the binary format is stored as a phrase.
type Entry struct {
	Seq  string
	Text string
}

// Stats summarizes a table for the machine-readable converter output.
type Stats struct {
	KeyBits   int
	MaxPress  int
	ItemCount int
}

// Errors reported for malformed or unsupported binary tables.  I/O
// problems are returned as wrapped *os.PathError values instead.
var (
	ErrBadMagic          = tablefile.ErrBadMagic
	ErrUnsupportedFormat = tablefile.ErrUnsupportedFormat
)

// keyIndex returns the packed-key index for each ASCII character, or 0
// for characters absent from the symbol map (packing falls back to the
// reserved index rather than failing).
func (d *Definition) keyIndex() (m [128]uint8) {
	for i, ks := range d.Keys {
		if int(ks.Key) < len(m) && m[ks.Key] == 0 {
			m[ks.Key] = uint8(i + 1)
		}
	}
	return m
}
