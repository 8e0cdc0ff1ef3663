// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package gtab

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/oouyang/gtab/internal/tablefile"
)

// A Table is a compiled, sorted binary table held in memory.
type Table struct {
	tf *tablefile.Table
}

// Open reads a v2 binary table file.
func Open(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	tf, err := tablefile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Table{tf: tf}, nil
}

// Stats returns the table's packing parameters and entry count.
func (t *Table) Stats() Stats {
	return Stats{
		KeyBits:   int(t.tf.Header.KeyBits),
		MaxPress:  int(t.tf.Header.MaxPress),
		ItemCount: len(t.tf.Items),
	}
}

// Key64 reports whether packed keys occupy 8 bytes on disk.
func (t *Table) Key64() bool { return t.tf.Key64() }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.tf.Items) }

// WriteTo serializes the table in its on-disk form.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	return t.tf.WriteTo(w)
}

// WriteFile writes the table to path.  The table is written to a
// temporary file in the same directory and renamed into place, so a
// failed write never leaves a partial table behind.
func (t *Table) WriteFile(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("filepath.Abs: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "gtab.*.tmp")
	if err != nil {
		return fmt.Errorf("CreateTemp: %w", err)
	}
	if _, err := t.tf.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("f.Sync: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("f.Close: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("os.Rename: %w", err)
	}
	return nil
}

// Definition reconstructs the source definition this table was
// compiled from, with entries in packed-key order.
func (t *Table) Definition() (*Definition, error) {
	h := &t.tf.Header
	def := &Definition{
		CName:      h.CName,
		SelKeys:    h.SelKeys,
		SpaceStyle: int(h.SpaceStyle),
	}
	for i := 0; i < int(h.KeyCount); i++ {
		def.Keys = append(def.Keys, KeySym{
			Key:  t.tf.Keymap[i],
			Name: glyphString(t.tf.Keyname[i*tablefile.GlyphSize : (i+1)*tablefile.GlyphSize]),
		})
	}
	for _, it := range t.tf.Items {
		var text string
		if ref, ok := it.PhraseRef(); ok {
			phrase, ok := t.tf.Phrase(ref)
			if !ok {
				return nil, fmt.Errorf("%w: dangling phrase reference %d", ErrUnsupportedFormat, ref)
			}
			text = phrase
		} else {
			text = glyphString(it.Ch[:])
		}
		def.Entries = append(def.Entries, Entry{
			Seq:  string(t.decodeSeq(it.Key)),
			Text: text,
		})
	}
	return def, nil
}

// decodeSeq recovers the key characters from a packed key.  The
// reserved index 0 marks the end of the sequence.
func (t *Table) decodeSeq(key uint64) []byte {
	bits := uint(t.tf.Header.KeyBits)
	maxPress := int(t.tf.Header.MaxPress)
	mask := uint64(1)<<bits - 1

	var seq []byte
	for s := 0; s < maxPress; s++ {
		idx := key >> (uint(maxPress-1-s) * bits) & mask
		if idx == 0 {
			break
		}
		if int(idx) <= len(t.tf.Keymap) {
			seq = append(seq, t.tf.Keymap[idx-1])
		} else {
			seq = append(seq, '?')
		}
	}
	return seq
}

// Match returns the output text of every entry whose key sequence
// starts with seq, in table order.  Entries sharing the full sequence
// appear in their original candidate order.
func (t *Table) Match(seq string) []string {
	bits := int(t.tf.Header.KeyBits)
	maxPress := int(t.tf.Header.MaxPress)
	if len(seq) == 0 || len(seq) > maxPress {
		return nil
	}

	var keyIdx [128]uint8
	for i, c := range t.tf.Keymap {
		if c < 128 && keyIdx[c] == 0 {
			keyIdx[c] = uint8(i + 1)
		}
	}
	var prefix uint64
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c >= 128 || keyIdx[c] == 0 {
			return nil
		}
		prefix = prefix<<uint(bits) | uint64(keyIdx[c])
	}

	shift := uint((maxPress - len(seq)) * bits)
	items := t.tf.Items
	lo := sort.Search(len(items), func(i int) bool {
		return items[i].Key>>shift >= prefix
	})

	var out []string
	for i := lo; i < len(items) && items[i].Key>>shift == prefix; i++ {
		if ref, ok := items[i].PhraseRef(); ok {
			if phrase, ok := t.tf.Phrase(ref); ok {
				out = append(out, phrase)
			}
		} else {
			out = append(out, glyphString(items[i].Ch[:]))
		}
	}
	return out
}
