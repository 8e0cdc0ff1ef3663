// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package legacy

import (
	"bufio"
	"fmt"
	"io"
)

// emptyCell stands in for empty two-key quick candidates so every row
// keeps its 10 columns.
const emptyCell = "□"

// Stats summarizes a reconstructed table.
type Stats struct {
	KeyBits   int
	MaxPress  int
	ItemCount int
}

// Reconstruct parses a legacy table image and writes it back out as
// definition text.  srcName is recorded in the %ename directive.
func Reconstruct(w io.Writer, data []byte, srcName string) (Stats, error) {
	t, err := Parse(data)
	if err != nil {
		return Stats{}, err
	}
	if err := t.WriteCin(w, srcName); err != nil {
		return Stats{}, err
	}
	return Stats{KeyBits: t.KeyBits, MaxPress: t.MaxPress, ItemCount: t.DefC}, nil
}

// WriteCin emits the table as definition text: metadata directives,
// the key-symbol block, the quick-key block when the region is
// non-empty, and the entry block with phrases expanded.
func (t *Table) WriteCin(w io.Writer, srcName string) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("#\n# cin file created via gtab2cin\n#\n")
	bw.WriteString("%gen_inp\n")
	fmt.Fprintf(bw, "%%ename %s\n", srcName)
	fmt.Fprintf(bw, "%%cname %s\n", t.CName)
	if t.selKey[len(t.selKey)-1] == 0 {
		fmt.Fprintf(bw, "%%selkey %s\n", cString(t.selKey[:]))
	} else {
		// the selection keys overflowed their field; the rest sits in
		// the tail union
		bw.WriteString("%selkey ")
		bw.Write(t.selKey[:])
		fmt.Fprintf(bw, "%s\n", cString(t.selKey2[:]))
	}
	fmt.Fprintf(bw, "%%dupsel %d\n", t.DupSel)
	if t.EndKey != "" {
		fmt.Fprintf(bw, "%%endkey %s\n", t.EndKey)
	}
	fmt.Fprintf(bw, "%%space_style %d\n", t.SpaceStyle)
	for _, fd := range flagDirectives {
		if t.Flag&fd.bit != 0 {
			fmt.Fprintf(bw, "%%%s\n", fd.name)
		}
	}

	bw.WriteString("%keyname begin\n")
	for i := 1; i < t.KeyS; i++ {
		// a leading '#' would be taken for a comment when re-parsed
		if t.Keymap[i] == '#' {
			bw.WriteByte(' ')
		}
		fmt.Fprintf(bw, "%c ", t.Keymap[i])
		bw.WriteString(glyphString(t.keyname[i*chSize : (i+1)*chSize]))
		bw.WriteByte('\n')
	}
	bw.WriteString("%keyname end\n")

	if t.HasQuick {
		t.writeQuick(bw)
	}

	bw.WriteString("%chardef begin\n")
	if t.Unsupported {
		fmt.Fprintln(bw, "# Unknown chardef")
	} else {
		for i := range t.items {
			t.writeChardefEntry(bw, &t.items[i])
		}
	}
	bw.WriteString("%chardef end\n")

	fmt.Fprintf(bw, "#\n")
	fmt.Fprintf(bw, "# Gtab version: %d\n", t.Version)
	fmt.Fprintf(bw, "# flags: %#x\n", t.Flag)
	fmt.Fprintf(bw, "# keybits: %d\n", t.KeyBits)
	fmt.Fprintf(bw, "# MaxPress: %d\n", t.MaxPress)
	fmt.Fprintf(bw, "# Defined Characters : %d\n", t.DefC)
	fmt.Fprintf(bw, "#\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write cin: %w", err)
	}
	return nil
}

func (t *Table) writeQuick(bw *bufio.Writer) {
	bw.WriteString("%quick begin\n")
	for row := 0; row+1 < t.KeyS && row < quickRows; row++ {
		key := t.Keymap[row+1]
		if t.isEndKey(key) {
			continue
		}
		fmt.Fprintf(bw, "%c ", key)
		for cand := 0; cand < quickCands; cand++ {
			bw.WriteString(glyphString(t.quick1(row, cand)))
		}
		bw.WriteByte('\n')
	}
	for row1 := 0; row1+1 < t.KeyS && row1 < quickRows; row1++ {
		if t.isEndKey(t.Keymap[row1+1]) {
			continue
		}
		for row2 := 0; row2+1 < t.KeyS && row2 < quickRows; row2++ {
			if t.isEndKey(t.Keymap[row2+1]) {
				continue
			}
			fmt.Fprintf(bw, "%c%c ", t.Keymap[row1+1], t.Keymap[row2+1])
			for cand := 0; cand < quickCands; cand++ {
				cell := glyphString(t.quick2(row1, row2, cand))
				if cell == "" {
					cell = emptyCell
				}
				bw.WriteString(cell)
			}
			bw.WriteByte('\n')
		}
	}
	bw.WriteString("%quick end\n")
}

func (t *Table) writeChardefEntry(bw *bufio.Writer, it *item) {
	// the legacy generator aligned keys within fieldBits/keybits slots,
	// not within max_press slots
	slots := 32 / t.KeyBits
	if t.key64() {
		slots = 64 / t.KeyBits
	}
	mask := uint64(1)<<t.KeyBits - 1

	var seq []byte
	for s := 0; s < t.MaxPress; s++ {
		idx := it.key >> (uint(t.KeyBits) * uint(slots-s-1)) & mask
		if idx == 0 {
			break
		}
		if int(idx) < t.KeyS {
			seq = append(seq, t.Keymap[idx])
		} else {
			seq = append(seq, '?')
		}
	}
	if len(seq) > 0 && seq[0] == '#' {
		bw.WriteByte(' ')
	}
	bw.Write(seq)
	bw.WriteByte(' ')

	if it.ch[0] == 0 {
		ref := int(it.ch[0])<<16 | int(it.ch[1])<<8 | int(it.ch[2])
		if phrase, ok := t.phrase(ref); ok {
			bw.WriteString(phrase)
		}
	} else {
		bw.WriteString(glyphString(it.ch[:]))
	}
	bw.WriteByte('\n')
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

// glyphString extracts the UTF-8 text from a fixed NUL-padded slot.
func glyphString(slot []byte) string {
	n := 0
	for n < len(slot) && slot[n] != 0 {
		sz := utf8Size(slot[n])
		if n+sz > len(slot) {
			break
		}
		n += sz
	}
	return string(slot[:n])
}
