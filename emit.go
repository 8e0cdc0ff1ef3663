// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package gtab

import (
	"bufio"
	"fmt"
	"io"
)

// Encode writes the definition back out as .cin text.  Key sequences
// starting with '#' get a leading space so the line isn't taken for a
// comment when re-parsed.
func (d *Definition) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	d.encodeTo(bw)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write definition: %w", err)
	}
	return nil
}

func (d *Definition) encodeTo(bw *bufio.Writer) {
	fmt.Fprintf(bw, "%%cname %s\n", d.CName)
	fmt.Fprintf(bw, "%%selkey %s\n", d.SelKeys)
	fmt.Fprintf(bw, "%%space_style %d\n", d.SpaceStyle)

	bw.WriteString("%keyname begin\n")
	for _, ks := range d.Keys {
		if ks.Key == '#' {
			bw.WriteByte(' ')
		}
		fmt.Fprintf(bw, "%c %s\n", ks.Key, ks.Name)
	}
	bw.WriteString("%keyname end\n")

	bw.WriteString("%chardef begin\n")
	for _, e := range d.Entries {
		if len(e.Seq) > 0 && e.Seq[0] == '#' {
			bw.WriteByte(' ')
		}
		fmt.Fprintf(bw, "%s %s\n", e.Seq, e.Text)
	}
	bw.WriteString("%chardef end\n")
}
