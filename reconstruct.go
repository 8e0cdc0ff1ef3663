// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package gtab

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oouyang/gtab/internal/legacy"
	"github.com/oouyang/gtab/internal/tablefile"
)

// ReconstructFile reads a binary table and writes the recovered
// definition text to w.
func ReconstructFile(w io.Writer, path string) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("read table: %w", err)
	}
	return Reconstruct(w, data, filepath.Base(path))
}

// Reconstruct writes definition text recovered from a binary table
// image.  The first four bytes decide which reader runs: the current
// format announces itself with a magic tag, anything else is handled
// as the legacy layout.  srcName is recorded in the %ename directive.
func Reconstruct(w io.Writer, data []byte, srcName string) (Stats, error) {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == tablefile.Magic {
		return reconstructV2(w, data, srcName)
	}
	st, err := legacy.Reconstruct(w, data, srcName)
	if err != nil {
		return Stats{}, err
	}
	return Stats(st), nil
}

func reconstructV2(w io.Writer, data []byte, srcName string) (Stats, error) {
	tf, err := tablefile.Parse(data)
	if err != nil {
		return Stats{}, err
	}
	t := &Table{tf: tf}
	def, err := t.Definition()
	if err != nil {
		return Stats{}, err
	}
	stats := t.Stats()

	bw := bufio.NewWriter(w)
	bw.WriteString("#\n# cin file created via gtab2cin\n#\n")
	bw.WriteString("%gen_inp\n")
	fmt.Fprintf(bw, "%%ename %s\n", srcName)
	def.encodeTo(bw)
	fmt.Fprintf(bw, "#\n")
	fmt.Fprintf(bw, "# Gtab version: %d\n", tablefile.FormatVersion)
	fmt.Fprintf(bw, "# keybits: %d\n", stats.KeyBits)
	fmt.Fprintf(bw, "# MaxPress: %d\n", stats.MaxPress)
	fmt.Fprintf(bw, "# Defined Characters : %d\n", stats.ItemCount)
	fmt.Fprintf(bw, "#\n")
	if err := bw.Flush(); err != nil {
		return Stats{}, fmt.Errorf("write definition: %w", err)
	}
	return stats, nil
}
