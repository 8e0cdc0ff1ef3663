// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package gtab

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/oouyang/gtab/internal/tablefile"
)

var errTooManyKeys = errors.New("at most 127 key symbols are supported")

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	logger *slog.Logger
}

// WithLogger sets an optional logger used for progress updates while
// compiling.  If not provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) CompileOption {
	return func(opts *compileOptions) {
		opts.logger = logger
	}
}

// Compile packs a definition into a binary table.
//
// Each keystroke contributes keybits bits to the packed key, most
// significant first, and sequences shorter than the longest one are
// left-aligned with zeroed trailing slots, so the packed prefix of any
// L keystrokes is recoverable by a single right shift.  The finished
// item array is sorted ascending by packed key; entries sharing a key
// keep their definition order, which is the candidate ranking order.
func Compile(def *Definition, opts ...CompileOption) (*Table, error) {
	options := compileOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if len(def.Keys) > 127 {
		return nil, errTooManyKeys
	}
	bits := keyBits(len(def.Keys))

	maxPress := 0
	for _, e := range def.Entries {
		if len(e.Seq) > maxPress {
			maxPress = len(e.Seq)
		}
	}
	if maxPress*bits > 64 {
		return nil, fmt.Errorf("%w: packed keys need %d bits, at most 64 fit",
			ErrUnsupportedFormat, maxPress*bits)
	}

	keyIdx := def.keyIndex()
	items := make([]tablefile.Item, 0, len(def.Entries))
	var phrases []string
	for _, e := range def.Entries {
		it := tablefile.Item{Key: packKey(e.Seq, &keyIdx, bits, maxPress)}
		if len(e.Text) <= tablefile.GlyphSize {
			it.Ch = tablefile.GlyphSlot(e.Text)
		} else {
			ch, err := tablefile.PhraseSlot(len(phrases))
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", e.Seq, err)
			}
			it.Ch = ch
			phrases = append(phrases, e.Text)
		}
		items = append(items, it)
	}

	// stable: ties keep definition order
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})

	keymap := make([]byte, len(def.Keys))
	keyname := make([]byte, len(def.Keys)*tablefile.GlyphSize)
	for i, ks := range def.Keys {
		keymap[i] = ks.Key
		copy(keyname[i*tablefile.GlyphSize:(i+1)*tablefile.GlyphSize], truncUTF8(ks.Name, tablefile.GlyphSize))
	}

	phrIdx, phrBuf := tablefile.BuildPhraseRegion(phrases)

	tf := &tablefile.Table{
		Header: tablefile.Header{
			CName:      def.CName,
			SelKeys:    def.SelKeys,
			SpaceStyle: uint8(def.SpaceStyle),
			KeyCount:   uint8(len(def.Keys)),
			MaxPress:   uint8(maxPress),
			KeyBits:    uint8(bits),
		},
		Keymap:  keymap,
		Keyname: keyname,
		Items:   items,
		PhrIdx:  phrIdx,
		PhrBuf:  phrBuf,
	}

	options.logger.Debug("compiled table",
		"cname", def.CName,
		"keys", len(def.Keys),
		"entries", len(items),
		"phrases", len(phrases),
		"keybits", bits,
		"max_press", maxPress,
		"key64", tf.Key64())

	return &Table{tf: tf}, nil
}

// keyBits is the minimum width that can represent every symbol index
// plus the reserved "no key" value: ceil(log2(symbolCount+1)).
func keyBits(symbolCount int) int {
	n := symbolCount + 1
	bits := 1
	for 1<<bits < n {
		bits++
	}
	return bits
}

// packKey packs a key sequence into a single integer, left-aligned
// within maxPress keybits-wide slots.  Characters absent from the
// symbol map pack as the reserved index 0.
func packKey(seq string, keyIdx *[128]uint8, bits, maxPress int) uint64 {
	var val uint64
	for i := 0; i < len(seq); i++ {
		var idx uint8
		if seq[i] < 128 {
			idx = keyIdx[seq[i]]
		}
		val = val<<bits | uint64(idx)
	}
	return val << uint((maxPress-len(seq))*bits)
}
