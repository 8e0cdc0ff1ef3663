// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tablefile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMarshalRoundTrip(t *testing.T) {
	h := Header{
		CName:      "測試表",
		SelKeys:    "123456789",
		SpaceStyle: 4,
		KeyCount:   26,
		MaxPress:   5,
		KeyBits:    5,
		ItemCount:  1234,
		KeymapOff:  72,
		KeynameOff: 98,
		ItemsOff:   202,
	}
	buf := h.MarshalBytes()

	var got Header
	require.NoError(t, got.UnmarshalBytes(buf[:]))
	assert.Equal(t, h, got)

	// spot-check the fixed layout
	assert.Equal(t, uint32(Magic), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint16(FormatVersion), binary.LittleEndian.Uint16(buf[4:]))
	assert.Equal(t, byte(26), buf[53])
	assert.Equal(t, uint32(1234), binary.LittleEndian.Uint32(buf[56:]))
	assert.Equal(t, uint32(202), binary.LittleEndian.Uint32(buf[68:]))
}

func TestHeaderUnmarshalErrors(t *testing.T) {
	good := Header{KeyBits: 5, KeyCount: 1}
	buf := good.MarshalBytes()

	var h Header
	require.ErrorIs(t, h.UnmarshalBytes(buf[:HeaderSize-1]), ErrUnsupportedFormat)

	bad := buf
	binary.LittleEndian.PutUint32(bad[0:], 0xdeadbeef)
	require.ErrorIs(t, h.UnmarshalBytes(bad[:]), ErrBadMagic)

	bad = buf
	binary.LittleEndian.PutUint16(bad[4:], 99)
	require.ErrorIs(t, h.UnmarshalBytes(bad[:]), ErrUnsupportedFormat)

	bad = buf
	bad[55] = 0 // keybits
	require.ErrorIs(t, h.UnmarshalBytes(bad[:]), ErrUnsupportedFormat)
	bad[55] = 9
	require.ErrorIs(t, h.UnmarshalBytes(bad[:]), ErrUnsupportedFormat)

	// a crafted header whose packed width overflows 64 bits must be
	// rejected, not decoded into zero-shifted garbage
	bad = buf
	bad[54] = 13 // max_press, 13*5 = 65 bits
	require.ErrorIs(t, h.UnmarshalBytes(bad[:]), ErrUnsupportedFormat)
}

func TestKey64Rule(t *testing.T) {
	assert.False(t, Key64(5, 6)) // 30 bits
	assert.False(t, Key64(4, 8)) // exactly 32
	assert.True(t, Key64(5, 7))  // 35
	assert.True(t, Key64(9, 7))  // 63
}

func TestPhraseSlot(t *testing.T) {
	ch, err := PhraseSlot(0x1234)
	require.NoError(t, err)
	assert.Equal(t, [GlyphSize]byte{0, 0x12, 0x34, 0}, ch)

	it := Item{Ch: ch}
	ref, ok := it.PhraseRef()
	require.True(t, ok)
	assert.Equal(t, 0x1234, ref)

	// glyph slots never read as phrase references
	ref, ok = Item{Ch: GlyphSlot("好")}.PhraseRef()
	assert.False(t, ok)
	assert.Zero(t, ref)

	_, err = PhraseSlot(1 << 16)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = PhraseSlot(-1)
	require.Error(t, err)
}

func TestBuildPhraseRegion(t *testing.T) {
	idx, buf := BuildPhraseRegion(nil)
	assert.Nil(t, idx)
	assert.Nil(t, buf)

	idx, buf = BuildPhraseRegion([]string{"ab", "cde"})
	assert.Equal(t, []int32{3, 0, 2, 5}, idx)
	assert.Equal(t, []byte("abcde"), buf)

	tbl := Table{PhrIdx: idx, PhrBuf: buf}
	assert.Equal(t, 2, tbl.PhraseCount())
	p, ok := tbl.Phrase(0)
	require.True(t, ok)
	assert.Equal(t, "ab", p)
	p, ok = tbl.Phrase(1)
	require.True(t, ok)
	assert.Equal(t, "cde", p)
	_, ok = tbl.Phrase(2)
	assert.False(t, ok)
	_, ok = tbl.Phrase(-1)
	assert.False(t, ok)
}

func sampleTable() *Table {
	idx, buf := BuildPhraseRegion([]string{"一二三四五"})
	phraseCh, _ := PhraseSlot(0)
	return &Table{
		Header: Header{
			CName:      "往返",
			SelKeys:    "1234567890",
			SpaceStyle: 1,
			KeyCount:   3,
			MaxPress:   2,
			KeyBits:    2,
		},
		Keymap:  []byte("abc"),
		Keyname: []byte("日\x00月\x00金\x00"),
		Items: []Item{
			{Key: 1 << 2, Ch: GlyphSlot("日")},
			{Key: 1<<2 | 2, Ch: GlyphSlot("明")},
			{Key: 3 << 2, Ch: phraseCh},
		},
		PhrIdx: idx,
		PhrBuf: buf,
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	want := sampleTable()

	var out bytes.Buffer
	n, err := want.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)

	got, err := Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want.Header, got.Header)
	assert.Equal(t, want.Keymap, got.Keymap)
	assert.Equal(t, want.Keyname, got.Keyname)
	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.PhrIdx, got.PhrIdx)
	assert.Equal(t, want.PhrBuf, got.PhrBuf)

	// item keys compare as unsigned byte strings on disk
	itemsOff := int(got.Header.ItemsOff)
	itemSize := got.ItemSize()
	prev := out.Bytes()[itemsOff : itemsOff+4]
	for i := 1; i < len(got.Items); i++ {
		cur := out.Bytes()[itemsOff+i*itemSize : itemsOff+i*itemSize+4]
		assert.LessOrEqual(t, bytes.Compare(prev, cur), 0)
		prev = cur
	}
}

func TestWriteRecomputesLayout(t *testing.T) {
	tbl := sampleTable()
	tbl.Header.KeymapOff = 9999 // stale, must be ignored

	var out bytes.Buffer
	_, err := tbl.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, uint32(HeaderSize), tbl.Header.KeymapOff)
	assert.Equal(t, uint32(HeaderSize+3), tbl.Header.KeynameOff)
	assert.Equal(t, uint32(HeaderSize+3+3*GlyphSize), tbl.Header.ItemsOff)
	assert.Equal(t, uint32(3), tbl.Header.ItemCount)
	assert.Zero(t, tbl.Header.Flags&FlagKey64)
}

func TestWriteSectionMismatch(t *testing.T) {
	tbl := sampleTable()
	tbl.Keymap = []byte("ab") // KeyCount says 3

	var out bytes.Buffer
	_, err := tbl.WriteTo(&out)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseTruncated(t *testing.T) {
	var out bytes.Buffer
	_, err := sampleTable().WriteTo(&out)
	require.NoError(t, err)
	data := out.Bytes()

	// cut inside the item section
	_, err = Parse(data[:int(HeaderSize)+3+3*GlyphSize+5])
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	// cut inside the phrase index
	itemsEnd := int(HeaderSize) + 3 + 3*GlyphSize + 3*(4+GlyphSize)
	_, err = Parse(data[:itemsEnd+6])
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseKey64Items(t *testing.T) {
	tbl := &Table{
		Header: Header{
			KeyCount: 1,
			MaxPress: 5,
			KeyBits:  7, // 35 bits, 8-byte keys
		},
		Keymap:  []byte("a"),
		Keyname: []byte("日\x00"),
		Items:   []Item{{Key: 0x123456789a << 7, Ch: GlyphSlot("日")}},
	}
	var out bytes.Buffer
	_, err := tbl.WriteTo(&out)
	require.NoError(t, err)
	assert.NotZero(t, tbl.Header.Flags&FlagKey64)

	got, err := Parse(out.Bytes())
	require.NoError(t, err)
	require.True(t, got.Key64())
	assert.Equal(t, tbl.Items, got.Items)
}
