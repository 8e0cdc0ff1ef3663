// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package gtab

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roundtripDef = `%cname 往返
%selkey 123456789
%space_style 4
%keyname begin
a 日
b 月
c 金
 # 井
%keyname end
%chardef begin
a 日
ab 明
ab 萌
abc 好
 #a 丼
c 金玉滿堂福祿壽喜
%chardef end
`

// candidates groups entry texts by sequence, preserving candidate order.
// Reconstruction emits entries in packed-key order, not source order, so
// round-trip comparisons go through this instead of the raw slice.
func candidates(def *Definition) map[string][]string {
	m := make(map[string][]string)
	for _, e := range def.Entries {
		m[e.Seq] = append(m[e.Seq], e.Text)
	}
	return m
}

func compileSample(t *testing.T) (*Definition, *Table) {
	t.Helper()
	def, err := ParseDefinition(strings.NewReader(roundtripDef))
	require.NoError(t, err)
	table, err := Compile(def)
	require.NoError(t, err)
	return def, table
}

func TestWriteOpenRoundTrip(t *testing.T) {
	def, table := compileSample(t)

	path := filepath.Join(t.TempDir(), "roundtrip.gtab")
	require.NoError(t, table.WriteFile(path))

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, table.Stats(), got.Stats())

	decoded, err := got.Definition()
	require.NoError(t, err)
	assert.Equal(t, def.CName, decoded.CName)
	assert.Equal(t, def.SelKeys, decoded.SelKeys)
	assert.Equal(t, def.SpaceStyle, decoded.SpaceStyle)
	assert.Equal(t, def.Keys, decoded.Keys)
	assert.Equal(t, candidates(def), candidates(decoded))
}

func TestPhraseRoundTrip(t *testing.T) {
	_, table := compileSample(t)

	path := filepath.Join(t.TempDir(), "phrase.gtab")
	require.NoError(t, table.WriteFile(path))
	got, err := Open(path)
	require.NoError(t, err)
	decoded, err := got.Definition()
	require.NoError(t, err)

	// the 8-character entry doesn't fit a glyph slot and travels
	// through the phrase region
	assert.Equal(t, []string{"金玉滿堂福祿壽喜"}, candidates(decoded)["c"])
	assert.Equal(t, []string{"金玉滿堂福祿壽喜"}, got.Match("c"))

	// phrase-free tables have no trailing region at all
	small := &Definition{
		SelKeys: defaultSelKeys,
		Keys:    []KeySym{{Key: 'a', Name: "日"}},
		Entries: []Entry{{Seq: "a", Text: "日"}},
	}
	st, err := Compile(small)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = st.WriteTo(&buf)
	require.NoError(t, err)
	reopened, err := Open(writeTemp(t, buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
}

func TestReconstructRoundTrip(t *testing.T) {
	def, table := compileSample(t)

	path := filepath.Join(t.TempDir(), "recon.gtab")
	require.NoError(t, table.WriteFile(path))

	var out bytes.Buffer
	stats, err := ReconstructFile(&out, path)
	require.NoError(t, err)
	assert.Equal(t, table.Stats(), stats)

	text := out.String()
	assert.Contains(t, text, "%gen_inp\n")
	assert.Contains(t, text, "%ename recon.gtab\n")
	assert.Contains(t, text, "%cname 往返\n")
	assert.Contains(t, text, "# keybits: ")

	// the emitted text reparses to the same definition, '#' escapes
	// included
	reparsed, err := ParseDefinition(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, def.Keys, reparsed.Keys)
	assert.Equal(t, candidates(def), candidates(reparsed))
	assert.Equal(t, []string{"丼"}, candidates(reparsed)["#a"])
}

func TestEncodeReparse(t *testing.T) {
	def, _ := compileSample(t)

	var buf bytes.Buffer
	require.NoError(t, def.Encode(&buf))
	reparsed, err := ParseDefinition(&buf)
	require.NoError(t, err)
	assert.Equal(t, def, reparsed)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.gtab"))
	require.Error(t, err)

	garbage := bytes.Repeat([]byte("not a table "), 8)
	_, err = Open(writeTemp(t, garbage))
	require.ErrorIs(t, err, ErrBadMagic)

	_, err = Open(writeTemp(t, []byte{0x32, 0x54}))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.gtab")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
