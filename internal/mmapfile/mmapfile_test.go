// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mmapfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	contents := []byte("mapped contents")
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, contents, f.Data())
	assert.Equal(t, len(contents), f.Len())

	require.NoError(t, f.Close())
	assert.Zero(t, f.Len())
	require.NoError(t, f.Close(), "closing twice is fine")
}

func TestOpenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	assert.Zero(t, f.Len())
	require.NoError(t, f.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}
