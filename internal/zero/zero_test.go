// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package zero

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	for _, testcase := range []struct {
		input    []byte
		expected bool
	}{
		{nil, true},
		{[]byte{}, true},
		{make([]byte, 1024), true},
		{[]byte{0, 0, 1}, false},
		{[]byte{1, 0, 0}, false},
		{[]byte{'a'}, false},
	} {
		require.Equal(t, testcase.expected, Bytes(testcase.input))
	}
}
