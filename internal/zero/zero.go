// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package zero reports whether byte regions are all-zero.
package zero

// Bytes reports whether every byte of b is zero.  An empty slice is
// all-zero.
func Bytes(b []byte) bool {
	for i := 0; i < len(b); i++ {
		if b[i] != 0 {
			return false
		}
	}
	return true
}
