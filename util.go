// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package gtab

// utf8Size returns the encoded length a UTF-8 lead byte announces.
// Continuation and invalid lead bytes count as 1 so a scan always
// advances.
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

// glyphString extracts the UTF-8 text from a fixed NUL-padded slot,
// whole characters only.
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
