// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tablefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header is the fixed 72-byte record at the start of every v2 table.
// All multi-byte fields are little-endian.
type Header struct {
	Flags      uint16
	CName      string // display name, at most MaxCName bytes
	SelKeys    string // selection keys, at most MaxSelKeys bytes
	SpaceStyle uint8
	KeyCount   uint8
	MaxPress   uint8
	KeyBits    uint8
	ItemCount  uint32
	KeymapOff  uint32
	KeynameOff uint32
	ItemsOff   uint32
}

// field offsets within the header
const (
	hdrMagicOff      = 0
	hdrVersionOff    = 4
	hdrFlagsOff      = 6
	hdrCNameOff      = 8
	hdrSelKeysOff    = 40
	hdrSpaceStyleOff = 52
	hdrKeyCountOff   = 53
	hdrMaxPressOff   = 54
	hdrKeyBitsOff    = 55
	hdrItemCountOff  = 56
	hdrKeymapOffOff  = 60
	hdrKeynameOffOff = 64
	hdrItemsOffOff   = 68
)

// MarshalBytes lays the header out in its on-disk form.  Over-long
// names are truncated the way the original generator truncated them.
func (h *Header) MarshalBytes() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[hdrMagicOff:], Magic)
	binary.LittleEndian.PutUint16(buf[hdrVersionOff:], FormatVersion)
	binary.LittleEndian.PutUint16(buf[hdrFlagsOff:], h.Flags)
	copy(buf[hdrCNameOff:hdrCNameOff+MaxCName], h.CName)
	copy(buf[hdrSelKeysOff:hdrSelKeysOff+MaxSelKeys], h.SelKeys)
	buf[hdrSpaceStyleOff] = h.SpaceStyle
	buf[hdrKeyCountOff] = h.KeyCount
	buf[hdrMaxPressOff] = h.MaxPress
	buf[hdrKeyBitsOff] = h.KeyBits
	binary.LittleEndian.PutUint32(buf[hdrItemCountOff:], h.ItemCount)
	binary.LittleEndian.PutUint32(buf[hdrKeymapOffOff:], h.KeymapOff)
	binary.LittleEndian.PutUint32(buf[hdrKeynameOffOff:], h.KeynameOff)
	binary.LittleEndian.PutUint32(buf[hdrItemsOffOff:], h.ItemsOff)
	return buf
}

// UnmarshalBytes parses and validates an on-disk header.
func (h *Header) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < HeaderSize {
		return fmt.Errorf("%w: header too short: %d < %d", ErrUnsupportedFormat, len(headerBytes), HeaderSize)
	}
	headerBytes = headerBytes[:HeaderSize]

	magic := binary.LittleEndian.Uint32(headerBytes[hdrMagicOff:])
	if magic != Magic {
		return fmt.Errorf("%w: bad magic %#x", ErrBadMagic, magic)
	}
	version := binary.LittleEndian.Uint16(headerBytes[hdrVersionOff:])
	if version != FormatVersion {
		return fmt.Errorf("%w: version %d (only v%d supported)", ErrUnsupportedFormat, version, FormatVersion)
	}

	h.Flags = binary.LittleEndian.Uint16(headerBytes[hdrFlagsOff:])
	h.CName = cString(headerBytes[hdrCNameOff : hdrCNameOff+32])
	h.SelKeys = cString(headerBytes[hdrSelKeysOff : hdrSelKeysOff+12])
	h.SpaceStyle = headerBytes[hdrSpaceStyleOff]
	h.KeyCount = headerBytes[hdrKeyCountOff]
	h.MaxPress = headerBytes[hdrMaxPressOff]
	h.KeyBits = headerBytes[hdrKeyBitsOff]
	h.ItemCount = binary.LittleEndian.Uint32(headerBytes[hdrItemCountOff:])
	h.KeymapOff = binary.LittleEndian.Uint32(headerBytes[hdrKeymapOffOff:])
	h.KeynameOff = binary.LittleEndian.Uint32(headerBytes[hdrKeynameOffOff:])
	h.ItemsOff = binary.LittleEndian.Uint32(headerBytes[hdrItemsOffOff:])

	if h.KeyBits == 0 || h.KeyBits > 8 {
		return fmt.Errorf("%w: keybits %d out of range", ErrUnsupportedFormat, h.KeyBits)
	}
	if width := int(h.MaxPress) * int(h.KeyBits); width > 64 {
		return fmt.Errorf("%w: packed key width %d bits exceeds 64", ErrUnsupportedFormat, width)
	}
	return nil
}

// cString trims a fixed NUL-padded field.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
