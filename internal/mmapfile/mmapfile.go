// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmapfile maps whole files read-only into memory.
package mmapfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// A File is a read-only memory mapping of an entire file.
type File struct {
	data []byte
}

// Open maps path read-only and advises the kernel that access will be
// random (lookups binary-search the mapping).
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := st.Size()
	if size == 0 {
		return &File{}, nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("%s too large to map (%d bytes)", path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("madvise %s: %w", path, err)
	}
	return &File{data: data}, nil
}

// Data returns the mapped bytes.  The slice is only valid until Close.
func (f *File) Data() []byte {
	return f.data
}

// Len returns the size of the mapping.
func (f *File) Len() int {
	return len(f.data)
}

// Close unmaps the file.
func (f *File) Close() error {
	if f.data == nil {
		return nil
	}
	data := f.data
	f.data = nil
	return unix.Munmap(data)
}
