// Copyright 2025 The gtab Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package gtab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// maxSeqLen caps a key sequence at 15 keystrokes, matching the
	// original generator's fixed parse buffer.
	maxSeqLen = 15
	// maxTextLen caps entry output text at 31 bytes, likewise.
	maxTextLen = 31

	defaultSelKeys = "1234567890"
)

// ParseDefinitionFile parses a .cin source file.
func ParseDefinitionFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open definition: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	def, err := ParseDefinition(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition parses definition text from r.
//
// The format is deliberately permissive: unknown % directives, stray
// block markers, duplicate key symbols and malformed block lines are
// all skipped rather than reported, so tables written for older
// generators keep parsing.  Only a failing read is an error.
func ParseDefinition(r io.Reader) (*Definition, error) {
	def := &Definition{SelKeys: defaultSelKeys}
	seen := make(map[byte]bool)

	var inKeyname, inChardef bool
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 64*1024)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if line == "" || line[0] == '#' {
			continue
		}

		if line[0] == '%' {
			directive, rest, _ := strings.Cut(line, " ")
			rest = strings.TrimSpace(rest)
			switch directive {
			case "%cname":
				def.CName = rest
			case "%selkey":
				if rest != "" {
					def.SelKeys = rest
				}
			case "%space_style":
				// a bad number silently keeps the default, like atoi
				n, _ := strconv.Atoi(rest)
				def.SpaceStyle = n
			case "%keyname":
				inKeyname = rest == "begin"
			case "%chardef":
				inChardef = rest == "begin"
			default:
				// reserved for newer generators
			}
			continue
		}

		switch {
		case inKeyname:
			// one ASCII key char, then the label; a leading space
			// escapes a '#' key so the line isn't a comment
			kline := strings.TrimLeft(line, " \t")
			if kline == "" {
				continue
			}
			key := kline[0]
			if key < '!' || key > '~' || seen[key] {
				continue
			}
			seen[key] = true
			def.Keys = append(def.Keys, KeySym{
				Key:  key,
				Name: strings.TrimLeft(kline[1:], " \t"),
			})
		case inChardef:
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			seq, text := fields[0], fields[1]
			if len(seq) > maxSeqLen {
				seq = seq[:maxSeqLen]
			}
			if len(text) > maxTextLen {
				text = truncUTF8(text, maxTextLen)
			}
			def.Entries = append(def.Entries, Entry{Seq: seq, Text: text})
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return def, nil
}

// truncUTF8 cuts s to at most n bytes without splitting a character.
func truncUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xc0 == 0x80 {
		n--
	}
	return s[:n]
}
