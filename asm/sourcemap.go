// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// offsets into the assembled code.
type SourceMap struct {
	File       string
	Size       uint32
	CRC        uint32
	Directives Directives
	Lines      []SourceLine
}

// A SourceLine represents a mapping between a machine code offset and the
// source code line used to generate it.
type SourceLine struct {
	Offset int // Offset of the instruction within the code
	Line   int // Source code line number
}

// Search searches the source map for a mapping with the requested offset.
func (s *SourceMap) Search(offset int) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Offset >= offset
	})
	if i < len(s.Lines) && s.Lines[i].Offset == offset {
		return s.File, s.Lines[i].Line
	}
	return "", -1
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
