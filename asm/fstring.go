// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// An fstring is a string that keeps track of its position within the
// file from which it was read.
type fstring struct {
	row    int    // 1-based line number of substring, 0 if unknown
	column int    // 0-based column of start of substring
	str    string // the actual substring of interest
	full   string // the full line as originally read from the file
}

func newFstring(row int, str string) fstring {
	return fstring{row, 0, str, str}
}

func (l fstring) String() string {
	return l.str
}

func (l fstring) advanceColumn(n int) int {
	c := l.column
	for i := 0; i < n; i++ {
		if l.str[i] == '\t' {
			c += 8 - (c % 8)
		} else {
			c++
		}
	}
	return c
}

func (l fstring) consume(n int) fstring {
	col := l.advanceColumn(n)
	return fstring{l.row, col, l.str[n:], l.full}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.row, l.column, l.str[:n], l.full}
}

func (l fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l fstring) startsWith(fn func(c byte) bool) bool {
	return len(l.str) > 0 && fn(l.str[0])
}

func (l fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

func (l fstring) startsWithString(s string) bool {
	return len(l.str) >= len(s) && l.str[:len(s)] == s
}

func (l fstring) containsChar(c byte) bool {
	return l.scanUntilChar(c) < len(l.str)
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

func (l fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) scanUntil(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && !fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) scanUntilChar(c byte) int {
	i := 0
	for ; i < len(l.str) && l.str[i] != c; i++ {
	}
	return i
}

func (l fstring) consumeUntil(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanUntil(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l fstring) consumeUntilChar(c byte) (consumed, remain fstring) {
	i := l.scanUntilChar(c)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

// Drop trailing whitespace.
func (l fstring) trimTrailing() fstring {
	n := len(l.str)
	for ; n > 0 && whitespace(l.str[n-1]); n-- {
	}
	return l.trunc(n)
}

// Remove a trailing comment along with leading and trailing whitespace.
func (l fstring) stripComment() fstring {
	s, _ := l.consumeUntil(comment)
	return s.consumeWhitespace().trimTrailing()
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func decimal(c byte) bool {
	return (c >= '0' && c <= '9')
}

func comment(c byte) bool {
	return c == ';'
}
