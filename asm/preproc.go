// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"sort"
	"strings"
)

// Directives maps a directive name to the value given in the source.
// Values are recorded but never change the emitted code.
type Directives map[string]string

// Names returns the directive names in sorted order.
func (d Directives) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var directiveNames = map[string]bool{
	"org": true,
	"bit": true,
}

// A Statement is a comment-stripped source line that holds an instruction.
type Statement struct {
	Line int    // 1-based source line number
	Text string // statement text without comment or surrounding whitespace
}

// Preprocess strips comments and blank lines from the source lines and
// extracts "[.name value]" directive lines. The remaining statements keep
// their original line numbers.
func Preprocess(lines []string) ([]Statement, Directives, error) {
	src := make([]fstring, len(lines))
	for i, s := range lines {
		src[i] = newFstring(i+1, s)
	}

	stmts, dirs, err := preprocess(src, nil)
	if err != nil {
		return nil, nil, err
	}

	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = Statement{Line: s.row, Text: s.str}
	}
	return out, dirs, nil
}

func preprocess(lines []fstring, a *assembler) ([]fstring, Directives, error) {
	var stmts []fstring
	dirs := make(Directives)

	for _, l := range lines {
		l = l.stripComment()
		switch {
		case l.isEmpty():
			continue

		case l.startsWithChar('['):
			name, value, err := parseDirective(l)
			if err != nil {
				return nil, nil, err
			}
			if a != nil {
				a.logLine(l, "directive .%s", name)
			}
			dirs[name] = value

		default:
			stmts = append(stmts, l)
		}
	}
	return stmts, dirs, nil
}

// Parse a directive line of the form "[.name value]".
func parseDirective(l fstring) (name, value string, err error) {
	if !l.startsWithString("[.") {
		return "", "", syntaxError(l, "directive must begin with '[.'")
	}

	head, rest := l.consumeUntil(whitespace)
	name = strings.TrimSuffix(head.str[2:], "]")
	if !directiveNames[name] {
		return "", "", syntaxError(head, "unknown directive '.%s'", name)
	}
	if rest.isEmpty() {
		return "", "", syntaxError(head, "directive '.%s' has no value", name)
	}

	v, tail := rest.consumeWhitespace().consumeUntilChar(']')
	if tail.isEmpty() {
		return "", "", syntaxError(l, "missing ']' in directive '.%s'", name)
	}
	if tail = tail.consume(1); !tail.isEmpty() {
		return "", "", syntaxError(tail, "unexpected text '%s' after directive", tail.str)
	}

	v = v.trimTrailing()
	if v.isEmpty() {
		return "", "", syntaxError(v, "directive '.%s' has no value", name)
	}
	return name, v.str, nil
}
