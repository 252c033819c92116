// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax matches every assembly error, including unknown mnemonics
	// and unsupported addressing modes.
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownMnemonic is returned for a mnemonic absent from the
	// instruction table.
	ErrUnknownMnemonic = errors.New("unknown mnemonic")

	// ErrUnsupportedMode is returned when a mnemonic exists but has no
	// opcode for the operand's addressing mode.
	ErrUnsupportedMode = errors.New("unsupported addressing mode")
)

// An Error describes a failure to assemble one statement.
type Error struct {
	Err    error  // ErrSyntax, ErrUnknownMnemonic or ErrUnsupportedMode
	File   string // source file name
	Line   int    // 1-based source line, 0 if unknown
	Column int    // 0-based column of the offending text
	Text   string // the full source line
	Msg    string // description of the failure
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.File != "" {
		fmt.Fprintf(&b, " in '%s'", e.File)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d, col %d", e.Line, e.Column+1)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

// Unwrap makes every Error match ErrSyntax as well as its own kind.
func (e *Error) Unwrap() []error {
	if e.Err == ErrSyntax {
		return []error{ErrSyntax}
	}
	return []error{e.Err, ErrSyntax}
}

func newError(kind error, l fstring, format string, args ...any) *Error {
	return &Error{
		Err:    kind,
		Line:   l.row,
		Column: l.column,
		Text:   l.full,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func syntaxError(l fstring, format string, args ...any) *Error {
	return newError(ErrSyntax, l, format, args...)
}
