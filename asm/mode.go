// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"

	"github.com/ef65/ef65/isa"
)

// ResolveMode returns the addressing mode selected by the operand of an
// assembly statement such as "lda #10" or "sta [0x20,x]".
func ResolveMode(statement string) (isa.Mode, error) {
	line := newFstring(0, statement).consumeWhitespace()
	_, operand, hasOperand := splitStatement(line)
	return resolveMode(operand, hasOperand)
}

// Split a stripped statement into its mnemonic and operand. hasOperand is
// true whenever whitespace follows the mnemonic, even if nothing follows
// the whitespace.
func splitStatement(line fstring) (mnemonic, operand fstring, hasOperand bool) {
	mnemonic, remain := line.consumeUntil(whitespace)
	if remain.isEmpty() {
		return mnemonic, remain, false
	}
	return mnemonic, remain.consumeWhitespace(), true
}

func resolveMode(operand fstring, hasOperand bool) (isa.Mode, error) {
	switch {
	case !hasOperand:
		return isa.IMP, nil

	case operand.isEmpty():
		return isa.IMP, syntaxError(operand, "missing operand")

	case operand.startsWithChar('#'):
		return isa.IMM, nil

	case operand.startsWithChar('%'):
		if !operand.containsChar(',') {
			return isa.ZPG, nil
		}
		return indexMode(operand, "", isa.ZPX, isa.ZPY)

	case operand.startsWithChar('['):
		if !operand.containsChar(',') {
			return isa.IND, nil
		}
		return indexMode(operand, "]", isa.IDX, isa.IDY)

	case operand.startsWith(decimal):
		if operand.containsChar(',') {
			return indexMode(operand, "", isa.ABX, isa.ABY)
		}
		switch lastLower(operand.str) {
		case 'x':
			return isa.ABX, nil
		case 'y':
			return isa.ABY, nil
		}
		return isa.ABS, nil

	default:
		return isa.IMP, syntaxError(operand, "unrecognized operand syntax '%s'", operand.str)
	}
}

// Select the x- or y-indexed mode from the register named after the
// operand's first comma. The register must be followed by exactly the
// closing text, if any. Whitespace around the register is ignored.
func indexMode(operand fstring, closing string, x, y isa.Mode) (isa.Mode, error) {
	_, reg := operand.consumeUntilChar(',')
	reg = reg.consume(1).consumeWhitespace().trimTrailing()
	name, ok := strings.CutSuffix(reg.str, closing)
	if !ok {
		return isa.IMP, syntaxError(reg, "missing '%s' after index register '%s'", closing, reg.str)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "x":
		return x, nil
	case "y":
		return y, nil
	}
	return isa.IMP, syntaxError(reg, "invalid index register '%s'", reg.str)
}

func lastLower(s string) byte {
	c := s[len(s)-1]
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}
