// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/binary"
	"errors"
	"strconv"

	"github.com/ef65/ef65/isa"
)

// EncodeOperand returns the operand bytes for operand text already
// classified as the given addressing mode. Addresses are emitted low byte
// first regardless of host byte order.
func EncodeOperand(operand string, mode isa.Mode) ([]byte, error) {
	return encodeOperand(newFstring(0, operand), mode)
}

func encodeOperand(operand fstring, mode isa.Mode) ([]byte, error) {
	var num fstring

	switch mode {
	case isa.IMP:
		if !operand.isEmpty() {
			return nil, syntaxError(operand, "unexpected operand '%s'", operand.str)
		}
		return nil, nil

	case isa.IMM, isa.ZPG:
		num = operand.consume(1)

	case isa.ZPX, isa.ZPY, isa.IDX, isa.IDY:
		num, _ = operand.consume(1).consumeUntilChar(',')

	case isa.IND:
		var rest fstring
		num, rest = operand.consume(1).consumeUntilChar(']')
		if rest.isEmpty() {
			return nil, syntaxError(operand, "missing ']' in '%s'", operand.str)
		}
		if rest = rest.consume(1).consumeWhitespace(); !rest.isEmpty() {
			return nil, syntaxError(rest, "unexpected text '%s' after ']'", rest.str)
		}

	case isa.ABS:
		num = operand

	case isa.ABX, isa.ABY:
		var rest fstring
		num, rest = operand.consumeUntilChar(',')
		if rest.isEmpty() {
			return nil, syntaxError(operand, "missing ',' before index register in '%s'", operand.str)
		}

	default:
		return nil, syntaxError(operand, "invalid addressing mode")
	}

	if mode.OperandSize() == 2 {
		v, err := parseNumber(num, 0xffff)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.AppendUint16(nil, uint16(v)), nil
	}

	v, err := parseNumber(num, 0xff)
	if err != nil {
		return nil, err
	}
	return []byte{byte(v)}, nil
}

// Parse a decimal or 0x-prefixed hexadecimal number no larger than max.
func parseNumber(l fstring, max uint64) (uint64, error) {
	l = l.consumeWhitespace().trimTrailing()
	if l.isEmpty() {
		return 0, syntaxError(l, "missing value")
	}

	s, base := l.str, 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s, base = s[2:], 16
	}

	v, err := strconv.ParseUint(s, base, 64)
	switch {
	case errors.Is(err, strconv.ErrRange) || (err == nil && v > max):
		return 0, syntaxError(l, "value '%s' out of range (0-%d)", l.str, max)
	case err != nil:
		return 0, syntaxError(l, "invalid number '%s'", l.str)
	}
	return v, nil
}
