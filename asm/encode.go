// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"github.com/ef65/ef65/isa"
)

// EncodeInstruction returns the opcode byte for the mnemonic and mode
// followed by the encoded operand.
func EncodeInstruction(set *isa.InstructionSet, mnemonic string, mode isa.Mode, operand string) ([]byte, error) {
	return encodeInstruction(set, newFstring(0, mnemonic), mode, newFstring(0, operand))
}

func encodeInstruction(set *isa.InstructionSet, mnemonic fstring, mode isa.Mode, operand fstring) ([]byte, error) {
	inst, known := set.Find(mnemonic.str, mode)
	switch {
	case !known:
		return nil, newError(ErrUnknownMnemonic, mnemonic,
			"unknown mnemonic '%s'", mnemonic.str)
	case inst == nil:
		return nil, newError(ErrUnsupportedMode, operand,
			"'%s' does not support %s addressing", mnemonic.str, mode)
	}

	b, err := encodeOperand(operand, mode)
	if err != nil {
		return nil, err
	}
	return append([]byte{inst.Opcode}, b...), nil
}

// Encode one comment-stripped statement.
func encodeStatement(set *isa.InstructionSet, line fstring) (isa.Mode, []byte, error) {
	mnemonic, operand, hasOperand := splitStatement(line)
	mode, err := resolveMode(operand, hasOperand)
	if err != nil {
		return mode, nil, err
	}
	b, err := encodeInstruction(set, mnemonic, mode, operand)
	return mode, b, err
}
