// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler that emits statements in assembler syntax.
package disasm

import (
	"fmt"
	"io"

	"github.com/ef65/ef65/isa"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"",         // IMP
	"#0x%s",    // IMM
	"%%0x%s",   // ZPG
	"%%0x%s,x", // ZPX
	"%%0x%s,y", // ZPY
	"[0x%s]",   // IND
	"[0x%s,x]", // IDX
	"[0x%s,y]", // IDY
	"0x%s",     // ABS
	"0x%s,x",   // ABX
	"0x%s,y",   // ABY
}

var hex = "0123456789abcdef"

// Return a hexadecimal string representation of a little-endian operand.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code at 'offset' within 'code'. Return a 'line'
// string representing the disassembled instruction and a 'next' offset
// that starts the following instruction. Unused opcodes and truncated
// instructions produce a comment line covering the remaining byte. An
// offset outside 'code' yields an empty line and a 'next' of len(code).
func Disassemble(set *isa.InstructionSet, code []byte, offset int) (line string, next int) {
	if offset < 0 || offset >= len(code) {
		return "", len(code)
	}

	opcode := code[offset]
	inst := set.Lookup(opcode)
	if inst == nil || offset+int(inst.Length) > len(code) {
		return fmt.Sprintf("; 0x%02x", opcode), offset + 1
	}

	next = offset + int(inst.Length)
	if inst.Mode == isa.IMP {
		return inst.Name, next
	}
	operand := code[offset+1 : next]
	line = inst.Name + " " + fmt.Sprintf(modeFormat[inst.Mode], hexString(operand))
	return line, next
}

// A Line is one disassembled instruction.
type Line struct {
	Offset int    // offset of the instruction within the code
	Code   []byte // instruction bytes
	Text   string // statement in assembler syntax
}

// Listing disassembles at most 'max' instructions starting at the
// beginning of 'code'. A max of zero disassembles all of it.
func Listing(set *isa.InstructionSet, code []byte, max int) []Line {
	var lines []Line
	for offset := 0; offset < len(code); {
		if max > 0 && len(lines) >= max {
			break
		}
		text, next := Disassemble(set, code, offset)
		lines = append(lines, Line{Offset: offset, Code: code[offset:next], Text: text})
		offset = next
	}
	return lines
}

// Fprint writes a listing as offset, bytes and statement columns.
func Fprint(w io.Writer, lines []Line) error {
	for _, l := range lines {
		_, err := fmt.Fprintf(w, "%04X-   %-8s    %s\n", l.Offset, isa.HexBytes(l.Code), l.Text)
		if err != nil {
			return err
		}
	}
	return nil
}
