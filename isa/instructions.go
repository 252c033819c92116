// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the 6502 instruction set understood by the ef65
// toolchain: the addressing modes an operand may take and the opcode byte
// selected by each (mnemonic, mode) pair.
package isa

// Mode describes a memory addressing mode.
type Mode byte

// All addressing modes recognized by the assembler.
const (
	IMP Mode = iota // Implied (no operand)
	IMM             // Immediate
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	IND             // [Indirect]
	IDX             // [Indirect,X]
	IDY             // [Indirect,Y]
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
)

var modeName = []string{
	"implied",
	"immediate",
	"zero-page",
	"zero-page,x",
	"zero-page,y",
	"indirect",
	"indirect,x",
	"indirect,y",
	"absolute",
	"absolute,x",
	"absolute,y",
}

var modeAbbrev = []string{
	"IMP",
	"IMM",
	"ZPG",
	"ZPX",
	"ZPY",
	"IND",
	"IDX",
	"IDY",
	"ABS",
	"ABX",
	"ABY",
}

// NumModes is the number of addressing modes.
const NumModes = int(ABY) + 1

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "invalid"
}

// Abbrev returns the three-letter abbreviation of the addressing mode.
func (m Mode) Abbrev() string {
	if int(m) < len(modeAbbrev) {
		return modeAbbrev[m]
	}
	return "???"
}

// OperandSize returns the number of operand bytes following the opcode.
func (m Mode) OperandSize() int {
	switch m {
	case IMP:
		return 0
	case ABS, ABX, ABY:
		return 2
	default:
		return 1
	}
}

// Opcode data for a (mnemonic, mode) pair
type opcodeData struct {
	name   string // lowercase mnemonic
	mode   Mode   // addressing mode
	opcode byte   // opcode hex value
}

// All valid (mnemonic, mode) pairs. Accumulator forms are expressed as
// implied; relative branches have no mode and are absent.
var data = []opcodeData{
	{"lda", IMM, 0xa9},
	{"lda", ZPG, 0xa5},
	{"lda", ZPX, 0xb5},
	{"lda", ABS, 0xad},
	{"lda", ABX, 0xbd},
	{"lda", ABY, 0xb9},
	{"lda", IDX, 0xa1},
	{"lda", IDY, 0xb1},

	{"ldx", IMM, 0xa2},
	{"ldx", ZPG, 0xa6},
	{"ldx", ZPY, 0xb6},
	{"ldx", ABS, 0xae},
	{"ldx", ABY, 0xbe},

	{"ldy", IMM, 0xa0},
	{"ldy", ZPG, 0xa4},
	{"ldy", ZPX, 0xb4},
	{"ldy", ABS, 0xac},
	{"ldy", ABX, 0xbc},

	{"sta", ZPG, 0x85},
	{"sta", ZPX, 0x95},
	{"sta", ABS, 0x8d},
	{"sta", ABX, 0x9d},
	{"sta", ABY, 0x99},
	{"sta", IDX, 0x81},
	{"sta", IDY, 0x91},

	{"stx", ZPG, 0x86},
	{"stx", ZPY, 0x96},
	{"stx", ABS, 0x8e},

	{"sty", ZPG, 0x84},
	{"sty", ZPX, 0x94},
	{"sty", ABS, 0x8c},

	{"adc", IMM, 0x69},
	{"adc", ZPG, 0x65},
	{"adc", ZPX, 0x75},
	{"adc", ABS, 0x6d},
	{"adc", ABX, 0x7d},
	{"adc", ABY, 0x79},
	{"adc", IDX, 0x61},
	{"adc", IDY, 0x71},

	{"sbc", IMM, 0xe9},
	{"sbc", ZPG, 0xe5},
	{"sbc", ZPX, 0xf5},
	{"sbc", ABS, 0xed},
	{"sbc", ABX, 0xfd},
	{"sbc", ABY, 0xf9},
	{"sbc", IDX, 0xe1},
	{"sbc", IDY, 0xf1},

	{"cmp", IMM, 0xc9},
	{"cmp", ZPG, 0xc5},
	{"cmp", ZPX, 0xd5},
	{"cmp", ABS, 0xcd},
	{"cmp", ABX, 0xdd},
	{"cmp", ABY, 0xd9},
	{"cmp", IDX, 0xc1},
	{"cmp", IDY, 0xd1},

	{"cpx", IMM, 0xe0},
	{"cpx", ZPG, 0xe4},
	{"cpx", ABS, 0xec},

	{"cpy", IMM, 0xc0},
	{"cpy", ZPG, 0xc4},
	{"cpy", ABS, 0xcc},

	{"bit", ZPG, 0x24},
	{"bit", ABS, 0x2c},

	{"clc", IMP, 0x18},
	{"sec", IMP, 0x38},
	{"cli", IMP, 0x58},
	{"sei", IMP, 0x78},
	{"cld", IMP, 0xd8},
	{"sed", IMP, 0xf8},
	{"clv", IMP, 0xb8},

	{"brk", IMP, 0x00},
	{"kil", IMP, 0x02},

	{"and", IMM, 0x29},
	{"and", ZPG, 0x25},
	{"and", ZPX, 0x35},
	{"and", ABS, 0x2d},
	{"and", ABX, 0x3d},
	{"and", ABY, 0x39},
	{"and", IDX, 0x21},
	{"and", IDY, 0x31},

	{"ora", IMM, 0x09},
	{"ora", ZPG, 0x05},
	{"ora", ZPX, 0x15},
	{"ora", ABS, 0x0d},
	{"ora", ABX, 0x1d},
	{"ora", ABY, 0x19},
	{"ora", IDX, 0x01},
	{"ora", IDY, 0x11},

	{"eor", IMM, 0x49},
	{"eor", ZPG, 0x45},
	{"eor", ZPX, 0x55},
	{"eor", ABS, 0x4d},
	{"eor", ABX, 0x5d},
	{"eor", ABY, 0x59},
	{"eor", IDX, 0x41},
	{"eor", IDY, 0x51},

	{"inc", ZPG, 0xe6},
	{"inc", ZPX, 0xf6},
	{"inc", ABS, 0xee},
	{"inc", ABX, 0xfe},

	{"dec", ZPG, 0xc6},
	{"dec", ZPX, 0xd6},
	{"dec", ABS, 0xce},
	{"dec", ABX, 0xde},

	{"inx", IMP, 0xe8},
	{"iny", IMP, 0xc8},

	{"dex", IMP, 0xca},
	{"dey", IMP, 0x88},

	{"jmp", ABS, 0x4c},
	{"jmp", IND, 0x6c},

	{"jsr", ABS, 0x20},
	{"rts", IMP, 0x60},

	{"rti", IMP, 0x40},

	{"nop", IMP, 0xea},

	{"tax", IMP, 0xaa},
	{"txa", IMP, 0x8a},
	{"tay", IMP, 0xa8},
	{"tya", IMP, 0x98},
	{"txs", IMP, 0x9a},
	{"tsx", IMP, 0xba},

	{"pha", IMP, 0x48},
	{"pla", IMP, 0x68},
	{"php", IMP, 0x08},
	{"plp", IMP, 0x28},

	{"asl", IMP, 0x0a},
	{"asl", ZPG, 0x06},
	{"asl", ZPX, 0x16},
	{"asl", ABS, 0x0e},
	{"asl", ABX, 0x1e},

	{"lsr", IMP, 0x4a},
	{"lsr", ZPG, 0x46},
	{"lsr", ZPX, 0x56},
	{"lsr", ABS, 0x4e},
	{"lsr", ABX, 0x5e},

	{"rol", IMP, 0x2a},
	{"rol", ZPG, 0x26},
	{"rol", ZPX, 0x36},
	{"rol", ABS, 0x2e},
	{"rol", ABX, 0x3e},

	{"ror", IMP, 0x6a},
	{"ror", ZPG, 0x66},
	{"ror", ZPX, 0x76},
	{"ror", ABS, 0x6e},
	{"ror", ABX, 0x7e},
}

// An Instruction describes a CPU instruction, including its name, its
// addressing mode, its opcode value and its encoded size.
type Instruction struct {
	Name   string // lowercase name of the instruction
	Mode   Mode   // addressing mode
	Opcode byte   // hexadecimal opcode value
	Length byte   // combined size of opcode and operand, in bytes
}

// An InstructionSet defines the set of all instructions the assembler can
// encode.
type InstructionSet struct {
	instructions [256]*Instruction                  // instructions by opcode
	variants     map[string][NumModes]*Instruction // variants of each instruction
	names        []string                          // mnemonics in table order
}

// Lookup retrieves the instruction corresponding to the requested opcode.
// It returns nil if the opcode is not part of the set.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return s.instructions[opcode]
}

// Find returns the instruction selected by a mnemonic and addressing
// mode. The known flag reports whether the mnemonic exists at all, so
// callers can tell an unknown mnemonic from an unsupported mode.
func (s *InstructionSet) Find(name string, mode Mode) (inst *Instruction, known bool) {
	v, ok := s.variants[name]
	if !ok {
		return nil, false
	}
	if int(mode) >= NumModes {
		return nil, true
	}
	return v[mode], true
}

// Modes returns all addressing modes supported by a mnemonic, in mode
// order.
func (s *InstructionSet) Modes(name string) []Mode {
	v, ok := s.variants[name]
	if !ok {
		return nil
	}
	var modes []Mode
	for m, inst := range v {
		if inst != nil {
			modes = append(modes, Mode(m))
		}
	}
	return modes
}

// Mnemonics returns every mnemonic in the set.
func (s *InstructionSet) Mnemonics() []string {
	return append([]string(nil), s.names...)
}

// Instructions returns every instruction in the set, ordered by opcode.
func (s *InstructionSet) Instructions() []*Instruction {
	var all []*Instruction
	for _, inst := range s.instructions {
		if inst != nil {
			all = append(all, inst)
		}
	}
	return all
}

// Create the instruction set from the opcode table.
func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		variants: make(map[string][NumModes]*Instruction),
	}

	for _, d := range data {
		if set.instructions[d.opcode] != nil {
			panic("duplicate opcode")
		}

		inst := &Instruction{
			Name:   d.name,
			Mode:   d.mode,
			Opcode: d.opcode,
			Length: byte(1 + d.mode.OperandSize()),
		}
		set.instructions[d.opcode] = inst

		v, ok := set.variants[d.name]
		if !ok {
			set.names = append(set.names, d.name)
		}
		if v[d.mode] != nil {
			panic("duplicate addressing mode")
		}
		v[d.mode] = inst
		set.variants[d.name] = v
	}
	return set
}

var nmos = newInstructionSet()

// NMOS returns the instruction set of the NMOS 6502. The set is built once
// and must not be modified.
func NMOS() *InstructionSet {
	return nmos
}
