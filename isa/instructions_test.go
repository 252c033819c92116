// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import "testing"

func TestRoundTrip(t *testing.T) {
	set := NMOS()
	count := 0
	for _, name := range set.Mnemonics() {
		for _, mode := range set.Modes(name) {
			inst, known := set.Find(name, mode)
			if !known || inst == nil {
				t.Errorf("%s %s: not found", name, mode)
				continue
			}
			back := set.Lookup(inst.Opcode)
			if back == nil {
				t.Errorf("%s %s: opcode $%02X not decodable", name, mode, inst.Opcode)
				continue
			}
			if back.Name != name || back.Mode != mode {
				t.Errorf("$%02X decoded as %s %s, expected %s %s",
					inst.Opcode, back.Name, back.Mode, name, mode)
			}
			count++
		}
	}
	if count != len(set.Instructions()) {
		t.Errorf("visited %d pairs, set holds %d instructions", count, len(set.Instructions()))
	}
}

func TestFind(t *testing.T) {
	set := NMOS()

	tests := []struct {
		name   string
		mode   Mode
		known  bool
		opcode int
	}{
		{"lda", IMM, true, 0xa9},
		{"lda", ABS, true, 0xad},
		{"lda", ZPY, true, -1},
		{"jmp", IND, true, 0x6c},
		{"rts", IMP, true, 0x60},
		{"kil", IMP, true, 0x02},
		{"asl", IMP, true, 0x0a},
		{"LDA", IMM, false, -1},
		{"foo", IMP, false, -1},
	}

	for _, tc := range tests {
		inst, known := set.Find(tc.name, tc.mode)
		if known != tc.known {
			t.Errorf("%s %s: known=%v, expected %v", tc.name, tc.mode, known, tc.known)
			continue
		}
		switch {
		case tc.opcode < 0 && inst != nil:
			t.Errorf("%s %s: unexpected opcode $%02X", tc.name, tc.mode, inst.Opcode)
		case tc.opcode >= 0 && inst == nil:
			t.Errorf("%s %s: missing", tc.name, tc.mode)
		case tc.opcode >= 0 && inst.Opcode != byte(tc.opcode):
			t.Errorf("%s %s: got $%02X, expected $%02X", tc.name, tc.mode, inst.Opcode, tc.opcode)
		}
	}
}

func TestLength(t *testing.T) {
	for _, inst := range NMOS().Instructions() {
		if int(inst.Length) != 1+inst.Mode.OperandSize() {
			t.Errorf("%s %s: length %d", inst.Name, inst.Mode, inst.Length)
		}
	}
}

func TestUnusedOpcode(t *testing.T) {
	if inst := NMOS().Lookup(0xff); inst != nil {
		t.Errorf("$FF decoded as %s", inst.Name)
	}
}

func TestModeString(t *testing.T) {
	if IDY.String() != "indirect,y" || IDY.Abbrev() != "IDY" {
		t.Errorf("unexpected names for IDY: %s %s", IDY, IDY.Abbrev())
	}
	if Mode(200).String() != "invalid" {
		t.Error("expected invalid mode name")
	}
}

func TestHexBytes(t *testing.T) {
	tests := []struct {
		b   []byte
		exp string
	}{
		{nil, ""},
		{[]byte{0x60}, "60"},
		{[]byte{0xbd, 0x00, 0x20}, "BD 00 20"},
	}
	for _, tc := range tests {
		if got := HexBytes(tc.b); got != tc.exp {
			t.Errorf("got %q, expected %q", got, tc.exp)
		}
	}
}
