// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/ef65/ef65/asm"
	"github.com/ef65/ef65/isa"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		code []byte
		exp  string
	}{
		{[]byte{0x60}, "rts"},
		{[]byte{0xa9, 0x0a}, "lda #0x0a"},
		{[]byte{0xb5, 0x20}, "lda %0x20,x"},
		{[]byte{0x6c, 0x20}, "jmp [0x20]"},
		{[]byte{0xb1, 0x20}, "lda [0x20,y]"},
		{[]byte{0xbd, 0x34, 0x12}, "lda 0x1234,x"},
		{[]byte{0xff}, "; 0xff"},
		{[]byte{0xad, 0x34}, "; 0xad"},
	}

	for _, tc := range tests {
		line, next := Disassemble(isa.NMOS(), tc.code, 0)
		if line != tc.exp {
			t.Errorf("% X: got %q, expected %q", tc.code, line, tc.exp)
		}
		if tc.exp[0] != ';' && next != len(tc.code) {
			t.Errorf("% X: next offset %d", tc.code, next)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	src := `
	lda #0x20
	sta %0x20,x
	ldx %0x20,y
	jmp [0x30]
	lda [0x20,x]
	sta [0x20,y]
	jmp 0x1234
	lda 0x2000,y
	kil
	rts`

	a, _, err := asm.Assemble(strings.NewReader(src), "test", os.Stdout, 0)
	if err != nil {
		t.Fatal(err)
	}

	var text []string
	for _, l := range Listing(isa.NMOS(), a.Code, 0) {
		text = append(text, l.Text)
	}

	b, _, err := asm.Assemble(strings.NewReader(strings.Join(text, "\n")), "listing", os.Stdout, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Code, b.Code) {
		t.Errorf("round trip mismatch:\n% X\n% X", a.Code, b.Code)
	}
}

func TestListingMax(t *testing.T) {
	code := []byte{0xea, 0xea, 0xea, 0x60}
	lines := Listing(isa.NMOS(), code, 2)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}

	var buf bytes.Buffer
	if err := Fprint(&buf, lines); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "0000-   EA          nop\n0001-   EA          nop\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestDisassembleOffsetOutOfRange(t *testing.T) {
	code := []byte{0xea, 0x60}
	for _, offset := range []int{-1, 2, 10} {
		line, next := Disassemble(isa.NMOS(), code, offset)
		if line != "" || next != len(code) {
			t.Errorf("offset %d: got %q, %d", offset, line, next)
		}
	}
	if line, _ := Disassemble(isa.NMOS(), nil, 0); line != "" {
		t.Errorf("empty code: got %q", line)
	}
}
