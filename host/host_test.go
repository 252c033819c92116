// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ef65/ef65/asm"
	"github.com/ef65/ef65/ef"
)

func newTestHost() (*Host, *bytes.Buffer) {
	var buf bytes.Buffer
	h := New()
	h.SetOutput(&buf)
	return h, &buf
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func expectOutput(t *testing.T, buf *bytes.Buffer, want ...string) {
	t.Helper()
	for _, s := range want {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("output missing %q:\n%s", s, buf.String())
		}
	}
}

func TestSettingsPrefix(t *testing.T) {
	s := newSettings()
	if s.Kind("verb") != reflect.Bool {
		t.Errorf("verb: got kind %v", s.Kind("verb"))
	}
	if err := s.Set("dis", 5); err != nil {
		t.Fatal(err)
	}
	if s.DisasmLines != 5 {
		t.Errorf("DisasmLines: got %d", s.DisasmLines)
	}
	if err := s.Set("zzz", 1); err == nil {
		t.Error("expected error for unknown setting")
	}
	if err := s.Set("color", 1); err == nil {
		t.Error("expected type error")
	}
}

func TestHostSet(t *testing.T) {
	h, _ := newTestHost()

	for _, tc := range []struct{ key, value string }{
		{"byte", "big"},
		{"col", "NEVER"},
		{"verbose", "on"},
		{"out", "prog"},
		{"d", "12"},
	} {
		if err := h.Set(tc.key, tc.value); err != nil {
			t.Errorf("%s=%s: %v", tc.key, tc.value, err)
		}
	}
	if h.settings.ByteOrder != "big" || h.settings.Color != "never" ||
		!h.settings.Verbose || h.settings.OutputName != "prog" || h.settings.DisasmLines != 12 {
		t.Errorf("unexpected settings: %+v", *h.settings)
	}

	for _, tc := range []struct{ key, value string }{
		{"color", "purple"},
		{"byteorder", "middle"},
		{"verbose", "maybe"},
		{"disasm", "-1"},
		{"nosuch", "1"},
	} {
		if err := h.Set(tc.key, tc.value); err == nil {
			t.Errorf("%s=%s: expected error", tc.key, tc.value)
		}
	}
}

func TestBuild(t *testing.T) {
	path := writeSource(t, "prog.a65", "[.org 0x8000]\nlda #10 ; ten\nrts\n")
	h, buf := newTestHost()

	out, err := h.Build(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if out != ef.Stem(path)+".ef" {
		t.Errorf("output path: got %s", out)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !ef.IsBootable(b) {
		t.Errorf("image is not bootable: % X", b)
	}
	ir, _ := ef.Encode(ef.IR, []byte{0xa9, 0x0a, 0x60})
	exe, _ := ef.Encode(ef.Executable, ir)
	if !bytes.Equal(b[:len(exe)], exe) {
		t.Errorf("got % X, expected prefix % X", b[:len(exe)], exe)
	}

	expectOutput(t, buf,
		"[Generating IR65 file] done",
		"[Generating EF file] done",
		"[Generating boot image] done")
}

func TestAssembleByteOrder(t *testing.T) {
	path := writeSource(t, "prog.a65", "rts\n")
	h, _ := newTestHost()
	h.Set("byteorder", "big")

	ir, err := h.Assemble(path, "")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(ir)
	if !bytes.Equal(b, []byte{'E', 'F', 0x00, 0x01, 0x60}) {
		t.Errorf("got % X", b)
	}
}

func TestAssembleFailure(t *testing.T) {
	path := writeSource(t, "bad.a65", "nop\nlda @oops\n")
	h, buf := newTestHost()
	h.Set("color", "never")

	_, err := h.Assemble(path, "")
	if !errors.Is(err, asm.ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	expectOutput(t, buf,
		"[Generating IR65 file] failed",
		"Syntax error lda @oops",
		"ef65: fatal error:",
		"line 2")
	if strings.Contains(buf.String(), colorRed) {
		t.Error("color output with color disabled")
	}

	if _, err := os.Stat(ef.Stem(path) + ".ir65"); !os.IsNotExist(err) {
		t.Error("IR65 file written for failed assembly")
	}
}

func TestErrorColor(t *testing.T) {
	path := writeSource(t, "bad.a65", "foo\n")
	h, buf := newTestHost()
	h.Set("color", "always")

	h.Assemble(path, "")
	expectOutput(t, buf, colorRed+"foo"+colorEnd, colorRed+"fatal error:"+colorEnd)
}

func TestBootifyAlreadyBootable(t *testing.T) {
	path := writeSource(t, "prog.a65", "nop\n")
	h, buf := newTestHost()

	out, err := h.Build(path, "")
	if err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(out)

	already, err := h.Bootify(out)
	if err != nil {
		t.Fatal(err)
	}
	if !already {
		t.Error("expected already bootable")
	}
	after, _ := os.ReadFile(out)
	if !bytes.Equal(before, after) {
		t.Error("bootable image changed")
	}
	expectOutput(t, buf, "already bootable")
}

func TestDump(t *testing.T) {
	path := writeSource(t, "prog.a65", "lda #10\nsta 0x0200\nrts\n")
	h, buf := newTestHost()
	h.Set("color", "never")

	ir, err := h.Assemble(path, "")
	if err != nil {
		t.Fatal(err)
	}
	buf.Reset()

	if err := h.Dump(ir); err != nil {
		t.Fatal(err)
	}
	expectOutput(t, buf, "IR65", "lda #0x0a", "sta 0x0200", "rts")

	buf.Reset()
	if err := h.Disassemble(ir, 1); err != nil {
		t.Fatal(err)
	}
	expectOutput(t, buf, "lda #0x0a")
	if strings.Contains(buf.String(), "rts") {
		t.Errorf("listing not limited:\n%s", buf.String())
	}

	exe, err := h.Link(ir)
	if err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := h.Disassemble(exe, 0); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "0000-   A9 0A") {
		t.Errorf("nested IR header not skipped:\n%s", buf.String())
	}
}

func TestDumpUnrecognized(t *testing.T) {
	path := writeSource(t, "junk.ef", "ZZZZ")
	h, buf := newTestHost()

	if err := h.Dump(path); !errors.Is(err, ef.ErrUnrecognizedFormat) {
		t.Errorf("expected ErrUnrecognizedFormat, got %v", err)
	}
	expectOutput(t, buf, "fatal error:")
}

func TestRunCommands(t *testing.T) {
	path := writeSource(t, "prog.a65", "lda #1\nrts\n")
	stem := ef.Stem(path)

	script := strings.Join([]string{
		"set color never",
		"assemble " + path,
		"link " + stem + ".ir65",
		"bootify " + stem + ".ef",
		"bootify " + stem + ".ef",
		"d " + stem + ".ef",
		"help",
		"help link",
		"frobnicate",
		"quit",
		"assemble " + path + " " + filepath.Join(filepath.Dir(path), "never"),
	}, "\n")

	var buf bytes.Buffer
	h := New()
	h.RunCommands(strings.NewReader(script), &buf, false)

	expectOutput(t, &buf,
		"Setting updated.",
		"[Generating IR65 file] done",
		"[Generating EF file] done",
		"[Generating boot image] done",
		"[Generating boot image] already bootable",
		"lda #0x01",
		"ef65 commands:",
		"Syntax: link <filename>",
		"Command not found.")

	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "never.ir65")); !os.IsNotExist(err) {
		t.Error("command after quit was executed")
	}
}

func TestIndentWrap(t *testing.T) {
	got := indentWrap(2, 12, "one two three four")
	exp := "  one two\n  three four"
	if got != exp {
		t.Errorf("got %q, expected %q", got, exp)
	}
}
