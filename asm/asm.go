// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a 6502 assembler that produces IR65 files.
package asm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strings"

	"github.com/ef65/ef65/ef"
	"github.com/ef65/ef65/isa"
	"github.com/golang/glog"
)

// SourceExt is the file extension of assembly source files.
const SourceExt = ".a65"

// A state is a phase in the assembly of one source file.
type state byte

const (
	stateReady state = iota
	statePreprocessing
	stateEncoding
	stateDone
	stateFailed
)

var stateName = []string{
	"ready",
	"preprocessing",
	"encoding",
	"done",
	"failed",
}

func (s state) String() string {
	return stateName[s]
}

// The assembler is a state object used during the assembly of one source
// file. It is discarded once the file has been assembled.
type assembler struct {
	instSet     *isa.InstructionSet // instruction table
	filename    string              // source file name used in errors
	r           io.Reader           // the reader passed to Assemble
	state       state               // current phase
	lines       []fstring           // raw source lines
	stmts       []fstring           // statements left after preprocessing
	directives  Directives          // directive values
	code        []byte              // generated machine code
	sourceLines []SourceLine        // source code line mappings
	out         io.Writer           // output used for verbose output
	verbose     bool                // verbose output
}

// Assembly contains the assembled machine code and the directives read
// from the source.
type Assembly struct {
	Code       []byte     // Assembled machine code
	Directives Directives // Directive values, never applied to Code
}

// WriteTo writes the machine code as an IR65 container using the host byte
// order.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	return ef.Codec{}.Write(w, ef.IR, a.Code)
}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose        Option = 1 << iota // verbose output during assembly
	WriteSourceMap                    // AssembleFile also writes a .map file
)

// An Assembler assembles source files with a fixed instruction set. It
// holds no per-file state and may be reused.
type Assembler struct {
	InstSet *isa.InstructionSet // instruction table, read-only
	Codec   ef.Codec            // byte order of the IR65 length field
	Out     io.Writer           // destination of verbose output
	Options Option
}

// New creates an assembler for the instruction set.
func New(set *isa.InstructionSet, out io.Writer, options Option) *Assembler {
	return &Assembler{InstSet: set, Out: out, Options: options}
}

// Assemble reads data from the provided stream and assembles it into 6502
// machine code using the NMOS instruction set.
func Assemble(r io.Reader, filename string, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	return New(isa.NMOS(), out, options).Assemble(r, filename)
}

// AssembleFile assembles a .a65 file and writes outName.ir65, plus
// outName.map when the WriteSourceMap option is set. An empty outName
// uses the source path without its extension. It returns the path of the
// IR65 file.
func AssembleFile(path, outName string, options Option, out io.Writer) (string, error) {
	return New(isa.NMOS(), out, options).AssembleFile(path, outName)
}

// Assemble reads data from the provided stream and assembles it into 6502
// machine code. Assembly stops at the first error.
func (as *Assembler) Assemble(r io.Reader, filename string) (*Assembly, *SourceMap, error) {
	out := as.Out
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		instSet:  as.InstSet,
		filename: filename,
		r:        r,
		state:    stateReady,
		out:      out,
		verbose:  (as.Options & Verbose) != 0,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).read,       // Read the source lines
		(*assembler).preprocess, // Strip comments and extract directives
		(*assembler).encode,     // Encode each statement
	}

	// Execute assembler steps, breaking if an error is encountered
	// in any one of them.
	for _, step := range steps {
		if err := step(a); err != nil {
			a.fail(err)
			glog.V(1).Infof("assembly of %s failed while %s", filename, a.state)
			a.state = stateFailed
			return nil, nil, err
		}
	}
	a.state = stateDone

	assembly := &Assembly{
		Code:       a.code,
		Directives: a.directives,
	}

	sourceMap := &SourceMap{
		File:       filename,
		Size:       uint32(len(a.code)),
		CRC:        crc32.ChecksumIEEE(a.code),
		Directives: a.directives,
		Lines:      a.sourceLines,
	}

	return assembly, sourceMap, nil
}

// AssembleFile reads a .a65 file, assembles it and writes the IR65 file
// (and optional source map). Nothing is written if assembly fails.
func (as *Assembler) AssembleFile(path, outName string) (string, error) {
	if err := ef.CheckExt(path, SourceExt); err != nil {
		return "", err
	}
	if outName == "" {
		outName = ef.Stem(path)
	}

	src, err := ef.ReadFile(path)
	if err != nil {
		return "", err
	}

	assembly, sourceMap, err := as.Assemble(bytes.NewReader(src), path)
	if err != nil {
		return "", err
	}

	ir, err := as.Codec.Encode(ef.IR, assembly.Code)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	irPath := outName + ef.IR.Ext()
	if err := ef.WriteFile(irPath, ir); err != nil {
		return "", err
	}

	if (as.Options & WriteSourceMap) != 0 {
		var buf bytes.Buffer
		if _, err := sourceMap.WriteTo(&buf); err != nil {
			return "", err
		}
		if err := ef.WriteFile(outName+".map", buf.Bytes()); err != nil {
			return "", err
		}
	}

	glog.V(1).Infof("assembled %s -> %s (%d bytes)", path, irPath, len(assembly.Code))
	return irPath, nil
}

// Read all source lines.
func (a *assembler) read() error {
	scanner := bufio.NewScanner(a.r)
	row := 1
	for ; scanner.Scan(); row++ {
		a.lines = append(a.lines, newFstring(row, scanner.Text()))
	}

	switch err := scanner.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		return syntaxError(newFstring(row, ""), "line longer than %d bytes", bufio.MaxScanTokenSize)
	case err != nil:
		return fmt.Errorf("%w: %s: %w", ef.ErrIO, a.filename, err)
	}
	return nil
}

// Strip comments and blank lines, and pull directives into the directive
// table.
func (a *assembler) preprocess() error {
	a.state = statePreprocessing
	a.logSection("Preprocessing")

	stmts, dirs, err := preprocess(a.lines, a)
	if err != nil {
		return err
	}
	a.stmts, a.directives = stmts, dirs
	return nil
}

// Encode the remaining statements in source order.
func (a *assembler) encode() error {
	a.state = stateEncoding
	a.logSection("Encoding")

	for _, s := range a.stmts {
		mode, b, err := encodeStatement(a.instSet, s)
		if err != nil {
			return err
		}

		offset := len(a.code)
		a.sourceLines = append(a.sourceLines, SourceLine{Offset: offset, Line: s.row})
		a.code = append(a.code, b...)
		a.log("%04X-   %-8s    %-3s  %s", offset, isa.HexBytes(b), mode.Abbrev(), s.str)
	}
	return nil
}

// Attach the file name to an assembly error and discard partial output.
func (a *assembler) fail(err error) {
	var e *Error
	if errors.As(err, &e) {
		e.File = a.filename
	}
	a.code, a.directives, a.sourceLines = nil, nil, nil
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (a *assembler) logLine(line fstring, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-20s | %s\n", line.row, line.column+1, detail, line.str)
	}
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
