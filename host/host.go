// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host allows you to create a "host" that drives the ef65
// toolchain: the assembler, the IR65 and EF container writers, the boot
// padder and a disassembler.
//
// The host runs each stage on files, reports progress and diagnostics the
// same way whether it is driven by the command line or by its command
// shell, and keeps a small set of settings that can be changed with the
// shell's set command.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/term"
	"github.com/ef65/ef65/asm"
	"github.com/ef65/ef65/disasm"
	"github.com/ef65/ef65/ef"
	"github.com/ef65/ef65/isa"
	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
)

// ANSI sequences used to highlight diagnostics.
const (
	colorRed = "\x1b[91m"
	colorEnd = "\x1b[0m"
)

var errQuit = errors.New("exiting program")

// A Host runs toolchain stages on files and reports their results to an
// output stream.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	tty         bool // output is a terminal
	width       int  // terminal width used to wrap help text
	interactive bool
	lastCmd     *cmd.Selection
	instSet     *isa.InstructionSet
	settings    *settings
}

// New creates a new host writing to the standard output.
func New() *Host {
	h := &Host{
		instSet:  isa.NMOS(),
		settings: newSettings(),
	}
	h.SetOutput(os.Stdout)
	return h
}

// SetOutput directs all host output to w.
func (h *Host) SetOutput(w io.Writer) {
	h.output = bufio.NewWriter(w)
	h.tty, h.width = false, 80
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.tty = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 20 {
			h.width = width
		}
	}
}

// Set changes the setting selected by a unique prefix of its name.
func (h *Host) Set(key, value string) error {
	name, err := h.settings.Name(key)
	if err != nil {
		return fmt.Errorf("setting '%s' not found", key)
	}

	switch name {
	case "Color":
		value = strings.ToLower(value)
		if value != "auto" && value != "always" && value != "never" {
			return fmt.Errorf("invalid color mode '%s'", value)
		}
	case "ByteOrder":
		if _, err := ef.ParseByteOrder(value); err != nil {
			return err
		}
	}

	switch h.settings.Kind(key) {
	case reflect.String:
		err = h.settings.Set(key, value)
	case reflect.Bool:
		var v bool
		v, err = stringToBool(value)
		if err == nil {
			err = h.settings.Set(key, v)
		}
	default:
		var v int
		v, err = strconv.Atoi(value)
		if err == nil && v < 0 {
			err = fmt.Errorf("invalid value '%s'", value)
		}
		if err == nil {
			err = h.settings.Set(key, v)
		}
	}
	if err != nil {
		return err
	}

	glog.V(2).Infof("setting %s = %s", name, value)
	return nil
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.SetOutput(w)
	h.interactive = interactive
	h.lastCmd = nil

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		info := c.Command.Data.(*command)
		err = info.handler(h, c)
		if err != nil {
			break
		}
	}
	h.flush()
}

// Assemble assembles a .a65 file and writes the IR65 file. An empty
// outName falls back to the OutputName setting, then to the source name.
// It returns the path of the IR65 file.
func (h *Host) Assemble(path, outName string) (string, error) {
	codec, err := h.codec()
	if err != nil {
		return "", err
	}
	if outName == "" {
		outName = h.settings.OutputName
	}

	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	if h.settings.SourceMap {
		options |= asm.WriteSourceMap
	}

	as := asm.New(h.instSet, h.output, options)
	as.Codec = codec

	h.printf("[Generating %s file] ", ef.IR)
	irPath, err := as.AssembleFile(path, outName)
	if err != nil {
		h.println("failed")
		h.reportError(err)
		return "", err
	}
	h.println("done")
	return irPath, nil
}

// Link wraps an IR65 file in an executable container and returns the path
// of the .ef file.
func (h *Host) Link(path string) (string, error) {
	codec, err := h.codec()
	if err != nil {
		return "", err
	}

	h.printf("[Generating %s file] ", ef.Executable)
	efPath, err := codec.LinkFile(path)
	if err != nil {
		h.println("failed")
		h.reportError(err)
		return "", err
	}
	h.println("done")
	return efPath, nil
}

// Bootify pads an executable file into a bootable sector in place. It
// reports whether the file was already bootable.
func (h *Host) Bootify(path string) (already bool, err error) {
	codec, err := h.codec()
	if err != nil {
		return false, err
	}

	h.printf("[Generating boot image] ")
	already, err = codec.BootifyFile(path)
	switch {
	case err != nil:
		h.println("failed")
		h.reportError(err)
	case already:
		h.println("already bootable")
	default:
		h.println("done")
	}
	return already, err
}

// Build assembles, links and bootifies a source file, stopping at the
// first failing stage. It returns the path of the bootable image.
func (h *Host) Build(path, outName string) (string, error) {
	irPath, err := h.Assemble(path, outName)
	if err != nil {
		return "", err
	}
	efPath, err := h.Link(irPath)
	if err != nil {
		return "", err
	}
	if _, err := h.Bootify(efPath); err != nil {
		return "", err
	}
	glog.V(1).Infof("built %s -> %s", path, efPath)
	return efPath, nil
}

// A containerInfo is the summary of a decoded container shown by Dump.
type containerInfo struct {
	File     string
	Kind     string
	Magic    string
	Length   uint16
	Code     int
	Bootable bool
	Size     int
}

// Dump displays the header of an IR65 or EF file followed by a disassembly
// of its payload.
func (h *Host) Dump(path string) error {
	con, code, err := h.readContainer(path)
	if err != nil {
		return err
	}

	p := pp.New()
	p.SetColoringEnabled(h.colorEnabled())
	p.Fprintln(h.output, containerInfo{
		File:     path,
		Kind:     con.Kind.String(),
		Magic:    string(con.Header.Magic[:]),
		Length:   con.Header.Length,
		Code:     len(code),
		Bootable: con.Bootable,
		Size:     con.Size,
	})

	return h.listing(code, h.settings.DisasmLines)
}

// Disassemble lists at most 'lines' instructions of a container's machine
// code. Zero lists all of them.
func (h *Host) Disassemble(path string, lines int) error {
	_, code, err := h.readContainer(path)
	if err != nil {
		return err
	}
	return h.listing(code, lines)
}

// Decode a container file and return it with the machine code it holds.
func (h *Host) readContainer(path string) (*ef.Container, []byte, error) {
	codec, err := h.codec()
	if err != nil {
		return nil, nil, err
	}

	b, err := ef.ReadFile(path)
	if err == nil {
		var con *ef.Container
		con, err = codec.Identify(b)
		if err == nil {
			return con, codec.Code(con), nil
		}
		err = fmt.Errorf("%s: %w", path, err)
	}
	h.reportError(err)
	return nil, nil, err
}

func (h *Host) listing(code []byte, lines int) error {
	err := disasm.Fprint(h.output, disasm.Listing(h.instSet, code, lines))
	h.flush()
	return err
}

func (h *Host) codec() (ef.Codec, error) {
	order, err := ef.ParseByteOrder(h.settings.ByteOrder)
	if err != nil {
		return ef.Codec{}, err
	}
	return ef.Codec{Order: order}, nil
}

func (h *Host) colorEnabled() bool {
	switch h.settings.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return h.tty
	}
}

func (h *Host) red(s string) string {
	if h.colorEnabled() {
		return colorRed + s + colorEnd
	}
	return s
}

// Print a fatal diagnostic. Assembly errors also show the offending
// statement.
func (h *Host) reportError(err error) {
	var e *asm.Error
	if errors.As(err, &e) && e.Text != "" {
		h.printf("Syntax error %s\n", h.red(strings.TrimSpace(e.Text)))
	}
	h.printf("ef65: %s %v\n", h.red("fatal error:"), err)
	glog.V(1).Infof("stage failed: %v", err)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
		h.flush()
	}
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayCommands()
		return nil
	}

	s, err := cmds.Lookup(strings.Join(c.Args, " "))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	info := s.Command.Data.(*command)
	if info.usage != "" {
		h.printf("Syntax: %s\n\n", info.usage)
	}
	switch {
	case info.description != "":
		h.printf("Description:\n%s\n\n", indentWrap(3, h.width, info.description))
	case info.brief != "":
		h.printf("Description:\n%s.\n\n", indentWrap(3, h.width, info.brief))
	}
	return nil
}

func (h *Host) cmdAssemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	var outName string
	if len(c.Args) > 1 {
		outName = c.Args[1]
	}
	h.Assemble(c.Args[0], outName)
	return nil
}

func (h *Host) cmdLink(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	h.Link(c.Args[0])
	return nil
}

func (h *Host) cmdBootify(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	h.Bootify(c.Args[0])
	return nil
}

func (h *Host) cmdBuild(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	var outName string
	if len(c.Args) > 1 {
		outName = c.Args[1]
	}
	h.Build(c.Args[0], outName)
	return nil
}

func (h *Host) cmdDump(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	h.Dump(c.Args[0])
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 1 {
		n, err := strconv.Atoi(c.Args[1])
		if err != nil || n < 0 {
			h.printf("Invalid line count '%s'.\n", c.Args[1])
			return nil
		}
		lines = n
	}
	h.Disassemble(c.Args[0], lines)
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Settings:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c)

	default:
		err := h.Set(c.Args[0], strings.Join(c.Args[1:], " "))
		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (h *Host) displayHelpText(c cmd.Selection) {
	info := c.Command.Data.(*command)
	if info.usage != "" {
		h.printf("Syntax: %s\n", info.usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands() {
	h.println("ef65 commands:")
	for _, c := range commands {
		if c.brief != "" {
			h.printf("    %-15s  %s\n", c.name, c.brief)
		}
	}
}
