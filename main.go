// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/ef65/ef65/asm"
	"github.com/ef65/ef65/ef"
	"github.com/ef65/ef65/host"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// Exit codes, one per failure category.
const (
	exitOK     = 0
	exitUsage  = 1 // bad arguments, flags or settings
	exitSyntax = 2 // assembly failed
	exitFormat = 3 // unrecognized container or oversized image
	exitIO     = 4 // a file could not be read or written
)

var (
	verbose   bool
	color     string
	byteOrder string
	sourceMap bool
	asmOut    string
	buildOut  string
	dumpLines int
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, asm.ErrSyntax):
		return exitSyntax
	case errors.Is(err, ef.ErrUnrecognizedFormat), errors.Is(err, ef.ErrImageTooLarge):
		return exitFormat
	case errors.Is(err, ef.ErrIO):
		return exitIO
	default:
		return exitUsage
	}
}

// A stageError is a failure the host has already reported.
type stageError struct {
	err error
}

func (e stageError) Error() string { return e.err.Error() }
func (e stageError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return stageError{err}
}

func newRootCmd(h *host.Host) *cobra.Command {
	root := &cobra.Command{
		Use:   "ef65",
		Short: "A 6502 assembler and EF container toolchain",
		Long: `ef65 assembles 6502 source files (.a65) into IR65 files, wraps IR65
files in EF executable containers, and pads executables into 128-byte
bootable images.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range []struct{ key, value string }{
				{"verbose", strconv.FormatBool(verbose)},
				{"color", color},
				{"byteorder", byteOrder},
				{"sourcemap", strconv.FormatBool(sourceMap)},
			} {
				if err := h.Set(s.key, s.value); err != nil {
					return err
				}
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&verbose, "verbose", false, "trace assembly to standard output")
	pf.StringVar(&color, "color", "auto", "highlight errors: auto, always or never")
	pf.StringVar(&byteOrder, "byte-order", "native", "container length byte order: native, little or big")
	pf.AddGoFlagSet(flag.CommandLine)

	assembleCmd := &cobra.Command{
		Use:   "assemble <file>.a65",
		Short: "Assemble a source file into an IR65 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := h.Assemble(args[0], asmOut)
			return reported(err)
		},
	}
	assembleCmd.Flags().StringVarP(&asmOut, "output", "o", "out", "output file name without extension")
	assembleCmd.Flags().BoolVar(&sourceMap, "map", false, "also write a JSON source map")

	linkCmd := &cobra.Command{
		Use:   "link <file>.ir65",
		Short: "Wrap an IR65 file in an EF executable container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := h.Link(args[0])
			return reported(err)
		},
	}

	bootifyCmd := &cobra.Command{
		Use:   "bootify <file>.ef",
		Short: "Pad an EF executable into a bootable 128-byte image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := h.Bootify(args[0])
			return reported(err)
		},
	}

	buildCmd := &cobra.Command{
		Use:   "build <file>.a65",
		Short: "Assemble, link and bootify a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := h.Build(args[0], buildOut)
			return reported(err)
		},
	}
	buildCmd.Flags().StringVarP(&buildOut, "output", "o", "", "output file name without extension (default: source name)")
	buildCmd.Flags().BoolVar(&sourceMap, "map", false, "also write a JSON source map")

	dumpCmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Display an IR65 or EF file's header and disassembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.Set("disasmlines", strconv.Itoa(dumpLines)); err != nil {
				return err
			}
			return reported(h.Dump(args[0]))
		},
	}
	dumpCmd.Flags().IntVarP(&dumpLines, "lines", "n", 0, "maximum lines to disassemble, 0 for all")

	shellCmd := &cobra.Command{
		Use:   "shell [script ...]",
		Short: "Run command scripts, then an interactive command shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, filename := range args {
				file, err := os.Open(filename)
				if err != nil {
					return fmt.Errorf("%w: %w", ef.ErrIO, err)
				}
				h.RunCommands(file, os.Stdout, false)
				file.Close()
			}
			h.RunCommands(os.Stdin, os.Stdout, true)
			return nil
		},
	}

	root.AddCommand(assembleCmd, linkCmd, bootifyCmd, buildCmd, dumpCmd, shellCmd)
	return root
}

func main() {
	h := host.New()
	root := newRootCmd(h)

	err := root.Execute()
	code := exitCode(err)
	if err != nil {
		if _, ok := err.(stageError); !ok {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			if code == exitUsage {
				fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", root.Name())
			}
		}
		glog.V(1).Infof("exiting with status %d: %v", code, err)
	}

	glog.Flush()
	os.Exit(code)
}
