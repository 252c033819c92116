// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

// A command describes one shell command and the host callback that
// handles it.
type command struct {
	name        string
	brief       string
	description string
	usage       string
	handler     func(*Host, cmd.Selection) error
}

var (
	cmds     *cmd.Tree
	commands []*command
)

func init() {
	// The table is built here rather than in a package-level initializer
	// because the help handler refers back to it.
	commands = []*command{
		{
			name:        "help",
			description: "Display help for a command.",
			usage:       "help [<command>]",
			handler:     (*Host).cmdHelp,
		},
		{
			name:  "assemble",
			brief: "Assemble a source file into an IR65 file",
			description: "Run the assembler on the specified .a65 file," +
				" producing an .ir65 file if successful. The output name" +
				" defaults to the OutputName setting, or to the source file" +
				" name without its extension.",
			usage:   "assemble <filename> [<outname>]",
			handler: (*Host).cmdAssemble,
		},
		{
			name:  "link",
			brief: "Wrap an IR65 file in an executable container",
			description: "Read the specified .ir65 file and write an .ef" +
				" executable container with the same name.",
			usage:   "link <filename>",
			handler: (*Host).cmdLink,
		},
		{
			name:  "bootify",
			brief: "Pad an executable into a bootable sector",
			description: "Pad the specified .ef file in place to a 128-byte" +
				" boot sector ending in the boot signature. A file that is" +
				" already bootable is left untouched.",
			usage:   "bootify <filename>",
			handler: (*Host).cmdBootify,
		},
		{
			name:  "build",
			brief: "Assemble, link and bootify a source file",
			description: "Run all three stages on the specified .a65 file," +
				" stopping at the first failure.",
			usage:   "build <filename> [<outname>]",
			handler: (*Host).cmdBuild,
		},
		{
			name:  "dump",
			brief: "Display a container's header and contents",
			description: "Decode the specified .ir65 or .ef file, display its" +
				" header and disassemble its payload. The DisasmLines setting" +
				" limits the listing.",
			usage:   "dump <filename>",
			handler: (*Host).cmdDump,
		},
		{
			name:  "disassemble",
			brief: "Disassemble a container's payload",
			description: "Disassemble the payload of the specified .ir65 or" +
				" .ef file. If a line count is given it overrides the" +
				" DisasmLines setting.",
			usage:   "disassemble <filename> [<lines>]",
			handler: (*Host).cmdDisassemble,
		},
		{
			name:  "set",
			brief: "Display or change a setting",
			description: "Display all settings, or change one. Setting names" +
				" may be abbreviated to any unique prefix.",
			usage:   "set [<setting> <value>]",
			handler: (*Host).cmdSet,
		},
		{
			name:        "quit",
			brief:       "Quit the program",
			description: "Quit the program.",
			usage:       "quit",
			handler:     (*Host).cmdQuit,
		},
	}

	root := cmd.NewTree(cmd.TreeDescriptor{Name: "ef65"})
	for _, c := range commands {
		root.AddCommand(cmd.CommandDescriptor{
			Name:        c.name,
			Brief:       c.brief,
			Description: c.description,
			Usage:       c.usage,
			Data:        c,
		})
	}

	// Add command shortcuts.
	root.AddShortcut("a", "assemble")
	root.AddShortcut("b", "build")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("q", "quit")
	root.AddShortcut("?", "help")

	cmds = root
}
