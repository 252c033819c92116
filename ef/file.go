// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ef

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// ParseByteOrder converts a byte order name to a byte order. The names
// "native" and "" select the host's order.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(name) {
	case "", "native", "host":
		return binary.NativeEndian, nil
	case "little", "le":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("invalid byte order '%s'", name)
	}
}

// HostIsBigEndian reports whether the host stores 16-bit values high byte
// first.
func HostIsBigEndian() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 0x0102)
	return b[0] == 0x01
}

// CheckExt returns ErrUnrecognizedFormat unless path ends in ext.
func CheckExt(path, ext string) error {
	if filepath.Ext(path) != ext {
		return fmt.Errorf("%w: %s: file format not recognized (expected %s)",
			ErrUnrecognizedFormat, path, ext)
	}
	return nil
}

// Stem returns path without its extension.
func Stem(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

// ReadFile reads a whole file, wrapping failures in ErrIO.
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return b, nil
}

// WriteFile writes data to a temporary file next to path and renames it
// into place, so a failed write never leaves a partial file behind.
func WriteFile(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0644)
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	glog.V(2).Infof("wrote %d bytes to %s", len(data), path)
	return nil
}

// LinkFile reads an IR65 file and writes the executable container next to
// it, replacing the .ir65 extension with .ef. It returns the output path.
func (c Codec) LinkFile(path string) (string, error) {
	if err := CheckExt(path, IR.Ext()); err != nil {
		return "", err
	}

	b, err := ReadFile(path)
	if err != nil {
		return "", err
	}

	out, err := c.Link(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	outPath := Stem(path) + Executable.Ext()
	if err := WriteFile(outPath, out); err != nil {
		return "", err
	}

	glog.V(1).Infof("linked %s -> %s (%d byte payload)", path, outPath, len(out)-HeaderSize)
	return outPath, nil
}

// BootifyFile pads an executable container file to a bootable sector in
// place. If the file is already bootable it is left untouched and already
// is true.
func (c Codec) BootifyFile(path string) (already bool, err error) {
	if err := CheckExt(path, Executable.Ext()); err != nil {
		return false, err
	}

	b, err := ReadFile(path)
	if err != nil {
		return false, err
	}

	if len(b) <= SectorSize {
		h, err := c.DecodeHeader(b)
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		if h.Magic != Executable.Magic() {
			return false, fmt.Errorf("%w: %s: bad magic tag %q",
				ErrUnrecognizedFormat, path, h.Magic[:])
		}
	}

	if !IsBootable(b) && clobbersSignatureArea(b) {
		glog.Warningf("%s: boot signature overwrites payload bytes at offset %d",
			path, SignatureOffset)
	}

	out, already, err := Pad(b)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if already {
		glog.V(1).Infof("%s is already bootable", path)
		return true, nil
	}

	if err := WriteFile(path, out); err != nil {
		return false, err
	}

	glog.V(1).Infof("padded %s from %d to %d bytes", path, len(b), len(out))
	return false, nil
}

// LinkFile links an IR65 file using the host byte order.
func LinkFile(path string) (string, error) {
	return host.LinkFile(path)
}

// BootifyFile pads an executable file using the host byte order.
func BootifyFile(path string) (bool, error) {
	return host.BootifyFile(path)
}
