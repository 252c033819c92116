// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ef implements the binary containers produced by the ef65
// toolchain: the IR65 intermediate container written by the assembler, the
// EF executable container written by the linker, and the 128-byte bootable
// image consumed by the 6502 loader.
//
// Both containers share one layout:
//
//	offset 0  2-byte magic tag
//	offset 2  2-byte payload length
//	offset 4  payload
//
// The magic tag is a fixed byte pair. The length field, by contrast, is
// stored in the host's native byte order unless a Codec with an explicit
// order is used.
package ef

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrImageTooLarge is returned when data does not fit the target
	// format.
	ErrImageTooLarge = errors.New("image too large")

	// ErrUnrecognizedFormat is returned for a wrong file extension, a bad
	// magic tag or an inconsistent header.
	ErrUnrecognizedFormat = errors.New("unrecognized format")

	// ErrIO wraps filesystem failures.
	ErrIO = errors.New("i/o error")
)

// HeaderSize is the size of a container header in bytes.
const HeaderSize = 4

// MaxPayload is the largest payload a 16-bit length field can describe.
const MaxPayload = 0xffff

// Kind identifies a container format.
type Kind byte

// Container kinds
const (
	IR         Kind = iota // intermediate container written by the assembler
	Executable             // executable container written by the linker
)

var kindInfo = []struct {
	name  string
	ext   string
	magic [2]byte
}{
	{"IR65", ".ir65", [2]byte{'E', 'F'}},
	// 0x4546 stored low byte first.
	{"EF", ".ef", [2]byte{'F', 'E'}},
}

func (k Kind) String() string {
	return kindInfo[k].name
}

// Ext returns the file extension, including the leading dot, used for
// files holding this kind of container.
func (k Kind) Ext() string {
	return kindInfo[k].ext
}

// Magic returns the magic tag identifying this kind of container. The
// bytes are written in the returned order regardless of host byte order.
func (k Kind) Magic() [2]byte {
	return kindInfo[k].magic
}

// A Header is the fixed-layout prefix of every container.
type Header struct {
	Magic  [2]byte
	Length uint16
}

// A Container is a decoded IR65 or EF file.
type Container struct {
	Kind     Kind
	Header   Header
	Payload  []byte
	Bootable bool // container is padded to a boot sector and signed
	Size     int  // size of the encoded container in bytes
}

// A Codec encodes and decodes containers, storing the length field in a
// fixed byte order. The zero Codec uses the host's native byte order.
type Codec struct {
	Order binary.ByteOrder
}

func (c Codec) order() binary.ByteOrder {
	if c.Order == nil {
		return binary.NativeEndian
	}
	return c.Order
}

// AppendHeader appends the encoded header to b.
func (c Codec) AppendHeader(b []byte, h Header) []byte {
	var n [2]byte
	c.order().PutUint16(n[:], h.Length)
	return append(b, h.Magic[0], h.Magic[1], n[0], n[1])
}

// Encode wraps a payload in a container of the requested kind.
func (c Codec) Encode(kind Kind, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %s payload of %d bytes exceeds %d",
			ErrImageTooLarge, kind, len(payload), MaxPayload)
	}

	h := Header{Magic: kind.Magic(), Length: uint16(len(payload))}
	b := make([]byte, 0, HeaderSize+len(payload))
	b = c.AppendHeader(b, h)
	return append(b, payload...), nil
}

// Write wraps a payload in a container and writes it to w.
func (c Codec) Write(w io.Writer, kind Kind, payload []byte) (n int64, err error) {
	b, err := c.Encode(kind, payload)
	if err != nil {
		return 0, err
	}
	nn, err := w.Write(b)
	return int64(nn), err
}

// DecodeHeader parses the header at the start of b.
func (c Codec) DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: truncated header (%d bytes)", ErrUnrecognizedFormat, len(b))
	}
	return Header{
		Magic:  [2]byte{b[0], b[1]},
		Length: c.order().Uint16(b[2:4]),
	}, nil
}

// Decode parses a container of the requested kind. The magic tag must
// match the kind and the length field must describe the payload exactly,
// except for an executable container padded into a boot image.
func (c Codec) Decode(kind Kind, b []byte) (*Container, error) {
	h, err := c.DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	if h.Magic != kind.Magic() {
		return nil, fmt.Errorf("%w: bad magic tag %q for %s container",
			ErrUnrecognizedFormat, h.Magic[:], kind)
	}

	end := HeaderSize + int(h.Length)
	bootable := kind == Executable && IsBootable(b)
	switch {
	case end > len(b):
		return nil, fmt.Errorf("%w: length field %d exceeds %d available payload bytes",
			ErrUnrecognizedFormat, h.Length, len(b)-HeaderSize)
	case bootable && end > SignatureOffset:
		return nil, fmt.Errorf("%w: payload overlaps boot signature", ErrUnrecognizedFormat)
	case end < len(b) && !bootable:
		return nil, fmt.Errorf("%w: %d bytes of trailing data after payload",
			ErrUnrecognizedFormat, len(b)-end)
	}

	return &Container{
		Kind:     kind,
		Header:   h,
		Payload:  b[HeaderSize:end],
		Bootable: bootable,
		Size:     len(b),
	}, nil
}

// Identify decodes b as whichever container kind its magic tag names.
func (c Codec) Identify(b []byte) (*Container, error) {
	h, err := c.DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	for _, k := range []Kind{IR, Executable} {
		if h.Magic == k.Magic() {
			return c.Decode(k, b)
		}
	}
	return nil, fmt.Errorf("%w: unknown magic tag %q", ErrUnrecognizedFormat, h.Magic[:])
}

// Link wraps a complete IR container, header included, in an executable
// container. Only the IR magic tag is checked; the rest of the IR file is
// carried over byte for byte.
func (c Codec) Link(ir []byte) ([]byte, error) {
	h, err := c.DecodeHeader(ir)
	if err != nil {
		return nil, err
	}
	if h.Magic != IR.Magic() {
		return nil, fmt.Errorf("%w: bad magic tag %q for %s container",
			ErrUnrecognizedFormat, h.Magic[:], IR)
	}
	return c.Encode(Executable, ir)
}

// Code returns the machine code held by a container. An executable's
// payload is a nested IR container whose header is skipped; any other
// payload is returned as is.
func (c Codec) Code(con *Container) []byte {
	p := con.Payload
	if con.Kind != Executable {
		return p
	}
	h, err := c.DecodeHeader(p)
	if err != nil || h.Magic != IR.Magic() {
		return p
	}
	end := min(HeaderSize+int(h.Length), len(p))
	return p[HeaderSize:end]
}

var host Codec

// Encode wraps a payload using the host byte order.
func Encode(kind Kind, payload []byte) ([]byte, error) {
	return host.Encode(kind, payload)
}

// Decode parses a container using the host byte order.
func Decode(kind Kind, b []byte) (*Container, error) {
	return host.Decode(kind, b)
}

// Link nests an IR container in an executable container using the host
// byte order.
func Link(ir []byte) ([]byte, error) {
	return host.Link(ir)
}
