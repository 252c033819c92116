// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ef

import (
	"bytes"
	"fmt"
)

// Boot image layout
const (
	SectorSize      = 128
	SignatureOffset = SectorSize - 2
)

// BootSignature marks a sector as bootable. It is stamped in this byte
// order.
var BootSignature = [2]byte{'o', 'k'}

// IsBootable reports whether b is a full sector ending in the boot
// signature.
func IsBootable(b []byte) bool {
	return len(b) == SectorSize &&
		b[SignatureOffset] == BootSignature[0] &&
		b[SignatureOffset+1] == BootSignature[1]
}

// Pad produces a bootable image from an executable container. The input is
// copied to the start of a zero-filled sector and the boot signature is
// stamped into its last two bytes. If the input is already a signed
// sector, it is returned unchanged and already is true.
func Pad(image []byte) (out []byte, already bool, err error) {
	switch {
	case len(image) > SectorSize:
		return nil, false, fmt.Errorf("%w: %d bytes exceeds the %d-byte boot sector",
			ErrImageTooLarge, len(image), SectorSize)
	case IsBootable(image):
		return bytes.Clone(image), true, nil
	}

	out = make([]byte, SectorSize)
	copy(out, image)
	out[SignatureOffset] = BootSignature[0]
	out[SignatureOffset+1] = BootSignature[1]
	return out, false, nil
}

// clobbersSignatureArea reports whether stamping the signature onto image
// overwrites non-zero data.
func clobbersSignatureArea(image []byte) bool {
	for i := SignatureOffset; i < len(image) && i < SectorSize; i++ {
		if image[i] != 0 {
			return true
		}
	}
	return false
}
