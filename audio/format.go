// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Format describes a PCM sample layout. The low byte holds the bit size,
// bit 15 marks signed samples and bit 12 marks big-endian byte order.
type Format uint16

const (
	U8     Format = 0x0008
	S8     Format = 0x8008
	U16LSB Format = 0x0010
	S16LSB Format = 0x8010
	U16MSB Format = 0x1010
	S16MSB Format = 0x9010

	U16 = U16LSB
	S16 = S16LSB
)

const (
	formatBitSize   = 0xFF
	formatBigEndian = 0x1000
	formatSigned    = 0x8000
)

// Native byte order variants of the 16-bit formats.
var (
	U16SYS = nativeFormat(U16LSB, U16MSB)
	S16SYS = nativeFormat(S16LSB, S16MSB)
)

func nativeFormat(little, big Format) Format {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 0 {
		return big
	}

	return little
}

func (f Format) BitSize() int    { return int(f & formatBitSize) }
func (f Format) SampleSize() int { return f.BitSize() / 8 }
func (f Format) Signed() bool    { return f&formatSigned != 0 }
func (f Format) BigEndian() bool { return f&formatBigEndian != 0 }

// Valid reports whether f is one of the six supported layouts.
func (f Format) Valid() bool {
	switch f {
	case U8, S8, U16LSB, S16LSB, U16MSB, S16MSB:
		return true
	}

	return false
}

// Silence is the byte value that fills a buffer with silence.
func (f Format) Silence() byte {
	if f == U8 {
		return 0x80
	}

	return 0
}

func (f Format) String() string {
	switch f {
	case U8:
		return "U8"
	case S8:
		return "S8"
	case U16LSB:
		return "U16LSB"
	case S16LSB:
		return "S16LSB"
	case U16MSB:
		return "U16MSB"
	case S16MSB:
		return "S16MSB"
	}

	return fmt.Sprintf("Format(0x%04x)", uint16(f))
}

// Fallbacks lists the formats to try, in order, when a device rejects f.
// The first entry is always f itself.
func (f Format) Fallbacks() []Format {
	switch f {
	case U8:
		return []Format{U8, S8, S16LSB, S16MSB, U16LSB, U16MSB}
	case S8:
		return []Format{S8, U8, S16LSB, S16MSB, U16LSB, U16MSB}
	case S16LSB:
		return []Format{S16LSB, S16MSB, U16LSB, U16MSB, U8, S8}
	case S16MSB:
		return []Format{S16MSB, S16LSB, U16MSB, U16LSB, U8, S8}
	case U16LSB:
		return []Format{U16LSB, U16MSB, S16LSB, S16MSB, U8, S8}
	case U16MSB:
		return []Format{U16MSB, U16LSB, S16MSB, S16LSB, U8, S8}
	}

	return nil
}

// ParseFormat accepts the names printed by Format.String plus the
// shorthands U16, S16, U16SYS and S16SYS. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "U8":
		return U8, nil
	case "S8":
		return S8, nil
	case "U16LSB", "U16":
		return U16LSB, nil
	case "S16LSB", "S16":
		return S16LSB, nil
	case "U16MSB":
		return U16MSB, nil
	case "S16MSB":
		return S16MSB, nil
	case "U16SYS":
		return U16SYS, nil
	case "S16SYS":
		return S16SYS, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}
