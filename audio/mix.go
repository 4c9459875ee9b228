// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
)

// MaxVolume is unity gain for MixAudio.
const MaxVolume = 128

// MixFunc adds src, scaled by volume/MaxVolume, into dst with saturation.
// Only min(len(dst), len(src)) bytes are touched.
type MixFunc func(dst, src []byte, volume int)

// mix8 performs saturating unsigned 8-bit addition: index dst+src where
// both are offset-binary samples.
var mix8 = func() (t [512]uint8) {
	for i := range t {
		switch {
		case i < 128:
			t[i] = 0
		case i > 383:
			t[i] = 255
		default:
			t[i] = uint8(i - 128)
		}
	}

	return t
}()

// MixerFor returns the mixing routine for f.
func MixerFor(f Format) (MixFunc, error) {
	switch f {
	case U8:
		return mixU8, nil
	case S8:
		return mixS8, nil
	case S16LSB:
		return mix16(binary.LittleEndian, false), nil
	case S16MSB:
		return mix16(binary.BigEndian, false), nil
	case U16LSB:
		return mix16(binary.LittleEndian, true), nil
	case U16MSB:
		return mix16(binary.BigEndian, true), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// MixAudio is the one-shot form of MixerFor.
func MixAudio(dst, src []byte, f Format, volume int) error {
	mix, err := MixerFor(f)
	if err != nil {
		return err
	}

	mix(dst, src, volume)

	return nil
}

func mixU8(dst, src []byte, volume int) {
	if volume == 0 {
		return
	}

	n := min(len(dst), len(src))
	for i := range n {
		s := (int(src[i])-128)*volume/MaxVolume + 128
		dst[i] = mix8[int(dst[i])+s]
	}
}

func mixS8(dst, src []byte, volume int) {
	if volume == 0 {
		return
	}

	n := min(len(dst), len(src))
	for i := range n {
		v := int(int8(dst[i])) + int(int8(src[i]))*volume/MaxVolume
		switch {
		case v > 127:
			v = 127
		case v < -128:
			v = -128
		}
		dst[i] = byte(int8(v))
	}
}

// mix16 builds a 16-bit mixer for one byte order. Unsigned samples are
// moved into signed space by flipping the top bit, mixed, and flipped back.
func mix16(order binary.ByteOrder, unsigned bool) MixFunc {
	var flip uint16
	if unsigned {
		flip = 0x8000
	}

	return func(dst, src []byte, volume int) {
		if volume == 0 {
			return
		}

		n := min(len(dst), len(src)) &^ 1
		for i := 0; i < n; i += 2 {
			s := int(int16(order.Uint16(src[i:])^flip)) * volume / MaxVolume
			v := int(int16(order.Uint16(dst[i:])^flip)) + s
			switch {
			case v > 32767:
				v = 32767
			case v < -32768:
				v = -32768
			}
			order.PutUint16(dst[i:], uint16(int16(v))^flip)
		}
	}
}
