// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
)

// Codec reads and writes individual samples of one Format as signed
// integers centered on zero, whatever the signedness or byte order of the
// underlying bytes. Put saturates out-of-range values.
type Codec struct {
	format Format
	size   int
	min    int32
	max    int32
	get    func(b []byte) int32
	put    func(b []byte, v int32)
}

// CodecFor selects the codec for f once; callers keep it for the lifetime
// of the stream rather than switching on the format per sample.
func CodecFor(f Format) (Codec, error) {
	c := Codec{format: f, size: f.SampleSize()}

	switch f {
	case U8:
		c.min, c.max = -128, 127
		c.get = func(b []byte) int32 { return int32(b[0]) - 128 }
		c.put = func(b []byte, v int32) { b[0] = byte(v + 128) }
	case S8:
		c.min, c.max = -128, 127
		c.get = func(b []byte) int32 { return int32(int8(b[0])) }
		c.put = func(b []byte, v int32) { b[0] = byte(int8(v)) }
	case S16LSB:
		c.min, c.max = -32768, 32767
		c.get = func(b []byte) int32 { return int32(int16(binary.LittleEndian.Uint16(b))) }
		c.put = func(b []byte, v int32) { binary.LittleEndian.PutUint16(b, uint16(int16(v))) }
	case S16MSB:
		c.min, c.max = -32768, 32767
		c.get = func(b []byte) int32 { return int32(int16(binary.BigEndian.Uint16(b))) }
		c.put = func(b []byte, v int32) { binary.BigEndian.PutUint16(b, uint16(int16(v))) }
	case U16LSB:
		c.min, c.max = -32768, 32767
		c.get = func(b []byte) int32 { return int32(binary.LittleEndian.Uint16(b)) - 32768 }
		c.put = func(b []byte, v int32) { binary.LittleEndian.PutUint16(b, uint16(v+32768)) }
	case U16MSB:
		c.min, c.max = -32768, 32767
		c.get = func(b []byte) int32 { return int32(binary.BigEndian.Uint16(b)) - 32768 }
		c.put = func(b []byte, v int32) { binary.BigEndian.PutUint16(b, uint16(v+32768)) }
	default:
		return Codec{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	return c, nil
}

func (c Codec) Format() Format { return c.format }

// Size is the sample width in bytes.
func (c Codec) Size() int { return c.size }

// Scale is the magnitude of full scale, 128 or 32768.
func (c Codec) Scale() float32 { return float32(c.max) + 1 }

// Get returns sample i of b.
func (c Codec) Get(b []byte, i int) int32 {
	return c.get(b[i*c.size:])
}

// Put stores v as sample i of b.
func (c Codec) Put(b []byte, i int, v int32) {
	c.put(b[i*c.size:], c.Clamp(v))
}

func (c Codec) Clamp(v int32) int32 {
	if v > c.max {
		return c.max
	}
	if v < c.min {
		return c.min
	}

	return v
}
