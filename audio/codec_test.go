// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{U8, S8, U16LSB, S16LSB, U16MSB, S16MSB} {
		codec, err := CodecFor(f)
		if err != nil {
			t.Fatalf("CodecFor(%s) error = %v", f, err)
		}

		lo, hi := int32(-128), int32(127)
		if f.BitSize() == 16 {
			lo, hi = -32768, 32767
		}

		buf := make([]byte, codec.Size())
		for v := lo; v <= hi; v++ {
			codec.Put(buf, 0, v)
			if got := codec.Get(buf, 0); got != v {
				t.Fatalf("%s: Get(Put(%d)) = %d", f, v, got)
			}
		}
	}
}

func TestCodec_Encoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		value  int32
		want   []byte
	}{
		{U8, 0, []byte{0x80}},
		{U8, -128, []byte{0x00}},
		{S8, -1, []byte{0xFF}},
		{S16LSB, 0x1234, []byte{0x34, 0x12}},
		{S16MSB, 0x1234, []byte{0x12, 0x34}},
		{U16LSB, 0, []byte{0x00, 0x80}},
		{U16MSB, 0, []byte{0x80, 0x00}},
	}

	for _, tt := range tests {
		codec, _ := CodecFor(tt.format)
		buf := make([]byte, codec.Size())
		codec.Put(buf, 0, tt.value)
		if !bytes.Equal(buf, tt.want) {
			t.Errorf("%s Put(%d) = % x, want % x", tt.format, tt.value, buf, tt.want)
		}
	}
}

func TestCodec_Clamp(t *testing.T) {
	t.Parallel()

	codec, _ := CodecFor(S8)
	buf := make([]byte, 2)
	codec.Put(buf, 0, 500)
	codec.Put(buf, 1, -500)

	if got := codec.Get(buf, 0); got != 127 {
		t.Errorf("Put(500) stored %d, want 127", got)
	}
	if got := codec.Get(buf, 1); got != -128 {
		t.Errorf("Put(-500) stored %d, want -128", got)
	}
	if codec.Scale() != 128 {
		t.Errorf("Scale() = %v, want 128", codec.Scale())
	}
}
