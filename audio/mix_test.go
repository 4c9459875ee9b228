// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

var testVolumes = []int{0, 1, 37, 64, 100, 127, MaxVolume}

func TestMixU8_IntoSilence(t *testing.T) {
	t.Parallel()

	mix, err := MixerFor(U8)
	if err != nil {
		t.Fatalf("MixerFor(U8) error = %v", err)
	}

	for _, v := range testVolumes {
		for s := range 256 {
			dst := []byte{0x80}
			mix(dst, []byte{byte(s)}, v)

			want := (s-128)*v/MaxVolume + 128
			if int(dst[0]) != want {
				t.Fatalf("mixU8(0x80, %d, %d) = %d, want %d", s, v, dst[0], want)
			}
		}
	}
}

func TestMixU8_Saturates(t *testing.T) {
	t.Parallel()

	dst := []byte{250, 5}
	mixU8(dst, []byte{250, 5}, MaxVolume)

	if dst[0] != 255 || dst[1] != 0 {
		t.Errorf("mixU8 saturation = %v, want [255 0]", dst)
	}
}

func TestMixS8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dst, src int8
		volume   int
		want     int8
	}{
		{"scale into silence", 0, 100, 64, 50},
		{"negative truncates toward zero", 0, -3, 64, -1},
		{"positive saturation", 100, 100, MaxVolume, 127},
		{"negative saturation", -100, -100, MaxVolume, -128},
		{"sum in range", 10, -20, MaxVolume, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dst := []byte{byte(tt.dst)}
			mixS8(dst, []byte{byte(tt.src)}, tt.volume)
			if int8(dst[0]) != tt.want {
				t.Errorf("mixS8(%d, %d, %d) = %d, want %d", tt.dst, tt.src, tt.volume, int8(dst[0]), tt.want)
			}
		})
	}
}

func TestMix16_ByteOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		order  binary.ByteOrder
		offset int
	}{
		{S16LSB, binary.LittleEndian, 0},
		{S16MSB, binary.BigEndian, 0},
		{U16LSB, binary.LittleEndian, 32768},
		{U16MSB, binary.BigEndian, 32768},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			t.Parallel()

			mix, err := MixerFor(tt.format)
			if err != nil {
				t.Fatalf("MixerFor() error = %v", err)
			}

			for _, v := range testVolumes {
				for _, s := range []int{-32768, -12345, -1, 0, 1, 999, 32767} {
					dst := make([]byte, 2)
					src := make([]byte, 2)
					tt.order.PutUint16(dst, uint16(tt.offset))
					tt.order.PutUint16(src, uint16(s+tt.offset))

					mix(dst, src, v)

					got := int(tt.order.Uint16(dst)) - tt.offset
					if tt.offset == 0 {
						got = int(int16(tt.order.Uint16(dst)))
					}
					if want := s * v / MaxVolume; got != want {
						t.Fatalf("mix(%d, vol %d) = %d, want %d", s, v, got, want)
					}
				}
			}
		})
	}
}

func TestMix16_Saturates(t *testing.T) {
	t.Parallel()

	dst := make([]byte, 4)
	binary.LittleEndian.PutUint16(dst[0:], uint16(int16(30000)))
	neg := int16(-30000)
	binary.LittleEndian.PutUint16(dst[2:], uint16(neg))
	src := bytes.Clone(dst)

	if err := MixAudio(dst, src, S16LSB, MaxVolume); err != nil {
		t.Fatalf("MixAudio() error = %v", err)
	}

	if got := int16(binary.LittleEndian.Uint16(dst[0:])); got != 32767 {
		t.Errorf("positive saturation = %d, want 32767", got)
	}
	if got := int16(binary.LittleEndian.Uint16(dst[2:])); got != -32768 {
		t.Errorf("negative saturation = %d, want -32768", got)
	}
}

func TestMix_ZeroVolumeAndSilenceAreNoOps(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{U8, S8, U16LSB, S16LSB, U16MSB, S16MSB} {
		dst := make([]byte, 256)
		for i := range dst {
			dst[i] = byte(i)
		}
		want := bytes.Clone(dst)

		src := make([]byte, 256)
		for i := range src {
			src[i] = byte(255 - i)
		}
		if err := MixAudio(dst, src, f, 0); err != nil {
			t.Fatalf("MixAudio(%s) error = %v", f, err)
		}
		if !bytes.Equal(dst, want) {
			t.Errorf("%s: volume 0 changed the destination", f)
		}

		silence := make([]byte, 256)
		codec, _ := CodecFor(f)
		for i := range len(silence) / codec.Size() {
			codec.Put(silence, i, 0)
		}
		if err := MixAudio(dst, silence, f, MaxVolume); err != nil {
			t.Fatalf("MixAudio(%s) error = %v", f, err)
		}
		if !bytes.Equal(dst, want) {
			t.Errorf("%s: mixing silence changed the destination", f)
		}
	}
}

func TestMix_ShortSourceLimitsLength(t *testing.T) {
	t.Parallel()

	dst := []byte{0, 0, 0, 0}
	mixS8(dst, []byte{10, 10}, MaxVolume)

	if !bytes.Equal(dst, []byte{10, 10, 0, 0}) {
		t.Errorf("dst = %v, want [10 10 0 0]", dst)
	}
}

func TestMixerFor_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := MixerFor(Format(0x20)); err == nil {
		t.Error("MixerFor(0x20) error = nil, want ErrUnsupportedFormat")
	}
}

func BenchmarkMixS16LSB(b *testing.B) {
	dst := make([]byte, 4096)
	src := make([]byte, 4096)
	for i := range src {
		src[i] = byte(i)
	}
	mix, _ := MixerFor(S16LSB)

	b.ReportAllocs()
	for range b.N {
		mix(dst, src, 96)
	}
}
