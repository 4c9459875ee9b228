// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// mockMP3Reader serves 16-bit little-endian PCM like gomp3.Decoder.
type mockMP3Reader struct {
	*bytes.Reader
	sampleRate int
	length     int64
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return m.length }

func newMock(rate int, samples ...int16) *mockMP3Reader {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}

	return &mockMP3Reader{Reader: bytes.NewReader(b), sampleRate: rate, length: int64(len(b))}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"garbage": []byte("This is not MP3 data"),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{8000, 22050, 44100, 48000} {
		src, err := newSource(newMock(rate, 0, 0))
		if err != nil {
			t.Fatalf("newSource() error = %v", err)
		}
		if src.SampleRate() != rate {
			t.Errorf("SampleRate() = %d, want %d", src.SampleRate(), rate)
		}
		if src.Channels() != 2 {
			t.Errorf("Channels() = %d, want 2", src.Channels())
		}
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src, err := newSource(newMock(44100, 0, 16384, -16384, 32767, -32768, 8192))
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	dst := make([]float32, 16)
	n, err := src.ReadSamples(dst)
	if !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() error = %v, want EOF", err)
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1, 0.25}
	if n != len(want) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(want))
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestSource_ReadSamples_WholeFrames(t *testing.T) {
	t.Parallel()

	src, err := newSource(newMock(44100, 1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}

	// An odd buffer never splits a stereo frame.
	dst := make([]float32, 3)
	n, err := src.ReadSamples(dst)
	if err != nil || n != 2 {
		t.Errorf("ReadSamples() = %d, %v, want 2, nil", n, err)
	}

	// The dangling fifth sample is dropped at the end.
	n, err = src.ReadSamples(make([]float32, 8))
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v, want 2, EOF", n, err)
	}
}

func TestSource_Frames(t *testing.T) {
	t.Parallel()

	src, _ := newSource(newMock(44100, 1, 2, 3, 4))
	if got := src.Frames(); got != 2 {
		t.Errorf("Frames() = %d, want 2", got)
	}

	m := newMock(44100)
	m.length = -1
	src, _ = newSource(m)
	if got := src.Frames(); got != -1 {
		t.Errorf("Frames() = %d, want -1", got)
	}
}

func TestSource_Close(t *testing.T) {
	t.Parallel()

	src, _ := newSource(newMock(44100, 1, 2))
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 2*44100)
	dst := make([]float32, 4096)

	for b.Loop() {
		src, _ := newSource(newMock(44100, samples...))
		for {
			if _, err := src.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
