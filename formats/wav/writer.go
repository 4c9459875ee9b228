// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
)

// Writer encodes raw PCM in any audio.Format into a WAV stream. 8-bit
// input is stored as unsigned 8-bit PCM, 16-bit input as signed
// little-endian PCM. Partial frames are held back until the next Write.
type Writer struct {
	enc     *gowav.Encoder
	codec   audio.Codec
	frame   int
	unsign  bool
	carry   []byte
	buf     *goaudio.IntBuffer
	started bool
}

func NewWriter(ws io.WriteSeeker, sampleRate, channels int, f audio.Format) (*Writer, error) {
	codec, err := audio.CodecFor(f)
	if err != nil {
		return nil, err
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidChannels, channels)
	}

	bits := f.BitSize()

	return &Writer{
		enc:    gowav.NewEncoder(ws, sampleRate, bits, channels, formatPCM),
		codec:  codec,
		frame:  codec.Size() * channels,
		unsign: bits == 8,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bits,
		},
	}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	data := p
	if len(w.carry) > 0 {
		data = append(w.carry, p...)
	}

	whole := len(data) - len(data)%w.frame
	samples := whole / w.codec.Size()

	if cap(w.buf.Data) < samples {
		w.buf.Data = make([]int, samples)
	}
	w.buf.Data = w.buf.Data[:samples]

	for i := range samples {
		v := w.codec.Get(data, i)
		if w.unsign {
			v += 128
		}
		w.buf.Data[i] = int(v)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return 0, fmt.Errorf("encoding samples: %w", err)
	}
	w.started = true
	w.carry = append(w.carry[:0], data[whole:]...)

	return len(p), nil
}

// Close patches the header sizes. The underlying writer is not closed.
func (w *Writer) Close() error {
	if !w.started {
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		w.started = true
	}

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("patching header: %w", err)
	}

	return nil
}

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(ws io.WriteSeeker, sampleRate int, samples []int16) error {
	enc := gowav.NewEncoder(ws, sampleRate, 16, 1, formatPCM)

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("patching header: %w", err)
	}

	return nil
}
