// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// PCMSource decodes raw interleaved PCM bytes of a known Format.
type PCMSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	codec      Codec
	buf        []byte
}

func NewPCMSource(r io.Reader, sampleRate, channels int, f Format) (*PCMSource, error) {
	codec, err := CodecFor(f)
	if err != nil {
		return nil, err
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	return &PCMSource{
		r:          r,
		sampleRate: sampleRate,
		channels:   channels,
		codec:      codec,
		buf:        make([]byte, 4096*codec.Size()),
	}, nil
}

func (s *PCMSource) SampleRate() int { return s.sampleRate }
func (s *PCMSource) Channels() int   { return s.channels }
func (s *PCMSource) BufSize() int    { return len(s.buf) / s.codec.Size() }

func (s *PCMSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing reader: %w", err)
		}
	}

	return nil
}

func (s *PCMSource) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	size := s.codec.Size()
	if len(s.buf) < want*size {
		s.buf = make([]byte, want*size)
	}

	n, err := io.ReadFull(s.r, s.buf[:want*size])
	// Drop a trailing partial frame.
	samples := n / size
	samples -= samples % s.channels

	scale := s.codec.Scale()
	for i := range samples {
		dst[i] = float32(s.codec.Get(s.buf, i)) / scale
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return samples, io.EOF
	case err != nil:
		return samples, fmt.Errorf("reading pcm: %w", err)
	}

	return samples, nil
}

// PCMReader renders a Source as raw bytes in an output Spec's rate,
// channel count and format. Resampling and channel mapping are inserted
// only when the source differs from the target.
type PCMReader struct {
	src     Source
	codec   Codec
	bits    int
	samples []float32
	out     []byte
	pending []byte
	err     error
}

func NewPCMReader(src Source, spec Spec) (*PCMReader, error) {
	codec, err := CodecFor(spec.Format)
	if err != nil {
		return nil, err
	}
	if spec.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, spec.Channels)
	}
	if spec.Freq <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrequency, spec.Freq)
	}

	// Drop channels before resampling, add them after.
	if src.Channels() > spec.Channels {
		src = NewChannelMapper(src, spec.Channels)
	}
	if src.SampleRate() != spec.Freq {
		src = NewResampler(src, spec.Freq)
	}
	if src.Channels() != spec.Channels {
		src = NewChannelMapper(src, spec.Channels)
	}

	n := 1024 * spec.Channels

	return &PCMReader{
		src:     src,
		codec:   codec,
		bits:    spec.Format.BitSize(),
		samples: make([]float32, n),
		out:     make([]byte, n*codec.Size()),
	}, nil
}

func (p *PCMReader) fill() {
	for empty := 0; len(p.pending) == 0 && p.err == nil; empty++ {
		if empty >= maxEmptyReads {
			p.err = io.ErrNoProgress
			return
		}

		n, err := p.src.ReadSamples(p.samples)
		for i := range n {
			p.codec.Put(p.out, i, utils.ScaleToInt(p.samples[i], p.bits))
		}
		p.pending = p.out[:n*p.codec.Size()]

		if err != nil {
			p.err = err
		}
	}
}

func (p *PCMReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		if len(p.pending) == 0 {
			p.fill()
			if len(p.pending) == 0 {
				break
			}
		}

		c := copy(b[n:], p.pending)
		p.pending = p.pending[c:]
		n += c
	}

	if n == 0 && p.err != nil {
		if errors.Is(p.err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("converting source: %w", p.err)
	}

	return n, nil
}

func (p *PCMReader) Close() error {
	err := p.src.Close()
	if err != nil {
		return fmt.Errorf("closing source: %w", err)
	}

	return nil
}

// Convert renders all of src into spec's sample layout.
func Convert(src Source, spec Spec) ([]byte, error) {
	r, err := NewPCMReader(src, spec)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("converting to %s: %w", spec.Format, err)
	}

	return data, nil
}
