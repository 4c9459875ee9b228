// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// Wave returns the value of a channel at a given frame.
type Wave func(frame, channel int) float32

// Source is a finite generated stream that satisfies audio.Source.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Wave
}

func NewSource(rate, channels, frames int, wave Wave) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, wave: wave}
}

func NewConstantSource(rate, channels, frames int, v float32) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return v })
}

// NewSineSource emits the same sine of freq Hz on every channel at amplitude amp.
func NewSineSource(rate, channels, frames int, freq, amp float64) *Source {
	return NewSource(rate, channels, frames, func(frame, _ int) float32 {
		return float32(amp * math.Sin(2*math.Pi*freq*float64(frame)/float64(rate)))
	})
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 1024 }
func (s *Source) Close() error    { return nil }

// Rewind starts the stream over.
func (s *Source) Rewind() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for c := range s.channels {
			dst[f*s.channels+c] = s.wave(s.pos+f, c)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}

	return n * s.channels, nil
}
