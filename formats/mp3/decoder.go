// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audmix/audio"
)

// go-mp3 always produces signed 16-bit little-endian stereo.
const (
	outChannels = 2
	outFormat   = audio.S16LSB
)

// mp3Reader is the part of gomp3.Decoder the source needs.
type mp3Reader interface {
	io.Reader
	SampleRate() int
	Length() int64
}

type source struct {
	*audio.PCMSource
	length int64
}

// Frames reports the stream length in sample frames, or -1 when the
// input could not be measured.
func (s *source) Frames() int64 {
	if s.length < 0 {
		return -1
	}

	return s.length / int64(outChannels*outFormat.SampleSize())
}

func newSource(dec mp3Reader) (*source, error) {
	pcm, err := audio.NewPCMSource(dec, dec.SampleRate(), outChannels, outFormat)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	return &source{PCMSource: pcm, length: dec.Length()}, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	return newSource(dec)
}
