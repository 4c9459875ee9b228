// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
)

const formatPCM = 1

// Info describes the PCM payload of a RIFF/WAVE stream.
type Info struct {
	SampleRate int
	Channels   int
	Format     audio.Format
	// Offset is the position of the first PCM byte in the stream.
	Offset int64
	// Size is the length of the data chunk in bytes.
	Size int64
}

// Spec returns the stream layout as an audio.Spec without buffer fields.
func (i Info) Spec() audio.Spec {
	return audio.Spec{Freq: i.SampleRate, Format: i.Format, Channels: i.Channels}
}

// Locate parses the headers of rs and leaves it positioned at the first
// byte of the data chunk.
func Locate(rs io.ReadSeeker) (Info, error) {
	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans < 1 || dec.SampleRate == 0 {
		return Info{}, ErrNotWavFile
	}
	if dec.WavAudioFormat != formatPCM {
		return Info{}, fmt.Errorf("%w: 0x%04x", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	var f audio.Format
	switch dec.BitDepth {
	case 8:
		f = audio.U8
	case 16:
		f = audio.S16LSB
	default:
		return Info{}, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	// FwdToPCM reports header failures through Err only.
	if err := dec.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrNoPCMData, err)
	}
	if err := dec.Err(); err != nil || dec.PCMChunk == nil {
		return Info{}, ErrNoPCMData
	}

	offset, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Info{}, fmt.Errorf("locating data: %w", err)
	}

	return Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		Format:     f,
		Offset:     offset,
		Size:       int64(dec.PCMChunk.Size),
	}, nil
}

type Decoder struct{}

// Decode accepts 8-bit and 16-bit PCM. Inputs that cannot seek are read
// into memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	info, err := Locate(rs)
	if err != nil {
		return nil, err
	}

	src, err := audio.NewPCMSource(io.LimitReader(rs, info.Size), info.SampleRate, info.Channels, info.Format)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	return src, nil
}
