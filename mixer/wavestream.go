// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"bufio"
	"errors"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/formats/wav"
)

// waveStream produces music from a WAV or AIFF stream in the output
// format, reading one period at a time.
type waveStream struct {
	open   func() (io.Reader, error)
	src    io.Reader
	r      *bufio.Reader
	buf    []byte
	volume int
	active bool
}

// newWaveStream prepares rs for playback in spec. kind is formats.WAV or
// formats.AIFF.
func newWaveStream(rs io.ReadSeeker, kind string, spec audio.Spec, reg *audio.Registry) *waveStream {
	open := func() (io.Reader, error) {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}

		var src audio.Source
		if kind == formats.WAV {
			info, err := wav.Locate(rs)
			if err != nil {
				return nil, err
			}
			data := io.LimitReader(rs, info.Size)
			if info.SampleRate == spec.Freq && info.Channels == spec.Channels && info.Format == spec.Format {
				return data, nil
			}
			if src, err = audio.NewPCMSource(data, info.SampleRate, info.Channels, info.Format); err != nil {
				return nil, err
			}
		} else {
			var err error
			if src, err = reg.Decode(kind, rs); err != nil {
				return nil, err
			}
		}

		r, err := audio.NewPCMReader(src, spec)
		if err != nil {
			_ = src.Close()
			return nil, err
		}

		return r, nil
	}

	return &waveStream{open: open, volume: MaxVolume}
}

// start rewinds to the first sample.
func (w *waveStream) start() error {
	w.stop()

	src, err := w.open()
	if err != nil {
		return err
	}
	w.src = src
	if w.r == nil {
		w.r = bufio.NewReader(src)
	} else {
		w.r.Reset(src)
	}
	w.active = true

	return nil
}

func (w *waveStream) stop() {
	w.active = false
	if c, ok := w.src.(io.Closer); ok {
		_ = c.Close()
	}
	w.src = nil
}

// playSome mixes up to len(stream) bytes of music into stream.
func (w *waveStream) playSome(stream []byte, mix audio.MixFunc) error {
	if !w.active {
		return nil
	}

	if cap(w.buf) < len(stream) {
		w.buf = make([]byte, len(stream))
	}
	buf := w.buf[:len(stream)]

	n, err := io.ReadFull(w.r, buf)
	mix(stream[:n], buf[:n], w.volume)

	if err != nil {
		w.active = false
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return err
		}
		return nil
	}
	if _, err := w.r.Peek(1); err != nil {
		w.active = false
	}

	return nil
}
