// SPDX-License-Identifier: EPL-2.0

package device

import (
	"io"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/wav"
)

// WAVSink captures the device output into a WAV stream. The caller owns ws
// and closes it after the device is closed.
type WAVSink struct {
	ws       io.WriteSeeker
	realtime bool

	spec audio.Spec
	w    *wav.Writer
	buf  []byte
	last time.Time
}

// NewWAVSink writes to ws. With realtime set, Wait paces the device to the
// buffer period as a hardware sink would; otherwise it renders as fast as
// the callback allows.
func NewWAVSink(ws io.WriteSeeker, realtime bool) *WAVSink {
	return &WAVSink{ws: ws, realtime: realtime}
}

func (s *WAVSink) Open(spec audio.Spec) (audio.Spec, error) {
	w, err := wav.NewWriter(s.ws, spec.Freq, spec.Channels, spec.Format)
	if err != nil {
		return audio.Spec{}, err
	}
	spec.Calculate()
	s.spec = spec
	s.w = w
	s.buf = make([]byte, spec.Size)
	s.last = time.Now()

	return spec, nil
}

func (s *WAVSink) Buffer() []byte { return s.buf }

func (s *WAVSink) Play(buf []byte) error {
	_, err := s.w.Write(buf)
	return err
}

func (s *WAVSink) Wait() {
	if !s.realtime {
		return
	}
	next := s.last.Add(s.spec.Period())
	if d := time.Until(next); d > 0 {
		time.Sleep(d)
	}
	s.last = next
}

func (s *WAVSink) WaitDone() {}

// Close finalises the WAV header.
func (s *WAVSink) Close() error {
	if s.w == nil {
		return nil
	}
	err := s.w.Close()
	s.w = nil

	return err
}
