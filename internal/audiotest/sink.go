// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"
	"time"

	"github.com/ik5/audmix/audio"
)

// RecordingSink is an output that keeps a copy of every buffer it is given.
type RecordingSink struct {
	// Override, when set, replaces the spec the sink reports back.
	Override func(audio.Spec) (audio.Spec, error)
	// Pace is how long Wait blocks. Zero means one millisecond.
	Pace time.Duration
	// PlayErr, when set, is returned by Play.
	PlayErr error

	mu     sync.Mutex
	spec   audio.Spec
	buf    []byte
	played [][]byte
	opened []audio.Spec
	closed bool
}

func (s *RecordingSink) Open(spec audio.Spec) (audio.Spec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opened = append(s.opened, spec)
	if s.Override != nil {
		var err error
		if spec, err = s.Override(spec); err != nil {
			return audio.Spec{}, err
		}
	}
	spec.Calculate()
	s.spec = spec
	s.buf = make([]byte, spec.Size)

	return spec, nil
}

func (s *RecordingSink) Buffer() []byte { return s.buf }

func (s *RecordingSink) Play(buf []byte) error {
	if s.PlayErr != nil {
		return s.PlayErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.played = append(s.played, append([]byte(nil), buf...))

	return nil
}

func (s *RecordingSink) Wait() {
	d := s.Pace
	if d == 0 {
		d = time.Millisecond
	}
	time.Sleep(d)
}

func (s *RecordingSink) WaitDone() {}

func (s *RecordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true

	return nil
}

// Played returns copies of the buffers played so far.
func (s *RecordingSink) Played() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([][]byte(nil), s.played...)
}

// Opened lists every spec the sink was asked to open, in order.
func (s *RecordingSink) Opened() []audio.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]audio.Spec(nil), s.opened...)
}

func (s *RecordingSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}
