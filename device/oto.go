// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audmix/audio"
)

const otoQueueDepth = 3

// oto allows a single context per process; it is created on first use and
// every later OtoSink must match its rate, channels and format.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoSpec audio.Spec
)

// OtoSink plays through the platform audio API.
type OtoSink struct {
	// Latency is passed to the driver as its buffer size. Zero keeps the
	// driver default.
	Latency time.Duration

	spec    audio.Spec
	player  *oto.Player
	bridge  *bridge
	started bool
}

func otoFormat(f audio.Format) (oto.Format, bool) {
	switch f {
	case audio.U8:
		return oto.FormatUnsignedInt8, true
	case audio.S16LSB:
		return oto.FormatSignedInt16LE, true
	}

	return 0, false
}

// Open accepts U8 and S16LSB. Surround layouts are negotiated down to
// stereo.
func (s *OtoSink) Open(spec audio.Spec) (audio.Spec, error) {
	format, ok := otoFormat(spec.Format)
	if !ok {
		return audio.Spec{}, fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, spec.Format)
	}

	obtained := spec
	if obtained.Channels > 2 {
		obtained.Channels = 2
	}

	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   obtained.Freq,
			ChannelCount: obtained.Channels,
			Format:       format,
			BufferSize:   s.Latency,
		})
		if err != nil {
			return audio.Spec{}, err
		}
		<-ready
		otoCtx = ctx
		otoSpec = obtained
	} else if otoSpec.Freq != obtained.Freq || otoSpec.Channels != obtained.Channels ||
		otoSpec.Format != obtained.Format {
		if otoSpec.Format != obtained.Format {
			return audio.Spec{}, fmt.Errorf("%w: context already uses %s", audio.ErrUnsupportedFormat, otoSpec.Format)
		}
		obtained.Freq = otoSpec.Freq
		obtained.Channels = otoSpec.Channels
	}

	obtained.Calculate()
	s.spec = obtained
	s.bridge = newBridge(obtained.Size, otoQueueDepth)
	s.player = otoCtx.NewPlayer(s.bridge)
	s.started = false

	return obtained, nil
}

func (s *OtoSink) Buffer() []byte { return s.bridge.buffer() }

// Play queues buf. The player is started on the first buffer so that its
// initial read finds data.
func (s *OtoSink) Play(buf []byte) error {
	if err := s.bridge.push(buf); err != nil {
		return err
	}
	if !s.started {
		s.started = true
		s.player.Play()
	}

	return s.player.Err()
}

func (s *OtoSink) Wait() { s.bridge.wait() }

func (s *OtoSink) WaitDone() {
	s.bridge.drain(otoQueueDepth * s.spec.Period() * 2)
}

func (s *OtoSink) Close() error {
	if s.player == nil {
		return nil
	}
	s.bridge.close()
	err := s.player.Close()
	s.player = nil

	return err
}
