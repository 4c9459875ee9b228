// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/slog"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audmix/audio"
)

// Output defaults applied to zero fields of the desired spec.
const (
	DefaultFrequency = 22050
	DefaultChannels  = 2

	// defaultBufferMs is the buffer length the default sample count aims for.
	defaultBufferMs = 46
)

// Callback fills buf with the next block of output. It runs on the device
// goroutine with the device lock held and must not block.
type Callback func(buf []byte)

type Status int

const (
	Stopped Status = iota
	Playing
	Paused
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}

	return fmt.Sprintf("status(%d)", int(s))
}

// Device owns one output stream and the goroutine that keeps it fed.
type Device struct {
	spec audio.Spec
	sink Sink
	cb   Callback
	log  slog.Logger
	mu   sync.Locker

	paused  atomic.Bool
	running atomic.Bool

	fake      []byte
	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
	closeErr  error
}

// Defaults fills the zero fields of desired: 22050 Hz, native signed 16-bit,
// stereo, and a power-of-two buffer of roughly 46 ms.
func Defaults(desired audio.Spec) audio.Spec {
	spec := desired
	if spec.Freq == 0 {
		spec.Freq = DefaultFrequency
	}
	if spec.Format == 0 {
		spec.Format = audio.S16SYS
	}
	if spec.Channels == 0 {
		spec.Channels = DefaultChannels
	}
	if spec.Samples == 0 {
		spec.Samples = nextPow2((spec.Freq / 1000) * defaultBufferMs)
	}

	return spec
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

// Open negotiates an output stream and starts the device goroutine. The
// device starts paused; call Pause(false) to begin running the callback.
func Open(desired audio.Spec, cb Callback, opts ...Option) (*Device, error) {
	if cb == nil {
		return nil, ErrNilCallback
	}

	d := &Device{
		cb:   cb,
		log:  slog.Disabled,
		sink: NullSink{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.mu == nil {
		d.mu = &sync.Mutex{}
	}

	spec := Defaults(desired)
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	obtained, err := d.negotiate(spec)
	if err != nil {
		return nil, err
	}
	obtained.Calculate()
	d.spec = obtained
	d.fake = make([]byte, obtained.Size)
	d.paused.Store(true)
	d.running.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	d.cancel = cancel
	d.group = g
	g.Go(func() error { return d.run(gctx) })

	d.log.Debugf("device opened: %s", obtained)

	return d, nil
}

// negotiate walks the fallback list of the requested format until the sink
// accepts one.
func (d *Device) negotiate(spec audio.Spec) (audio.Spec, error) {
	for _, f := range spec.Format.Fallbacks() {
		try := spec
		try.Format = f
		try.Calculate()

		obtained, err := d.sink.Open(try)
		if errors.Is(err, audio.ErrUnsupportedFormat) {
			d.log.Tracef("sink rejected %s", f)
			continue
		}
		if err != nil {
			return audio.Spec{}, fmt.Errorf("%w: %w", ErrSink, err)
		}
		if err := obtained.Validate(); err != nil {
			_ = d.sink.Close()
			return audio.Spec{}, fmt.Errorf("%w: obtained %s: %w", ErrSink, obtained, err)
		}

		return obtained, nil
	}

	return audio.Spec{}, fmt.Errorf("%w: %s", ErrNoFormat, spec.Format)
}

func (d *Device) run(ctx context.Context) error {
	defer d.sink.WaitDone()

	period := d.spec.Period()
	timer := time.NewTimer(period)
	defer timer.Stop()

	for ctx.Err() == nil {
		buf := d.sink.Buffer()
		fake := buf == nil
		if fake {
			buf = d.fake
		}

		for i := range buf {
			buf[i] = d.spec.Silence
		}
		if !d.paused.Load() {
			d.fill(buf)
		}

		if fake {
			timer.Reset(period)
			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}
			continue
		}

		if err := d.sink.Play(buf); err != nil {
			d.log.Errorf("sink play: %v", err)
			d.running.Store(false)
			return fmt.Errorf("%w: %w", ErrSink, err)
		}
		d.sink.Wait()
	}

	return nil
}

func (d *Device) fill(buf []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("audio callback panicked: %v", r)
			for i := range buf {
				buf[i] = d.spec.Silence
			}
		}
	}()

	d.cb(buf)
}

// Spec returns the negotiated output spec.
func (d *Device) Spec() audio.Spec { return d.spec }

// Pause stops or resumes calling the callback. A paused device keeps
// submitting silence.
func (d *Device) Pause(on bool) { d.paused.Store(on) }

func (d *Device) Status() Status {
	switch {
	case !d.running.Load():
		return Stopped
	case d.paused.Load():
		return Paused
	}

	return Playing
}

// Lock excludes the callback. Do not call Close while holding it.
func (d *Device) Lock()   { d.mu.Lock() }
func (d *Device) Unlock() { d.mu.Unlock() }

// Close stops the goroutine, waits for it to drain and closes the sink. It is
// safe to call more than once.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.cancel()
		err := d.group.Wait()
		d.running.Store(false)
		if cerr := d.sink.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("%w: %w", ErrSink, cerr))
		}
		d.closeErr = err
		d.log.Debug("device closed")
	})

	return d.closeErr
}
