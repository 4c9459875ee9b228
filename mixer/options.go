// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/decred/slog"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/device"
)

type Option func(*Engine)

// WithSink routes output to s. The default is device.NullSink.
func WithSink(s device.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithHeadless opens no device at all. The caller renders output by
// calling Engine.Mix.
func WithHeadless() Option {
	return func(e *Engine) { e.headless = true }
}

func WithLogger(l slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithEffectsMaxSpeed forces the 8-bit lookup tables on or off for the
// position effects. Without it the MIX_EFFECTSMAXSPEED environment variable
// is consulted at every open.
func WithEffectsMaxSpeed(on bool) Option {
	return func(e *Engine) {
		e.maxSpeed = on
		e.maxSpeedSet = true
	}
}

// WithRegistry replaces the decoders used by LoadChunk and LoadMusic.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.registry = r }
}
