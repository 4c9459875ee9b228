// SPDX-License-Identifier: EPL-2.0

package device

import (
	"sync"

	"github.com/decred/slog"
)

type Option func(*Device)

// WithSink selects the output. Without it the device renders into a fake
// buffer and sleeps one buffer period per iteration.
func WithSink(s Sink) Option {
	return func(d *Device) { d.sink = s }
}

func WithLogger(l slog.Logger) Option {
	return func(d *Device) { d.log = l }
}

// WithLocker makes the device serialise its callback on l instead of a
// private mutex, so control code can share the same lock.
func WithLocker(l sync.Locker) Option {
	return func(d *Device) { d.mu = l }
}
