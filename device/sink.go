// SPDX-License-Identifier: EPL-2.0

package device

import "github.com/ik5/audmix/audio"

// Sink is a platform output stream driven by the device goroutine.
type Sink interface {
	// Open negotiates spec and returns what the sink will actually play.
	// Returning an error wrapping audio.ErrUnsupportedFormat makes the
	// device try the next fallback format.
	Open(spec audio.Spec) (audio.Spec, error)
	// Buffer returns the region to fill next, or nil to use the device's
	// fake buffer for this iteration.
	Buffer() []byte
	// Play submits a filled buffer.
	Play(buf []byte) error
	// Wait blocks until the sink can take another buffer.
	Wait()
	// WaitDone blocks until everything submitted has been played.
	WaitDone()
	Close() error
}

// NullSink discards audio. The device paces itself by sleeping.
type NullSink struct{}

func (NullSink) Open(spec audio.Spec) (audio.Spec, error) { return spec, nil }
func (NullSink) Buffer() []byte                          { return nil }
func (NullSink) Play([]byte) error                       { return nil }
func (NullSink) Wait()                                   {}
func (NullSink) WaitDone()                               {}
func (NullSink) Close() error                            { return nil }
