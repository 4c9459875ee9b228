// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"sync"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/mixer"
)

var (
	defaultMu     sync.Mutex
	defaultEngine *mixer.Engine
)

// Default returns the process-wide engine, creating it on first use with
// the hardware sink.
func Default() *mixer.Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultEngine == nil {
		defaultEngine = mixer.New(mixer.WithSink(&device.OtoSink{}))
	}

	return defaultEngine
}

// SetDefault replaces the process-wide engine and returns the previous
// one, which may be nil. The previous engine is not closed.
func SetDefault(e *mixer.Engine) *mixer.Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	prev := defaultEngine
	defaultEngine = e

	return prev
}

// OpenAudio opens the default engine. See mixer.Engine.OpenAudio.
func OpenAudio(freq int, format audio.Format, channels, chunkSize int) error {
	return Default().OpenAudio(freq, format, channels, chunkSize)
}

func CloseAudio() {
	Default().CloseAudio()
}

// QuerySpec reports how many times the default engine is open and the spec
// it negotiated.
func QuerySpec() (int, audio.Spec) {
	return Default().QuerySpec()
}
