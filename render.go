// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/mixer"
)

// Render mixes e period by period and writes the output to ws as a WAV
// stream. It stops once no channel plays and the music slot is empty, or
// when limit has been rendered if limit > 0. Channels or music looping
// forever need a limit.
//
// e must be open and should be headless: an engine with a device is
// advanced by its own goroutine too.
func Render(e *mixer.Engine, ws io.WriteSeeker, limit time.Duration) (time.Duration, error) {
	opened, spec := e.QuerySpec()
	if opened == 0 {
		return 0, mixer.ErrAudioNotOpen
	}

	w, err := wav.NewWriter(ws, spec.Freq, spec.Channels, spec.Format)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, spec.Size)
	period := spec.Period()

	var rendered time.Duration
	for limit <= 0 || rendered < limit {
		if e.Playing(-1) == 0 && e.MusicType(nil) == mixer.MusicNone {
			break
		}

		for i := range buf {
			buf[i] = spec.Silence
		}
		if err := e.Mix(buf); err != nil {
			return rendered, fmt.Errorf("mixing: %w", err)
		}
		if _, err := w.Write(buf); err != nil {
			return rendered, fmt.Errorf("writing: %w", err)
		}
		rendered += period
	}

	if err := w.Close(); err != nil {
		return rendered, fmt.Errorf("finishing wav: %w", err)
	}

	return rendered, nil
}
