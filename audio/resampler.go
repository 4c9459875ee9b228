// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// maxEmptyReads bounds how often a source may return (0, nil) in a row
// before the stream is treated as stalled.
const maxEmptyReads = 64

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves the channel
// count. A one-pole low-pass filter runs on the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// Interpolation window: frames[0] = t-1, frames[1] = t0,
	// frames[2] = t+1, frames[3] = t+2. Past the end of the source the
	// last real frame is held and has[i] turns false.
	frames [4][]float32
	has    [4]bool
	primed bool

	// Position between frames[1] and frames[2], in source frames.
	pos float64

	srcBuf []float32
	srcOff int
	srcLen int
	srcErr error

	filterState []float32
	filterReady bool
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, 1024*channels),
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("closing source: %w", err)
	}
	return nil
}

// readFrame copies the next source frame into dst. It returns false once
// the source is exhausted, together with the source error (io.EOF on a
// clean end).
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for empty := 0; r.srcOff >= r.srcLen; empty++ {
		if r.srcErr != nil {
			return false, r.srcErr
		}
		if empty >= maxEmptyReads {
			r.srcErr = io.ErrNoProgress
			return false, r.srcErr
		}

		n, err := r.src.ReadSamples(r.srcBuf)
		r.srcLen = n - n%r.channels
		r.srcOff = 0
		r.srcErr = err
	}

	copy(dst, r.srcBuf[r.srcOff:r.srcOff+r.channels])
	r.srcOff += r.channels

	if r.useFilter && r.filterReady {
		for c := range r.channels {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}

	return true, nil
}

// fill reads slot i, holding the previous slot when the source is done.
func (r *Resampler) fill(i int) error {
	ok, err := r.readFrame(r.frames[i])
	r.has[i] = ok
	if !ok {
		copy(r.frames[i], r.frames[i-1])
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	return nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.readFrame(r.frames[1])
	if !ok {
		if err == nil {
			err = io.EOF
		}
		return err
	}
	copy(r.filterState, r.frames[1])
	r.filterReady = true
	copy(r.frames[0], r.frames[1])
	r.has[0], r.has[1] = true, true

	if err := r.fill(2); err != nil {
		return err
	}

	return r.fill(3)
}

// advance slides the window one source frame forward.
func (r *Resampler) advance() error {
	first := r.frames[0]
	r.frames[0], r.frames[1], r.frames[2] = r.frames[1], r.frames[2], r.frames[3]
	r.frames[3] = first
	r.has[0], r.has[1], r.has[2] = r.has[1], r.has[2], r.has[3]

	return r.fill(3)
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("priming resampler: %w", err)
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.has[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels:]
		if r.has[2] && r.has[3] {
			for c := range r.channels {
				out[c] = utils.CubicInterpolate(r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], x)
			}
		} else {
			// Near the end the held frames would make the spline overshoot.
			for c := range r.channels {
				out[c] = utils.LinearInterpolate(r.frames[1][c], r.frames[2][c], x)
			}
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
