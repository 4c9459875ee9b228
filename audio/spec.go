// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"
)

// Spec is the negotiated layout of an open output stream.
type Spec struct {
	Freq     int
	Format   Format
	Channels int
	// Samples is the buffer length in frames.
	Samples int
	Silence byte
	// Size is the buffer length in bytes.
	Size int
}

// Calculate fills the derived Silence and Size fields.
func (s *Spec) Calculate() {
	s.Silence = s.Format.Silence()
	s.Size = s.Format.SampleSize() * s.Channels * s.Samples
}

func (s Spec) FrameSize() int {
	return s.Format.SampleSize() * s.Channels
}

// Period is the playback duration of one buffer.
func (s Spec) Period() time.Duration {
	if s.Freq <= 0 {
		return 0
	}

	return time.Duration(s.Samples) * time.Second / time.Duration(s.Freq)
}

// ValidChannels reports whether n is a supported output channel count.
func ValidChannels(n int) bool {
	switch n {
	case 1, 2, 4, 6:
		return true
	}

	return false
}

func (s Spec) Validate() error {
	if s.Freq <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrequency, s.Freq)
	}
	if !s.Format.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Format)
	}
	if !ValidChannels(s.Channels) {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, s.Channels)
	}
	if s.Samples <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSamples, s.Samples)
	}

	return nil
}

func (s Spec) String() string {
	return fmt.Sprintf("%dHz %s %dch %d samples", s.Freq, s.Format, s.Channels, s.Samples)
}
