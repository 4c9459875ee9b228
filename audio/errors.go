// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidChannels   = errors.New("unsupported channel count")
	ErrInvalidFrequency  = errors.New("invalid sample rate")
	ErrInvalidSamples    = errors.New("invalid buffer sample count")
	ErrUnknownDecoder    = errors.New("no decoder registered for format")
)
