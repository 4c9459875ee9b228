// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrAudioNotOpen      = errors.New("audio device hasn't been opened")
	ErrInvalidChannel    = errors.New("invalid channel")
	ErrNoFreeChannel     = errors.New("no free channels available")
	ErrNilChunk          = errors.New("tried to play a nil chunk")
	ErrBadFrame          = errors.New("chunk is shorter than one frame")
	ErrUnrecognizedSound = errors.New("unrecognized sound file type")
	ErrNoDataChunk       = errors.New("wave data has no data chunk")
	ErrNilEffect         = errors.New("effect function is nil")
	ErrEffectNotFound    = errors.New("no such effect registered")
	ErrNilMusic          = errors.New("music parameter was nil")
	ErrUnrecognizedMusic = errors.New("unrecognized music format")
	ErrMusicNotPlaying   = errors.New("music isn't playing")
	ErrNotSupported      = errors.New("operation not supported for this music type")
)
