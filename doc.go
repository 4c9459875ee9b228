// SPDX-License-Identifier: EPL-2.0

// Package audmix is a multi-channel audio mixer: many sample channels, one
// streamed music track, per-channel and global effect chains, and an audio
// device that pulls the mix at a fixed period.
//
// The work happens in the subpackages:
//   - audio: sample formats, the output spec, saturating mix routines and
//     the decode, resample and channel-map pipeline
//   - formats: WAV, AIFF, MP3 and Ogg Vorbis decoders and a WAV writer
//   - device: the mixing goroutine and its output sinks
//   - mixer: the Engine with channels, groups, effects, chunks and music
//   - config: INI settings for applications embedding the mixer
//
// This package keeps the older process-wide surface. It holds a single
// Engine behind Default and forwards the open and close calls to it:
//
//	if err := audmix.OpenAudio(44100, audio.S16SYS, 2, 1024); err != nil {
//		return err
//	}
//	defer audmix.CloseAudio()
//
//	e := audmix.Default()
//	chunk, err := e.LoadChunkFile("blip.wav")
//	if err != nil {
//		return err
//	}
//	_, err = e.PlayChannel(-1, chunk, 0)
//
// New code should create its own mixer.Engine instead.
//
// # Offline rendering
//
// A headless engine never opens a device. Render drives it and writes the
// result as a WAV file:
//
//	e := mixer.New(mixer.WithHeadless())
//	_ = e.OpenAudio(22050, audio.S16SYS, 2, 1024)
//	// load and play chunks or music
//	d, err := audmix.Render(e, out, 30*time.Second)
package audmix
