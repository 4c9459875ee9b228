// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample level building blocks shared by the
// device and the mixer.
//
// # Formats
//
// Format names one of the six supported PCM layouts (U8, S8 and the four
// 16-bit variants). A Spec describes an open stream in one of them:
//
//	spec := audio.Spec{Freq: 22050, Format: audio.S16SYS, Channels: 2, Samples: 1024}
//	spec.Calculate() // fills Silence and Size
//
// # Mixing
//
// MixAudio adds a source buffer into a destination buffer with a volume
// in [0, MaxVolume] and saturates at the limits of the format. MixerFor
// resolves the routine once so hot loops avoid the format switch:
//
//	mix, err := audio.MixerFor(spec.Format)
//	mix(stream, chunk, audio.MaxVolume)
//
// # Decoding and conversion
//
// Decoders produce a Source of interleaved float32 samples in [-1, 1].
// Resampler, ChannelMapper and PCMReader adapt a Source to a Spec, and
// Convert renders a whole Source into bytes the mixer can play:
//
//	data, err := audio.Convert(src, spec)
//
// Read loops end on io.EOF. A read may return samples together with
// io.EOF; those samples are valid.
package audio
