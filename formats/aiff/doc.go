// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Uncompressed 8-bit and 16-bit PCM is supported at any rate and channel
// count. Samples are returned as float32 in [-1, 1]:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// The mixer loads AIFF both as sound chunks and as streamed music.
package aiff
