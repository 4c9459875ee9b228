// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III audio with github.com/hajimehoshi/go-mp3.
//
// The decoder always yields stereo at the file's own rate; mono files are
// duplicated into both channels by go-mp3. Use audio.Convert or
// audio.PCMReader to bring the stream to the device layout.
package mp3
