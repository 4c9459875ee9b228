// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files through github.com/go-audio/wav.
//
// Decoding accepts uncompressed PCM with 8-bit (unsigned) or 16-bit
// (signed little-endian) samples, any channel count and any rate:
//
//	src, err := wav.Decoder{}.Decode(file)
//
// Locate parses the headers only and leaves the reader at the first PCM
// byte, which is how the music player streams a WAV file without decoding
// it to float samples:
//
//	info, err := wav.Locate(file)
//	data := io.NewSectionReader(file, info.Offset, info.Size)
//
// Writer encodes raw bytes of any audio.Format into a WAV stream. It needs
// an io.WriteSeeker because the header sizes are patched on Close.
//
// Compressed encodings such as ADPCM fail with ErrUnsupportedEncoding.
package wav
