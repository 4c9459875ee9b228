// SPDX-License-Identifier: EPL-2.0

// Package formats wires the bundled decoders into an audio.Registry and
// guesses a stream's container from its first bytes.
package formats

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
)

// Registry keys.
const (
	WAV  = "wav"
	AIFF = "aiff"
	MP3  = "mp3"
	OGG  = "ogg"
)

// HeaderSize is the number of leading bytes Detect looks at.
const HeaderSize = 12

// NewRegistry returns a registry with every bundled decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(WAV, wav.Decoder{})
	r.Register(AIFF, aiff.Decoder{})
	r.Register(MP3, mp3.Decoder{})
	r.Register(OGG, vorbis.Decoder{})

	return r
}

// Detect names the container of a stream from its magic bytes and falls
// back to the file extension of name. It returns "" when neither matches.
func Detect(header []byte, name string) string {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return WAV
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return AIFF
	case bytes.HasPrefix(header, []byte("OggS")):
		return OGG
	case bytes.HasPrefix(header, []byte("ID3")):
		return MP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return MP3
	}

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "wav", "wave":
		return WAV
	case "aif", "aiff", "aifc":
		return AIFF
	case "ogg", "oga":
		return OGG
	case "mp3":
		return MP3
	}

	return ""
}
