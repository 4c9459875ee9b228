// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/formats/wav"
)

// Chunk is a decoded sample in the output format of the engine. Data must
// not be modified while any channel plays the chunk.
type Chunk struct {
	Data   []byte
	volume int
}

// NewChunk wraps data, which must already be in the open output format.
func NewChunk(data []byte) *Chunk {
	return &Chunk{Data: data, volume: MaxVolume}
}

// VolumeChunk sets the volume of c and returns the previous one. A negative
// v only queries.
func (e *Engine) VolumeChunk(c *Chunk, v int) int {
	if c == nil {
		return -1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := c.volume
	if v >= 0 {
		c.volume = min(v, MaxVolume)
	}

	return prev
}

func (e *Engine) openSpec() (audio.Spec, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return audio.Spec{}, ErrAudioNotOpen
	}

	return e.spec, nil
}

// QuickLoadRAW uses mem as sample data as is.
func (e *Engine) QuickLoadRAW(mem []byte) (*Chunk, error) {
	if _, err := e.openSpec(); err != nil {
		return nil, err
	}

	return NewChunk(mem), nil
}

// QuickLoadWAV points a chunk at the data chunk of a RIFF image already in
// the output format. No conversion takes place.
func (e *Engine) QuickLoadWAV(mem []byte) (*Chunk, error) {
	if _, err := e.openSpec(); err != nil {
		return nil, err
	}
	if len(mem) < 12 || !bytes.Equal(mem[:4], []byte("RIFF")) {
		return nil, ErrUnrecognizedSound
	}

	for off := 12; off+8 <= len(mem); {
		id := mem[off : off+4]
		size := int(binary.LittleEndian.Uint32(mem[off+4 : off+8]))
		off += 8
		if bytes.Equal(id, []byte("data")) {
			return NewChunk(mem[off:min(off+size, len(mem))]), nil
		}
		off += size
	}

	return nil, ErrNoDataChunk
}

// LoadWAV decodes an 8 or 16-bit PCM RIFF stream, converting it to the
// output spec when the two differ.
func (e *Engine) LoadWAV(r io.Reader) (*Chunk, error) {
	spec, err := e.openSpec()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wave: %w", err)
	}
	if len(data) < 4 || (!bytes.Equal(data[:4], []byte("RIFF")) && !bytes.Equal(data[:4], []byte("WAVE"))) {
		return nil, ErrUnrecognizedSound
	}

	info, err := wav.Locate(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	pcm := data[info.Offset:min(info.Offset+info.Size, int64(len(data)))]

	if info.SampleRate == spec.Freq && info.Channels == spec.Channels && info.Format == spec.Format {
		return NewChunk(pcm), nil
	}

	src, err := audio.NewPCMSource(bytes.NewReader(pcm), info.SampleRate, info.Channels, info.Format)
	if err != nil {
		return nil, err
	}

	return e.convert(src, spec)
}

func (e *Engine) convert(src audio.Source, spec audio.Spec) (*Chunk, error) {
	defer src.Close()

	data, err := audio.Convert(src, spec)
	if err != nil {
		return nil, err
	}
	e.log.Tracef("converted %d Hz %d ch source to %s", src.SampleRate(), src.Channels(), spec)

	return NewChunk(data), nil
}

// LoadChunk decodes r with the registered decoder for kind ("wav", "aiff",
// "mp3", "ogg"). An empty kind is detected from the leading bytes.
func (e *Engine) LoadChunk(r io.Reader, kind string) (*Chunk, error) {
	spec, err := e.openSpec()
	if err != nil {
		return nil, err
	}

	if kind == "" {
		br := bufio.NewReader(r)
		head, _ := br.Peek(formats.HeaderSize)
		kind = formats.Detect(head, "")
		r = br
	}

	switch kind {
	case "":
		return nil, ErrUnrecognizedSound
	case formats.WAV:
		return e.LoadWAV(r)
	}

	src, err := e.registry.Decode(kind, r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind, err)
	}

	return e.convert(src, spec)
}

// LoadChunkFile loads path, picking the decoder from its contents or, failing
// that, its extension.
func (e *Engine) LoadChunkFile(path string) (*Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(formats.HeaderSize)

	c, err := e.LoadChunk(br, formats.Detect(head, path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return c, nil
}

// FreeChunk detaches c from every channel. While a channel playing c is
// fading out it blocks until the fade completes, so the engine must be
// mixing for the call to return.
func (e *Engine) FreeChunk(c *Chunk) {
	if c == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for e.fadingOut(c) {
		e.fade.Wait()
	}

	for i, ch := range e.channels {
		if ch.chunk != c {
			continue
		}
		if ch.playing > 0 {
			e.haltLocked(i)
		}
		ch.chunk = nil
	}
	c.Data = nil
}

func (e *Engine) fadingOut(c *Chunk) bool {
	for _, ch := range e.channels {
		if ch.chunk == c && ch.playing > 0 && !ch.paused && ch.fading == FadingOut {
			return true
		}
	}

	return false
}
