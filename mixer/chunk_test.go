// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/internal/audiotest"
)

// encodeWAV wraps pcm in a RIFF/WAVE container.
func encodeWAV(t *testing.T, rate, channels int, f audio.Format, pcm []byte) []byte {
	t.Helper()

	var out audiotest.SeekBuffer
	w, err := wav.NewWriter(&out, rate, channels, f)
	require.NoError(t, err)
	_, err = w.Write(pcm)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return out.Bytes()
}

func monoWAV(t *testing.T, rate int, samples []int16) []byte {
	t.Helper()

	var out audiotest.SeekBuffer
	require.NoError(t, wav.WriteWAV16(&out, rate, samples))

	return out.Bytes()
}

func TestQuickLoadRAW(t *testing.T) {
	e, _ := openStereo(t)

	mem := stereo16(8, 3, 4)
	c, err := e.QuickLoadRAW(mem)
	require.NoError(t, err)
	assert.Equal(t, mem, c.Data)
	assert.Equal(t, MaxVolume, e.VolumeChunk(c, -1))
}

func TestQuickLoadWAV(t *testing.T) {
	e, _ := openStereo(t)

	pcm := stereo16(32, 100, -100)
	c, err := e.QuickLoadWAV(encodeWAV(t, 22050, 2, audio.S16LSB, pcm))
	require.NoError(t, err)
	assert.Equal(t, pcm, c.Data)
}

func TestQuickLoadWAV_Errors(t *testing.T) {
	e, _ := openStereo(t)

	_, err := e.QuickLoadWAV([]byte("not a wave file at all"))
	assert.ErrorIs(t, err, ErrUnrecognizedSound)

	noData := append([]byte("RIFF\x1c\x00\x00\x00WAVEfmt \x10\x00\x00\x00"), make([]byte, 16)...)
	_, err = e.QuickLoadWAV(noData)
	assert.ErrorIs(t, err, ErrNoDataChunk)

	_, err = e.QuickLoadWAV([]byte("RIFF"))
	assert.ErrorIs(t, err, ErrUnrecognizedSound)
}

func TestLoadWAV_SameSpec(t *testing.T) {
	e, _ := openStereo(t)

	pcm := stereo16(64, 1234, -1234)
	c, err := e.LoadWAV(bytes.NewReader(encodeWAV(t, 22050, 2, audio.S16LSB, pcm)))
	require.NoError(t, err)
	assert.Equal(t, pcm, c.Data)
}

func TestLoadWAV_Converts(t *testing.T) {
	e, _ := openStereo(t)

	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = 1000
	}

	c, err := e.LoadWAV(bytes.NewReader(monoWAV(t, 22050, samples)))
	require.NoError(t, err)
	require.Len(t, c.Data, 100*4)
	for i := range 200 {
		require.InDelta(t, 1000, sample16(c.Data, i), 2, "sample %d", i)
	}
}

func TestLoadWAV_Errors(t *testing.T) {
	e, _ := openStereo(t)

	_, err := e.LoadWAV(bytes.NewReader([]byte("OggS and other things")))
	assert.ErrorIs(t, err, ErrUnrecognizedSound)

	_, err = e.LoadWAV(bytes.NewReader([]byte("RIFF\x04\x00\x00\x00WAVE")))
	assert.Error(t, err)
}

func TestLoadChunk_Detects(t *testing.T) {
	e, _ := openStereo(t)

	pcm := stereo16(16, 50, 60)
	c, err := e.LoadChunk(bytes.NewReader(encodeWAV(t, 22050, 2, audio.S16LSB, pcm)), "")
	require.NoError(t, err)
	assert.Equal(t, pcm, c.Data)

	_, err = e.LoadChunk(bytes.NewReader([]byte("plain text, no magic")), "")
	assert.ErrorIs(t, err, ErrUnrecognizedSound)
}

func TestLoadChunk_UnknownDecoder(t *testing.T) {
	e, _ := openStereo(t, WithRegistry(audio.NewRegistry()))

	_, err := e.LoadChunk(bytes.NewReader([]byte("ID3")), "mp3")
	assert.ErrorIs(t, err, audio.ErrUnknownDecoder)
}

func TestLoadChunkFile(t *testing.T) {
	e, _ := openStereo(t)

	pcm := stereo16(16, 7, 8)
	path := filepath.Join(t.TempDir(), "blip.wav")
	require.NoError(t, os.WriteFile(path, encodeWAV(t, 22050, 2, audio.S16LSB, pcm), 0o600))

	c, err := e.LoadChunkFile(path)
	require.NoError(t, err)
	assert.Equal(t, pcm, c.Data)

	_, err = e.LoadChunkFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFreeChunk_HaltsChannels(t *testing.T) {
	e, _ := openStereo(t)

	calls := 0
	e.ChannelFinished(func(int) { calls++ })

	c := NewChunk(stereo16(64, 1, 1))
	for _, ch := range []int{0, 4} {
		_, err := e.PlayChannel(ch, c, -1)
		require.NoError(t, err)
	}

	e.FreeChunk(c)
	assert.Equal(t, 2, calls)
	assert.Nil(t, c.Data)
	assert.Nil(t, e.GetChunk(0))
	assert.Equal(t, 0, e.Playing(-1))

	e.FreeChunk(nil)
}

func TestFreeChunk_WaitsForFadeOut(t *testing.T) {
	e, clock := openStereo(t)

	c := NewChunk(stereo16(64, 1, 1))
	_, err := e.PlayChannel(0, c, -1)
	require.NoError(t, err)
	require.Equal(t, 1, e.FadeOutChannel(0, 100))

	freed := make(chan struct{})
	go func() {
		e.FreeChunk(c)
		close(freed)
	}()

	select {
	case <-freed:
		t.Fatal("FreeChunk returned before the fade finished")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(100)
	deadline := time.After(2 * time.Second)
	for {
		require.NoError(t, e.Mix(make([]byte, period)))
		select {
		case <-freed:
			assert.Nil(t, c.Data)
			assert.Equal(t, 0, e.Playing(0))
			return
		case <-deadline:
			t.Fatal("FreeChunk never returned")
		case <-time.After(time.Millisecond):
		}
	}
}

type decoderFunc func(r io.Reader) (audio.Source, error)

func (f decoderFunc) Decode(r io.Reader) (audio.Source, error) { return f(r) }

func TestLoadChunk_ResamplesDecodedSource(t *testing.T) {
	reg := audio.NewRegistry()
	reg.Register("sine", decoderFunc(func(io.Reader) (audio.Source, error) {
		return audiotest.NewSineSource(44100, 1, 4410, 440, 0.5), nil
	}))
	e, _ := openStereo(t, WithRegistry(reg))

	c, err := e.LoadChunk(bytes.NewReader(nil), "sine")
	require.NoError(t, err)

	frames := len(c.Data) / 4
	assert.InDelta(t, 2205, frames, 4)

	peak := int16(0)
	for i := range frames {
		l, r := sample16(c.Data, 2*i), sample16(c.Data, 2*i+1)
		require.Equal(t, l, r, "frame %d", i)
		peak = max(peak, l)
	}
	assert.InDelta(t, 16384, peak, 400)
}
