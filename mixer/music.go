// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audmix/formats"
)

type MusicType int

const (
	MusicNone MusicType = iota
	MusicCMD
	MusicWAV
	MusicMOD
	MusicMID
	MusicOGG
	MusicMP3
	MusicMP3MAD
)

func (t MusicType) String() string {
	switch t {
	case MusicNone:
		return "none"
	case MusicCMD:
		return "cmd"
	case MusicWAV:
		return "wav"
	case MusicMOD:
		return "mod"
	case MusicMID:
		return "mid"
	case MusicOGG:
		return "ogg"
	case MusicMP3:
		return "mp3"
	case MusicMP3MAD:
		return "mp3-mad"
	}

	return fmt.Sprintf("music(%d)", int(t))
}

// Music is a streamed track for the single music slot.
type Music struct {
	typ    MusicType
	stream *waveStream
	closer io.Closer

	fading    Fading
	fadeStep  int
	fadeSteps int
}

// LoadMusic opens path for streaming. Only WAV and AIFF files are
// supported.
func (e *Engine) LoadMusic(path string) (*Music, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	m, err := e.loadMusic(f, path)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("loading music %s: %w", path, err)
	}
	m.closer = f

	return m, nil
}

// LoadMusicReader streams from rs, which must stay open until FreeMusic.
func (e *Engine) LoadMusicReader(rs io.ReadSeeker) (*Music, error) {
	return e.loadMusic(rs, "")
}

func (e *Engine) loadMusic(rs io.ReadSeeker, name string) (*Music, error) {
	spec, err := e.openSpec()
	if err != nil {
		return nil, err
	}

	head := make([]byte, formats.HeaderSize)
	n, err := io.ReadFull(rs, head)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("reading music header: %w", err)
	}
	head = head[:n]

	kind := formats.Detect(head, name)
	if bytes.HasPrefix(head, []byte("FORM")) {
		kind = formats.AIFF
	}
	if kind != formats.WAV && kind != formats.AIFF {
		return nil, ErrUnrecognizedMusic
	}

	stream := newWaveStream(rs, kind, spec, e.registry)
	if err := stream.start(); err != nil {
		return nil, fmt.Errorf("unable to load %s stream: %w", kind, err)
	}
	stream.stop()

	return &Music{typ: MusicWAV, stream: stream}, nil
}

// FreeMusic stops m if it is playing, waiting for a fade out to finish
// first, and closes it.
func (e *Engine) FreeMusic(m *Music) error {
	if m == nil {
		return nil
	}

	e.mu.Lock()
	if e.music == m {
		for e.music == m && m.fading == FadingOut {
			e.fade.Wait()
		}
		if e.music == m {
			e.haltMusicLocked()
		}
	}
	e.mu.Unlock()

	if m.stream != nil {
		m.stream.stop()
	}
	if m.closer != nil {
		return m.closer.Close()
	}

	return nil
}

// MusicType reports the type of m, or of the current music when m is nil.
func (e *Engine) MusicType(m *Music) MusicType {
	if m != nil {
		return m.typ
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.music != nil {
		return e.music.typ
	}

	return MusicNone
}

func (e *Engine) PlayMusic(m *Music, loops int) error {
	return e.FadeInMusicPos(m, loops, 0, 0)
}

func (e *Engine) FadeInMusic(m *Music, loops, ms int) error {
	return e.FadeInMusicPos(m, loops, ms, 0)
}

// FadeInMusicPos starts m, replacing the current music once any fade out
// in progress has finished. loops counts total plays; 0 and 1 both play
// once and -1 repeats forever. Seeking is not supported, so pos must be 0.
func (e *Engine) FadeInMusicPos(m *Music, loops, ms int, pos float64) error {
	if m == nil {
		return ErrNilMusic
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return ErrAudioNotOpen
	}

	m.fading = NoFading
	if ms > 0 {
		m.fading = FadingIn
	}
	m.fadeStep = 0
	m.fadeSteps = ms / e.msPerStep

	for e.music != nil && e.music.fading == FadingOut {
		e.fade.Wait()
	}

	e.musicActive = true
	e.musicLoops = loops

	return e.playMusicLocked(m, pos)
}

func (e *Engine) playMusicLocked(m *Music, pos float64) error {
	if e.music != nil {
		e.haltMusicLocked()
	}
	e.music = m

	var err error
	switch m.typ {
	case MusicWAV:
		if m.fading == FadingIn {
			m.stream.volume = 0
		} else {
			m.stream.volume = e.musicVolume
		}
		err = m.stream.start()
	default:
		err = fmt.Errorf("%w: can't play %s music", ErrNotSupported, m.typ)
	}

	if err == nil && pos > 0 {
		e.log.Warnf("music position %.2f: %v", pos, ErrNotSupported)
		m.stream.stop()
		err = fmt.Errorf("%w: position", ErrNotSupported)
	}
	if err != nil {
		e.music = nil
		return err
	}

	return nil
}

func (e *Engine) haltMusicLocked() {
	m := e.music
	if m.stream != nil {
		m.stream.stop()
	}
	m.fading = NoFading
	e.music = nil
	e.fade.Broadcast()
}

func (e *Engine) HaltMusic() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.music != nil {
		e.haltMusicLocked()
	}
}

// VolumeMusic sets the music volume and returns the previous one. A
// negative v only queries.
func (e *Engine) VolumeMusic(v int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.musicVolume
	if v < 0 {
		return prev
	}
	e.musicVolume = min(v, MaxVolume)
	if e.music != nil && e.music.stream != nil {
		e.music.stream.volume = e.musicVolume
	}

	return prev
}

// FadeOutMusic ramps the music down over ms and halts it. A fade in
// progress is rescaled to the new length. It reports whether music was
// playing; ms <= 0 halts at once.
func (e *Engine) FadeOutMusic(ms int) bool {
	if ms <= 0 {
		e.HaltMusic()
		return true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.music
	if m == nil {
		return false
	}

	steps := (ms + e.msPerStep - 1) / e.msPerStep
	switch {
	case m.fading == NoFading:
		m.fadeStep = 0
	case m.fadeSteps == 0:
		m.fadeStep = 0
	default:
		step := m.fadeStep
		if m.fading == FadingIn {
			step = m.fadeSteps - m.fadeStep + 1
		}
		m.fadeStep = step * steps / m.fadeSteps
	}
	m.fading = FadingOut
	m.fadeSteps = steps

	return true
}

func (e *Engine) FadingMusic() Fading {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.music == nil {
		return NoFading
	}

	return e.music.fading
}

func (e *Engine) PauseMusic() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.musicActive = false
}

func (e *Engine) ResumeMusic() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.musicActive = true
}

func (e *Engine) PausedMusic() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return !e.musicActive
}

// PlayingMusic reports whether the current music still has data to play.
func (e *Engine) PlayingMusic() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.music != nil && e.musicPlaying()
}

func (e *Engine) musicPlaying() bool {
	return e.music.typ == MusicWAV && e.music.stream.active
}

// SetMusicPosition always fails: streamed WAV music cannot seek.
func (e *Engine) SetMusicPosition(pos float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.music == nil {
		return ErrMusicNotPlaying
	}
	e.log.Warnf("music position %.2f: %v", pos, ErrNotSupported)

	return fmt.Errorf("%w: position", ErrNotSupported)
}

func (e *Engine) RewindMusic() error {
	return e.SetMusicPosition(0)
}

// SetMusicCMD halts the music and records cmd. External players are not
// supported, so the command is never run.
func (e *Engine) SetMusicCMD(cmd string) error {
	e.HaltMusic()

	e.mu.Lock()
	e.musicCmd = cmd
	e.mu.Unlock()

	return fmt.Errorf("%w: external music command", ErrNotSupported)
}

func (e *Engine) SetSynchroValue(int) error {
	return fmt.Errorf("%w: synchro value", ErrNotSupported)
}

func (e *Engine) SynchroValue() (int, error) {
	return -1, fmt.Errorf("%w: synchro value", ErrNotSupported)
}

// mixMusic is the built-in music producer: one fade step per period, then
// loop or halt at the end of the stream, then mix.
func (e *Engine) mixMusic(stream []byte) {
	m := e.music
	if m == nil {
		return
	}

	if m.fading != NoFading {
		if m.fadeStep < m.fadeSteps {
			m.fadeStep++
			v := e.musicVolume * m.fadeStep / m.fadeSteps
			if m.fading == FadingOut {
				v = e.musicVolume * (m.fadeSteps - m.fadeStep) / m.fadeSteps
			}
			m.stream.volume = v
		} else {
			if m.fading == FadingOut {
				e.haltMusicLocked()
				e.musicFinished()
				return
			}
			m.fading = NoFading
			m.stream.volume = e.musicVolume
		}
	}

	if !e.musicPlaying() {
		if e.musicLoops != 0 {
			e.musicLoops--
		}
		if e.musicLoops == 0 {
			e.haltMusicLocked()
			e.musicFinished()
			return
		}
		fading, volume := m.fading, m.stream.volume
		if err := e.playMusicLocked(m, 0); err != nil {
			e.log.Errorf("restarting music: %v", err)
			e.musicFinished()
			return
		}
		m.fading = fading
		m.stream.volume = volume
	}

	if err := m.stream.playSome(stream, e.mix); err != nil {
		e.log.Errorf("music stream: %v", err)
	}
}

func (e *Engine) musicFinished() {
	if e.musicDone != nil {
		e.musicDone()
	}
}
