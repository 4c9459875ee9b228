// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"os"
	"sync"

	"github.com/decred/slog"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/formats"
)

const (
	// DefaultChannels is the pool size after OpenAudio.
	DefaultChannels = 8
	MaxVolume       = audio.MaxVolume

	// Post addresses the effect chain applied to the final mix.
	Post = -2

	// EffectsMaxSpeedEnv turns on the 8-bit lookup tables when set.
	EffectsMaxSpeedEnv = "MIX_EFFECTSMAXSPEED"
)

// Engine owns all mixer state: the channel pool, effect chains, the music
// slot and the device feeding them. Every exported method takes the audio
// lock; hooks and effect callbacks run with it held and must not call back
// into the Engine.
type Engine struct {
	openMu sync.Mutex // serialises OpenAudio and CloseAudio
	mu     sync.Mutex
	fade   *sync.Cond // signalled after every mix pass and every halt

	clock       Clock
	log         slog.Logger
	sink        device.Sink
	headless    bool
	registry    *audio.Registry
	maxSpeed    bool
	maxSpeedSet bool

	dev       *device.Device
	opened    int
	requested audio.Spec // defaulted request, before sink negotiation
	spec      audio.Spec
	mix       audio.MixFunc
	codec     audio.Codec
	msPerStep int
	tables    bool

	channels []*channel
	reserved int
	post     []effect
	nextID   EffectID
	scratch  []byte

	positions map[int]*position
	reversed  map[int]EffectID
	volTable  *[256][256]int8

	channelDone func(ch int)
	postMix     func(buf []byte)
	musicHook   func(buf []byte)
	musicDone   func()

	music       *Music
	musicActive bool
	musicLoops  int
	musicVolume int
	musicCmd    string
}

func New(opts ...Option) *Engine {
	e := &Engine{
		log:         slog.Disabled,
		musicActive: true,
		musicVolume: MaxVolume,
		positions:   make(map[int]*position),
		reversed:    make(map[int]EffectID),
	}
	e.fade = sync.NewCond(&e.mu)

	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = newWallClock()
	}
	if e.registry == nil {
		e.registry = formats.NewRegistry()
	}
	if e.sink == nil {
		e.sink = device.NullSink{}
	}

	return e
}

// OpenAudio opens the output. A second open with the same format and
// channel count only bumps a reference count; any other spec closes every
// reference first and reopens. chunkSize is the buffer length in frames,
// 0 for the device default.
func (e *Engine) OpenAudio(freq int, format audio.Format, channels, chunkSize int) error {
	e.openMu.Lock()
	defer e.openMu.Unlock()

	desired := audio.Spec{Freq: freq, Format: format, Channels: channels, Samples: chunkSize}
	want := device.Defaults(desired)

	e.mu.Lock()
	if e.opened > 0 {
		if want.Format == e.requested.Format && want.Channels == e.requested.Channels {
			e.opened++
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()
		for e.closeOnce() {
		}
		e.mu.Lock()
	}
	e.mu.Unlock()

	var (
		dev  *device.Device
		spec audio.Spec
		err  error
	)
	if e.headless {
		spec = device.Defaults(desired)
		if err := spec.Validate(); err != nil {
			return err
		}
		spec.Calculate()
	} else {
		dev, err = device.Open(desired, e.mixLocked,
			device.WithSink(e.sink), device.WithLogger(e.log), device.WithLocker(&e.mu))
		if err != nil {
			return fmt.Errorf("opening audio device: %w", err)
		}
		spec = dev.Spec()
	}

	mix, err := audio.MixerFor(spec.Format)
	if err != nil {
		if dev != nil {
			_ = dev.Close()
		}
		return err
	}
	codec, _ := audio.CodecFor(spec.Format)

	e.mu.Lock()
	e.dev = dev
	e.requested = want
	e.spec = spec
	e.mix = mix
	e.codec = codec
	e.msPerStep = max(1, spec.Samples*1000/spec.Freq)
	e.tables = e.maxSpeed
	if !e.maxSpeedSet {
		_, e.tables = os.LookupEnv(EffectsMaxSpeedEnv)
	}
	e.channels = make([]*channel, DefaultChannels)
	for i := range e.channels {
		e.channels[i] = newChannel()
	}
	e.reserved = 0
	e.music = nil
	e.musicVolume = MaxVolume
	e.opened = 1
	e.mu.Unlock()

	if dev != nil {
		dev.Pause(false)
	}

	e.log.Debugf("mixer opened: %s, %d ms per step", spec, e.msPerStep)

	return nil
}

// CloseAudio drops one reference. The last one tears down every channel,
// effect and the music slot, and closes the device.
func (e *Engine) CloseAudio() {
	e.openMu.Lock()
	defer e.openMu.Unlock()

	e.closeOnce()
}

// closeOnce drops a reference and reports whether any remain.
func (e *Engine) closeOnce() bool {
	e.mu.Lock()
	if e.opened == 0 {
		e.mu.Unlock()
		return false
	}
	if e.opened > 1 {
		e.opened--
		e.mu.Unlock()
		return true
	}

	for i := range e.channels {
		e.removeAllEffects(i)
	}
	e.removeAllEffects(Post)
	if e.music != nil {
		e.haltMusicLocked()
	}
	for i := range e.channels {
		e.haltLocked(i)
	}
	e.channels = nil
	e.reserved = 0
	e.opened = 0
	dev := e.dev
	e.dev = nil
	e.fade.Broadcast()
	e.mu.Unlock()

	if dev != nil {
		if err := dev.Close(); err != nil {
			e.log.Errorf("closing audio device: %v", err)
		}
	}
	e.log.Debug("mixer closed")

	return false
}

// QuerySpec reports the open reference count and the negotiated spec.
func (e *Engine) QuerySpec() (int, audio.Spec) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opened, e.spec
}

// Status reports the state of the device, Stopped when headless or closed.
func (e *Engine) Status() device.Status {
	e.mu.Lock()
	dev := e.dev
	e.mu.Unlock()

	if dev == nil {
		return device.Stopped
	}

	return dev.Status()
}

// Mix renders one period into buf, adding to whatever buf already holds.
// It is the device callback; headless engines call it directly.
func (e *Engine) Mix(buf []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return ErrAudioNotOpen
	}
	e.mixLocked(buf)

	return nil
}

func (e *Engine) mixLocked(stream []byte) {
	if e.opened == 0 {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("mix callback panicked: %v", r)
			for i := range stream {
				stream[i] = e.spec.Silence
			}
		}
		e.fade.Broadcast()
	}()

	if e.musicHook != nil {
		e.musicHook(stream)
	} else if e.musicActive {
		e.mixMusic(stream)
	}

	now := e.clock.Ticks()
	for i := range e.channels {
		e.mixChannel(i, stream, now)
	}

	for _, fx := range e.post {
		fx.fn(Post, stream)
	}

	if e.postMix != nil {
		e.postMix(stream)
	}
}

// ChannelFinished installs fn to run whenever a channel stops, naturally or
// by a halt. Pass nil to remove it.
func (e *Engine) ChannelFinished(fn func(ch int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channelDone = fn
}

// SetPostMix installs an observer that sees every finished buffer after
// the post effects.
func (e *Engine) SetPostMix(fn func(buf []byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.postMix = fn
}

// HookMusic replaces the music producer. Pass nil to restore the built-in
// one.
func (e *Engine) HookMusic(fn func(buf []byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.musicHook = fn
}

func (e *Engine) HookMusicFinished(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.musicDone = fn
}
