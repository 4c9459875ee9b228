// SPDX-License-Identifier: EPL-2.0

package mixer

import "fmt"

type Fading int

const (
	NoFading Fading = iota
	FadingOut
	FadingIn
)

func (f Fading) String() string {
	switch f {
	case NoFading:
		return "none"
	case FadingOut:
		return "out"
	case FadingIn:
		return "in"
	}

	return fmt.Sprintf("fading(%d)", int(f))
}

type channel struct {
	chunk   *Chunk
	pos     int
	playing int
	// looping counts the repeats still to play; negative repeats forever.
	looping int
	volume  int
	tag     int
	start   int64
	expire  int64

	paused   bool
	pausedAt int64

	fading     Fading
	fadeVolume int
	fadeLength int64
	fadeStart  int64

	effects []effect
}

func newChannel() *channel {
	return &channel{volume: MaxVolume, fadeVolume: MaxVolume, tag: -1}
}

func (c *channel) active() bool { return c.playing > 0 || c.looping > 0 }

// valid reports whether ch names a channel of the pool.
func (e *Engine) valid(ch int) bool { return ch >= 0 && ch < len(e.channels) }

// AllocateChannels resizes the pool and returns its new size. A negative n
// only queries. Channels dropped by a shrink lose their effects and are
// halted first.
func (e *Engine) AllocateChannels(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n < 0 || n == len(e.channels) {
		return len(e.channels)
	}

	for i := n; i < len(e.channels); i++ {
		e.removeAllEffects(i)
		e.haltLocked(i)
	}

	if n < len(e.channels) {
		clear(e.channels[n:])
		e.channels = e.channels[:n]
	} else {
		for len(e.channels) < n {
			e.channels = append(e.channels, newChannel())
		}
	}
	e.reserved = min(e.reserved, n)

	return n
}

// ReserveChannels keeps the first n channels out of automatic selection.
func (e *Engine) ReserveChannels(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reserved = min(max(n, 0), len(e.channels))

	return e.reserved
}

// PlayChannel starts chunk on ch, or on the first free unreserved channel
// when ch is -1, and returns the channel used. loops is the number of
// repeats after the first pass; -1 loops forever.
func (e *Engine) PlayChannel(ch int, chunk *Chunk, loops int) (int, error) {
	return e.PlayChannelTimed(ch, chunk, loops, -1)
}

// PlayChannelTimed is PlayChannel with playback cut after ticks ms when
// ticks > 0.
func (e *Engine) PlayChannelTimed(ch int, chunk *Chunk, loops, ticks int) (int, error) {
	return e.start(ch, chunk, loops, ticks, 0)
}

func (e *Engine) FadeInChannel(ch int, chunk *Chunk, loops, ms int) (int, error) {
	return e.FadeInChannelTimed(ch, chunk, loops, ms, -1)
}

// FadeInChannelTimed ramps the channel volume from 0 up to its current
// value over ms.
func (e *Engine) FadeInChannelTimed(ch int, chunk *Chunk, loops, ms, ticks int) (int, error) {
	return e.start(ch, chunk, loops, ticks, ms)
}

func (e *Engine) start(ch int, chunk *Chunk, loops, ticks, fadeMs int) (int, error) {
	if chunk == nil {
		return -1, ErrNilChunk
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return -1, ErrAudioNotOpen
	}

	// Chunks are played in whole frames only.
	frame := e.spec.FrameSize()
	if rem := len(chunk.Data) % frame; rem != 0 {
		chunk.Data = chunk.Data[:len(chunk.Data)-rem]
	}
	if len(chunk.Data) == 0 {
		return -1, ErrBadFrame
	}

	if ch == -1 {
		ch = e.freeChannel()
		if ch < 0 {
			e.log.Warnf("play: %v", ErrNoFreeChannel)
			return -1, ErrNoFreeChannel
		}
	}
	if !e.valid(ch) {
		return -1, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}

	c := e.channels[ch]
	if c.active() {
		e.restoreFade(c)
		e.finished(ch)
	}

	now := e.clock.Ticks()
	c.chunk = chunk
	c.pos = 0
	c.playing = len(chunk.Data)
	c.looping = loops
	c.paused = false
	c.fading = NoFading
	c.start = now
	c.expire = 0
	if ticks > 0 {
		c.expire = now + int64(ticks)
	}

	if fadeMs > 0 {
		c.fading = FadingIn
		c.fadeVolume = c.volume
		c.volume = 0
		c.fadeLength = int64(fadeMs)
		c.fadeStart = now
	}

	e.log.Tracef("channel %d: playing %d bytes, %d loops", ch, c.playing, loops)

	return ch, nil
}

func (e *Engine) freeChannel() int {
	for i := e.reserved; i < len(e.channels); i++ {
		if e.channels[i].playing <= 0 {
			return i
		}
	}

	return -1
}

// finished runs the end-of-playback teardown: the finish hook, then the
// channel's effect chain.
func (e *Engine) finished(ch int) {
	if e.channelDone != nil {
		e.channelDone(ch)
	}
	e.removeAllEffects(ch)
}

func (e *Engine) restoreFade(c *channel) {
	if c.fading != NoFading {
		c.volume = c.fadeVolume
		c.fading = NoFading
	}
}

// Volume sets the volume of ch and returns the previous one. A negative v
// only queries; ch -1 applies to every channel and returns the average.
func (e *Engine) Volume(ch, v int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		if len(e.channels) == 0 {
			return 0
		}
		sum := 0
		for i := range e.channels {
			sum += e.volumeLocked(i, v)
		}
		return sum / len(e.channels)
	}
	if !e.valid(ch) {
		return 0
	}

	return e.volumeLocked(ch, v)
}

func (e *Engine) volumeLocked(ch, v int) int {
	c := e.channels[ch]
	prev := c.volume
	if v >= 0 {
		c.volume = min(v, MaxVolume)
	}

	return prev
}

// HaltChannel stops ch at once, or every channel when ch is -1.
func (e *Engine) HaltChannel(ch int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch == -1 {
		for i := range e.channels {
			e.haltLocked(i)
		}
		return nil
	}
	if !e.valid(ch) {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}
	e.haltLocked(ch)

	return nil
}

func (e *Engine) haltLocked(ch int) {
	c := e.channels[ch]
	if c.playing > 0 {
		e.finished(ch)
	}
	c.playing = 0
	c.looping = 0
	c.expire = 0
	c.paused = false
	e.restoreFade(c)
	e.fade.Broadcast()
}

// HaltGroup halts every channel tagged tag.
func (e *Engine) HaltGroup(tag int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, c := range e.channels {
		if c.tag == tag {
			e.haltLocked(i)
		}
	}
}

// ExpireChannel stops ch after ticks ms; ticks <= 0 cancels a pending
// expiry. It returns the number of channels changed.
func (e *Engine) ExpireChannel(ch, ticks int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var expire int64
	if ticks > 0 {
		expire = e.clock.Ticks() + int64(ticks)
	}

	if ch == -1 {
		for _, c := range e.channels {
			c.expire = expire
		}
		return len(e.channels)
	}
	if !e.valid(ch) {
		return 0
	}
	e.channels[ch].expire = expire

	return 1
}

// FadeOutChannel ramps ch, or every channel for -1, down to silence over ms
// and halts it. A fade already running is rescaled to the new length from
// the volume it has reached. ms <= 0 halts at once. It returns the number
// of channels affected.
func (e *Engine) FadeOutChannel(ch, ms int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return 0
	}
	if ch == -1 {
		n := 0
		for i := range e.channels {
			n += e.fadeOutLocked(i, ms)
		}
		return n
	}
	if !e.valid(ch) {
		return 0
	}

	return e.fadeOutLocked(ch, ms)
}

func (e *Engine) fadeOutLocked(ch, ms int) int {
	c := e.channels[ch]
	if c.playing <= 0 {
		return 0
	}
	if ms <= 0 {
		e.haltLocked(ch)
		return 1
	}
	if c.fading == NoFading && c.volume == 0 {
		return 0
	}

	now := e.clock.Ticks()
	length := int64(ms)

	var elapsed int64
	switch c.fading {
	case NoFading:
		c.fadeVolume = c.volume
	case FadingOut:
		if c.fadeLength > 0 {
			elapsed = min(now-c.fadeStart, c.fadeLength) * length / c.fadeLength
		} else {
			elapsed = length
		}
	case FadingIn:
		if c.fadeLength > 0 {
			elapsed = (c.fadeLength - min(now-c.fadeStart, c.fadeLength)) * length / c.fadeLength
		}
	}

	c.fading = FadingOut
	c.fadeLength = length
	c.fadeStart = now - elapsed

	return 1
}

// FadeOutGroup fades every channel tagged tag.
func (e *Engine) FadeOutGroup(tag, ms int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return 0
	}
	n := 0
	for i, c := range e.channels {
		if c.tag == tag {
			n += e.fadeOutLocked(i, ms)
		}
	}

	return n
}

func (e *Engine) FadingChannel(ch int) Fading {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.valid(ch) {
		return NoFading
	}

	return e.channels[ch].fading
}

// Pause freezes ch, or every channel for -1. Idle channels are left alone.
func (e *Engine) Pause(ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Ticks()
	e.each(ch, func(c *channel) {
		if c.playing > 0 && !c.paused {
			c.paused = true
			c.pausedAt = now
		}
	})
}

// Resume unfreezes ch, or every channel for -1. Pending expiry and fades are
// pushed back by the time spent paused.
func (e *Engine) Resume(ch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Ticks()
	e.each(ch, func(c *channel) {
		if c.playing <= 0 || !c.paused {
			return
		}
		d := now - c.pausedAt
		if c.expire > 0 {
			c.expire += d
		}
		if c.fading != NoFading {
			c.fadeStart += d
		}
		c.paused = false
	})
}

func (e *Engine) each(ch int, fn func(*channel)) {
	if ch == -1 {
		for _, c := range e.channels {
			fn(c)
		}
		return
	}
	if e.valid(ch) {
		fn(e.channels[ch])
	}
}

// Paused reports 1 if ch is paused, or the number of paused channels for -1.
func (e *Engine) Paused(ch int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	e.each(ch, func(c *channel) {
		if c.paused {
			n++
		}
	})

	return n
}

// Playing reports 1 if ch is playing, or the number of playing channels
// for -1.
func (e *Engine) Playing(ch int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	e.each(ch, func(c *channel) {
		if c.active() {
			n++
		}
	})

	return n
}

// GetChunk returns the chunk last assigned to ch.
func (e *Engine) GetChunk(ch int) *Chunk {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.valid(ch) {
		return nil
	}

	return e.channels[ch].chunk
}

// mixChannel advances one channel by one period: expiry, then the fade
// ramp, then mixing with loop wraparound.
func (e *Engine) mixChannel(ch int, stream []byte, now int64) {
	c := e.channels[ch]
	if c.paused {
		return
	}

	if c.expire > 0 && c.expire < now {
		c.expire = 0
		if c.playing > 0 {
			c.playing = 0
			c.looping = 0
			e.restoreFade(c)
			e.finished(ch)
		}
		return
	}

	if c.fading != NoFading && c.playing > 0 {
		ticks := now - c.fadeStart
		switch {
		case ticks >= c.fadeLength && c.fading == FadingOut:
			c.playing = 0
			c.looping = 0
			c.expire = 0
			e.restoreFade(c)
			e.finished(ch)
		case ticks >= c.fadeLength:
			e.restoreFade(c)
		case c.fading == FadingOut:
			c.volume = int(int64(c.fadeVolume) * (c.fadeLength - ticks) / c.fadeLength)
		default:
			c.volume = int(int64(c.fadeVolume) * ticks / c.fadeLength)
		}
	}

	index := 0
	for c.playing > 0 && index < len(stream) {
		n := min(c.playing, len(stream)-index)
		volume := c.volume * c.chunk.volume / MaxVolume

		src := e.applyEffects(ch, c.chunk.Data[c.pos:c.pos+n], c.effects)
		e.mix(stream[index:index+n], src, volume)

		c.pos += n
		c.playing -= n
		index += n

		if c.playing > 0 {
			continue
		}
		if c.looping != 0 {
			if c.looping > 0 {
				c.looping--
			}
			c.pos = 0
			c.playing = len(c.chunk.Data)
			continue
		}
		c.expire = 0
		e.restoreFade(c)
		e.finished(ch)
	}
}
