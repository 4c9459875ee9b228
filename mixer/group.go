// SPDX-License-Identifier: EPL-2.0

package mixer

import "fmt"

// GroupChannel tags ch. Tag -1 removes it from any group.
func (e *Engine) GroupChannel(ch, tag int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.groupLocked(ch, tag)
}

func (e *Engine) groupLocked(ch, tag int) error {
	if !e.valid(ch) {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}
	e.channels[ch].tag = tag

	return nil
}

// GroupChannels tags the channels from..to inclusive.
func (e *Engine) GroupChannels(from, to, tag int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ch := range []int{from, to} {
		if !e.valid(ch) {
			return fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
		}
	}
	for ch := from; ch <= to; ch++ {
		e.channels[ch].tag = tag
	}

	return nil
}

func matches(c *channel, tag int) bool { return tag == -1 || c.tag == tag }

// GroupAvailable returns the first idle channel in the group, or -1.
func (e *Engine) GroupAvailable(tag int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, c := range e.channels {
		if matches(c, tag) && c.playing <= 0 {
			return i
		}
	}

	return -1
}

func (e *Engine) GroupCount(tag int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, c := range e.channels {
		if matches(c, tag) {
			n++
		}
	}

	return n
}

// GroupOldest returns the playing channel of the group that started first,
// or -1.
func (e *Engine) GroupOldest(tag int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	found := -1
	oldest := e.clock.Ticks()
	for i, c := range e.channels {
		if matches(c, tag) && c.playing > 0 && c.start <= oldest {
			oldest = c.start
			found = i
		}
	}

	return found
}

// GroupNewer returns the playing channel of the group that started last,
// or -1.
func (e *Engine) GroupNewer(tag int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	found := -1
	var newest int64
	for i, c := range e.channels {
		if matches(c, tag) && c.playing > 0 && c.start >= newest {
			newest = c.start
			found = i
		}
	}

	return found
}
