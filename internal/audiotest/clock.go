// SPDX-License-Identifier: EPL-2.0

package audiotest

import "sync/atomic"

// ManualClock is a millisecond tick source that only moves when told to.
type ManualClock struct {
	now atomic.Int64
}

func NewManualClock(start int64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)

	return c
}

func (c *ManualClock) Ticks() int64 { return c.now.Load() }

func (c *ManualClock) Advance(ms int64) { c.now.Add(ms) }

func (c *ManualClock) Set(ms int64) { c.now.Store(ms) }
