// SPDX-License-Identifier: EPL-2.0

package mixer

import "time"

// Clock supplies millisecond ticks for fades and expiry.
type Clock interface {
	Ticks() int64
}

type wallClock struct {
	start time.Time
}

func newWallClock() wallClock { return wallClock{start: time.Now()} }

func (c wallClock) Ticks() int64 { return time.Since(c.start).Milliseconds() }
