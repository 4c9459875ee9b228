// SPDX-License-Identifier: EPL-2.0

package device

import (
	"io"
	"sync"
	"time"
)

// bridge turns the device's push model into the pull model of a player
// that reads from an io.Reader. A fixed set of buffers cycles between the
// free list, the device goroutine and the player.
type bridge struct {
	free  chan []byte
	queue chan []byte
	done  chan struct{}
	once  sync.Once

	next    []byte
	reading []byte
	current []byte
}

func newBridge(size, depth int) *bridge {
	b := &bridge{
		free:  make(chan []byte, depth),
		queue: make(chan []byte, depth),
		done:  make(chan struct{}),
	}
	for range depth {
		b.free <- make([]byte, size)
	}

	return b
}

// buffer hands out the next free buffer, or nil once closed.
func (b *bridge) buffer() []byte {
	if b.next == nil {
		b.wait()
	}
	buf := b.next
	b.next = nil

	return buf
}

// wait blocks until a buffer is free or the bridge is closed.
func (b *bridge) wait() {
	if b.next != nil {
		return
	}
	select {
	case buf := <-b.free:
		b.next = buf
	case <-b.done:
	}
}

func (b *bridge) push(buf []byte) error {
	select {
	case <-b.done:
		return ErrSinkClosed
	default:
	}

	select {
	case b.queue <- buf:
		return nil
	case <-b.done:
		return ErrSinkClosed
	}
}

// drain blocks until every queued buffer has been read or timeout passes.
func (b *bridge) drain(timeout time.Duration) {
	if b.next != nil {
		b.free <- b.next
		b.next = nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var held [][]byte
	defer func() {
		for _, buf := range held {
			b.free <- buf
		}
	}()

	for range cap(b.free) {
		select {
		case buf := <-b.free:
			held = append(held, buf)
		case <-b.done:
			return
		case <-deadline.C:
			return
		}
	}
}

func (b *bridge) Read(p []byte) (int, error) {
	if len(b.reading) == 0 {
		select {
		case buf := <-b.queue:
			b.current = buf
			b.reading = buf
		case <-b.done:
			return 0, io.EOF
		}
	}

	n := copy(p, b.reading)
	b.reading = b.reading[n:]
	if len(b.reading) == 0 {
		b.free <- b.current
		b.current = nil
	}

	return n, nil
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.done) })
}
