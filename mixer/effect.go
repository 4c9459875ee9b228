// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"slices"
)

// EffectFunc transforms buf in place. For a channel, buf is a private copy
// of the chunk data about to be mixed; for Post it is the mixed output.
type EffectFunc func(ch int, buf []byte)

// EffectDoneFunc runs once when an effect leaves its chain, whether by
// unregistration or because its channel stopped.
type EffectDoneFunc func(ch int)

// EffectID identifies a registered effect.
type EffectID uint64

type effect struct {
	id   EffectID
	fn   EffectFunc
	done EffectDoneFunc
}

func (e *Engine) chain(ch int) (*[]effect, error) {
	if ch == Post {
		return &e.post, nil
	}
	if !e.valid(ch) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}

	return &e.channels[ch].effects, nil
}

// RegisterEffect appends fn to the chain of ch, or of the final mix when
// ch is Post. Effects run in registration order.
func (e *Engine) RegisterEffect(ch int, fn EffectFunc, done EffectDoneFunc) (EffectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.registerLocked(ch, fn, done)
}

func (e *Engine) registerLocked(ch int, fn EffectFunc, done EffectDoneFunc) (EffectID, error) {
	if fn == nil {
		return 0, ErrNilEffect
	}
	chain, err := e.chain(ch)
	if err != nil {
		return 0, err
	}

	e.nextID++
	*chain = append(*chain, effect{id: e.nextID, fn: fn, done: done})

	return e.nextID, nil
}

// UnregisterEffect removes id from the chain of ch and runs its done
// function.
func (e *Engine) UnregisterEffect(ch int, id EffectID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.unregisterLocked(ch, id)
}

func (e *Engine) unregisterLocked(ch int, id EffectID) error {
	chain, err := e.chain(ch)
	if err != nil {
		return err
	}

	for i, fx := range *chain {
		if fx.id != id {
			continue
		}
		*chain = slices.Delete(*chain, i, i+1)
		if fx.done != nil {
			fx.done(ch)
		}
		return nil
	}

	return fmt.Errorf("%w: %d on channel %d", ErrEffectNotFound, id, ch)
}

// UnregisterAllEffects empties the chain of ch, running every done
// function in order.
func (e *Engine) UnregisterAllEffects(ch int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.chain(ch); err != nil {
		return err
	}
	e.removeAllEffects(ch)

	return nil
}

func (e *Engine) removeAllEffects(ch int) {
	chain, err := e.chain(ch)
	if err != nil {
		return
	}

	fxs := *chain
	*chain = nil
	for _, fx := range fxs {
		if fx.done != nil {
			fx.done(ch)
		}
	}
}

// applyEffects runs chain over a copy of data and returns the copy, or data
// itself when the chain is empty.
func (e *Engine) applyEffects(ch int, data []byte, chain []effect) []byte {
	if len(chain) == 0 {
		return data
	}

	if cap(e.scratch) < len(data) {
		e.scratch = make([]byte, len(data))
	}
	buf := e.scratch[:len(data)]
	copy(buf, data)

	for _, fx := range chain {
		fx.fn(ch, buf)
	}

	return buf
}
