// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEffect_WorksOnCopy(t *testing.T) {
	e, _ := openStereo(t)

	chunk := NewChunk(stereo16(64, 1000, 1000))
	orig := append([]byte(nil), chunk.Data...)

	_, err := e.RegisterEffect(0, func(_ int, buf []byte) { clear(buf) }, nil)
	require.NoError(t, err)
	_, err = e.PlayChannel(0, chunk, 0)
	require.NoError(t, err)

	buf := render(t, e)
	assert.Equal(t, make([]byte, period), buf)
	assert.Equal(t, orig, chunk.Data)
}

func TestRegisterEffect_Order(t *testing.T) {
	e, _ := openStereo(t)

	var calls []string
	for _, name := range []string{"a", "b", "c"} {
		_, err := e.RegisterEffect(3, func(ch int, _ []byte) {
			assert.Equal(t, 3, ch)
			calls = append(calls, name)
		}, nil)
		require.NoError(t, err)
	}

	_, err := e.PlayChannel(3, NewChunk(stereo16(16, 1, 1)), 0)
	require.NoError(t, err)
	render(t, e)

	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestUnregisterEffect(t *testing.T) {
	e, _ := openStereo(t)

	done := 0
	ran := 0
	id, err := e.RegisterEffect(0, func(int, []byte) { ran++ }, func(ch int) {
		assert.Equal(t, 0, ch)
		done++
	})
	require.NoError(t, err)

	require.NoError(t, e.UnregisterEffect(0, id))
	assert.Equal(t, 1, done)
	assert.ErrorIs(t, e.UnregisterEffect(0, id), ErrEffectNotFound)
	assert.Equal(t, 1, done)

	_, err = e.PlayChannel(0, NewChunk(stereo16(16, 1, 1)), 0)
	require.NoError(t, err)
	render(t, e)
	assert.Zero(t, ran)
}

func TestRegisterEffect_Errors(t *testing.T) {
	e, _ := openStereo(t)

	_, err := e.RegisterEffect(0, nil, nil)
	assert.ErrorIs(t, err, ErrNilEffect)

	_, err = e.RegisterEffect(12, func(int, []byte) {}, nil)
	assert.ErrorIs(t, err, ErrInvalidChannel)

	assert.ErrorIs(t, e.UnregisterEffect(-5, 1), ErrInvalidChannel)
	assert.ErrorIs(t, e.UnregisterAllEffects(12), ErrInvalidChannel)
}

func TestEffects_RemovedWhenChannelStops(t *testing.T) {
	e, _ := openStereo(t)

	var events []string
	e.ChannelFinished(func(int) { events = append(events, "finished") })
	for _, name := range []string{"first", "second"} {
		_, err := e.RegisterEffect(1, func(int, []byte) {}, func(int) { events = append(events, name) })
		require.NoError(t, err)
	}

	_, err := e.PlayChannel(1, NewChunk(stereo16(16, 1, 1)), 0)
	require.NoError(t, err)
	render(t, e)
	render(t, e)

	assert.Equal(t, []string{"finished", "first", "second"}, events)
}

func TestUnregisterAllEffects(t *testing.T) {
	e, _ := openStereo(t)

	var done []int
	for range 3 {
		_, err := e.RegisterEffect(Post, func(int, []byte) {}, func(ch int) { done = append(done, ch) })
		require.NoError(t, err)
	}

	require.NoError(t, e.UnregisterAllEffects(Post))
	assert.Equal(t, []int{Post, Post, Post}, done)

	require.NoError(t, e.UnregisterAllEffects(Post))
	assert.Len(t, done, 3)
}

func TestPostEffect_OutlivesChannels(t *testing.T) {
	e, _ := openStereo(t)

	passes := 0
	_, err := e.RegisterEffect(Post, func(ch int, buf []byte) {
		assert.Equal(t, Post, ch)
		assert.Len(t, buf, period)
		passes++
	}, nil)
	require.NoError(t, err)

	_, err = e.PlayChannel(0, NewChunk(stereo16(16, 1, 1)), 0)
	require.NoError(t, err)
	render(t, e)
	render(t, e)

	assert.Equal(t, 2, passes)
}
