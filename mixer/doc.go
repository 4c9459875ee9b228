// SPDX-License-Identifier: EPL-2.0

// Package mixer is a multi-channel sample mixer with a single streamed
// music slot.
//
// An Engine owns a pool of channels. Each channel plays a Chunk, a block
// of samples already converted to the output format, with its own volume,
// loop count, expiry, fades and effect chain. Once per device period the
// engine renders the music slot and then every channel into the output
// buffer, runs the post effects, and hands the result to the device.
//
// Built-in effects cover stereo panning, distance attenuation, positional
// placement on 2, 4 and 6 speaker layouts, and channel reversal. Custom
// effects register through RegisterEffect.
//
// A headless engine opens no device; the caller drives it through Mix,
// which is how offline rendering and tests work.
package mixer
