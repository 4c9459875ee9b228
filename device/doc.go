// SPDX-License-Identifier: EPL-2.0

// Package device drives an audio output stream from a goroutine.
//
// A Device negotiates a spec with a Sink, then loops: obtain a buffer,
// fill it with silence, run the callback under the device lock unless
// paused, submit the buffer and wait for the sink. Sinks that return no
// buffer get a private one and the loop sleeps one buffer period instead.
//
// Three sinks are provided: OtoSink for the platform audio API, WAVSink
// for capture into a WAV stream and NullSink for headless operation.
package device
