// SPDX-License-Identifier: EPL-2.0

// Package config loads mixer settings from INI files.
//
// A file only needs the keys it changes; everything else comes from the
// built-in defaults:
//
//	[audio]
//	frequency  = 22050
//	format     = S16SYS
//	channels   = 2
//	chunk_size = 1024
//
//	[mixer]
//	channels          = 8
//	reserved          = 0
//	effects_max_speed = false
//
//	[device]
//	sink      = oto
//	output    =
//	buffer_ms = 0
//
//	[log]
//	level = info
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/decred/slog"
	"gopkg.in/ini.v1"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/mixer"
)

// Sink names accepted by [device] sink.
const (
	SinkNull = "null"
	SinkOto  = "oto"
	SinkWAV  = "wav"
)

const defaultConfig = `
[audio]
frequency  = 22050
format     = S16SYS
channels   = 2
chunk_size = 1024

[mixer]
channels          = 8
reserved          = 0
effects_max_speed = false

[device]
sink      = oto
output    =
buffer_ms = 0

[log]
level = info
`

type Audio struct {
	Frequency int
	Format    audio.Format
	Channels  int
	ChunkSize int
}

// Spec is the desired output spec for mixer.Engine.OpenAudio.
func (a Audio) Spec() audio.Spec {
	return audio.Spec{Freq: a.Frequency, Format: a.Format, Channels: a.Channels, Samples: a.ChunkSize}
}

type Mixer struct {
	Channels        int  `ini:"channels"`
	Reserved        int  `ini:"reserved"`
	EffectsMaxSpeed bool `ini:"effects_max_speed"`
}

type Device struct {
	Sink string `ini:"sink"`
	// Output is the capture file of the wav sink.
	Output   string `ini:"output"`
	BufferMs int    `ini:"buffer_ms"`
}

type Log struct {
	Level slog.Level
}

type Config struct {
	Audio  Audio
	Mixer  Mixer
	Device Device
	Log    Log
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: bad built-in defaults: %v", err))
	}

	return c
}

// Load reads path over the defaults. An empty path loads only the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Parse reads INI data over the defaults.
func Parse(data []byte) (*Config, error) {
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	options := ini.LoadOptions{
		IgnoreInlineComment:     false,
		SkipUnrecognizableLines: true,
		AllowShadows:            false,
	}

	sources := []any{[]byte(defaultConfig)}
	if len(data) > 0 {
		sources = append(sources, data)
	}

	f, err := ini.LoadSources(options, sources[0], sources[1:]...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var c Config
	if err := c.read(f); err != nil {
		return nil, err
	}
	if _, ok := os.LookupEnv(mixer.EffectsMaxSpeedEnv); ok {
		c.Mixer.EffectsMaxSpeed = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) read(f *ini.File) error {
	sec := f.Section("audio")

	var err error
	if c.Audio.Frequency, err = sec.Key("frequency").Int(); err != nil {
		return invalid("audio", "frequency", err)
	}
	if c.Audio.Format, err = audio.ParseFormat(sec.Key("format").String()); err != nil {
		return invalid("audio", "format", err)
	}
	if c.Audio.Channels, err = sec.Key("channels").Int(); err != nil {
		return invalid("audio", "channels", err)
	}
	if c.Audio.ChunkSize, err = sec.Key("chunk_size").Int(); err != nil {
		return invalid("audio", "chunk_size", err)
	}

	if err := f.Section("mixer").MapTo(&c.Mixer); err != nil {
		return invalid("mixer", "", err)
	}
	if err := f.Section("device").MapTo(&c.Device); err != nil {
		return invalid("device", "", err)
	}
	c.Device.Sink = strings.ToLower(strings.TrimSpace(c.Device.Sink))

	level, ok := slog.LevelFromString(f.Section("log").Key("level").String())
	if !ok {
		return invalid("log", "level", fmt.Errorf("%q", f.Section("log").Key("level").String()))
	}
	c.Log.Level = level

	return nil
}

func invalid(section, key string, err error) error {
	if key == "" {
		return fmt.Errorf("%w: [%s]: %w", ErrInvalidValue, section, err)
	}

	return fmt.Errorf("%w: [%s] %s: %w", ErrInvalidValue, section, key, err)
}

// Validate checks the values that cannot be caught while parsing. Zero
// audio values are left for the device to default.
func (c *Config) Validate() error {
	if c.Audio.Frequency < 0 {
		return invalid("audio", "frequency", fmt.Errorf("%d", c.Audio.Frequency))
	}
	if c.Audio.Channels != 0 && !audio.ValidChannels(c.Audio.Channels) {
		return invalid("audio", "channels", fmt.Errorf("%w: %d", audio.ErrInvalidChannels, c.Audio.Channels))
	}
	if c.Audio.ChunkSize < 0 {
		return invalid("audio", "chunk_size", fmt.Errorf("%d", c.Audio.ChunkSize))
	}
	if c.Mixer.Channels < 0 {
		return invalid("mixer", "channels", fmt.Errorf("%d", c.Mixer.Channels))
	}
	if c.Mixer.Reserved < 0 || c.Mixer.Reserved > c.Mixer.Channels {
		return invalid("mixer", "reserved", fmt.Errorf("%d of %d channels", c.Mixer.Reserved, c.Mixer.Channels))
	}
	if c.Device.BufferMs < 0 {
		return invalid("device", "buffer_ms", fmt.Errorf("%d", c.Device.BufferMs))
	}

	switch c.Device.Sink {
	case SinkNull, SinkOto:
	case SinkWAV:
		if c.Device.Output == "" {
			return invalid("device", "output", fmt.Errorf("required by the %s sink", SinkWAV))
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, c.Device.Sink)
	}

	return nil
}

// MixerOptions translates the [mixer] section into engine options.
func (c *Config) MixerOptions() []mixer.Option {
	return []mixer.Option{mixer.WithEffectsMaxSpeed(c.Mixer.EffectsMaxSpeed)}
}
