// SPDX-License-Identifier: EPL-2.0

// Command mixplay plays sound files through the mixer, or renders them to a
// WAV file with -out.
//
//	mixplay [options] <chunk-file>...
//
// Every chunk file gets its own channel. -music streams one more file
// through the music slot. Settings not given on the command line come from
// the -config INI file or the built-in defaults.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/decred/slog"
	"github.com/fatih/color"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/mixer"
)

var errUsage = errors.New("nothing to play")

type options struct {
	configPath string
	freq       int
	format     string
	channels   int
	chunkSize  int
	sink       string
	out        string
	logLevel   string

	loops    int
	fadeIn   int
	fadeOut  int
	angle    int
	distance int
	reverse  bool
	duration time.Duration

	music      string
	musicLoops int
	musicFade  int
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	var o options

	fs := flag.NewFlagSet("mixplay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", "", "INI configuration file")
	fs.IntVar(&o.freq, "freq", 0, "output frequency in Hz (0 = from config)")
	fs.StringVar(&o.format, "format", "", "output sample format: U8, S8, U16LSB, S16LSB, U16MSB, S16MSB, S16SYS")
	fs.IntVar(&o.channels, "channels", 0, "output channels: 1, 2, 4 or 6 (0 = from config)")
	fs.IntVar(&o.chunkSize, "chunk", 0, "device buffer in frames (0 = from config)")
	fs.StringVar(&o.sink, "sink", "", "output sink: null, oto or wav (default from config)")
	fs.StringVar(&o.out, "out", "", "render offline into this WAV file instead of playing")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, critical, off")

	fs.IntVar(&o.loops, "loops", 0, "extra passes of every chunk, -1 loops forever")
	fs.IntVar(&o.fadeIn, "fade-in", 0, "fade chunks in over this many ms")
	fs.IntVar(&o.fadeOut, "fade-out", 0, "fade everything out over this many ms when stopping early")
	fs.IntVar(&o.angle, "angle", 0, "place chunks at this angle, 0 is straight ahead")
	fs.IntVar(&o.distance, "distance", 0, "place chunks at this distance, 0 (near) to 255 (far)")
	fs.BoolVar(&o.reverse, "reverse", false, "swap left and right of every chunk")
	fs.DurationVar(&o.duration, "duration", 0, "stop after this long (0 = when everything has finished)")

	fs.StringVar(&o.music, "music", "", "WAV or AIFF file to stream as music")
	fs.IntVar(&o.musicLoops, "music-loops", 1, "music passes, -1 loops forever")
	fs.IntVar(&o.musicFade, "music-fade", 0, "fade the music in over this many ms")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] <chunk-file>...\n\nOptions:\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() == 0 && o.music == "" {
		fs.Usage()
		return nil, nil, errUsage
	}
	if o.distance < 0 || o.distance > 255 {
		return nil, nil, fmt.Errorf("-distance %d out of range 0..255", o.distance)
	}

	return &o, fs.Args(), nil
}

// apply overlays the command line on cfg.
func (o *options) apply(cfg *config.Config) error {
	if o.freq != 0 {
		cfg.Audio.Frequency = o.freq
	}
	if o.format != "" {
		f, err := audio.ParseFormat(o.format)
		if err != nil {
			return err
		}
		cfg.Audio.Format = f
	}
	if o.channels != 0 {
		cfg.Audio.Channels = o.channels
	}
	if o.chunkSize != 0 {
		cfg.Audio.ChunkSize = o.chunkSize
	}
	if o.sink != "" {
		cfg.Device.Sink = strings.ToLower(o.sink)
	}
	if o.logLevel != "" {
		level, ok := slog.LevelFromString(o.logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", o.logLevel)
		}
		cfg.Log.Level = level
	}

	return cfg.Validate()
}

// openSink builds the live output named by cfg. The closer, when not nil,
// releases whatever the sink writes to.
func openSink(cfg *config.Config) (device.Sink, io.Closer, error) {
	switch cfg.Device.Sink {
	case config.SinkNull:
		return device.NullSink{}, nil, nil
	case config.SinkOto:
		return &device.OtoSink{Latency: time.Duration(cfg.Device.BufferMs) * time.Millisecond}, nil, nil
	case config.SinkWAV:
		f, err := os.Create(cfg.Device.Output)
		if err != nil {
			return nil, nil, err
		}
		return device.NewWAVSink(f, true), f, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownSink, cfg.Device.Sink)
}

type player struct {
	opts *options
	cfg  *config.Config
	log  slog.Logger
	e    *mixer.Engine
	out  io.Writer

	info  func(format string, a ...any)
	title func(a ...any) string
}

func newPlayer(o *options, cfg *config.Config, log slog.Logger, stdout io.Writer) *player {
	return &player{
		opts:  o,
		cfg:   cfg,
		log:   log,
		out:   stdout,
		info:  func(format string, a ...any) { color.New(color.FgCyan).Fprintf(stdout, format, a...) },
		title: color.New(color.FgGreen, color.Bold).SprintFunc(),
	}
}

func (p *player) open(opts ...mixer.Option) error {
	opts = append(opts, mixer.WithLogger(p.log))
	opts = append(opts, p.cfg.MixerOptions()...)
	p.e = mixer.New(opts...)

	a := p.cfg.Audio
	if err := p.e.OpenAudio(a.Frequency, a.Format, a.Channels, a.ChunkSize); err != nil {
		return err
	}
	p.e.AllocateChannels(p.cfg.Mixer.Channels)
	p.e.ReserveChannels(p.cfg.Mixer.Reserved)

	_, spec := p.e.QuerySpec()
	p.info("%s %s, %d channels\n", p.title("opened"), spec, p.e.AllocateChannels(-1))

	return nil
}

func (p *player) load(paths []string) error {
	p.e.ChannelFinished(func(ch int) { p.log.Debugf("channel %d finished", ch) })

	for _, path := range paths {
		chunk, err := p.e.LoadChunkFile(path)
		if err != nil {
			return err
		}

		var ch int
		if p.opts.fadeIn > 0 {
			ch, err = p.e.FadeInChannelTimed(-1, chunk, p.opts.loops, p.opts.fadeIn, p.limitMs())
		} else {
			ch, err = p.e.PlayChannelTimed(-1, chunk, p.opts.loops, p.limitMs())
		}
		if err != nil {
			return fmt.Errorf("playing %s: %w", path, err)
		}
		if err := p.place(ch); err != nil {
			return fmt.Errorf("placing %s: %w", path, err)
		}

		p.info("%s %s on channel %d (%d bytes)\n", p.title("playing"), path, ch, len(chunk.Data))
	}

	if p.opts.music == "" {
		return nil
	}

	m, err := p.e.LoadMusic(p.opts.music)
	if err != nil {
		return err
	}
	p.e.HookMusicFinished(func() { p.log.Debug("music finished") })
	if err := p.e.FadeInMusic(m, p.opts.musicLoops, p.opts.musicFade); err != nil {
		return fmt.Errorf("playing music %s: %w", p.opts.music, err)
	}
	p.info("%s %s as %s music\n", p.title("playing"), p.opts.music, p.e.MusicType(m))

	return nil
}

func (p *player) limitMs() int {
	return int(p.opts.duration.Milliseconds())
}

func (p *player) place(ch int) error {
	if p.opts.angle != 0 || p.opts.distance != 0 {
		if err := p.e.SetPosition(ch, p.opts.angle, uint8(p.opts.distance)); err != nil {
			return err
		}
	}
	if p.opts.reverse {
		return p.e.SetReverseStereo(ch, true)
	}

	return nil
}

func (p *player) busy() bool {
	return p.e.Playing(-1) > 0 || p.e.MusicType(nil) != mixer.MusicNone
}

// wait blocks until the mix goes quiet, the duration runs out or ctx is
// done. Stopping early fades out when -fade-out is set.
func (p *player) wait(ctx context.Context) {
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	var deadline <-chan time.Time
	if p.opts.duration > 0 {
		deadline = time.After(p.opts.duration)
	}

	for p.busy() {
		select {
		case <-tick.C:
		case <-deadline:
			p.stop()
			return
		case <-ctx.Done():
			p.stop()
			return
		}
	}
}

func (p *player) stop() {
	if p.opts.fadeOut <= 0 {
		p.e.HaltChannel(-1)
		p.e.HaltMusic()
		return
	}

	p.e.FadeOutChannel(-1, p.opts.fadeOut)
	p.e.FadeOutMusic(p.opts.fadeOut)
	time.Sleep(time.Duration(p.opts.fadeOut)*time.Millisecond + p.cfg.Audio.Spec().Period())
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, paths, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := o.apply(cfg); err != nil {
		return err
	}

	backend := slog.NewBackend(stderr)
	log := backend.Logger("MIXR")
	log.SetLevel(cfg.Log.Level)

	p := newPlayer(o, cfg, log, stdout)

	if o.out != "" {
		return p.render(paths)
	}

	sink, closer, err := openSink(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := p.open(mixer.WithSink(sink)); err != nil {
		return err
	}
	defer p.e.CloseAudio()

	if err := p.load(paths); err != nil {
		return err
	}
	p.wait(ctx)

	return nil
}

func (p *player) render(paths []string) error {
	f, err := os.Create(p.opts.out)
	if err != nil {
		return err
	}
	defer f.Close()

	clock := &streamClock{freq: int64(device.Defaults(p.cfg.Audio.Spec()).Freq)}
	if err := p.open(mixer.WithHeadless(), mixer.WithClock(clock)); err != nil {
		return err
	}
	defer p.e.CloseAudio()

	_, spec := p.e.QuerySpec()
	frame := spec.FrameSize()
	p.e.SetPostMix(func(buf []byte) { clock.frames.Add(int64(len(buf) / frame)) })

	if err := p.load(paths); err != nil {
		return err
	}

	d, err := audmix.Render(p.e, f, p.opts.duration)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", p.opts.out, err)
	}
	p.info("%s %s of audio into %s\n", p.title("rendered"), d.Round(time.Millisecond), p.opts.out)

	return f.Close()
}

// streamClock counts time in rendered frames, so fades and expiry follow
// the output instead of the wall clock while rendering offline.
type streamClock struct {
	frames atomic.Int64
	freq   int64
}

func (c *streamClock) Ticks() int64 { return c.frames.Load() * 1000 / c.freq }

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, os.Args[1:], color.Output, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		cancel()
		os.Exit(2)
	default:
		color.New(color.FgRed).Fprintf(os.Stderr, "mixplay: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
