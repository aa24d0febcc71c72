// Command loopdrift renders, plays or serves audio through the loopdrift
// delay.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/loopdrift/loopdrift/pkg/audiofile"
	"github.com/loopdrift/loopdrift/pkg/dsp/delay"
	"github.com/loopdrift/loopdrift/pkg/framework/debug"
	"github.com/loopdrift/loopdrift/pkg/host"
	"github.com/loopdrift/loopdrift/pkg/host/speaker"
	"github.com/loopdrift/loopdrift/pkg/loopdrift"
	"github.com/loopdrift/loopdrift/pkg/preset"
)

const usage = `usage: loopdrift <command> [flags]

commands:
  render  process an audio file to a WAV file
  play    play an audio file through the effect on the speakers
  jack    run as a JACK client
  info    describe the effect and its parameters

Run 'loopdrift <command> -h' for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		debug.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, stdout io.Writer) error {
	switch command {
	case "render":
		return runRender(ctx, args)
	case "play":
		return runPlay(ctx, args)
	case "jack":
		return runJack(ctx, args)
	case "info":
		return runInfo(args, stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

// settings are the flags shared by every command that drives the effect.
type settings struct {
	presetPath string
	savePreset string
	gainDB     float64
	delay      int
	mode       string
	time       int
	block      int
	logLevel   string
}

func (s *settings) register(fs *flag.FlagSet) {
	fs.StringVar(&s.presetPath, "preset", "", "JSON preset to load before applying flags")
	fs.StringVar(&s.savePreset, "save-preset", "", "write the resulting settings to a JSON preset")
	fs.Float64Var(&s.gainDB, "gain", 0, "input gain in dB (-30..30)")
	fs.IntVar(&s.delay, "delay", 1, "secondary tap scale (1..1000)")
	fs.StringVar(&s.mode, "mode", "echo", "mode name or number (1..7)")
	fs.IntVar(&s.time, "time", 1, "read cursor time scale (1..1000)")
	fs.IntVar(&s.block, "block", host.DefaultBlockSize, "processing block size in frames")
	fs.StringVar(&s.logLevel, "log", "info", "log level: debug|info|warn|error|off")
}

// resolve merges the preset with the flags set on the command line; set
// flags win.
func (s *settings) resolve(fs *flag.FlagSet) (*preset.File, error) {
	level, err := debug.ParseLevel(s.logLevel)
	if err != nil {
		return nil, err
	}
	debug.SetLevel(level)

	f := &preset.File{}
	if s.presetPath != "" {
		if f, err = preset.Load(s.presetPath); err != nil {
			return nil, err
		}
	}

	var errs []error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "gain":
			f.GainDB = &s.gainDB
		case "delay":
			f.Delay = &s.delay
		case "time":
			f.Time = &s.time
		case "mode":
			m, err := parseMode(s.mode)
			if err != nil {
				errs = append(errs, err)
				return
			}
			f.Mode = &m
		}
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if s.block < 1 {
		return nil, fmt.Errorf("invalid -block %d", s.block)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return f, nil
}

// newProcessor creates a processor configured from f and optionally saves
// the resulting settings.
func (s *settings) newProcessor(f *preset.File) (*loopdrift.Processor, error) {
	proc := loopdrift.NewProcessor()
	if err := f.Apply(proc.GetParameters()); err != nil {
		return nil, err
	}
	if s.savePreset != "" {
		captured, err := preset.Capture(proc.GetParameters())
		if err != nil {
			return nil, err
		}
		captured.TailSeconds = f.TailSeconds
		captured.Automation = f.Automation
		if err := preset.Save(s.savePreset, captured); err != nil {
			return nil, err
		}
		debug.Info("saved preset %s", s.savePreset)
	}
	return proc, nil
}

// parseMode accepts a mode number or name.
func parseMode(text string) (int, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	for m := delay.ModeEcho; m <= delay.ModeChaos; m++ {
		if m.String() == text {
			return int(m), nil
		}
	}
	return 0, fmt.Errorf("invalid -mode %q (expected 1..7 or echo|stutter|replace|ring|double-tap|jitter|chaos)", text)
}

func runRender(ctx context.Context, args []string) error {
	var s settings
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	s.register(fs)
	in := fs.String("in", "", "input WAV or FLAC file")
	out := fs.String("out", "", "output WAV file")
	tail := fs.Float64("tail", -1, "seconds of silence appended for repeats (default: preset tail_seconds or 2)")
	bits := fs.Int("bits", 24, "output bit depth: 16|24")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("render: -in and -out are required")
	}

	f, err := s.resolve(fs)
	if err != nil {
		return err
	}
	tailSeconds := f.Tail(2)
	if *tail >= 0 {
		tailSeconds = *tail
	}

	clip, err := audiofile.Load(*in)
	if err != nil {
		return err
	}
	proc, err := s.newProcessor(f)
	if err != nil {
		return err
	}
	events, err := host.EventsFromPreset(f, proc.GetParameters(), clip.SampleRate)
	if err != nil {
		return err
	}

	offline, err := host.NewOffline(proc, s.block)
	if err != nil {
		return err
	}
	start := time.Now()
	rendered, err := offline.Render(ctx, clip, events, time.Duration(tailSeconds*float64(time.Second)))
	if err != nil {
		return err
	}
	if err := audiofile.SaveWAV(*out, rendered, *bits); err != nil {
		return err
	}

	debug.Info("rendered %s -> %s (%v of audio in %v, load %.2f%%)",
		*in, *out, rendered.Duration().Round(time.Millisecond),
		time.Since(start).Round(time.Millisecond), offline.Profiler().Load())
	offline.Report(*out)
	return nil
}

func runPlay(ctx context.Context, args []string) error {
	var s settings
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	s.register(fs)
	in := fs.String("in", "", "input WAV or FLAC file")
	loops := fs.Int("loops", 1, "times to play the input (0 = forever)")
	tail := fs.Float64("tail", 2, "seconds of silence after the last loop")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("play: -in is required")
	}

	f, err := s.resolve(fs)
	if err != nil {
		return err
	}
	clip, err := audiofile.Load(*in)
	if err != nil {
		return err
	}
	proc, err := s.newProcessor(f)
	if err != nil {
		return err
	}

	src, err := host.NewClipSource(proc, clip, s.block, *loops, int(*tail*float64(clip.SampleRate)))
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			debug.Warn("deactivate after playback: %v", err)
		}
	}()

	player, err := speaker.NewPlayer(clip.SampleRate, src)
	if err != nil {
		return err
	}
	debug.Info("playing %s at %d Hz", *in, clip.SampleRate)
	player.Play()
	waitErr := player.Wait(ctx)
	if err := player.Stop(); err != nil {
		return err
	}
	if errors.Is(waitErr, context.Canceled) {
		debug.Info("stopped after %v", player.Position().Round(time.Millisecond))
		return nil
	}
	return waitErr
}

func runJack(ctx context.Context, args []string) error {
	var s settings
	fs := flag.NewFlagSet("jack", flag.ContinueOnError)
	s.register(fs)
	name := fs.String("name", "loopdrift", "JACK client name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := s.resolve(fs)
	if err != nil {
		return err
	}
	proc, err := s.newProcessor(f)
	if err != nil {
		return err
	}

	client, err := host.NewJackClient(proc, *name)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Start(); err != nil {
		return err
	}
	debug.Info("JACK client %s running at %d Hz; interrupt to stop", *name, client.SampleRate())
	<-ctx.Done()
	return client.Stop()
}

func runInfo(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	proc := loopdrift.NewProcessor()
	info := proc.Info()
	fmt.Fprintf(stdout, "%s\n", info)
	fmt.Fprintf(stdout, "id %s, category %s\n", info.ID, info.Category)
	fmt.Fprintf(stdout, "tail %d samples, latency %d samples\n\n", proc.GetTailSamples(), proc.GetLatencySamples())

	fmt.Fprintln(stdout, "parameters:")
	for _, p := range proc.GetParameters().All() {
		fmt.Fprintf(stdout, "  %-6s %-8s %s..%s (default %s)\n",
			p.ShortName, p.Name, p.FormatValue(0), p.FormatValue(1), p.FormatValue(p.DefaultValue))
	}

	fmt.Fprintln(stdout, "\nmodes:")
	for m := delay.ModeEcho; m <= delay.ModeChaos; m++ {
		fmt.Fprintf(stdout, "  %d %s\n", int(m), m)
	}
	return nil
}
