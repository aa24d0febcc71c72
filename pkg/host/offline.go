// Package host drives a processor outside a plugin host: offline renders,
// streamed playback sources and a JACK client.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/loopdrift/loopdrift/pkg/audiofile"
	"github.com/loopdrift/loopdrift/pkg/framework/debug"
	"github.com/loopdrift/loopdrift/pkg/framework/param"
	"github.com/loopdrift/loopdrift/pkg/framework/plugin"
	"github.com/loopdrift/loopdrift/pkg/framework/process"
	"github.com/loopdrift/loopdrift/pkg/preset"
)

var hostDebug = debuggo.Debug("loopdrift:host")

// DefaultBlockSize is the block size hosts use unless told otherwise.
const DefaultBlockSize = 512

// Event sets a parameter to a normalized value at a frame of the render.
type Event struct {
	Frame   int
	ParamID uint32
	Value   float64
}

// EventsFromPreset resolves a preset's automation points against a registry
// at sampleRate.
func EventsFromPreset(f *preset.File, r *param.Registry, sampleRate int) ([]Event, error) {
	events := make([]Event, 0, len(f.Automation))
	for _, pt := range f.Automation {
		p := r.ByName(pt.Param)
		if p == nil {
			return nil, fmt.Errorf("automation: no parameter named %q", pt.Param)
		}
		events = append(events, Event{
			Frame:   pt.Frame(sampleRate),
			ParamID: p.ID,
			Value:   p.Normalize(pt.Value),
		})
	}
	return events, nil
}

// Offline renders clips through a processor in fixed-size blocks. Blocks are
// split at automation events so every change lands on its exact frame.
type Offline struct {
	proc      plugin.Processor
	blockSize int
	logger    *debug.Logger
	profiler  *debug.BlockProfiler
	analyzer  *debug.AudioAnalyzer
}

// NewOffline creates an offline host.
func NewOffline(proc plugin.Processor, blockSize int) (*Offline, error) {
	if proc == nil {
		return nil, errors.New("host: nil processor")
	}
	if blockSize < 1 {
		return nil, fmt.Errorf("host: invalid block size %d", blockSize)
	}
	return &Offline{
		proc:      proc,
		blockSize: blockSize,
		logger:    debug.Default(),
		analyzer:  debug.NewAudioAnalyzer(),
	}, nil
}

// SetLogger replaces the logger used for render summaries.
func (o *Offline) SetLogger(l *debug.Logger) {
	o.logger = l
}

// Profiler returns the block profiler of the last render.
func (o *Offline) Profiler() *debug.BlockProfiler {
	return o.profiler
}

// Analysis returns level statistics of the last render's output.
func (o *Offline) Analysis() debug.AnalysisResult {
	return o.analyzer.Result()
}

// Report logs the level statistics of the last render under name.
func (o *Offline) Report(name string) {
	o.analyzer.Report(o.logger, name)
}

// Render processes clip followed by tail of silence and returns the stereo
// output. Events are applied in frame order; events past the end are
// dropped with a warning.
func (o *Offline) Render(ctx context.Context, clip *audiofile.Clip, events []Event, tail time.Duration) (*audiofile.Clip, error) {
	if clip.SampleRate <= 0 {
		return nil, fmt.Errorf("host: invalid sample rate %d", clip.SampleRate)
	}
	if tail < 0 {
		return nil, fmt.Errorf("host: negative tail %v", tail)
	}

	in := clip.Stereo()
	inFrames := in.Frames()
	total := inFrames + int(tail.Seconds()*float64(clip.SampleRate))

	if err := o.proc.Initialize(float64(clip.SampleRate), int32(o.blockSize)); err != nil {
		return nil, fmt.Errorf("host: initialize: %w", err)
	}
	if err := o.proc.SetActive(true); err != nil {
		return nil, fmt.Errorf("host: activate: %w", err)
	}
	defer func() {
		if err := o.proc.SetActive(false); err != nil {
			o.logger.Warn("deactivate after render: %v", err)
		}
	}()

	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	pctx := process.NewContext(2, o.blockSize, o.proc.GetParameters())
	pctx.SampleRate = float64(clip.SampleRate)
	pctx.SetLogger(o.logger)

	out := audiofile.NewClip(clip.SampleRate, 2, total)
	o.profiler = debug.NewBlockProfiler(float64(clip.SampleRate))
	o.analyzer.Reset()

	hostDebug("render: %d input frames, %d total, block %d, %d events", inFrames, total, o.blockSize, len(sorted))

	next := 0
	for pos := 0; pos < total; {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("host: render canceled at frame %d: %w", pos, err)
		}

		blockStart := pos - pos%o.blockSize
		for next < len(sorted) && sorted[next].Frame <= pos {
			ev := sorted[next]
			pctx.SetParameterAtOffset(ev.ParamID, ev.Value, pos-blockStart)
			next++
		}

		end := min(blockStart+o.blockSize, total)
		if next < len(sorted) && sorted[next].Frame < end {
			end = sorted[next].Frame
		}
		n := end - pos

		pctx.SetBlockSize(n)
		for ch := 0; ch < 2; ch++ {
			dst := pctx.Input[ch]
			copied := 0
			if pos < inFrames {
				copied = copy(dst, in.Channels[ch][pos:min(pos+n, inFrames)])
			}
			clear(dst[copied:])
		}

		stop := o.profiler.Block(n)
		o.proc.ProcessAudio(pctx)
		stop()

		for ch := 0; ch < 2; ch++ {
			copy(out.Channels[ch][pos:end], pctx.Output[ch])
			o.analyzer.Add(pctx.Output[ch])
		}
		pos = end
	}

	if dropped := len(sorted) - next; dropped > 0 {
		o.logger.Warn("%d automation events after the end of the render were dropped", dropped)
	}

	o.logger.Debug("render: %d frames, load %.2f%%", o.profiler.Frames(), o.profiler.Load())
	hostDebug("render profile:\n%s", o.profiler.BlockReport())
	return out, nil
}
