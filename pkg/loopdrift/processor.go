// Package loopdrift is the stereo drifting-delay effect: parameters, state
// and the block processor hosts drive.
package loopdrift

import (
	"fmt"
	"io"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/loopdrift/loopdrift/pkg/dsp/delay"
	"github.com/loopdrift/loopdrift/pkg/framework/bus"
	"github.com/loopdrift/loopdrift/pkg/framework/plugin"
	"github.com/loopdrift/loopdrift/pkg/framework/process"
)

var processorDebug = debuggo.Debug("loopdrift:processor")

// Version of the effect.
const Version = "0.1.0"

// PluginInfo describes the effect.
var PluginInfo = plugin.Info{
	ID:       "io.loopdrift.effect",
	Name:     "loopdrift",
	Version:  Version,
	Vendor:   "loopdrift",
	Category: "Fx|Delay",
	URL:      "https://github.com/loopdrift/loopdrift",
}

// Processor runs the delay engine over stereo blocks.
type Processor struct {
	*plugin.BaseProcessor
	engine *delay.Engine
	source *smoothedSource
}

var _ plugin.StatefulProcessor = (*Processor)(nil)

// NewProcessor creates a processor with default parameters and an empty
// history.
func NewProcessor() *Processor {
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(PluginInfo, bus.NewStereoConfiguration()),
		engine:        delay.NewEngine(),
	}

	if err := p.GetParameters().Add(newParameters()...); err != nil {
		// IDs are constants; a clash is a programming error
		panic(fmt.Sprintf("loopdrift: %v", err))
	}
	p.source = newSmoothedSource(p.GetParameters())

	p.OnInitialize(func(sampleRate float64, maxBlockSize int32) error {
		if sampleRate <= 0 {
			return fmt.Errorf("loopdrift: invalid sample rate %v", sampleRate)
		}
		p.source.setSampleRate(sampleRate)
		p.source.snap()
		processorDebug("initialized at %.0f Hz, block %d", sampleRate, maxBlockSize)
		return nil
	})
	p.OnReset(func() {
		p.engine.Reset()
		p.source.snap()
		processorDebug("history reset")
	})

	return p
}

// ProcessAudio copies input to output and runs the engine over the output
// in place.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	ctx.PassThrough()
	p.engine.ProcessBlock(ctx.Output, p.source)
}

// Engine exposes the delay engine for inspection.
func (p *Processor) Engine() *delay.Engine {
	return p.engine
}

// GetTailSamples returns the history capacity; repeats can surface for that
// long after the input stops.
func (p *Processor) GetTailSamples() int32 {
	return delay.Capacity
}

// LoadState restores parameters and jumps the smoothers to them.
func (p *Processor) LoadState(r io.Reader) error {
	if err := p.BaseProcessor.LoadState(r); err != nil {
		return fmt.Errorf("loopdrift: load state: %w", err)
	}
	p.source.snap()
	processorDebug("state loaded")
	return nil
}
