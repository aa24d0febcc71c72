// Package plugin defines the processor contract hosts drive, plus a base
// type that supplies the common parts.
package plugin

import (
	"io"

	"github.com/loopdrift/loopdrift/pkg/framework/bus"
	"github.com/loopdrift/loopdrift/pkg/framework/param"
	"github.com/loopdrift/loopdrift/pkg/framework/process"
	"github.com/loopdrift/loopdrift/pkg/framework/state"
)

// Processor handles the actual audio processing. Hosts serialize every call.
type Processor interface {
	// Info returns plugin metadata
	Info() Info

	// Initialize is called before the first block and on sample rate changes
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio processes one block without allocating
	ProcessAudio(ctx *process.Context)

	// GetParameters returns the parameter registry
	GetParameters() *param.Registry

	// GetBuses returns the bus configuration
	GetBuses() *bus.Configuration

	// SetActive is called when processing starts/stops
	SetActive(active bool) error

	// GetLatencySamples returns the plugin's latency in samples
	GetLatencySamples() int32

	// GetTailSamples returns the tail length in samples
	GetTailSamples() int32
}

// StatefulProcessor can persist its parameters.
type StatefulProcessor interface {
	Processor
	SaveState(w io.Writer) error
	LoadState(r io.Reader) error
}

// BaseProcessor provides common functionality for audio processors
type BaseProcessor struct {
	info       Info
	params     *param.Registry
	buses      *bus.Configuration
	state      *state.Manager
	sampleRate float64
	blockSize  int32
	active     bool

	onInitialize func(sampleRate float64, maxBlockSize int32) error
	onReset      func()
}

// NewBaseProcessor creates a base processor. A nil bus configuration
// defaults to stereo.
func NewBaseProcessor(info Info, buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration()
	}
	params := param.NewRegistry()
	return &BaseProcessor{
		info:   info,
		params: params,
		buses:  buses,
		state:  state.NewManager(params),
	}
}

// Info implements the Processor interface
func (b *BaseProcessor) Info() Info {
	return b.info
}

// Initialize implements the Processor interface
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate = sampleRate
	b.blockSize = maxBlockSize

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}
	return nil
}

// GetParameters implements the Processor interface
func (b *BaseProcessor) GetParameters() *param.Registry {
	return b.params
}

// GetBuses implements the Processor interface
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// SetActive implements the Processor interface. Deactivation runs the reset
// callback.
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.onReset != nil {
		b.onReset()
	}
	b.active = active
	return nil
}

// IsActive reports whether the host has activated processing.
func (b *BaseProcessor) IsActive() bool {
	return b.active
}

// GetLatencySamples implements the Processor interface - default no latency
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples implements the Processor interface - default no tail
func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// SaveState writes all parameter values.
func (b *BaseProcessor) SaveState(w io.Writer) error {
	return b.state.Save(w)
}

// LoadState restores parameter values written by SaveState.
func (b *BaseProcessor) LoadState(r io.Reader) error {
	return b.state.Load(r)
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the block size passed to Initialize.
func (b *BaseProcessor) MaxBlockSize() int32 {
	return b.blockSize
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
