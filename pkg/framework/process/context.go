// Package process provides the block context handed to a processor.
package process

import (
	"github.com/loopdrift/loopdrift/pkg/framework/debug"
	"github.com/loopdrift/loopdrift/pkg/framework/param"
)

// Context carries one block of planar audio and parameter access. It is
// reused across blocks and never allocates while processing.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	params *param.Registry
	logger *debug.Logger

	// Pre-allocated planar storage the host slices Input and Output from
	inStore  [][]float32
	outStore [][]float32
}

// NewContext creates a context with channels x maxBlockSize frames of
// pre-allocated input and output storage.
func NewContext(channels, maxBlockSize int, params *param.Registry) *Context {
	c := &Context{
		params:   params,
		logger:   debug.Default(),
		inStore:  make([][]float32, channels),
		outStore: make([][]float32, channels),
		Input:    make([][]float32, channels),
		Output:   make([][]float32, channels),
	}
	for ch := 0; ch < channels; ch++ {
		c.inStore[ch] = make([]float32, maxBlockSize)
		c.outStore[ch] = make([]float32, maxBlockSize)
	}
	c.SetBlockSize(maxBlockSize)
	return c
}

// SetLogger replaces the logger used for automation traces.
func (c *Context) SetLogger(l *debug.Logger) {
	c.logger = l
}

// MaxBlockSize returns the capacity of the pre-allocated storage.
func (c *Context) MaxBlockSize() int {
	if len(c.inStore) == 0 {
		return 0
	}
	return len(c.inStore[0])
}

// SetBlockSize resizes Input and Output to n frames of the pre-allocated
// storage, clamped to its capacity.
func (c *Context) SetBlockSize(n int) {
	if max := c.MaxBlockSize(); n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	for ch := range c.inStore {
		c.Input[ch] = c.inStore[ch][:n]
		c.Output[ch] = c.outStore[ch][:n]
	}
}

// Param returns the current value of a parameter (0-1 normalized)
func (c *Context) Param(id uint32) float64 {
	if p := c.params.Get(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// ParamPlain returns the current plain value of a parameter
func (c *Context) ParamPlain(id uint32) float64 {
	if p := c.params.Get(id); p != nil {
		return p.GetPlainValue()
	}
	return 0
}

// NumSamples returns the number of frames to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// NumChannels returns the smaller of the input and output channel counts.
func (c *Context) NumChannels() int {
	if len(c.Output) < len(c.Input) {
		return len(c.Output)
	}
	return len(c.Input)
}

// PassThrough copies input to output. Output channels beyond the last
// input channel receive a copy of that channel, so mono input feeds both
// sides of a stereo output.
func (c *Context) PassThrough() {
	if len(c.Input) == 0 {
		c.Clear()
		return
	}
	for ch := range c.Output {
		src := ch
		if src >= len(c.Input) {
			src = len(c.Input) - 1
		}
		copy(c.Output[ch], c.Input[src])
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// SetParameterAtOffset applies a normalized parameter value. Hosts split
// blocks at automation points, so the offset is the position of the change
// within the host's original block and is only traced.
func (c *Context) SetParameterAtOffset(paramID uint32, value float64, sampleOffset int) bool {
	p := c.params.Get(paramID)
	if p == nil {
		c.logger.Warn("automation for unknown parameter id %d dropped", paramID)
		return false
	}
	p.SetValue(value)
	c.logger.Debug("automation: %s = %s at offset %d", p.Name, p.FormatValue(p.GetValue()), sampleOffset)
	return true
}
