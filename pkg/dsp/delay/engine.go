package delay

// MaxChannels is the widest frame the engine mixes. Wider blocks pass the
// extra channels through.
const MaxChannels = 2

// Engine runs the per-sample pipeline against one shared History. It is not
// safe for concurrent use; hosts serialize calls.
type Engine struct {
	history  *History
	lastTime int
	frame    [MaxChannels]float32
}

// NewEngine creates an engine with a zero-filled history.
func NewEngine() *Engine {
	return &Engine{
		history:  NewHistory(),
		lastTime: InitialReadCursor,
	}
}

// Reset clears the history and cursors. Nothing survives a reset.
func (e *Engine) Reset() {
	e.history.Reset()
	e.lastTime = InitialReadCursor
}

// History exposes the buffer and cursors for inspection.
func (e *Engine) History() *History {
	return e.history
}

// LastTime returns the last observed time parameter value.
func (e *Engine) LastTime() int {
	return e.lastTime
}

// ApplyTime rescales the read cursor when time differs from the last
// observed value.
func (e *Engine) ApplyTime(time int) {
	if time == e.lastTime {
		return
	}
	e.history.Rescale(time)
	e.lastTime = time
}

// Step processes one sample and returns the output.
func (e *Engine) Step(sample, gain float32, delay int, mode Mode) float32 {
	h := e.history

	// Both taps are read before this step's write and cursor moves.
	prev := h.Tap()
	prev2 := h.ScaledTap(delay)

	sample *= gain
	h.Write(sample)
	h.AdvanceRead(1)

	out := mode.Mix(sample, prev, prev2)
	h.AdvanceRead(mode.Perturb(h.WriteCursor()))

	h.Wrap()
	return out
}

// ProcessFrame processes one frame in place. Gain and time are polled once
// per frame; delay and mode once per channel sample.
func (e *Engine) ProcessFrame(frame []float32, src Params) {
	gain := src.NextGain()
	e.ApplyTime(src.NextTime())

	for ch := range frame {
		frame[ch] = e.Step(frame[ch], gain, src.NextDelay(), src.NextMode())
	}
}

// ProcessBlock processes planar channel buffers in place, frame by frame -
// no allocations. Only the first MaxChannels channels are processed.
func (e *Engine) ProcessBlock(channels [][]float32, src Params) {
	numChannels := len(channels)
	if numChannels > MaxChannels {
		numChannels = MaxChannels
	}
	if numChannels == 0 {
		return
	}

	numSamples := len(channels[0])
	for ch := 1; ch < numChannels; ch++ {
		if len(channels[ch]) < numSamples {
			numSamples = len(channels[ch])
		}
	}

	frame := e.frame[:numChannels]
	for i := 0; i < numSamples; i++ {
		for ch := range frame {
			frame[ch] = channels[ch][i]
		}
		e.ProcessFrame(frame, src)
		for ch := range frame {
			channels[ch][i] = frame[ch]
		}
	}
}
