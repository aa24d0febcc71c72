package delay

// Params is the per-sample control source. Each call advances the underlying
// smoother by one step, so callers must poll exactly as often as they intend
// the smoothing to run.
type Params interface {
	NextGain() float32
	NextDelay() int
	NextMode() Mode
	NextTime() int
}

// Fixed is a constant parameter snapshot.
type Fixed struct {
	Gain  float32
	Delay int
	Mode  Mode
	Time  int
}

// NextGain implements Params.
func (f Fixed) NextGain() float32 { return f.Gain }

// NextDelay implements Params.
func (f Fixed) NextDelay() int { return f.Delay }

// NextMode implements Params.
func (f Fixed) NextMode() Mode { return f.Mode }

// NextTime implements Params.
func (f Fixed) NextTime() int { return f.Time }
