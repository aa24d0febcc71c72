package loopdrift

import (
	"github.com/loopdrift/loopdrift/pkg/dsp/delay"
	"github.com/loopdrift/loopdrift/pkg/framework/param"
)

// Parameter IDs
const (
	ParamGain uint32 = iota
	ParamDelay
	ParamMode
	ParamTime
)

// Gain range in decibels.
const (
	MinGainDB = -30
	MaxGainDB = 30
)

const (
	// gainSmoothingMs is the ramp time of the gain parameter.
	gainSmoothingMs = 50
)

// modeOptions lists the modes as choices named after delay.Mode.
func modeOptions() []param.ChoiceOption {
	options := make([]param.ChoiceOption, 0, delay.NumModes)
	for m := delay.ModeEcho; m <= delay.ModeChaos; m++ {
		options = append(options, param.ChoiceOption{Value: float64(m), Name: m.String()})
	}
	return options
}

func newParameters() []*param.Parameter {
	return []*param.Parameter{
		param.GainParameter(ParamGain, "Gain", MinGainDB, MaxGainDB).
			ShortName("gain").
			Build(),
		param.IntegerParameter(ParamDelay, "Delay", 1, delay.ScaleDenominator, 1).
			ShortName("delay").
			Build(),
		param.Choice(ParamMode, "Mode", modeOptions()).
			ShortName("mode").
			Build(),
		param.IntegerParameter(ParamTime, "Time", 1, delay.ScaleDenominator, 1).
			ShortName("time").
			Build(),
	}
}

// smoothedSource feeds the engine from the registry. Gain ramps in the
// linear domain; delay, mode and time jump straight to new values.
type smoothedSource struct {
	gain  *param.SmoothedParameter
	delay *param.SmoothedParameter
	mode  *param.SmoothedParameter
	time  *param.SmoothedParameter
}

func newSmoothedSource(r *param.Registry) *smoothedSource {
	return &smoothedSource{
		gain: param.NewSmoothedParameter(r.Get(ParamGain), param.LogarithmicSmoothing, 0).
			WithTransform(param.DBToGain),
		delay: param.NewSmoothedParameter(r.Get(ParamDelay), param.NoSmoothing, 0),
		mode:  param.NewSmoothedParameter(r.Get(ParamMode), param.NoSmoothing, 0),
		time:  param.NewSmoothedParameter(r.Get(ParamTime), param.NoSmoothing, 0),
	}
}

func (s *smoothedSource) setSampleRate(sampleRate float64) {
	s.gain.UpdateSampleRate(sampleRate, gainSmoothingMs)
}

func (s *smoothedSource) snap() {
	s.gain.Snap()
	s.delay.Snap()
	s.mode.Snap()
	s.time.Snap()
}

func (s *smoothedSource) NextGain() float32 { return float32(s.gain.Next()) }

func (s *smoothedSource) NextDelay() int { return s.delay.NextInt() }

func (s *smoothedSource) NextMode() delay.Mode { return delay.Mode(s.mode.NextInt()) }

func (s *smoothedSource) NextTime() int { return s.time.NextInt() }
