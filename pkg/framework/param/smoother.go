package param

import (
	"math"
)

// SmoothingType defines different parameter smoothing algorithms.
type SmoothingType int

const (
	// LinearSmoothing uses linear interpolation
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing uses exponential smoothing (one-pole filter)
	ExponentialSmoothing
	// LogarithmicSmoothing interpolates in log space (gains, frequencies)
	LogarithmicSmoothing
	// NoSmoothing jumps straight to the target
	NoSmoothing
)

// Smoother provides parameter smoothing to prevent zipper noise.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64
	threshold     float64
	isSmoothing   bool

	// For linear smoothing
	step float64

	// For logarithmic smoothing
	logCurrent float64
	logTarget  float64
	logStep    float64
}

// NewSmoother creates a new parameter smoother.
// rate: smoothing rate (0.9-0.999 for exponential, samples for linear and
// logarithmic, ignored for none)
func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// SetTarget sets the target value for smoothing.
func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}

	s.target = target

	switch s.smoothingType {
	case NoSmoothing:
		s.current = target
		s.isSmoothing = false
		return

	case LinearSmoothing:
		if s.rate < 1 {
			s.current = target
			s.isSmoothing = false
			return
		}
		s.step = (target - s.current) / s.rate

	case LogarithmicSmoothing:
		const minVal = 0.001
		currentVal := math.Max(s.current, minVal)
		targetVal := math.Max(target, minVal)

		s.logCurrent = math.Log(currentVal)
		s.logTarget = math.Log(targetVal)

		if s.rate < 1 {
			s.current = target
			s.isSmoothing = false
			return
		}
		s.logStep = (s.logTarget - s.logCurrent) / s.rate
	}

	s.isSmoothing = true
}

// Next advances the smoother by one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		// One-pole filter: y = y + a * (x - y)
		s.current += (s.target - s.current) * (1.0 - s.rate)

		if math.Abs(s.current-s.target) < s.threshold {
			s.current = s.target
			s.isSmoothing = false
		}

	case LinearSmoothing:
		s.current += s.step

		if (s.step > 0 && s.current >= s.target) || (s.step <= 0 && s.current <= s.target) {
			s.current = s.target
			s.isSmoothing = false
		}

	case LogarithmicSmoothing:
		s.logCurrent += s.logStep

		if (s.logStep > 0 && s.logCurrent >= s.logTarget) || (s.logStep <= 0 && s.logCurrent <= s.logTarget) {
			s.current = s.target
			s.isSmoothing = false
		} else {
			s.current = math.Exp(s.logCurrent)
		}
	}

	return s.current
}

// Current returns the last produced value without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// IsSmoothing returns true if the smoother is currently smoothing.
func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Reset resets the smoother to a specific value.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.isSmoothing = false
}

// SetRate updates the smoothing rate.
func (s *Smoother) SetRate(rate float64) {
	s.rate = rate
}

// SetThreshold sets the threshold for considering smoothing complete.
func (s *Smoother) SetThreshold(threshold float64) {
	s.threshold = threshold
}

// SmoothedParameter wraps a Parameter with an advance-on-read smoother. The
// parameter may be changed from any goroutine; every Next call picks up the
// latest value as the smoothing target.
type SmoothedParameter struct {
	*Parameter
	smoother  *Smoother
	transform func(float64) float64
	enabled   bool
}

// NewSmoothedParameter creates a parameter with built-in smoothing.
func NewSmoothedParameter(param *Parameter, smoothingType SmoothingType, rate float64) *SmoothedParameter {
	sp := &SmoothedParameter{
		Parameter: param,
		smoother:  NewSmoother(smoothingType, rate),
		enabled:   true,
	}
	sp.smoother.Reset(sp.plain())
	return sp
}

// WithTransform maps the plain value before smoothing, e.g. dB to linear gain.
func (sp *SmoothedParameter) WithTransform(fn func(float64) float64) *SmoothedParameter {
	sp.transform = fn
	sp.smoother.Reset(sp.plain())
	return sp
}

func (sp *SmoothedParameter) plain() float64 {
	v := sp.GetPlainValue()
	if sp.transform != nil {
		v = sp.transform(v)
	}
	return v
}

// Next advances the smoother by one sample and returns the smoothed value.
func (sp *SmoothedParameter) Next() float64 {
	if !sp.enabled {
		return sp.plain()
	}
	sp.smoother.SetTarget(sp.plain())
	return sp.smoother.Next()
}

// NextInt is Next rounded to the nearest integer.
func (sp *SmoothedParameter) NextInt() int {
	return int(math.Round(sp.Next()))
}

// Snap jumps the smoother to the current parameter value.
func (sp *SmoothedParameter) Snap() {
	sp.smoother.Reset(sp.plain())
}

// IsSmoothing reports whether a ramp is in progress.
func (sp *SmoothedParameter) IsSmoothing() bool {
	return sp.smoother.IsSmoothing()
}

// SetSmoothing enables or disables smoothing.
func (sp *SmoothedParameter) SetSmoothing(enabled bool) {
	sp.enabled = enabled
	if !enabled {
		sp.Snap()
	}
}

// SetSmoothingRate updates the smoothing rate.
func (sp *SmoothedParameter) SetSmoothingRate(rate float64) {
	sp.smoother.SetRate(rate)
}

// UpdateSampleRate sets the smoothing rate so a ramp takes targetTimeMs.
func (sp *SmoothedParameter) UpdateSampleRate(sampleRate float64, targetTimeMs float64) {
	samples := sampleRate * targetTimeMs / 1000.0
	switch sp.smoother.smoothingType {
	case LinearSmoothing, LogarithmicSmoothing:
		sp.SetSmoothingRate(samples)
	case ExponentialSmoothing:
		// -60dB in targetTimeMs
		sp.SetSmoothingRate(math.Exp(-6.908 / samples))
	}
}
