package param

import (
	"math"
	"testing"
)

func TestSmoother(t *testing.T) {
	t.Run("LinearSmoothing", func(t *testing.T) {
		smoother := NewSmoother(LinearSmoothing, 10) // 10 samples
		smoother.Reset(0.0)
		smoother.SetTarget(1.0)

		// Should take 10 samples to reach target
		for i := 0; i < 10; i++ {
			value := smoother.Next()
			expected := float64(i+1) * 0.1
			if math.Abs(value-expected) > 0.001 {
				t.Errorf("Sample %d: expected %f, got %f", i, expected, value)
			}
		}

		if smoother.Next() != 1.0 {
			t.Error("Should stay at target after reaching it")
		}
		if smoother.IsSmoothing() {
			t.Error("Should not be smoothing after reaching target")
		}
	})

	t.Run("ExponentialSmoothing", func(t *testing.T) {
		smoother := NewSmoother(ExponentialSmoothing, 0.9) // High = slow
		smoother.Reset(0.0)
		smoother.SetTarget(1.0)

		prev := 0.0
		for i := 0; i < 50; i++ {
			value := smoother.Next()
			if value <= prev {
				t.Error("Value should be increasing")
			}
			if value >= 1.0 {
				t.Error("Should not exceed target")
			}
			prev = value
		}

		for i := 0; i < 200; i++ {
			smoother.Next()
		}
		if smoother.IsSmoothing() {
			t.Error("Should have reached target by now")
		}
	})

	t.Run("LogarithmicSmoothing", func(t *testing.T) {
		smoother := NewSmoother(LogarithmicSmoothing, 10)
		smoother.Reset(0.1)
		smoother.SetTarget(10.0)

		values := []float64{}
		for i := 0; i < 10; i++ {
			values = append(values, smoother.Next())
		}

		// The ratio between consecutive values should be constant
		ratio := values[1] / values[0]
		for i := 2; i < len(values); i++ {
			currentRatio := values[i] / values[i-1]
			if math.Abs(currentRatio-ratio) > 0.01 {
				t.Error("Logarithmic interpolation not maintaining constant ratio")
			}
		}
		if math.Abs(values[len(values)-1]-10.0) > 1e-6 {
			t.Errorf("Expected to land on target, got %f", values[len(values)-1])
		}
	})

	t.Run("NoSmoothing", func(t *testing.T) {
		smoother := NewSmoother(NoSmoothing, 0)
		smoother.Reset(1)
		smoother.SetTarget(500)

		if smoother.IsSmoothing() {
			t.Error("NoSmoothing should never ramp")
		}
		if v := smoother.Next(); v != 500 {
			t.Errorf("Expected immediate jump to 500, got %f", v)
		}
	})

	t.Run("ZeroRateJumps", func(t *testing.T) {
		smoother := NewSmoother(LinearSmoothing, 0)
		smoother.SetTarget(2)
		if v := smoother.Next(); v != 2 {
			t.Errorf("Expected 2, got %f", v)
		}
	})

	t.Run("Threshold", func(t *testing.T) {
		smoother := NewSmoother(ExponentialSmoothing, 0.9)
		smoother.SetThreshold(0.1)
		smoother.Reset(0.0)
		smoother.SetTarget(0.05) // Less than threshold

		if smoother.IsSmoothing() {
			t.Error("Should not smooth when change is below threshold")
		}
	})
}

func newTestParameter() *Parameter {
	p := &Parameter{
		ID:        1,
		Name:      "Test",
		ShortName: "Test",
		Min:       0.0,
		Max:       1.0,
		Flags:     CanAutomate,
	}
	p.SetValue(0.5)
	return p
}

func TestSmoothedParameter(t *testing.T) {
	t.Run("FollowsParameterChanges", func(t *testing.T) {
		param := newTestParameter()
		smoothed := NewSmoothedParameter(param, ExponentialSmoothing, 0.9)

		// Changed directly, as a host would
		param.SetValue(1.0)

		prev := 0.5
		for i := 0; i < 10; i++ {
			value := smoothed.Next()
			if value <= prev {
				t.Error("Value should be increasing")
			}
			prev = value
		}
	})

	t.Run("EveryReadAdvances", func(t *testing.T) {
		param := newTestParameter()
		smoothed := NewSmoothedParameter(param, LinearSmoothing, 4)
		param.SetValue(1.0)

		first := smoothed.Next()
		second := smoothed.Next()
		if math.Abs(first-0.625) > 1e-9 || math.Abs(second-0.75) > 1e-9 {
			t.Errorf("Expected 0.625 then 0.75, got %f then %f", first, second)
		}
	})

	t.Run("DisableSmoothing", func(t *testing.T) {
		param := newTestParameter()
		smoothed := NewSmoothedParameter(param, LinearSmoothing, 10)
		smoothed.SetSmoothing(false)
		param.SetValue(1.0)

		if smoothed.Next() != 1.0 {
			t.Error("Should not smooth when disabled")
		}
	})

	t.Run("NextInt", func(t *testing.T) {
		param := IntegerParameter(2, "Time", 1, 1000, 1).Build()
		smoothed := NewSmoothedParameter(param, NoSmoothing, 0)

		param.SetPlainValue(500)
		if v := smoothed.NextInt(); v != 500 {
			t.Errorf("Expected 500, got %d", v)
		}
	})

	t.Run("Transform", func(t *testing.T) {
		param := GainParameter(3, "Gain", -30, 30).Build()
		smoothed := NewSmoothedParameter(param, LogarithmicSmoothing, 8).WithTransform(DBToGain)

		if v := smoothed.Next(); math.Abs(v-1) > 0.01 {
			t.Errorf("Expected unity gain at 0 dB, got %f", v)
		}

		param.SetPlainValue(20)
		var v float64
		for i := 0; i < 8; i++ {
			v = smoothed.Next()
		}
		if math.Abs(v-10)/10 > 0.01 {
			t.Errorf("Expected gain 10 after ramp, got %f", v)
		}
	})

	t.Run("UpdateSampleRate", func(t *testing.T) {
		param := newTestParameter()
		smoothed := NewSmoothedParameter(param, LogarithmicSmoothing, 10)
		smoothed.UpdateSampleRate(48000, 50) // 50ms at 48kHz

		if smoothed.smoother.rate != 2400 {
			t.Errorf("Expected rate 2400, got %f", smoothed.smoother.rate)
		}
	})
}

func BenchmarkSmoother(b *testing.B) {
	b.Run("LinearNext", func(b *testing.B) {
		smoother := NewSmoother(LinearSmoothing, 100)
		smoother.SetTarget(1.0)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = smoother.Next()
		}
	})

	b.Run("LogarithmicNext", func(b *testing.B) {
		smoother := NewSmoother(LogarithmicSmoothing, 100)
		smoother.SetTarget(1000.0)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = smoother.Next()
		}
	})

	b.Run("SmoothedParameterNext", func(b *testing.B) {
		param := GainParameter(0, "Gain", -30, 30).Build()
		smoothed := NewSmoothedParameter(param, LogarithmicSmoothing, 2400).WithTransform(DBToGain)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = smoothed.Next()
		}
	})
}
