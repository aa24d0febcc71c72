package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer accumulates level statistics over successive buffers, so a
// whole render can be summarized block by block.
type AudioAnalyzer struct {
	ClippingThreshold float32
	SilenceThreshold  float32
	DCThreshold       float32

	count      int
	sum        float64
	sumSquares float64
	result     AnalysisResult
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NaNCount       int
	Silent         bool
}

// Clipping reports whether any sample reached the clipping threshold.
func (r AnalysisResult) Clipping() bool { return r.ClippedSamples > 0 }

// PeakDB returns the peak level in dBFS.
func (r AnalysisResult) PeakDB() float64 { return toDB(r.Peak) }

// RMSDB returns the RMS level in dBFS.
func (r AnalysisResult) RMSDB() float64 { return toDB(r.RMS) }

func toDB(v float32) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(v))
}

// NewAudioAnalyzer creates an analyzer with default thresholds.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		ClippingThreshold: 0.99,
		SilenceThreshold:  0.0001,
		DCThreshold:       0.01,
	}
}

// Add folds a buffer into the running statistics.
func (a *AudioAnalyzer) Add(buffer []float32) {
	for _, sample := range buffer {
		if math.IsNaN(float64(sample)) {
			a.result.NaNCount++
			continue
		}
		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > a.result.Peak {
			a.result.Peak = abs
		}
		if abs >= a.ClippingThreshold {
			a.result.ClippedSamples++
		}
		a.sum += float64(sample)
		a.sumSquares += float64(sample) * float64(sample)
		a.count++
	}
}

// Result returns the statistics of everything added since the last Reset.
func (a *AudioAnalyzer) Result() AnalysisResult {
	r := a.result
	r.Samples = a.count
	if a.count > 0 {
		r.RMS = float32(math.Sqrt(a.sumSquares / float64(a.count)))
		r.DC = float32(a.sum / float64(a.count))
	}
	r.Silent = r.RMS < a.SilenceThreshold
	return r
}

// Reset clears the running statistics.
func (a *AudioAnalyzer) Reset() {
	a.count = 0
	a.sum = 0
	a.sumSquares = 0
	a.result = AnalysisResult{}
}

// Analyze returns the statistics of a single buffer without touching the
// running state.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	one := AudioAnalyzer{
		ClippingThreshold: a.ClippingThreshold,
		SilenceThreshold:  a.SilenceThreshold,
		DCThreshold:       a.DCThreshold,
	}
	one.Add(buffer)
	return one.Result()
}

// Issues lists problems found in the accumulated statistics, each prefixed
// with name.
func (a *AudioAnalyzer) Issues(name string) []string {
	r := a.Result()
	var issues []string
	if r.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d NaN samples", name, r.NaNCount))
	}
	if r.Clipping() {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, r.ClippedSamples))
	}
	if math.Abs(float64(r.DC)) > float64(a.DCThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset %.3f", name, r.DC))
	}
	return issues
}

// Report logs the accumulated statistics through l, warning about issues.
func (a *AudioAnalyzer) Report(l *Logger, name string) {
	r := a.Result()
	l.Info("%s: %d samples, peak %.1f dBFS, rms %.1f dBFS", name, r.Samples, r.PeakDB(), r.RMSDB())
	for _, issue := range a.Issues(name) {
		l.Warn("%s", issue)
	}
}

// CompareBuffers returns the index and magnitude of the largest difference
// between a and b over their common length.
func CompareBuffers(a, b []float32) (index int, diff float32) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	index = -1
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > diff {
			diff = d
			index = i
		}
	}
	return index, diff
}
