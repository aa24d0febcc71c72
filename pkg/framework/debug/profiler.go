package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	window       int
}

// Measurement holds timing statistics for a profiled section. The last
// window durations are kept for percentiles.
type Measurement struct {
	Name  string
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration

	samples []time.Duration
	next    int
}

// NewProfiler creates a profiler that keeps window recent durations per
// section.
func NewProfiler(window int) *Profiler {
	if window < 1 {
		window = 1
	}
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		window:       window,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a named section and returns the function that ends it.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures the execution time of fn.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores one duration for a named section.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		m = &Measurement{
			Name:    name,
			Min:     elapsed,
			Max:     elapsed,
			samples: make([]time.Duration, 0, p.window),
		}
		p.measurements[name] = m
	}

	m.Count++
	m.Total += elapsed
	m.Last = elapsed
	if elapsed < m.Min {
		m.Min = elapsed
	}
	if elapsed > m.Max {
		m.Max = elapsed
	}

	if len(m.samples) < p.window {
		m.samples = append(m.samples, elapsed)
	} else {
		m.samples[m.next] = elapsed
		m.next = (m.next + 1) % p.window
	}
}

// Measurement returns a copy of the statistics for a named section.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, ok := p.measurements[name]
	if !ok {
		return Measurement{}, false
	}
	return m.clone(), true
}

// Measurements returns copies of all sections sorted by name.
func (p *Profiler) Measurements() []Measurement {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]Measurement, 0, len(p.measurements))
	for _, m := range p.measurements {
		result = append(result, m.clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report renders every section as a plain-text table.
func (p *Profiler) Report() string {
	measurements := p.Measurements()
	if len(measurements) == 0 {
		return "No measurements recorded"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %8s %12s %12s %12s %12s\n", "section", "count", "avg", "p95", "min", "max")
	for _, m := range measurements {
		fmt.Fprintf(&sb, "%-16s %8d %12v %12v %12v %12v\n",
			m.Name, m.Count, m.Average(), m.Percentile(95), m.Min, m.Max)
	}
	return sb.String()
}

func (m *Measurement) clone() Measurement {
	c := *m
	c.samples = append([]time.Duration(nil), m.samples...)
	return c
}

// Average returns the mean duration.
func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Percentile returns the nearest-rank percentile (0-100) of the recent window.
func (m Measurement) Percentile(pct float64) time.Duration {
	if len(m.samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), m.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int(float64(len(sorted)-1) * pct / 100)
	if index < 0 {
		index = 0
	} else if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// BlockProfiler times processing blocks and relates them to the audio time
// they cover.
type BlockProfiler struct {
	*Profiler
	sampleRate float64
	frames     atomic.Uint64
}

// BlockSection is the section name BlockProfiler records under.
const BlockSection = "process"

// NewBlockProfiler creates a profiler for blocks at the given sample rate.
func NewBlockProfiler(sampleRate float64) *BlockProfiler {
	return &BlockProfiler{
		Profiler:   NewProfiler(1000),
		sampleRate: sampleRate,
	}
}

// Block starts timing a block of the given frame count.
func (b *BlockProfiler) Block(frames int) func() {
	b.frames.Add(uint64(frames))
	return b.Start(BlockSection)
}

// Frames returns the total number of frames profiled.
func (b *BlockProfiler) Frames() uint64 {
	return b.frames.Load()
}

// Load returns processing time as a percentage of the audio time processed.
func (b *BlockProfiler) Load() float64 {
	m, ok := b.Measurement(BlockSection)
	frames := b.frames.Load()
	if !ok || frames == 0 || b.sampleRate <= 0 {
		return 0
	}
	audio := float64(frames) / b.sampleRate * float64(time.Second)
	return float64(m.Total) / audio * 100
}

// Reset clears measurements and the frame count.
func (b *BlockProfiler) Reset() {
	b.Profiler.Reset()
	b.frames.Store(0)
}

// BlockReport extends Report with the sample rate, frame count and load.
func (b *BlockProfiler) BlockReport() string {
	var sb strings.Builder
	sb.WriteString(b.Report())
	fmt.Fprintf(&sb, "sample rate %.0f Hz, %d frames, load %.2f%%\n", b.sampleRate, b.Frames(), b.Load())
	return sb.String()
}
