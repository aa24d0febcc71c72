package loopdrift

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/loopdrift/loopdrift/pkg/dsp/delay"
	"github.com/loopdrift/loopdrift/pkg/framework/param"
	"github.com/loopdrift/loopdrift/pkg/framework/process"
)

func newInitialized(t testing.TB, sampleRate float64, blockSize int) (*Processor, *process.Context) {
	t.Helper()
	p := NewProcessor()
	if err := p.Initialize(sampleRate, int32(blockSize)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := p.SetActive(true); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	ctx := process.NewContext(2, blockSize, p.GetParameters())
	ctx.SampleRate = sampleRate
	return p, ctx
}

func noise(seed int64, n int) []float32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float32, n)
	for i := range out {
		out[i] = rng.Float32()*2 - 1
	}
	return out
}

func TestParameters(t *testing.T) {
	p := NewProcessor()
	r := p.GetParameters()

	if r.Count() != 4 {
		t.Fatalf("Expected 4 parameters, got %d", r.Count())
	}

	tests := []struct {
		id    uint32
		name  string
		plain float64
		text  string
	}{
		{ParamGain, "Gain", 0, "0.0 dB"},
		{ParamDelay, "Delay", 1, "1"},
		{ParamMode, "Mode", 1, "echo"},
		{ParamTime, "Time", 1, "1"},
	}
	for _, tt := range tests {
		prm := r.Get(tt.id)
		if prm == nil || prm.Name != tt.name {
			t.Errorf("Parameter %d: expected %s, got %+v", tt.id, tt.name, prm)
			continue
		}
		if prm.GetPlainValue() != tt.plain {
			t.Errorf("%s: expected default %f, got %f", tt.name, tt.plain, prm.GetPlainValue())
		}
		if got := prm.FormatValue(prm.GetValue()); got != tt.text {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.text, got)
		}
	}

	mode := r.ByName("mode")
	normalized, err := mode.ParseValue("chaos")
	if err != nil {
		t.Fatalf("ParseValue failed: %v", err)
	}
	if mode.Denormalize(normalized) != float64(delay.ModeChaos) {
		t.Errorf("Expected chaos = %d, got %f", delay.ModeChaos, mode.Denormalize(normalized))
	}

	if p.GetTailSamples() != delay.Capacity || p.GetLatencySamples() != 0 {
		t.Errorf("Unexpected tail/latency %d/%d", p.GetTailSamples(), p.GetLatencySamples())
	}
	if err := p.Info().Validate(); err != nil {
		t.Errorf("Invalid plugin info: %v", err)
	}
}

func TestProcessMatchesEngine(t *testing.T) {
	tests := []struct {
		name  string
		delay float64
		mode  float64
		time  float64
	}{
		{"Defaults", 1, 1, 1},
		{"DoubleTap", 500, 5, 1000},
		{"Chaos", 37, 7, 640},
		{"Ring", 1000, 4, 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ctx := newInitialized(t, 48000, 256)
			r := p.GetParameters()
			r.Get(ParamDelay).SetPlainValue(tt.delay)
			r.Get(ParamMode).SetPlainValue(tt.mode)
			r.Get(ParamTime).SetPlainValue(tt.time)

			ref := delay.NewEngine()
			fixed := delay.Fixed{
				Gain:  float32(param.DBToGain(0)),
				Delay: int(tt.delay),
				Mode:  delay.Mode(tt.mode),
				Time:  int(tt.time),
			}

			left, right := noise(1, 1024), noise(2, 1024)
			want := [][]float32{append([]float32(nil), left...), append([]float32(nil), right...)}
			ref.ProcessBlock(want, fixed)

			for start := 0; start < len(left); start += 256 {
				copy(ctx.Input[0], left[start:start+256])
				copy(ctx.Input[1], right[start:start+256])
				p.ProcessAudio(ctx)
				for ch := 0; ch < 2; ch++ {
					for i, got := range ctx.Output[ch] {
						if got != want[ch][start+i] {
							t.Fatalf("ch %d frame %d: expected %f, got %f", ch, start+i, want[ch][start+i], got)
						}
					}
				}
			}
		})
	}
}

func TestProcessMonoInput(t *testing.T) {
	p, ctx := newInitialized(t, 48000, 64)
	p.GetParameters().Get(ParamMode).SetPlainValue(float64(delay.ModeReplace))

	ctx.Input = ctx.Input[:1]
	ctx.Input[0][0] = 0.5
	p.ProcessAudio(ctx)

	// Replace mode outputs only history, which starts empty
	for ch := 0; ch < 2; ch++ {
		if ctx.Output[ch][0] != 0 {
			t.Errorf("ch %d: expected 0, got %f", ch, ctx.Output[ch][0])
		}
	}
	// Both channels were written from the duplicated mono input
	if got := p.Engine().History().WriteCursor(); got != 128 {
		t.Errorf("Expected write cursor 128, got %d", got)
	}
}

func TestGainSmoothing(t *testing.T) {
	p, _ := newInitialized(t, 1000, 64)
	target := param.DBToGain(6)

	p.GetParameters().Get(ParamGain).SetPlainValue(6)

	first := float64(p.source.NextGain())
	if first <= param.DBToGain(0) || first >= target {
		t.Errorf("Expected first step between unity and %f, got %f", target, first)
	}

	var last float64
	for i := 1; i < 50; i++ {
		last = float64(p.source.NextGain())
	}
	if math.Abs(last-target)/target > 1e-3 {
		t.Errorf("Expected gain %f after 50 ms, got %f", target, last)
	}

	// Integer parameters jump
	p.GetParameters().Get(ParamDelay).SetPlainValue(321)
	if got := p.source.NextDelay(); got != 321 {
		t.Errorf("Expected delay 321 immediately, got %d", got)
	}
}

func TestDeactivateResets(t *testing.T) {
	p, ctx := newInitialized(t, 48000, 128)
	copy(ctx.Input[0], noise(3, 128))
	p.ProcessAudio(ctx)

	if p.Engine().History().WriteCursor() == 0 {
		t.Fatal("Expected history to advance")
	}

	if err := p.SetActive(false); err != nil {
		t.Fatal(err)
	}
	h := p.Engine().History()
	if h.WriteCursor() != 0 || h.ReadCursor() != delay.InitialReadCursor {
		t.Errorf("Expected reset cursors, got %d/%d", h.WriteCursor(), h.ReadCursor())
	}
	if p.Engine().LastTime() != delay.InitialReadCursor {
		t.Errorf("Expected last time reset, got %d", p.Engine().LastTime())
	}
}

func TestStateRoundTrip(t *testing.T) {
	src := NewProcessor()
	r := src.GetParameters()
	r.Get(ParamGain).SetPlainValue(-9)
	r.Get(ParamDelay).SetPlainValue(250)
	r.Get(ParamMode).SetPlainValue(6)
	r.Get(ParamTime).SetPlainValue(800)

	var buf bytes.Buffer
	if err := src.SaveState(&buf); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	dst, _ := newInitialized(t, 48000, 64)
	if err := dst.LoadState(&buf); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	for _, id := range []uint32{ParamGain, ParamDelay, ParamMode, ParamTime} {
		want := r.Get(id).GetPlainValue()
		if got := dst.GetParameters().Get(id).GetPlainValue(); got != want {
			t.Errorf("Parameter %d: expected %f, got %f", id, want, got)
		}
	}

	// Smoothers snap to loaded values
	if got, want := float64(dst.source.NextGain()), param.DBToGain(-9); math.Abs(got-want) > 1e-6 {
		t.Errorf("Expected gain %f after load, got %f", want, got)
	}
	if got := dst.source.NextMode(); got != delay.ModeJitter {
		t.Errorf("Expected jitter mode, got %v", got)
	}

	if err := dst.LoadState(bytes.NewReader([]byte("garbage!"))); err == nil {
		t.Error("Expected error for invalid state")
	}
}

func TestInitializeRejectsBadRate(t *testing.T) {
	if err := NewProcessor().Initialize(0, 512); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestProcessAudioZeroAlloc(t *testing.T) {
	p, ctx := newInitialized(t, 48000, 512)
	copy(ctx.Input[0], noise(4, 512))
	copy(ctx.Input[1], noise(5, 512))
	p.GetParameters().Get(ParamMode).SetPlainValue(7)

	allocs := testing.AllocsPerRun(20, func() {
		p.ProcessAudio(ctx)
	})
	if allocs != 0 {
		t.Errorf("Expected zero allocations, got %f", allocs)
	}
}

func BenchmarkProcessAudio(b *testing.B) {
	p, ctx := newInitialized(b, 48000, 512)
	copy(ctx.Input[0], noise(6, 512))
	copy(ctx.Input[1], noise(7, 512))
	p.GetParameters().Get(ParamMode).SetPlainValue(7)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.ProcessAudio(ctx)
	}
}
