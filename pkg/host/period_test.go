package host

import (
	"testing"

	"github.com/loopdrift/loopdrift/pkg/dsp/delay"
	"github.com/loopdrift/loopdrift/pkg/framework/param"
	"github.com/loopdrift/loopdrift/pkg/loopdrift"
)

// portSample mirrors a host-defined sample type such as jack.AudioSample.
type portSample float32

func newRunner(t *testing.T, maxBlockSize int) (*periodRunner, *loopdrift.Processor) {
	t.Helper()
	proc := loopdrift.NewProcessor()
	if err := proc.Initialize(48000, int32(maxBlockSize)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return newPeriodRunner(proc, 48000, maxBlockSize), proc
}

func ports(frames int, fill portSample) (in, out [2][]portSample) {
	for ch := 0; ch < 2; ch++ {
		in[ch] = make([]portSample, frames)
		out[ch] = make([]portSample, frames)
		for i := range out[ch] {
			in[ch][i] = portSample(float32(i%7)/7 - float32(ch)/3)
			out[ch][i] = fill
		}
	}
	return in, out
}

func TestRunPeriodChunksMatchEngine(t *testing.T) {
	r, _ := newRunner(t, 32)
	if err := r.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// 100 frames through 32-frame blocks: 32, 32, 32, 4
	in, out := ports(100, 9)
	runPeriod(r, in, out)

	want := make([][]float32, 2)
	for ch := range want {
		want[ch] = make([]float32, 100)
		for i, v := range in[ch] {
			want[ch][i] = float32(v)
		}
	}
	delay.NewEngine().ProcessBlock(want, delay.Fixed{
		Gain:  float32(param.DBToGain(0)),
		Delay: 1,
		Mode:  delay.ModeEcho,
		Time:  1,
	})
	for ch := 0; ch < 2; ch++ {
		for i, got := range out[ch] {
			if float32(got) != want[ch][i] {
				t.Fatalf("ch %d frame %d: expected %f, got %f", ch, i, want[ch][i], got)
			}
		}
	}
}

func TestRunPeriodStopped(t *testing.T) {
	r, proc := newRunner(t, 64)

	// Not started yet
	in, out := ports(64, 9)
	runPeriod(r, in, out)
	assertSilent(t, "before start", out)

	if err := r.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	in, out = ports(64, 9)
	runPeriod(r, in, out)
	if proc.Engine().History().WriteCursor() == 0 {
		t.Fatal("Expected history to advance while running")
	}

	if err := r.stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if proc.IsActive() {
		t.Error("Expected processor to be inactive after stop")
	}
	if got := proc.Engine().History().WriteCursor(); got != 0 {
		t.Errorf("Expected history reset after stop, got write cursor %d", got)
	}

	in, out = ports(64, 9)
	runPeriod(r, in, out)
	assertSilent(t, "after stop", out)
	if got := proc.Engine().History().WriteCursor(); got != 0 {
		t.Errorf("Expected no processing after stop, got write cursor %d", got)
	}
}

func TestRunPeriodWhileStopping(t *testing.T) {
	r, proc := newRunner(t, 64)
	if err := r.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// A stop in progress holds the lock; the period must not block or process
	r.mu.Lock()
	in, out := ports(64, 9)
	runPeriod(r, in, out)
	r.mu.Unlock()

	assertSilent(t, "while stopping", out)
	if got := proc.Engine().History().WriteCursor(); got != 0 {
		t.Errorf("Expected no processing, got write cursor %d", got)
	}
}

func assertSilent(t *testing.T, when string, out [2][]portSample) {
	t.Helper()
	for ch := range out {
		for i, v := range out[ch] {
			if v != 0 {
				t.Fatalf("%s: expected silence at ch %d frame %d, got %f", when, ch, i, v)
			}
		}
	}
}
