package host

import (
	"fmt"
	"sync"

	"github.com/loopdrift/loopdrift/pkg/framework/plugin"
	"github.com/loopdrift/loopdrift/pkg/framework/process"
)

// periodRunner drives a processor from a realtime callback. The callback
// holds mu while it processes, so stop waits out an in-flight period.
type periodRunner struct {
	mu      sync.Mutex
	proc    plugin.Processor
	ctx     *process.Context
	running bool
}

func newPeriodRunner(proc plugin.Processor, sampleRate float64, maxBlockSize int) *periodRunner {
	ctx := process.NewContext(2, maxBlockSize, proc.GetParameters())
	ctx.SampleRate = sampleRate
	return &periodRunner{proc: proc, ctx: ctx}
}

func (r *periodRunner) start() error {
	if err := r.proc.SetActive(true); err != nil {
		return fmt.Errorf("activate processor: %w", err)
	}
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	return nil
}

// stop silences later periods and then deactivates the processor, clearing
// its history.
func (r *periodRunner) stop() error {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return r.proc.SetActive(false)
}

// runPeriod processes one stereo period in chunks of the context's block
// size. A stopped runner, or one being stopped, outputs silence.
func runPeriod[S ~float32](r *periodRunner, in, out [2][]S) {
	if !r.mu.TryLock() {
		silence(out)
		return
	}
	defer r.mu.Unlock()
	if !r.running {
		silence(out)
		return
	}

	frames := min(len(in[0]), len(in[1]), len(out[0]), len(out[1]))
	chunk := r.ctx.MaxBlockSize()
	for pos := 0; pos < frames; pos += chunk {
		n := min(chunk, frames-pos)
		r.ctx.SetBlockSize(n)
		for ch := 0; ch < 2; ch++ {
			for i := 0; i < n; i++ {
				r.ctx.Input[ch][i] = float32(in[ch][pos+i])
			}
		}
		r.proc.ProcessAudio(r.ctx)
		for ch := 0; ch < 2; ch++ {
			for i := 0; i < n; i++ {
				out[ch][pos+i] = S(r.ctx.Output[ch][i])
			}
		}
	}
}

func silence[S ~float32](out [2][]S) {
	for ch := range out {
		clear(out[ch])
	}
}
