package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/loopdrift/loopdrift/pkg/audiofile"
	"github.com/loopdrift/loopdrift/pkg/framework/plugin"
	"github.com/loopdrift/loopdrift/pkg/framework/process"
)

// SampleSource fills dst with interleaved stereo samples.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// ClipSource plays a clip through a processor, interleaving the stereo
// output. The clip repeats loops times (0 repeats forever) and the source
// then plays tailFrames of silence so repeats can ring out.
type ClipSource struct {
	proc       plugin.Processor
	ctx        *process.Context
	clip       *audiofile.Clip
	loops      int
	tailFrames int

	pos       int
	loop      int
	tailLeft  int
	finished  bool
	blockSize int
}

// NewClipSource initializes and activates proc for the clip's sample rate.
func NewClipSource(proc plugin.Processor, clip *audiofile.Clip, blockSize, loops, tailFrames int) (*ClipSource, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("host: invalid block size %d", blockSize)
	}
	if loops < 0 || tailFrames < 0 {
		return nil, errors.New("host: loops and tail must not be negative")
	}
	stereo := clip.Stereo()
	if stereo.Frames() == 0 && loops == 0 {
		return nil, errors.New("host: cannot loop an empty clip forever")
	}
	if err := proc.Initialize(float64(clip.SampleRate), int32(blockSize)); err != nil {
		return nil, fmt.Errorf("host: initialize: %w", err)
	}
	if err := proc.SetActive(true); err != nil {
		return nil, fmt.Errorf("host: activate: %w", err)
	}

	ctx := process.NewContext(2, blockSize, proc.GetParameters())
	ctx.SampleRate = float64(clip.SampleRate)

	return &ClipSource{
		proc:       proc,
		ctx:        ctx,
		clip:       stereo,
		loops:      loops,
		tailFrames: tailFrames,
		tailLeft:   tailFrames,
		blockSize:  blockSize,
	}, nil
}

// Process implements SampleSource. Once finished it writes silence.
func (s *ClipSource) Process(dst []float32) {
	frames := len(dst) / 2
	for done := 0; done < frames; {
		if s.finished {
			clear(dst[done*2:])
			return
		}
		n := min(frames-done, s.blockSize)
		s.fill(n)
		s.proc.ProcessAudio(s.ctx)
		for i := 0; i < n; i++ {
			dst[(done+i)*2] = s.ctx.Output[0][i]
			dst[(done+i)*2+1] = s.ctx.Output[1][i]
		}
		done += n
	}
}

// fill loads the next n input frames, wrapping the clip and then counting
// down the tail.
func (s *ClipSource) fill(n int) {
	s.ctx.SetBlockSize(n)
	length := s.clip.Frames()
	for i := 0; i < n; i++ {
		var l, r float32
		if s.playingClip() {
			l, r = s.clip.Channels[0][s.pos], s.clip.Channels[1][s.pos]
			s.pos++
			if s.pos >= length {
				s.pos = 0
				s.loop++
			}
		} else if s.tailLeft > 0 {
			s.tailLeft--
		}
		s.ctx.Input[0][i], s.ctx.Input[1][i] = l, r
	}
	if !s.playingClip() && s.tailLeft == 0 {
		s.finished = true
	}
}

func (s *ClipSource) playingClip() bool {
	return s.clip.Frames() > 0 && (s.loops == 0 || s.loop < s.loops)
}

// Finished implements FinishingSource.
func (s *ClipSource) Finished() bool {
	return s.finished
}

// Loops returns how many times the clip has played through.
func (s *ClipSource) Loops() int {
	return s.loop
}

// StreamReader adapts a SampleSource to an io.Reader of interleaved
// little-endian float32 stereo frames.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

// NewStreamReader creates a reader over source.
func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

// Read fills p with whole frames and returns io.EOF with the last frames
// of a finished source.
func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, v := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

// Close implements io.Closer.
func (r *StreamReader) Close() error { return nil }

// Close deactivates the processor.
func (s *ClipSource) Close() error {
	return s.proc.SetActive(false)
}
