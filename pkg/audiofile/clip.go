// Package audiofile loads and saves clips of planar float audio.
package audiofile

import (
	"time"
)

// Clip is planar audio normalized to ±1.
type Clip struct {
	SampleRate int
	Channels   [][]float32
}

// NewClip allocates a silent clip.
func NewClip(sampleRate, channels, frames int) *Clip {
	c := &Clip{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channels),
	}
	for ch := range c.Channels {
		c.Channels[ch] = make([]float32, frames)
	}
	return c
}

// NumChannels returns the channel count.
func (c *Clip) NumChannels() int {
	return len(c.Channels)
}

// Frames returns the length of the shortest channel.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	n := len(c.Channels[0])
	for _, ch := range c.Channels[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}

// Duration returns the playing time of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Stereo returns a two-channel view of the clip. Mono is duplicated, extra
// channels are dropped and an empty clip gains two silent channels. Sample
// slices are shared with c.
func (c *Clip) Stereo() *Clip {
	switch len(c.Channels) {
	case 0:
		return &Clip{SampleRate: c.SampleRate, Channels: [][]float32{{}, {}}}
	case 1:
		return &Clip{SampleRate: c.SampleRate, Channels: [][]float32{c.Channels[0], c.Channels[0]}}
	case 2:
		return c
	default:
		return &Clip{SampleRate: c.SampleRate, Channels: c.Channels[:2]}
	}
}

// Interleave writes frames [start, start+n) into dst as interleaved samples
// and returns the number of frames written.
func (c *Clip) Interleave(dst []float32, start int) int {
	channels := len(c.Channels)
	if channels == 0 {
		return 0
	}
	n := len(dst) / channels
	if rest := c.Frames() - start; rest < n {
		n = rest
	}
	if n <= 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		for ch := 0; ch < channels; ch++ {
			dst[i*channels+ch] = c.Channels[ch][start+i]
		}
	}
	return n
}
