// Package speaker plays host sources through the system audio device.
package speaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GeoffreyPlitt/debuggo"
	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/loopdrift/loopdrift/pkg/host"
)

var speakerDebug = debuggo.Debug("loopdrift:speaker")

// pollInterval is how often Wait checks whether playback has ended.
const pollInterval = 20 * time.Millisecond

var (
	contextOnce sync.Once
	audioCtx    *ebitaudio.Context
	contextRate int
)

// sharedContext returns the process-wide audio context. The device runs at
// one rate for the life of the process.
func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		audioCtx = ebitaudio.NewContext(sampleRate)
		speakerDebug("audio context opened at %d Hz", sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("speaker: audio context already running at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return audioCtx, nil
}

// Player streams a host.SampleSource to the speakers.
type Player struct {
	player *ebitaudio.Player
	reader *host.StreamReader
}

// NewPlayer creates a paused player for source at sampleRate.
func NewPlayer(sampleRate int, source host.SampleSource) (*Player, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := host.NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("speaker: create player: %w", err)
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }

// IsPlaying reports whether the device is still consuming samples.
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns what the listener has heard so far.
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// Wait blocks until playback ends or ctx is done.
func (p *Player) Wait(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for p.player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Stop pauses and releases the player.
func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("speaker: close player: %w", err)
	}
	return p.reader.Close()
}
