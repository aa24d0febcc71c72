package audiofile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

var fileDebug = debuggo.Debug("loopdrift:audiofile")

// maxPrealloc bounds the per-channel allocation trusted from a FLAC header.
const maxPrealloc = 1 << 26

// ErrUnsupportedFormat is returned for file types other than WAV and FLAC.
var ErrUnsupportedFormat = errors.New("unsupported audio format (supported: .wav, .flac)")

// Load reads a WAV or FLAC file, chosen by extension.
func Load(path string) (*Clip, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".flac" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var clip *Clip
	if ext == ".wav" {
		clip, err = DecodeWAV(file)
	} else {
		clip, err = DecodeFLAC(file)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fileDebug("loaded %s (rate: %d Hz, channels: %d, frames: %d)",
		path, clip.SampleRate, clip.NumChannels(), clip.Frames())
	return clip, nil
}

// DecodeWAV reads a PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read WAV data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, errors.New("WAV file has no channels")
	}

	channels := buf.Format.NumChannels
	clip := NewClip(buf.Format.SampleRate, channels, len(buf.Data)/channels)
	scale := fullScale(int(decoder.BitDepth))
	for i, v := range buf.Data[:clip.Frames()*channels] {
		clip.Channels[i%channels][i/channels] = float32(float64(v) / scale)
	}
	return clip, nil
}

// DecodeFLAC reads a FLAC stream frame by frame.
func DecodeFLAC(r io.Reader) (*Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("open FLAC stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil || info.NChannels == 0 {
		return nil, errors.New("FLAC stream has no stream info")
	}

	channels := int(info.NChannels)
	clip := &Clip{
		SampleRate: int(info.SampleRate),
		Channels:   make([][]float32, channels),
	}
	if info.NSamples > 0 && info.NSamples < maxPrealloc {
		for ch := range clip.Channels {
			clip.Channels[ch] = make([]float32, 0, info.NSamples)
		}
	}

	scale := fullScale(int(info.BitsPerSample))
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read FLAC frame: %w", err)
		}
		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			for _, v := range frame.Subframes[ch].Samples {
				clip.Channels[ch] = append(clip.Channels[ch], float32(float64(v)/scale))
			}
		}
	}
	return clip, nil
}

// SaveWAV writes clip as 16- or 24-bit PCM, clamping samples to ±1.
func SaveWAV(path string, clip *Clip, bitDepth int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeWAV(file, clip, bitDepth); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fileDebug("saved %s (%d-bit, %d frames)", path, bitDepth, clip.Frames())
	return nil
}

// EncodeWAV writes clip as 16- or 24-bit PCM.
func EncodeWAV(w io.WriteSeeker, clip *Clip, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported bit depth %d (use 16 or 24)", bitDepth)
	}
	channels := clip.NumChannels()
	if channels == 0 {
		return errors.New("clip has no channels")
	}
	if clip.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", clip.SampleRate)
	}

	frames := clip.Frames()
	peak := fullScale(bitDepth) - 1
	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			v := float64(clip.Channels[ch][i])
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			data[i*channels+ch] = int(math.Round(v * peak))
		}
	}

	encoder := wav.NewEncoder(w, clip.SampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			SampleRate:  clip.SampleRate,
			NumChannels: channels,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("write WAV data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finish WAV: %w", err)
	}
	return nil
}

// fullScale is the magnitude of the most negative sample at a bit depth.
func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	return float64(int64(1) << (bitDepth - 1))
}
