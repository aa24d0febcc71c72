// Package preset reads and writes JSON presets: parameter values, an
// optional render tail and timed automation points.
package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/loopdrift/loopdrift/pkg/dsp/delay"
	"github.com/loopdrift/loopdrift/pkg/framework/param"
	"github.com/loopdrift/loopdrift/pkg/loopdrift"
)

var presetDebug = debuggo.Debug("loopdrift:preset")

// Parameter names used in presets and automation. They match the short
// names of the processor's parameters.
const (
	NameGain  = "gain"
	NameDelay = "delay"
	NameMode  = "mode"
	NameTime  = "time"
)

// File is the JSON schema for presets. Absent fields leave the parameter
// untouched.
type File struct {
	GainDB      *float64 `json:"gain_db,omitempty"`
	Delay       *int     `json:"delay,omitempty"`
	Mode        *int     `json:"mode,omitempty"`
	Time        *int     `json:"time,omitempty"`
	TailSeconds *float64 `json:"tail_seconds,omitempty"`
	Automation  []Point  `json:"automation,omitempty"`
}

// Point sets a parameter to a plain value at a time offset from the start
// of the input.
type Point struct {
	Param     string  `json:"param"`
	AtSeconds float64 `json:"at_seconds"`
	Value     float64 `json:"value"`
}

// Frame returns the frame index of the point at sampleRate.
func (p Point) Frame(sampleRate int) int {
	return int(p.AtSeconds*float64(sampleRate) + 0.5)
}

type limits struct{ min, max float64 }

var ranges = map[string]limits{
	NameGain:  {loopdrift.MinGainDB, loopdrift.MaxGainDB},
	NameDelay: {1, delay.ScaleDenominator},
	NameMode:  {float64(delay.ModeEcho), float64(delay.ModeChaos)},
	NameTime:  {1, delay.ScaleDenominator},
}

func checkRange(field, name string, v float64) error {
	r := ranges[name]
	if v < r.min || v > r.max {
		return fmt.Errorf("%s must be in [%g,%g], got %g", field, r.min, r.max, v)
	}
	return nil
}

// Validate checks every present field against its parameter range.
func (f *File) Validate() error {
	var errs []error
	if f.GainDB != nil {
		errs = append(errs, checkRange("gain_db", NameGain, *f.GainDB))
	}
	if f.Delay != nil {
		errs = append(errs, checkRange("delay", NameDelay, float64(*f.Delay)))
	}
	if f.Mode != nil {
		errs = append(errs, checkRange("mode", NameMode, float64(*f.Mode)))
	}
	if f.Time != nil {
		errs = append(errs, checkRange("time", NameTime, float64(*f.Time)))
	}
	if f.TailSeconds != nil && *f.TailSeconds < 0 {
		errs = append(errs, fmt.Errorf("tail_seconds must be >= 0, got %g", *f.TailSeconds))
	}
	for i, p := range f.Automation {
		field := fmt.Sprintf("automation[%d]", i)
		if _, ok := ranges[p.Param]; !ok {
			errs = append(errs, fmt.Errorf("%s.param %q is not one of gain, delay, mode, time", field, p.Param))
			continue
		}
		if p.AtSeconds < 0 {
			errs = append(errs, fmt.Errorf("%s.at_seconds must be >= 0", field))
		}
		errs = append(errs, checkRange(field+".value", p.Param, p.Value))
	}
	return errors.Join(errs...)
}

// SortAutomation orders automation points by time, keeping the file order
// of points at the same time.
func (f *File) SortAutomation() {
	sort.SliceStable(f.Automation, func(i, j int) bool {
		return f.Automation[i].AtSeconds < f.Automation[j].AtSeconds
	})
}

// Tail returns tail_seconds, or def when absent.
func (f *File) Tail(def float64) float64 {
	if f.TailSeconds == nil {
		return def
	}
	return *f.TailSeconds
}

// values returns the present parameter fields by name.
func (f *File) values() map[string]float64 {
	v := make(map[string]float64, len(ranges))
	if f.GainDB != nil {
		v[NameGain] = *f.GainDB
	}
	if f.Delay != nil {
		v[NameDelay] = float64(*f.Delay)
	}
	if f.Mode != nil {
		v[NameMode] = float64(*f.Mode)
	}
	if f.Time != nil {
		v[NameTime] = float64(*f.Time)
	}
	return v
}

var paramOrder = []string{NameGain, NameDelay, NameMode, NameTime}

// Apply sets the present fields on the registry's parameters.
func (f *File) Apply(r *param.Registry) error {
	values := f.values()
	for _, name := range paramOrder {
		v, ok := values[name]
		if !ok {
			continue
		}
		p := r.ByName(name)
		if p == nil {
			return fmt.Errorf("registry has no %q parameter", name)
		}
		p.SetPlainValue(v)
		presetDebug("%s = %s", name, p.FormatValue(p.GetValue()))
	}
	return nil
}

// Capture builds a preset from the registry's current values.
func Capture(r *param.Registry) (*File, error) {
	values := make(map[string]float64, len(paramOrder))
	for _, name := range paramOrder {
		p := r.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("registry has no %q parameter", name)
		}
		values[name] = p.GetPlainValue()
	}

	gain := values[NameGain]
	d, m, t := int(values[NameDelay]), int(values[NameMode]), int(values[NameTime])
	return &File{GainDB: &gain, Delay: &d, Mode: &m, Time: &t}, nil
}

// Parse decodes, validates and sorts a preset. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	for i := range f.Automation {
		f.Automation[i].Param = strings.ToLower(strings.TrimSpace(f.Automation[i].Param))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.SortAutomation()
	return &f, nil
}

// Load reads a preset file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	presetDebug("loaded %s (%d automation points)", path, len(f.Automation))
	return f, nil
}

// Save writes a preset file as indented JSON.
func Save(path string, f *File) error {
	if err := f.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
