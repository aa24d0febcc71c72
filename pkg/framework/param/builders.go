package param

import (
	"fmt"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter.
// Options must be sorted by value.
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}
		// Numeric input selects by value
		if v, err := IntegerParser(str); err == nil {
			return v, nil
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	minVal, maxVal := 0.0, 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}

	b := New(id, name).
		Range(minVal, maxVal).
		Steps(int32(maxVal - minVal)).
		Formatter(formatter, parser)
	b.param.Flags |= IsList
	if len(options) > 0 {
		b.Default(options[0].Value)
	}
	return b
}

// GainParameter creates a gain parameter in decibels. The processor reads it
// as linear gain through DBToGain.
func GainParameter(id uint32, name string, minDB, maxDB float64) *Builder {
	return New(id, name).
		Range(minDB, maxDB).
		Default(0).
		Unit("dB").
		Formatter(DecibelFormatter, DecibelParser)
}

// IntegerParameter creates a stepped parameter over an inclusive integer range
func IntegerParameter(id uint32, name string, min, max, defaultVal int) *Builder {
	return New(id, name).
		Integer(min, max).
		Default(float64(defaultVal)).
		Formatter(IntegerFormatter, IntegerParser)
}
