package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	approx "github.com/cwbudde/algo-approx"
)

// Common parameter formatters, parsers and unit conversions

const ln10Over20 = math.Ln10 / 20

// DBToGain converts decibels to a linear gain factor.
func DBToGain(db float64) float64 {
	return float64(approx.FastExp(float32(db * ln10Over20)))
}

// GainToDB converts a linear gain factor to decibels. Non-positive gains map
// to -Inf.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(gain)
}

// DecibelFormatter formats dB values
func DecibelFormatter(db float64) string {
	if db <= -60 {
		return "-∞ dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}

// DecibelParser parses dB strings
func DecibelParser(str string) (float64, error) {
	if strings.Contains(str, "∞") || strings.Contains(strings.ToLower(str), "inf") {
		return -96.0, nil // Practical minimum
	}
	str = strings.TrimSuffix(strings.TrimSpace(str), "dB")
	str = strings.TrimSuffix(strings.TrimSpace(str), "db")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// IntegerFormatter formats a stepped value without decimals
func IntegerFormatter(value float64) string {
	return strconv.Itoa(int(math.Round(value)))
}

// IntegerParser parses a number and rounds it to the nearest integer
func IntegerParser(str string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, err
	}
	return math.Round(v), nil
}
