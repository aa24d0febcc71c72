package delay

import "strconv"

// Mode selects how historical taps are mixed into the output and how the read
// cursor drifts. Values outside 1-7 pass the gained input through untouched.
type Mode int

const (
	// ModeEcho adds the delayed tap.
	ModeEcho Mode = iota + 1
	// ModeStutter adds the delayed tap; past the midpoint of the buffer the
	// read cursor stalls on multiples of 5 and skips ahead on multiples of 7.
	ModeStutter
	// ModeReplace outputs only the delayed tap.
	ModeReplace
	// ModeRing multiplies the input by the delayed tap.
	ModeRing
	// ModeDoubleTap adds the delayed tap and the scaled tap.
	ModeDoubleTap
	// ModeJitter adds the delayed tap and jerks the read cursor by 3 slots on
	// multiples of 3.
	ModeJitter
	// ModeChaos combines ModeDoubleTap mixing with both the jitter and the
	// stutter cursor rules.
	ModeChaos
)

// NumModes is the number of defined modes.
const NumModes = 7

// stutterThreshold is the write cursor value past which the stutter rule
// applies.
const stutterThreshold = 199999

var modeNames = [...]string{
	ModeEcho:      "echo",
	ModeStutter:   "stutter",
	ModeReplace:   "replace",
	ModeRing:      "ring",
	ModeDoubleTap: "double-tap",
	ModeJitter:    "jitter",
	ModeChaos:     "chaos",
}

// Valid reports whether m is one of the seven defined modes.
func (m Mode) Valid() bool {
	return m >= ModeEcho && m <= ModeChaos
}

func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return "bypass(" + strconv.Itoa(int(m)) + ")"
}

// Mix returns the output for a gained input sample, the delayed tap prev and
// the scaled tap prev2.
func (m Mode) Mix(sample, prev, prev2 float32) float32 {
	switch m {
	case ModeEcho, ModeStutter, ModeJitter:
		return sample + prev
	case ModeReplace:
		return prev
	case ModeRing:
		return sample * prev
	case ModeDoubleTap, ModeChaos:
		return sample + (prev + prev2)
	default:
		return sample
	}
}

// Perturb returns the read cursor delta applied on top of the baseline +1.
// writeCursor is the write cursor after this step's write, before wrapping.
func (m Mode) Perturb(writeCursor int) int {
	switch m {
	case ModeStutter:
		return stutter(writeCursor)
	case ModeJitter:
		return jitter(writeCursor)
	case ModeChaos:
		return jitter(writeCursor) + stutter(writeCursor)
	default:
		return 0
	}
}

// stutter checks %5 before %7; below the threshold the cursor runs at
// double speed.
func stutter(w int) int {
	if w > stutterThreshold {
		if w%5 == 0 {
			return -1
		} else if w%7 == 0 {
			return 2
		}
		return 0
	}
	return 1
}

func jitter(w int) int {
	if w%3 == 0 {
		if w%2 == 0 {
			return -3
		}
		return 3
	}
	return 0
}
