package delay

import "testing"

func TestModeMix(t *testing.T) {
	const s, p, p2 = float32(0.5), float32(0.25), float32(0.125)

	tests := []struct {
		mode Mode
		want float32
	}{
		{ModeEcho, s + p},
		{ModeStutter, s + p},
		{ModeReplace, p},
		{ModeRing, s * p},
		{ModeDoubleTap, s + (p + p2)},
		{ModeJitter, s + p},
		{ModeChaos, s + (p + p2)},
		{Mode(0), s},
		{Mode(8), s},
		{Mode(-1), s},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.Mix(s, p, p2); got != tt.want {
				t.Errorf("Mix = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestModePerturb(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		write int
		want  int
	}{
		{"EchoNone", ModeEcho, 200005, 0},
		{"ReplaceNone", ModeReplace, 6, 0},
		{"BypassNone", Mode(0), 6, 0},

		{"StutterBelowThreshold", ModeStutter, 100000, 1},
		{"StutterAtThreshold", ModeStutter, 199999, 1},
		{"StutterMod5", ModeStutter, 200005, -1},
		{"StutterMod7", ModeStutter, 200011, 2},
		{"StutterMod5WinsOverMod7", ModeStutter, 200025, -1},
		{"StutterNeither", ModeStutter, 200001, 0},

		{"JitterEven", ModeJitter, 6, -3},
		{"JitterOdd", ModeJitter, 9, 3},
		{"JitterNotMod3", ModeJitter, 4, 0},

		{"ChaosBelowThreshold", ModeChaos, 30, -2},
		{"ChaosBelowThresholdNoJitter", ModeChaos, 31, 1},
		{"ChaosBothRules", ModeChaos, 200010, -4},
		{"ChaosOddMod3Mod7", ModeChaos, 200109, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Perturb(tt.write); got != tt.want {
				t.Errorf("%s.Perturb(%d) = %d, want %d", tt.mode, tt.write, got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if ModeChaos.String() != "chaos" {
		t.Errorf("Unexpected name %q", ModeChaos.String())
	}
	if Mode(9).String() != "bypass(9)" {
		t.Errorf("Unexpected name %q", Mode(9).String())
	}
	if Mode(0).Valid() || !ModeEcho.Valid() || Mode(NumModes+1).Valid() {
		t.Error("Valid reports the wrong range")
	}
}
