package analyze

import (
	"testing"

	"github.com/davrk/keypulse/internal/model"
)

func TestFatigueOverallBoundary(t *testing.T) {
	typing := model.TypingMetrics{FatigueScore: 80}
	mouse := model.MouseMetrics{ActiveTimePercentage: 40}
	got := Fatigue(typing, mouse)
	if !almostEqual(got.OverallFatigue, 70) {
		t.Fatalf("expected overall 70, got %v", got.OverallFatigue)
	}
	// Boundaries are lower-edge inclusive: exactly 70 classifies as high.
	if got.Level != model.FatigueHigh {
		t.Fatalf("expected high at 70, got %q", got.Level)
	}
}

func TestClassifyFatigueLevels(t *testing.T) {
	tests := []struct {
		score float64
		want  model.FatigueLevel
	}{
		{0, model.FatigueMinimal},
		{29.9, model.FatigueMinimal},
		{30, model.FatigueMild},
		{49.9, model.FatigueMild},
		{50, model.FatigueModerate},
		{69.9, model.FatigueModerate},
		{70, model.FatigueHigh},
		{84.9, model.FatigueHigh},
		{85, model.FatigueSevere},
		{100, model.FatigueSevere},
	}
	for _, tc := range tests {
		if got := ClassifyFatigue(tc.score); got != tc.want {
			t.Fatalf("score %v: expected %q, got %q", tc.score, tc.want, got)
		}
	}
}

func TestFatigueFlags(t *testing.T) {
	typing := model.TypingMetrics{
		WPM:               25,
		PauseFrequency:    25,
		RhythmConsistency: 40,
		FatigueScore:      75,
	}
	mouse := model.MouseMetrics{
		ActiveTimePercentage: 20,
		MovementSmoothness:   45,
		IdlePeriods:          6,
	}
	got := Fatigue(typing, mouse)
	flags := []struct {
		name  string
		value bool
	}{
		{"low wpm", got.LowWPM},
		{"high pause frequency", got.HighPauseFrequency},
		{"irregular rhythm", got.IrregularRhythm},
		{"high fatigue score", got.HighFatigueScore},
		{"low activity", got.LowActivity},
		{"jerky movements", got.JerkyMovements},
		{"excessive idle", got.ExcessiveIdle},
	}
	for _, f := range flags {
		if !f.value {
			t.Fatalf("expected %s flag set", f.name)
		}
	}
}

func TestFatigueFlagsClear(t *testing.T) {
	typing := model.TypingMetrics{WPM: 60, RhythmConsistency: 90, FatigueScore: 10}
	mouse := model.MouseMetrics{ActiveTimePercentage: 95, MovementSmoothness: 90}
	got := Fatigue(typing, mouse)
	if got.LowWPM || got.HighPauseFrequency || got.IrregularRhythm || got.HighFatigueScore ||
		got.LowActivity || got.JerkyMovements || got.ExcessiveIdle {
		t.Fatalf("expected no flags, got %+v", got)
	}
	if got.Level != model.FatigueMinimal {
		t.Fatalf("expected minimal level, got %q", got.Level)
	}
}
