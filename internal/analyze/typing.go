// Package analyze computes behavioral metrics over windowed event views.
// Every function is pure: inputs are event slices from the window store plus
// the analysis settings, outputs are value types. Degenerate inputs (no
// events, zero spans) produce zeroes via explicit guards, never NaN or Inf.
package analyze

import (
	"time"

	"github.com/davrk/keypulse/internal/model"
)

const (
	// pauseThreshold is the keystroke gap counted as a pause.
	pauseThreshold = 2.0
	// burstThreshold is the keystroke gap below which a run may qualify as a burst.
	burstThreshold = 0.1
	// burstMinRun is the minimum run length of fast intervals counted as one burst.
	burstMinRun = 3
	// expectedMaxVariance normalizes interval variance into a 0-100 scale.
	expectedMaxVariance = 0.5
)

// Typing derives keystroke statistics from ordered key events in the window.
// Modifier keys are excluded: holding shift or ctrl is not typing output.
// Fewer than two typing keystrokes yields the zero value.
func Typing(events []model.KeyEvent, cfg model.Settings) model.TypingMetrics {
	typed := make([]model.KeyEvent, 0, len(events))
	for _, e := range events {
		if e.Category != model.KeyModifier {
			typed = append(typed, e)
		}
	}
	if len(typed) < 2 {
		return model.TypingMetrics{}
	}

	span := typed[len(typed)-1].Time.Sub(typed[0].Time).Seconds()

	var wpm float64
	if span > 0 {
		charsPerMinute := float64(len(typed)) / span * 60
		wpm = charsPerMinute / 5
	}
	// raw_wpm equals wpm: error and correction tracking is deliberately
	// out of scope, so there is nothing to subtract.
	rawWPM := wpm

	intervals := make([]float64, len(typed)-1)
	for i := 1; i < len(typed); i++ {
		intervals[i-1] = typed[i].Time.Sub(typed[i-1].Time).Seconds()
	}

	avgInterval := mean(intervals)
	variance := populationVariance(intervals, avgInterval)

	rhythmConsistency := clamp(100-(variance/expectedMaxVariance)*100, 0, 100)

	pauses := 0
	for _, gap := range intervals {
		if gap > pauseThreshold {
			pauses++
		}
	}
	pauseFrequency := float64(pauses) / float64(len(intervals)) * 100

	accuracy := clamp(100-pauseFrequency/2-variance*100, 0, 100)

	var wpmFactor float64
	if cfg.BaselineWPM > 0 {
		wpmFactor = clamp((cfg.BaselineWPM-wpm)/cfg.BaselineWPM, 0, 1) * 100
	}
	varianceFactor := clamp(variance/expectedMaxVariance*100, 0, 100)
	fatigueScore := clamp((wpmFactor+varianceFactor+pauseFrequency)/3, 0, 100)
	healthScore := clamp(100-fatigueScore+(rhythmConsistency-50)/2, 0, 100)

	return model.TypingMetrics{
		WPM:                wpm,
		RawWPM:             rawWPM,
		AccuracyScore:      accuracy,
		RhythmConsistency:  rhythmConsistency,
		FatigueScore:       fatigueScore,
		HealthScore:        healthScore,
		AvgInterval:        avgInterval,
		VarianceOfInterval: variance,
		PauseFrequency:     pauseFrequency,
		BurstCount:         countBursts(intervals),
	}
}

// countBursts scans intervals for runs of at least burstMinRun consecutive
// gaps below burstThreshold. A qualifying run still in progress at the end of
// the sequence counts.
func countBursts(intervals []float64) int {
	bursts := 0
	run := 0
	for _, gap := range intervals {
		if gap < burstThreshold {
			run++
			continue
		}
		if run >= burstMinRun {
			bursts++
		}
		run = 0
	}
	if run >= burstMinRun {
		bursts++
	}
	return bursts
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationVariance(values []float64, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// spanSeconds is shared by the mouse analyzer: elapsed seconds from the first
// event to now, never negative.
func spanSeconds(first, now time.Time) float64 {
	s := now.Sub(first).Seconds()
	if s < 0 {
		return 0
	}
	return s
}
