package analyze

import "github.com/davrk/keypulse/internal/model"

// Flag thresholds for the fatigue indicators.
const (
	lowWPMThreshold        = 30
	highPauseFreqThreshold = 20
	irregularRhythmBelow   = 50
	highFatigueScoreAbove  = 70
	lowActivityBelow       = 30
	jerkyMovementsBelow    = 50
	excessiveIdleAbove     = 5
)

// Fatigue blends the typing and mouse metrics into an overall fatigue score
// with warning flags and a level classification.
func Fatigue(typing model.TypingMetrics, mouse model.MouseMetrics) model.FatigueIndicators {
	overall := (typing.FatigueScore + (100 - mouse.ActiveTimePercentage)) / 2
	return model.FatigueIndicators{
		OverallFatigue: overall,
		Level:          ClassifyFatigue(overall),

		LowWPM:             typing.WPM < lowWPMThreshold,
		HighPauseFrequency: typing.PauseFrequency > highPauseFreqThreshold,
		IrregularRhythm:    typing.RhythmConsistency < irregularRhythmBelow,
		HighFatigueScore:   typing.FatigueScore > highFatigueScoreAbove,

		LowActivity:    mouse.ActiveTimePercentage < lowActivityBelow,
		JerkyMovements: mouse.MovementSmoothness < jerkyMovementsBelow,
		ExcessiveIdle:  mouse.IdlePeriods > excessiveIdleAbove,
	}
}

// ClassifyFatigue buckets an overall fatigue score. Boundaries are inclusive
// on the lower edge: a score of exactly 70 is "high".
func ClassifyFatigue(overall float64) model.FatigueLevel {
	switch {
	case overall < 30:
		return model.FatigueMinimal
	case overall < 50:
		return model.FatigueMild
	case overall < 70:
		return model.FatigueModerate
	case overall < 85:
		return model.FatigueHigh
	default:
		return model.FatigueSevere
	}
}
