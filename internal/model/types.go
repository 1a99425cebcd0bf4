// Package model defines shared data structures.
package model

import "time"

// SnapshotSchemaVersion identifies the exported snapshot layout.
// Bump when the flat record gains, loses, or renames fields.
const SnapshotSchemaVersion = 1

// KeyCategory classifies a keystroke without retaining its identity.
type KeyCategory string

// Key categories. No key code or character value is ever stored.
const (
	KeyLetter   KeyCategory = "letter"
	KeyNumber   KeyCategory = "number"
	KeyModifier KeyCategory = "modifier"
	KeySpecial  KeyCategory = "special"
)

// MouseKind classifies a mouse event.
type MouseKind string

// Mouse event kinds.
const (
	MouseMove   MouseKind = "move"
	MouseClick  MouseKind = "click"
	MouseScroll MouseKind = "scroll"
)

// KeyEvent is a single keystroke observation.
type KeyEvent struct {
	Time     time.Time
	Category KeyCategory
}

// At returns the event timestamp.
func (e KeyEvent) At() time.Time { return e.Time }

// MouseEvent is a single mouse observation with screen coordinates.
type MouseEvent struct {
	Time time.Time
	Kind MouseKind
	X    float64
	Y    float64
}

// At returns the event timestamp.
func (e MouseEvent) At() time.Time { return e.Time }

// Settings holds the tunable analysis parameters.
type Settings struct {
	AnalysisWindow      time.Duration
	InactivityThreshold time.Duration
	DataRetention       time.Duration
	UpdateInterval      time.Duration
	BaselineWPM         float64
	FatigueThreshold    float64
	HealthThreshold     float64
}

// DefaultSettings returns the baseline analysis parameters.
func DefaultSettings() Settings {
	return Settings{
		AnalysisWindow:      60 * time.Second,
		InactivityThreshold: 30 * time.Second,
		DataRetention:       time.Hour,
		UpdateInterval:      time.Second,
		BaselineWPM:         40,
		FatigueThreshold:    70,
		HealthThreshold:     30,
	}
}

// TypingMetrics captures windowed keystroke statistics.
type TypingMetrics struct {
	WPM                float64
	RawWPM             float64
	AccuracyScore      float64
	RhythmConsistency  float64
	FatigueScore       float64
	HealthScore        float64
	AvgInterval        float64
	VarianceOfInterval float64
	PauseFrequency     float64
	BurstCount         int
}

// MouseMetrics captures windowed mouse statistics.
type MouseMetrics struct {
	TotalDistance        float64
	AvgSpeed             float64
	ClickFrequency       float64
	ScrollFrequency      float64
	MovementSmoothness   float64
	IdlePeriods          int
	ActiveTimePercentage float64
}

// FatigueLevel buckets the overall fatigue score.
type FatigueLevel string

// Fatigue levels, lower edge inclusive: [0,30) minimal, [30,50) mild,
// [50,70) moderate, [70,85) high, [85,100] severe.
const (
	FatigueMinimal  FatigueLevel = "minimal"
	FatigueMild     FatigueLevel = "mild"
	FatigueModerate FatigueLevel = "moderate"
	FatigueHigh     FatigueLevel = "high"
	FatigueSevere   FatigueLevel = "severe"
)

// FatigueIndicators combines the overall score with boolean warning flags.
type FatigueIndicators struct {
	OverallFatigue float64
	Level          FatigueLevel

	LowWPM             bool
	HighPauseFrequency bool
	IrregularRhythm    bool
	HighFatigueScore   bool

	LowActivity    bool
	JerkyMovements bool
	ExcessiveIdle  bool
}

// Snapshot is an immutable view of the metrics at one scheduler tick.
// A new tick produces a new snapshot; published snapshots are never mutated.
type Snapshot struct {
	SchemaVersion   int
	Timestamp       time.Time
	SessionDuration time.Duration

	Typing  TypingMetrics
	Mouse   MouseMetrics
	Fatigue FatigueIndicators

	TotalKeystrokes  int64
	TotalMouseEvents int64

	TimeSinceLastActivity time.Duration
	IsInactive            bool
}

// StatsConfig defines filters for snapshot history reporting.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SnapshotSummary is a stored snapshot row used for history reporting.
type SnapshotSummary struct {
	ID                   int64
	Timestamp            time.Time
	SessionDuration      time.Duration
	WPM                  float64
	HealthScore          float64
	FatigueScore         float64
	OverallFatigue       float64
	Level                FatigueLevel
	ActiveTimePercentage float64
	TotalKeystrokes      int64
	TotalMouseEvents     int64
}
