// Package export serializes snapshots as flat, versioned JSON records.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/davrk/keypulse/internal/model"
)

// Record is the flat export form of a snapshot. The field names are the
// stable external contract; schema_version guards readers against drift.
type Record struct {
	SchemaVersion int    `json:"schema_version"`
	Timestamp     string `json:"timestamp"`

	SessionDuration       float64 `json:"session_duration"`
	TimeSinceLastActivity float64 `json:"time_since_last_activity"`
	IsInactive            bool    `json:"is_inactive"`
	TotalKeystrokes       int64   `json:"total_keystrokes"`
	TotalMouseEvents      int64   `json:"total_mouse_events"`

	WPM               float64 `json:"wpm"`
	RawWPM            float64 `json:"raw_wpm"`
	AccuracyScore     float64 `json:"accuracy_score"`
	RhythmConsistency float64 `json:"rhythm_consistency"`
	FatigueScore      float64 `json:"fatigue_score"`
	HealthScore       float64 `json:"health_score"`
	AvgInterval       float64 `json:"avg_interval"`
	Variance          float64 `json:"variance"`
	PauseFrequency    float64 `json:"pause_frequency"`
	BurstCount        int     `json:"burst_count"`

	TotalDistance        float64 `json:"total_distance"`
	AvgSpeed             float64 `json:"avg_speed"`
	ClickFrequency       float64 `json:"click_frequency"`
	ScrollFrequency      float64 `json:"scroll_frequency"`
	MovementSmoothness   float64 `json:"movement_smoothness"`
	IdlePeriods          int     `json:"idle_periods"`
	ActiveTimePercentage float64 `json:"active_time_percentage"`

	OverallFatigue float64 `json:"overall_fatigue"`
	FatigueLevel   string  `json:"fatigue_level"`

	LowWPM             bool `json:"low_wpm"`
	HighPauseFrequency bool `json:"high_pause_frequency"`
	IrregularRhythm    bool `json:"irregular_rhythm"`
	HighFatigueScore   bool `json:"high_fatigue_score"`
	LowActivity        bool `json:"low_activity"`
	JerkyMovements     bool `json:"jerky_movements"`
	ExcessiveIdle      bool `json:"excessive_idle"`
}

// Flatten converts a snapshot into its flat export record.
func Flatten(snap model.Snapshot) Record {
	return Record{
		SchemaVersion: snap.SchemaVersion,
		Timestamp:     snap.Timestamp.UTC().Format(time.RFC3339Nano),

		SessionDuration:       snap.SessionDuration.Seconds(),
		TimeSinceLastActivity: snap.TimeSinceLastActivity.Seconds(),
		IsInactive:            snap.IsInactive,
		TotalKeystrokes:       snap.TotalKeystrokes,
		TotalMouseEvents:      snap.TotalMouseEvents,

		WPM:               snap.Typing.WPM,
		RawWPM:            snap.Typing.RawWPM,
		AccuracyScore:     snap.Typing.AccuracyScore,
		RhythmConsistency: snap.Typing.RhythmConsistency,
		FatigueScore:      snap.Typing.FatigueScore,
		HealthScore:       snap.Typing.HealthScore,
		AvgInterval:       snap.Typing.AvgInterval,
		Variance:          snap.Typing.VarianceOfInterval,
		PauseFrequency:    snap.Typing.PauseFrequency,
		BurstCount:        snap.Typing.BurstCount,

		TotalDistance:        snap.Mouse.TotalDistance,
		AvgSpeed:             snap.Mouse.AvgSpeed,
		ClickFrequency:       snap.Mouse.ClickFrequency,
		ScrollFrequency:      snap.Mouse.ScrollFrequency,
		MovementSmoothness:   snap.Mouse.MovementSmoothness,
		IdlePeriods:          snap.Mouse.IdlePeriods,
		ActiveTimePercentage: snap.Mouse.ActiveTimePercentage,

		OverallFatigue: snap.Fatigue.OverallFatigue,
		FatigueLevel:   string(snap.Fatigue.Level),

		LowWPM:             snap.Fatigue.LowWPM,
		HighPauseFrequency: snap.Fatigue.HighPauseFrequency,
		IrregularRhythm:    snap.Fatigue.IrregularRhythm,
		HighFatigueScore:   snap.Fatigue.HighFatigueScore,
		LowActivity:        snap.Fatigue.LowActivity,
		JerkyMovements:     snap.Fatigue.JerkyMovements,
		ExcessiveIdle:      snap.Fatigue.ExcessiveIdle,
	}
}

// Write serializes the snapshot to w as an indented flat record.
func Write(w io.Writer, snap model.Snapshot) error {
	data, err := json.MarshalIndent(Flatten(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Parse decodes a flat record previously produced by Write.
func Parse(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse record: %w", err)
	}
	return rec, nil
}
