// Package store handles SQLite persistence of snapshot history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davrk/keypulse/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for snapshot history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			taken_at TEXT NOT NULL,
			session_duration_ms INTEGER NOT NULL,
			wpm REAL NOT NULL,
			accuracy_score REAL NOT NULL,
			rhythm_consistency REAL NOT NULL,
			fatigue_score REAL NOT NULL,
			health_score REAL NOT NULL,
			pause_frequency REAL NOT NULL,
			burst_count INTEGER NOT NULL,
			total_distance REAL NOT NULL,
			avg_speed REAL NOT NULL,
			movement_smoothness REAL NOT NULL,
			idle_periods INTEGER NOT NULL,
			active_time_percentage REAL NOT NULL,
			overall_fatigue REAL NOT NULL,
			fatigue_level TEXT NOT NULL,
			total_keystrokes INTEGER NOT NULL,
			total_mouse_events INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSnapshot stores one published snapshot.
func (s *Store) InsertSnapshot(ctx context.Context, snap model.Snapshot) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (schema_version, taken_at, session_duration_ms,
			wpm, accuracy_score, rhythm_consistency, fatigue_score, health_score,
			pause_frequency, burst_count,
			total_distance, avg_speed, movement_smoothness, idle_periods, active_time_percentage,
			overall_fatigue, fatigue_level, total_keystrokes, total_mouse_events)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.SchemaVersion,
		snap.Timestamp.UTC().Format(time.RFC3339Nano),
		snap.SessionDuration.Milliseconds(),
		snap.Typing.WPM,
		snap.Typing.AccuracyScore,
		snap.Typing.RhythmConsistency,
		snap.Typing.FatigueScore,
		snap.Typing.HealthScore,
		snap.Typing.PauseFrequency,
		snap.Typing.BurstCount,
		snap.Mouse.TotalDistance,
		snap.Mouse.AvgSpeed,
		snap.Mouse.MovementSmoothness,
		snap.Mouse.IdlePeriods,
		snap.Mouse.ActiveTimePercentage,
		snap.Fatigue.OverallFatigue,
		string(snap.Fatigue.Level),
		snap.TotalKeystrokes,
		snap.TotalMouseEvents,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSnapshots returns stored snapshot summaries filtered by stats config,
// oldest first.
func (s *Store) ListSnapshots(ctx context.Context, cfg model.StatsConfig) ([]model.SnapshotSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "taken_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, taken_at, session_duration_ms, wpm, health_score,
			fatigue_score, overall_fatigue, fatigue_level, active_time_percentage,
			total_keystrokes, total_mouse_events
		FROM snapshots
		WHERE %s
		ORDER BY taken_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var summaries []model.SnapshotSummary
	for rows.Next() {
		var sm model.SnapshotSummary
		var takenAt string
		var durationMs int64
		var level string
		if err := rows.Scan(&sm.ID, &takenAt, &durationMs, &sm.WPM, &sm.HealthScore,
			&sm.FatigueScore, &sm.OverallFatigue, &level, &sm.ActiveTimePercentage,
			&sm.TotalKeystrokes, &sm.TotalMouseEvents); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, takenAt)
		if err != nil {
			return nil, err
		}
		sm.Timestamp = parsed
		sm.SessionDuration = time.Duration(durationMs) * time.Millisecond
		sm.Level = model.FatigueLevel(level)
		summaries = append(summaries, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(summaries) > cfg.Last {
		summaries = summaries[len(summaries)-cfg.Last:]
	}
	return summaries, nil
}

// PruneBefore deletes snapshots taken before the cutoff and reports how many
// rows were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE taken_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
