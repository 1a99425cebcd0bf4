package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/davrk/keypulse/internal/model"
	"github.com/davrk/keypulse/internal/store"
)

func TestBuildReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypulse.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		snap := model.Snapshot{
			SchemaVersion:   model.SnapshotSchemaVersion,
			Timestamp:       base.Add(time.Duration(i) * time.Minute),
			SessionDuration: time.Duration(i+1) * time.Minute,
			Typing: model.TypingMetrics{
				WPM:          float64(40 + i*5),
				HealthScore:  80,
				FatigueScore: 20,
			},
			Mouse: model.MouseMetrics{
				ActiveTimePercentage: 75,
			},
			Fatigue: model.FatigueIndicators{
				OverallFatigue: 25,
				Level:          model.FatigueMinimal,
			},
			TotalKeystrokes:  int64(100 * (i + 1)),
			TotalMouseEvents: int64(50 * (i + 1)),
		}
		if _, err := st.InsertSnapshot(ctx, snap); err != nil {
			t.Fatalf("failed to insert snapshot %d: %v", i, err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 3})
	if err != nil {
		t.Fatalf("failed to build report: %v", err)
	}
	if len(report.Summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(report.Summaries))
	}
	if report.Summary.Count != 3 {
		t.Errorf("expected summary count 3, got %d", report.Summary.Count)
	}
	if report.Summary.BestWPM != 55 {
		t.Errorf("expected best WPM 55, got %v", report.Summary.BestWPM)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, model.StatsConfig{Last: 3, CurveWindow: 2}, 60, false); err != nil {
		t.Fatalf("failed to render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Fatigue Levels", "Trends"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestBuildReportEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypulse.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	report, err := BuildReport(context.Background(), st, model.StatsConfig{})
	if err != nil {
		t.Fatalf("failed to build report: %v", err)
	}
	if len(report.Summaries) != 0 {
		t.Fatalf("expected no summaries, got %d", len(report.Summaries))
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, model.StatsConfig{}, 60, false); err != nil {
		t.Fatalf("failed to render empty report: %v", err)
	}
	if !strings.Contains(buf.String(), "No snapshots recorded.") {
		t.Errorf("expected placeholder message, got %q", buf.String())
	}
}
