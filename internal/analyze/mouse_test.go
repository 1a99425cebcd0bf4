package analyze

import (
	"math"
	"testing"
	"time"

	"github.com/davrk/keypulse/internal/model"
)

func moveAt(base time.Time, offset time.Duration, x, y float64) model.MouseEvent {
	return model.MouseEvent{Time: base.Add(offset), Kind: model.MouseMove, X: x, Y: y}
}

func TestMouseEmptyWindow(t *testing.T) {
	got := Mouse(nil, time.Now(), model.DefaultSettings())
	if got != (model.MouseMetrics{}) {
		t.Fatalf("expected zero metrics, got %+v", got)
	}
}

func TestMouseTotalDistanceAndSpeed(t *testing.T) {
	base := time.Unix(1000, 0)
	events := []model.MouseEvent{
		moveAt(base, 0, 0, 0),
		moveAt(base, time.Second, 3, 4),
		moveAt(base, 2*time.Second, 3, 4),
	}
	now := base.Add(10 * time.Second)
	got := Mouse(events, now, model.DefaultSettings())
	if !almostEqual(got.TotalDistance, 5) {
		t.Fatalf("expected distance 5, got %v", got.TotalDistance)
	}
	if !almostEqual(got.AvgSpeed, 0.5) {
		t.Fatalf("expected speed 0.5 over 10s span, got %v", got.AvgSpeed)
	}
}

func TestMouseClickScrollFrequency(t *testing.T) {
	base := time.Unix(1000, 0)
	events := []model.MouseEvent{
		{Time: base, Kind: model.MouseClick},
		{Time: base.Add(time.Second), Kind: model.MouseClick},
		{Time: base.Add(2 * time.Second), Kind: model.MouseScroll},
	}
	got := Mouse(events, base.Add(3*time.Second), model.DefaultSettings())
	// Frequencies are per minute over the 60s analysis window.
	if !almostEqual(got.ClickFrequency, 2) {
		t.Fatalf("expected click frequency 2, got %v", got.ClickFrequency)
	}
	if !almostEqual(got.ScrollFrequency, 1) {
		t.Fatalf("expected scroll frequency 1, got %v", got.ScrollFrequency)
	}
}

func TestSmoothnessStraightLine(t *testing.T) {
	base := time.Unix(1000, 0)
	events := make([]model.MouseEvent, 0, 10)
	for i := 0; i < 10; i++ {
		events = append(events, moveAt(base, time.Duration(i)*100*time.Millisecond, float64(i)*10, 0))
	}
	got := Mouse(events, base.Add(time.Second), model.DefaultSettings())
	if !almostEqual(got.MovementSmoothness, 100) {
		t.Fatalf("expected smoothness 100 on a straight line, got %v", got.MovementSmoothness)
	}
}

func TestSmoothnessZigzagCountsChanges(t *testing.T) {
	base := time.Unix(1000, 0)
	events := make([]model.MouseEvent, 0, 8)
	for i := 0; i < 8; i++ {
		y := 0.0
		if i%2 == 1 {
			y = 50
		}
		events = append(events, moveAt(base, time.Duration(i)*100*time.Millisecond, float64(i), y))
	}
	got := Mouse(events, base.Add(time.Second), model.DefaultSettings())
	if got.MovementSmoothness >= 100 {
		t.Fatalf("expected direction changes to lower smoothness, got %v", got.MovementSmoothness)
	}
	if got.MovementSmoothness < 0 {
		t.Fatalf("smoothness below 0: %v", got.MovementSmoothness)
	}
}

func TestSmoothnessZeroVectorsExcluded(t *testing.T) {
	base := time.Unix(1000, 0)
	// The pointer rests mid-path: the zero vector must be skipped, not
	// treated as a direction change.
	events := []model.MouseEvent{
		moveAt(base, 0, 0, 0),
		moveAt(base, 100*time.Millisecond, 10, 0),
		moveAt(base, 200*time.Millisecond, 10, 0),
		moveAt(base, 300*time.Millisecond, 20, 0),
	}
	got := Mouse(events, base.Add(time.Second), model.DefaultSettings())
	if !almostEqual(got.MovementSmoothness, 100) {
		t.Fatalf("expected smoothness 100, got %v", got.MovementSmoothness)
	}
}

func TestMouseNoMovesIsSmooth(t *testing.T) {
	base := time.Unix(1000, 0)
	events := []model.MouseEvent{
		{Time: base, Kind: model.MouseClick},
		{Time: base.Add(time.Second), Kind: model.MouseClick},
	}
	got := Mouse(events, base.Add(2*time.Second), model.DefaultSettings())
	if !almostEqual(got.MovementSmoothness, 100) {
		t.Fatalf("expected smoothness 100 without moves, got %v", got.MovementSmoothness)
	}
}

func TestIdlePeriodsAndActiveTime(t *testing.T) {
	base := time.Unix(1000, 0)
	events := []model.MouseEvent{
		{Time: base, Kind: model.MouseClick},
		{Time: base.Add(10 * time.Second), Kind: model.MouseClick},
		{Time: base.Add(11 * time.Second), Kind: model.MouseClick},
		{Time: base.Add(30 * time.Second), Kind: model.MouseClick},
	}
	now := base.Add(40 * time.Second)
	got := Mouse(events, now, model.DefaultSettings())
	if got.IdlePeriods != 2 {
		t.Fatalf("expected 2 idle periods, got %d", got.IdlePeriods)
	}
	// span 40s, 2 idle periods * 5s = 10s inactive -> 75%.
	if !almostEqual(got.ActiveTimePercentage, 75) {
		t.Fatalf("expected 75%% active time, got %v", got.ActiveTimePercentage)
	}
}

func TestMouseBoundedMetrics(t *testing.T) {
	base := time.Unix(1000, 0)
	events := []model.MouseEvent{
		{Time: base, Kind: model.MouseClick},
		{Time: base.Add(20 * time.Second), Kind: model.MouseClick},
		{Time: base.Add(40 * time.Second), Kind: model.MouseClick},
	}
	got := Mouse(events, base.Add(41*time.Second), model.DefaultSettings())
	for _, v := range []float64{got.MovementSmoothness, got.ActiveTimePercentage} {
		if v < 0 || v > 100 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("metric out of bounds: %v", v)
		}
	}
}

func TestMouseZeroSpan(t *testing.T) {
	base := time.Unix(1000, 0)
	events := []model.MouseEvent{moveAt(base, 0, 5, 5)}
	got := Mouse(events, base, model.DefaultSettings())
	if got.AvgSpeed != 0 || got.ActiveTimePercentage != 0 {
		t.Fatalf("expected zero speed and active time at zero span, got %+v", got)
	}
}
