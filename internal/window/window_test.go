package window

import (
	"testing"
	"time"

	"github.com/davrk/keypulse/internal/model"
)

func keyAt(base time.Time, offset time.Duration) model.KeyEvent {
	return model.KeyEvent{Time: base.Add(offset), Category: model.KeyLetter}
}

func TestAppendEvictsByCount(t *testing.T) {
	base := time.Unix(1000, 0)
	s := New[model.KeyEvent](3, time.Hour)
	for i := 0; i < 5; i++ {
		s.Append(keyAt(base, time.Duration(i)*time.Second))
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 retained events, got %d", s.Len())
	}
	got := s.Window(base.Add(4*time.Second), time.Hour)
	if len(got) != 3 {
		t.Fatalf("expected 3 windowed events, got %d", len(got))
	}
	if !got[0].Time.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("unexpected oldest event: %v", got[0].Time)
	}
}

func TestEvictByAge(t *testing.T) {
	base := time.Unix(1000, 0)
	s := New[model.KeyEvent](100, 10*time.Second)
	for i := 0; i < 5; i++ {
		s.Append(keyAt(base, time.Duration(i)*5*time.Second))
	}
	// Events at +0s and +5s are older than 10s relative to +20s.
	s.Evict(base.Add(20 * time.Second))
	if s.Len() != 3 {
		t.Fatalf("expected 3 retained events, got %d", s.Len())
	}
	got := s.Window(base.Add(20*time.Second), time.Hour)
	if !got[0].Time.Equal(base.Add(10 * time.Second)) {
		t.Fatalf("unexpected oldest event: %v", got[0].Time)
	}
}

func TestWindowFiltersBySpan(t *testing.T) {
	base := time.Unix(1000, 0)
	s := New[model.KeyEvent](100, time.Hour)
	for i := 0; i < 10; i++ {
		s.Append(keyAt(base, time.Duration(i)*10*time.Second))
	}
	now := base.Add(90 * time.Second)
	got := s.Window(now, 30*time.Second)
	if len(got) != 4 {
		t.Fatalf("expected 4 events within 30s, got %d", len(got))
	}
	for _, e := range got {
		if now.Sub(e.Time) > 30*time.Second {
			t.Fatalf("event outside span: %v", e.Time)
		}
	}
}

func TestWindowEmptyStore(t *testing.T) {
	s := New[model.MouseEvent](10, time.Hour)
	if got := s.Window(time.Now(), time.Minute); got != nil {
		t.Fatalf("expected nil window, got %v", got)
	}
}

func TestWindowReturnsCopy(t *testing.T) {
	base := time.Unix(1000, 0)
	s := New[model.KeyEvent](100, time.Hour)
	s.Append(keyAt(base, 0))
	got := s.Window(base, time.Minute)
	got[0].Category = model.KeyNumber
	again := s.Window(base, time.Minute)
	if again[0].Category != model.KeyLetter {
		t.Fatalf("window must not alias store contents")
	}
}

func TestRetentionInvariantAfterEvict(t *testing.T) {
	base := time.Unix(1000, 0)
	s := New[model.MouseEvent](50, 30*time.Second)
	for i := 0; i < 200; i++ {
		s.Append(model.MouseEvent{Time: base.Add(time.Duration(i) * time.Second), Kind: model.MouseMove})
	}
	now := base.Add(199 * time.Second)
	s.Evict(now)
	if s.Len() > 50 {
		t.Fatalf("count bound violated: %d", s.Len())
	}
	for _, e := range s.Window(now, time.Hour) {
		if now.Sub(e.Time) > 30*time.Second {
			t.Fatalf("age bound violated: %v", now.Sub(e.Time))
		}
	}
}
