package ingest

import (
	"sync"
	"testing"
)

func TestSubmitDrainOrder(t *testing.T) {
	q := NewQueue[int](8)
	for i := 0; i < 5; i++ {
		q.Submit(i)
	}
	var got []int
	n := q.Drain(func(v int) { got = append(got, v) })
	if n != 5 {
		t.Fatalf("expected 5 drained, got %d", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: %v", i, got)
		}
	}
}

func TestSubmitDropsOnFullBuffer(t *testing.T) {
	q := NewQueue[int](2)
	for i := 0; i < 5; i++ {
		q.Submit(i)
	}
	if q.Dropped() != 3 {
		t.Fatalf("expected 3 dropped, got %d", q.Dropped())
	}
	n := q.Drain(func(int) {})
	if n != 2 {
		t.Fatalf("expected 2 drained, got %d", n)
	}
}

func TestDrainEmptyQueue(t *testing.T) {
	q := NewQueue[string](4)
	if n := q.Drain(func(string) { t.Fatal("unexpected delivery") }); n != 0 {
		t.Fatalf("expected 0 drained, got %d", n)
	}
}

func TestConcurrentSubmit(t *testing.T) {
	q := NewQueue[int](1024)
	var wg sync.WaitGroup
	const producers = 8
	const perProducer = 100
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Submit(i)
			}
		}()
	}
	wg.Wait()
	total := q.Drain(func(int) {})
	if uint64(total)+q.Dropped() != producers*perProducer {
		t.Fatalf("lost events: drained=%d dropped=%d", total, q.Dropped())
	}
}
