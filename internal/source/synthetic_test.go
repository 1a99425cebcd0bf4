package source

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/davrk/keypulse/internal/model"
)

type collectSink struct {
	mu    sync.Mutex
	keys  []model.KeyEvent
	mouse []model.MouseEvent
}

func (c *collectSink) SubmitKey(e model.KeyEvent) {
	c.mu.Lock()
	c.keys = append(c.keys, e)
	c.mu.Unlock()
}

func (c *collectSink) SubmitMouse(e model.MouseEvent) {
	c.mu.Lock()
	c.mouse = append(c.mouse, e)
	c.mu.Unlock()
}

func (c *collectSink) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys), len(c.mouse)
}

func TestSyntheticDeliversAndDetaches(t *testing.T) {
	sink := &collectSink{}
	src := NewSynthetic(SyntheticOptions{
		KeyInterval:   time.Millisecond,
		MouseInterval: time.Millisecond,
		Seed:          42,
	})
	detach, err := src.Attach(context.Background(), sink)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		keys, mouse := sink.counts()
		if keys > 0 && mouse > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no events delivered: keys=%d mouse=%d", keys, mouse)
		}
		time.Sleep(5 * time.Millisecond)
	}

	detach()
	keys, mouse := sink.counts()
	time.Sleep(20 * time.Millisecond)
	keysAfter, mouseAfter := sink.counts()
	if keysAfter != keys || mouseAfter != mouse {
		t.Fatalf("events delivered after detach: %d->%d keys, %d->%d mouse", keys, keysAfter, mouse, mouseAfter)
	}
}

func TestAttachFuncAdapter(t *testing.T) {
	called := false
	src := AttachFunc(func(ctx context.Context, sink Sink) (func(), error) {
		called = true
		return func() {}, nil
	})
	detach, err := src.Attach(context.Background(), &collectSink{})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	detach()
	if !called {
		t.Fatal("adapter did not call wrapped function")
	}
}
