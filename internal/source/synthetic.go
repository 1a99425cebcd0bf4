package source

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/davrk/keypulse/internal/model"
)

// SyntheticOptions tune the generated activity profile.
type SyntheticOptions struct {
	// KeyInterval is the base gap between keystrokes.
	KeyInterval time.Duration
	// MouseInterval is the base gap between mouse samples.
	MouseInterval time.Duration
	// Seed makes the generated jitter reproducible; zero seeds from the
	// current time.
	Seed int64
	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// Synthetic generates a plausible stream of typing and mouse activity:
// steady keystrokes with jitter and occasional pauses, a drifting pointer
// with sporadic clicks and scrolls. It exists so the tool can run end to end
// without an OS hook.
type Synthetic struct {
	keyInterval   time.Duration
	mouseInterval time.Duration
	seed          int64
	clock         func() time.Time
}

// NewSynthetic constructs a synthetic source, applying defaults for any
// unset option.
func NewSynthetic(opts SyntheticOptions) *Synthetic {
	keyInterval := opts.KeyInterval
	if keyInterval <= 0 {
		keyInterval = 180 * time.Millisecond
	}
	mouseInterval := opts.MouseInterval
	if mouseInterval <= 0 {
		mouseInterval = 50 * time.Millisecond
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthetic{
		keyInterval:   keyInterval,
		mouseInterval: mouseInterval,
		seed:          seed,
		clock:         clock,
	}
}

// Attach starts two generator goroutines delivering into sink. The returned
// detach stops both and waits for them to exit.
func (s *Synthetic) Attach(ctx context.Context, sink Sink) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		s.typeLoop(runCtx, sink)
	}()
	go func() {
		defer wg.Done()
		s.mouseLoop(runCtx, sink)
	}()

	return func() {
		cancel()
		wg.Wait()
	}, nil
}

func (s *Synthetic) typeLoop(ctx context.Context, sink Sink) {
	rng := rand.New(rand.NewSource(s.seed))
	categories := []model.KeyCategory{
		model.KeyLetter, model.KeyLetter, model.KeyLetter, model.KeyLetter,
		model.KeyLetter, model.KeyLetter, model.KeyNumber, model.KeySpecial,
	}
	timer := time.NewTimer(s.keyInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		sink.SubmitKey(model.KeyEvent{
			Time:     s.clock(),
			Category: categories[rng.Intn(len(categories))],
		})
		gap := s.keyInterval + time.Duration(rng.Int63n(int64(s.keyInterval)))
		if rng.Float64() < 0.02 {
			// Occasional thinking pause.
			gap += 3 * time.Second
		}
		timer.Reset(gap)
	}
}

func (s *Synthetic) mouseLoop(ctx context.Context, sink Sink) {
	rng := rand.New(rand.NewSource(s.seed + 1))
	ticker := time.NewTicker(s.mouseInterval)
	defer ticker.Stop()

	x, y := 400.0, 300.0
	angle := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		now := s.clock()
		switch r := rng.Float64(); {
		case r < 0.05:
			sink.SubmitMouse(model.MouseEvent{Time: now, Kind: model.MouseClick, X: x, Y: y})
		case r < 0.08:
			sink.SubmitMouse(model.MouseEvent{Time: now, Kind: model.MouseScroll, X: x, Y: y})
		default:
			angle += (rng.Float64() - 0.5) * 0.6
			x += math.Cos(angle) * 8
			y += math.Sin(angle) * 8
			sink.SubmitMouse(model.MouseEvent{Time: now, Kind: model.MouseMove, X: x, Y: y})
		}
	}
}
