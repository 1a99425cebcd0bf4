// Package monitor runs the periodic analysis loop over ingested input events
// and publishes immutable metric snapshots.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/davrk/keypulse/internal/analyze"
	"github.com/davrk/keypulse/internal/export"
	"github.com/davrk/keypulse/internal/ingest"
	"github.com/davrk/keypulse/internal/model"
	"github.com/davrk/keypulse/internal/source"
	"github.com/davrk/keypulse/internal/window"
)

// ErrAlreadyRunning is returned by Start when the monitor is active.
var ErrAlreadyRunning = errors.New("monitor already running")

// Options configure a Monitor.
type Options struct {
	Settings model.Settings
	Source   source.Source
	Logger   *zap.Logger
	// Clock overrides time.Now for tests.
	Clock func() time.Time
	// QueueCapacity bounds each ingestion queue; zero uses the default.
	QueueCapacity int
	// MaxEvents bounds each window store; zero uses the default.
	MaxEvents int
	// OnSnapshot, when set, is invoked from the scheduler goroutine after
	// each snapshot is published. It must not block for long.
	OnSnapshot func(model.Snapshot)
}

// Monitor owns the two window stores, drains the ingestion queues on every
// tick, recomputes the metrics, and swaps the published snapshot. Producers
// only ever touch the queues; the scheduler goroutine is the sole mutator of
// the stores and counters.
type Monitor struct {
	settings   model.Settings
	src        source.Source
	logger     *zap.Logger
	clock      func() time.Time
	onSnapshot func(model.Snapshot)

	keyQueue   *ingest.Queue[model.KeyEvent]
	mouseQueue *ingest.Queue[model.MouseEvent]
	keys       *window.Store[model.KeyEvent]
	mouse      *window.Store[model.MouseEvent]

	current atomic.Pointer[model.Snapshot]

	// Scheduler-goroutine state.
	totalKeys    int64
	totalMouse   int64
	lastActivity time.Time
	lastDropped  uint64
	sessionStart time.Time

	mu      sync.Mutex
	running bool
	detach  func()
	stop    chan struct{}
	done    chan struct{}
}

// New validates options and constructs a monitor.
func New(opts Options) (*Monitor, error) {
	if opts.Source == nil {
		return nil, errors.New("event source must not be nil")
	}
	settings := opts.Settings
	if settings.UpdateInterval <= 0 {
		return nil, errors.New("update interval must be positive")
	}
	if settings.AnalysisWindow <= 0 {
		return nil, errors.New("analysis window must be positive")
	}
	if settings.DataRetention <= 0 {
		return nil, errors.New("data retention must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Monitor{
		settings:   settings,
		src:        opts.Source,
		logger:     logger,
		clock:      clock,
		onSnapshot: opts.OnSnapshot,
		keyQueue:   ingest.NewQueue[model.KeyEvent](opts.QueueCapacity),
		mouseQueue: ingest.NewQueue[model.MouseEvent](opts.QueueCapacity),
		keys:       window.New[model.KeyEvent](opts.MaxEvents, settings.DataRetention),
		mouse:      window.New[model.MouseEvent](opts.MaxEvents, settings.DataRetention),
	}, nil
}

// SubmitKey implements source.Sink.
func (m *Monitor) SubmitKey(e model.KeyEvent) { m.keyQueue.Submit(e) }

// SubmitMouse implements source.Sink.
func (m *Monitor) SubmitMouse(e model.MouseEvent) { m.mouseQueue.Submit(e) }

// Start attaches the event source and launches the analysis scheduler.
// A source that cannot attach (for example a denied capture permission)
// fails Start; nothing is left running in that case.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyRunning
	}
	if ctx == nil {
		ctx = context.Background()
	}

	detach, err := m.src.Attach(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to attach event source: %w", err)
	}

	now := m.clock()
	m.sessionStart = now
	m.lastActivity = now
	m.detach = detach
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true

	go m.run(ctx, m.stop, m.done)
	m.logger.Info("monitor started",
		zap.Duration("update_interval", m.settings.UpdateInterval),
		zap.Duration("analysis_window", m.settings.AnalysisWindow))
	return nil
}

// Stop detaches the source and halts the scheduler. When Stop returns, no
// further snapshot will be published. Calling Stop on a stopped monitor is a
// no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.detach()
	close(m.stop)
	<-m.done
	m.running = false
	m.logger.Info("monitor stopped")
}

func (m *Monitor) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.settings.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick drains the queues, evicts stale events, recomputes all metrics, and
// atomically replaces the published snapshot. A panicking computation skips
// the tick and keeps the previous snapshot published.
func (m *Monitor) tick() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("analysis tick skipped", zap.Any("cause", r))
		}
	}()

	now := m.clock()

	drainedKeys := m.keyQueue.Drain(func(e model.KeyEvent) {
		m.keys.Append(e)
		m.totalKeys++
	})
	drainedMouse := m.mouseQueue.Drain(func(e model.MouseEvent) {
		m.mouse.Append(e)
		m.totalMouse++
	})
	if drainedKeys > 0 || drainedMouse > 0 {
		m.lastActivity = now
	}
	if dropped := m.keyQueue.Dropped() + m.mouseQueue.Dropped(); dropped != m.lastDropped {
		m.logger.Warn("ingestion queue overflow", zap.Uint64("dropped_total", dropped))
		m.lastDropped = dropped
	}

	m.keys.Evict(now)
	m.mouse.Evict(now)

	keyView := m.keys.Window(now, m.settings.AnalysisWindow)
	mouseView := m.mouse.Window(now, m.settings.AnalysisWindow)

	typing := analyze.Typing(keyView, m.settings)
	mouseMetrics := analyze.Mouse(mouseView, now, m.settings)
	fatigue := analyze.Fatigue(typing, mouseMetrics)

	sinceActivity := now.Sub(m.lastActivity)
	snap := &model.Snapshot{
		SchemaVersion:         model.SnapshotSchemaVersion,
		Timestamp:             now,
		SessionDuration:       now.Sub(m.sessionStart),
		Typing:                typing,
		Mouse:                 mouseMetrics,
		Fatigue:               fatigue,
		TotalKeystrokes:       m.totalKeys,
		TotalMouseEvents:      m.totalMouse,
		TimeSinceLastActivity: sinceActivity,
		IsInactive:            sinceActivity > m.settings.InactivityThreshold,
	}
	m.current.Store(snap)
	if m.onSnapshot != nil {
		m.onSnapshot(*snap)
	}
}

// Current returns the most recently published snapshot. Before the first
// tick completes it reports ok=false with a zero snapshot.
func (m *Monitor) Current() (model.Snapshot, bool) {
	snap := m.current.Load()
	if snap == nil {
		return model.Snapshot{}, false
	}
	return *snap, true
}

// FatigueIndicators returns the indicators from the latest snapshot.
func (m *Monitor) FatigueIndicators() (model.FatigueIndicators, bool) {
	snap, ok := m.Current()
	if !ok {
		return model.FatigueIndicators{}, false
	}
	return snap.Fatigue, true
}

// Settings returns the monitor's analysis parameters.
func (m *Monitor) Settings() model.Settings {
	return m.settings
}

// Export serializes the latest snapshot to w as a flat record. The snapshot
// reference is read once; a failing sink never disturbs the scheduler.
func (m *Monitor) Export(w io.Writer) error {
	snap, ok := m.Current()
	if !ok {
		return errors.New("no snapshot published yet")
	}
	if err := export.Write(w, snap); err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	return nil
}
