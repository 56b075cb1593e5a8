package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultCheckInterval  = 30 * time.Second
	DefaultAlertThreshold = 1000
	DefaultAlertCooldown  = 5 * time.Minute
)

// GoroutineMonitor samples the goroutine count of a long running process
// and warns when it crosses a threshold.
type GoroutineMonitor struct {
	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	counters       map[string]func() int64

	logger zerolog.Logger
	count  func() int
}

// Option configures a GoroutineMonitor
type Option func(*GoroutineMonitor)

func WithCheckInterval(d time.Duration) Option {
	return func(gm *GoroutineMonitor) { gm.checkInterval = d }
}

func WithAlertThreshold(n int) Option {
	return func(gm *GoroutineMonitor) { gm.alertThreshold = n }
}

func WithAlertCooldown(d time.Duration) Option {
	return func(gm *GoroutineMonitor) { gm.alertCooldown = d }
}

// NewGoroutineMonitor creates a monitor with the current goroutine count as
// baseline
func NewGoroutineMonitor(logger zerolog.Logger, opts ...Option) *GoroutineMonitor {
	baseline := runtime.NumGoroutine()
	gm := &GoroutineMonitor{
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  DefaultCheckInterval,
		alertThreshold: DefaultAlertThreshold,
		alertCooldown:  DefaultAlertCooldown,
		counters:       make(map[string]func() int64),
		logger:         logger.With().Str("component", "goroutine_monitor").Logger(),
		count:          runtime.NumGoroutine,
	}
	for _, opt := range opts {
		opt(gm)
	}
	return gm
}

// Run samples until ctx is done
func (gm *GoroutineMonitor) Run(ctx context.Context) {
	gm.logger.Info().Int("baseline", gm.baseline).Msg("Started goroutine monitoring")

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.Check()
		case <-ctx.Done():
			return
		}
	}
}

// Check takes one sample and reports whether an alert was raised
func (gm *GoroutineMonitor) Check() bool {
	current := gm.count()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}

	growth := current - gm.baseline
	growthRate := 0.0
	if gm.baseline > 0 {
		growthRate = float64(growth) / float64(gm.baseline) * 100
	}

	shouldAlert := current > gm.alertThreshold &&
		time.Since(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = time.Now()
	}
	peak := gm.peak
	counters := gm.snapshotCountersLocked()
	gm.mu.Unlock()

	event := gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate)
	for name, v := range counters {
		event = event.Int64(name, v)
	}
	event.Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
	return shouldAlert
}

// RegisterCounter adds a named value reported with every sample, such as
// the number of requests served.
func (gm *GoroutineMonitor) RegisterCounter(name string, read func() int64) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.counters[name] = read
}

// Metrics returns the latest sample
func (gm *GoroutineMonitor) Metrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:  gm.current,
		Baseline: gm.baseline,
		Peak:     gm.peak,
		Growth:   gm.current - gm.baseline,
		Counters: gm.snapshotCountersLocked(),
	}
}

func (gm *GoroutineMonitor) snapshotCountersLocked() map[string]int64 {
	result := make(map[string]int64, len(gm.counters))
	for name, read := range gm.counters {
		result[name] = read()
	}
	return result
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current  int
	Baseline int
	Peak     int
	Growth   int
	Counters map[string]int64
}
