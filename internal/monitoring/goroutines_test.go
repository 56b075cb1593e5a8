package monitoring

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(counts *[]int, opts ...Option) (*GoroutineMonitor, *bytes.Buffer) {
	var buf bytes.Buffer
	gm := NewGoroutineMonitor(zerolog.New(&buf).Level(zerolog.DebugLevel), opts...)
	gm.baseline, gm.current, gm.peak = 10, 10, 10
	gm.count = func() int {
		n := (*counts)[0]
		if len(*counts) > 1 {
			*counts = (*counts)[1:]
		}
		return n
	}
	return gm, &buf
}

func TestCheckTracksPeak(t *testing.T) {
	counts := []int{12, 30, 15}
	gm, _ := newTestMonitor(&counts)

	gm.Check()
	gm.Check()
	gm.Check()

	m := gm.Metrics()
	assert.Equal(t, 15, m.Current)
	assert.Equal(t, 30, m.Peak)
	assert.Equal(t, 10, m.Baseline)
	assert.Equal(t, 5, m.Growth)
}

func TestCheckAlertsOnceWithinCooldown(t *testing.T) {
	counts := []int{50, 60, 5}
	gm, buf := newTestMonitor(&counts, WithAlertThreshold(40), WithAlertCooldown(time.Hour))

	assert.True(t, gm.Check())
	assert.False(t, gm.Check(), "second alert suppressed by cooldown")
	assert.False(t, gm.Check())
	assert.Contains(t, buf.String(), "possible leak")
}

func TestCountersAreReported(t *testing.T) {
	counts := []int{11}
	gm, buf := newTestMonitor(&counts)

	served := int64(0)
	gm.RegisterCounter("suggestions", func() int64 { return served })
	served = 7

	gm.Check()
	assert.Equal(t, map[string]int64{"suggestions": 7}, gm.Metrics().Counters)
	assert.Contains(t, buf.String(), `"suggestions":7`)
}

func TestRunStopsWithContext(t *testing.T) {
	counts := []int{10}
	gm, _ := newTestMonitor(&counts, WithCheckInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gm.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "Run did not return after cancel")
	}
}
